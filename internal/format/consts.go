// Package format houses the on-image layout of the Leo flash sysconfig block
// and the build metadata words. Offsets are in 32-bit words unless a name
// says otherwise; the image is addressed as a flat sequence of words.
package format

const (
	// WordSize is the number of bytes in one image word.
	WordSize = 4

	// HeaderMagic is repeated in the first two words of the sysconfig block.
	HeaderMagic uint32 = 0x5AA55AA5

	// BlockTypeSysconfig is the block-type tag that follows the header magic.
	BlockTypeSysconfig uint32 = 0x00000404

	// TrailerMagic is repeated in the last two words of the sysconfig block.
	TrailerMagic uint32 = 0xAA55AA55

	// HeaderWords is the length of the block header, magic and type included.
	HeaderWords = 9

	// SizeCounterA and SizeCounterB are header words holding the block size
	// in bytes. Both grow by EntryBytes whenever an entry is appended.
	SizeCounterA = 4
	SizeCounterB = 5

	// EntryWords is the length of one (id, value) entry.
	EntryWords = 2

	// EntryBytes is the size-counter increment for one appended entry.
	EntryBytes = EntryWords * WordSize

	// ReservedTailWords covers the checksum word and the two trailer words.
	ReservedTailWords = 3

	// ChecksumStart is the first block word covered by the checksum. The two
	// leading magic words are excluded.
	ChecksumStart = 2

	// MinBlockWords is the shortest well-formed block: header, checksum, trailer.
	MinBlockWords = HeaderWords + ReservedTailWords
)

// HeaderPattern is the 3-word sequence that opens a sysconfig block.
var HeaderPattern = [3]uint32{HeaderMagic, HeaderMagic, BlockTypeSysconfig}

// TrailerPattern is the 2-word sequence that closes a sysconfig block.
var TrailerPattern = [2]uint32{TrailerMagic, TrailerMagic}

// Build metadata layout. The table starts at byte 0x24 of the image.
const (
	BuildBaseByte = 0x24
	BuildBase     = BuildBaseByte / WordSize

	ASICVersionWord = BuildBase + 6
	BuildIDWord     = BuildBase + 8
	BuilderWord     = BuildBase + 9
	FWVersionWord   = BuildBase + 10
	IterationsWord  = BuildBase + 11

	// DefaultASICVersion is reported when the ASIC version word is zero.
	DefaultASICVersion uint32 = 0xd5

	fwReleaseShift = 24
	fwMajorShift   = 12
	fwFieldMask    = 0xfff
)
