package sysconfig

import (
	"github.com/joshuapare/leosyscfg/internal/format"
	"github.com/joshuapare/leosyscfg/internal/locate"
	"github.com/joshuapare/leosyscfg/internal/report"
	"github.com/joshuapare/leosyscfg/internal/verify"
	"github.com/joshuapare/leosyscfg/pkg/types"
)

// Dump decodes the sysconfig block of the image at imagePath into a report.
func Dump(imagePath string, opts *DumpOptions) (*report.Report, error) {
	if opts == nil {
		opts = &DumpOptions{}
	}

	cat, err := LoadCatalog(imagePath, opts.CatalogPath)
	if err != nil {
		return nil, err
	}
	image, err := ReadImage(imagePath)
	if err != nil {
		return nil, err
	}
	blk, err := locate.Find(image)
	if err != nil {
		return nil, err
	}

	rep, err := report.Build(blk, cat, report.Options{Short: opts.Short})
	if err != nil {
		return nil, err
	}
	if opts.BuildInfo {
		if info, err := format.DecodeBuildInfo(image); err == nil {
			rep.Build = &info
		}
	}
	return rep, nil
}

// ImageInfo describes an image and its sysconfig block.
type ImageInfo struct {
	Words int              `json:"words"`
	Build *types.BuildInfo `json:"build,omitempty"`

	BlockStart int `json:"block_start"`
	BlockEnd   int `json:"block_end"`
	Entries    int `json:"entries"`

	SizeCounterA     uint32   `json:"size_counter_a"`
	SizeCounterB     uint32   `json:"size_counter_b"`
	StoredChecksum   uint32   `json:"stored_checksum"`
	ComputedChecksum uint32   `json:"computed_checksum"`
	ChecksumOK       bool     `json:"checksum_ok"`
	DuplicateIDs     []uint32 `json:"duplicate_ids,omitempty"`
}

// Info reads the image at imagePath and summarizes it. A checksum mismatch
// is reported in the result, not as an error.
func Info(imagePath string, opts *InspectOptions) (*ImageInfo, error) {
	if opts == nil {
		opts = &InspectOptions{}
	}

	image, err := ReadImage(imagePath)
	if err != nil {
		return nil, err
	}
	blk, err := locate.Find(image)
	if err != nil {
		return nil, err
	}
	if err := verify.Entries(blk); err != nil {
		return nil, err
	}
	entries, _ := blk.Entries()

	info := &ImageInfo{
		Words:            len(image),
		BlockStart:       blk.SpanStart(),
		BlockEnd:         blk.End,
		Entries:          len(entries),
		StoredChecksum:   blk.StoredChecksum(),
		ComputedChecksum: blk.ComputeChecksum(opts.Checksum),
		DuplicateIDs:     verify.DuplicateIDs(blk),
	}
	info.SizeCounterA, info.SizeCounterB = blk.SizeCounters()
	info.ChecksumOK = info.StoredChecksum == info.ComputedChecksum
	if b, err := format.DecodeBuildInfo(image); err == nil {
		info.Build = &b
	}
	return info, nil
}

// Verify checks the image at imagePath: the block must be present and
// complete and its stored checksum must match.
func Verify(imagePath string, opts *InspectOptions) error {
	if opts == nil {
		opts = &InspectOptions{}
	}

	image, err := ReadImage(imagePath)
	if err != nil {
		return err
	}
	_, err = verify.AllInvariants(image, opts.Checksum)
	return err
}
