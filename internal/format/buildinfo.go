package format

import (
	"encoding/binary"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"

	"github.com/joshuapare/leosyscfg/pkg/types"
)

// UnknownBuilder is reported when the builder tag is not valid UTF-8.
const UnknownBuilder = "Unknown"

// HasBuildInfo reports whether image is long enough to hold the build table.
func HasBuildInfo(image []uint32) bool {
	return len(image) > IterationsWord
}

// DecodeBuildInfo reads the build metadata words of image.
func DecodeBuildInfo(image []uint32) (types.BuildInfo, error) {
	if !HasBuildInfo(image) {
		return types.BuildInfo{}, ErrTruncated
	}

	asic := image[ASICVersionWord]
	if asic == 0 {
		asic = DefaultASICVersion
	}
	fw := image[FWVersionWord]

	return types.BuildInfo{
		ASICVersion:  asic,
		BuildID:      image[BuildIDWord],
		Builder:      decodeBuilder(image[BuilderWord]),
		VersionMajor: (fw >> fwMajorShift) & fwFieldMask,
		VersionMinor: fw & fwFieldMask,
		Release:      fw>>fwReleaseShift != 0,
		Iterations:   image[IterationsWord],
	}, nil
}

// BumpIterations increments the sysconfig iteration counter in place and
// returns the new value. Images too short to carry build metadata are left
// alone and report false.
func BumpIterations(image []uint32) (uint32, bool) {
	if !HasBuildInfo(image) {
		return 0, false
	}
	image[IterationsWord]++
	return image[IterationsWord], true
}

// decodeBuilder renders the builder word as its four big-endian bytes.
func decodeBuilder(w uint32) string {
	var raw [WordSize]byte
	binary.BigEndian.PutUint32(raw[:], w)
	s, _, err := transform.String(encoding.UTF8Validator, string(raw[:]))
	if err != nil {
		return UnknownBuilder
	}
	return strings.TrimRight(s, "\x00")
}
