// Package testutil builds synthetic Leo flash images for tests.
package testutil

import (
	"github.com/joshuapare/leosyscfg/internal/checksum"
	"github.com/joshuapare/leosyscfg/internal/format"
	"github.com/joshuapare/leosyscfg/pkg/types"
)

// Filler pads the image around the block. It never forms a magic sequence.
const Filler uint32 = 0xFFFFFFFF

// DefaultPrefix leaves room for the build metadata table ahead of the block.
const DefaultPrefix = 32

// Build metadata written by Builder.Words.
const (
	TestBuildID   uint32 = 1234
	TestBuilder   uint32 = 0x74657374 // "test"
	TestFWVersion uint32 = 0x0100200c // release 1, major 0x002, minor 12
)

// Builder assembles an image: prefix words, the sysconfig block, suffix words.
type Builder struct {
	Prefix  int // words ahead of the block; 0 means DefaultPrefix
	Suffix  int // filler words after the trailer
	Entries []types.Entry

	Iterations  uint32
	BadChecksum bool // store checksum+1 instead of the real value
	NoTrailer   bool // drop both trailer words
	Bare        bool // emit only the block, no build metadata or padding
}

// Block returns just the sysconfig block words.
func (b Builder) Block() []uint32 {
	words := make([]uint32, 0, format.MinBlockWords+len(b.Entries)*format.EntryWords)
	words = append(words, format.HeaderPattern[:]...)
	// header words 3..8; 4 and 5 are the size counters
	size := uint32((format.MinBlockWords + len(b.Entries)*format.EntryWords) * format.WordSize)
	words = append(words, 0, size, size, 0, 0, 0)

	for _, e := range b.Entries {
		words = append(words, e.ID, e.Value)
	}

	sum := checksum.Sum(words[format.ChecksumStart:])
	if b.BadChecksum {
		sum++
	}
	words = append(words, sum)

	if !b.NoTrailer {
		words = append(words, format.TrailerPattern[:]...)
	}
	return words
}

// Words returns the full image.
func (b Builder) Words() []uint32 {
	if b.Bare {
		return b.Block()
	}

	prefix := b.Prefix
	if prefix == 0 {
		prefix = DefaultPrefix
	}

	image := make([]uint32, prefix)
	for i := range image {
		image[i] = Filler
	}
	if format.HasBuildInfo(image) {
		image[format.ASICVersionWord] = 0
		image[format.BuildIDWord] = TestBuildID
		image[format.BuilderWord] = TestBuilder
		image[format.FWVersionWord] = TestFWVersion
		image[format.IterationsWord] = b.Iterations
	}

	image = append(image, b.Block()...)
	for i := 0; i < b.Suffix; i++ {
		image = append(image, Filler)
	}
	return image
}

// BlockStart is the image index of the first header word for an image built
// by b.
func (b Builder) BlockStart() int {
	if b.Bare {
		return 0
	}
	if b.Prefix == 0 {
		return DefaultPrefix
	}
	return b.Prefix
}
