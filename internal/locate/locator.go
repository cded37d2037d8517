// Package locate finds the sysconfig block inside a flash image and applies
// in-place overwrites for registers that already have an entry.
//
// The scan is a single pass over the image. A 3-word window looks for the
// header magic; once the 9-word header has been consumed, words are read
// pairwise as (id, value) entries until the 2-word trailer magic appears.
// Every pending edit is matched at most once: the first entry carrying its
// id takes the new value and the edit leaves the pending set.
package locate

import (
	"slices"

	"github.com/joshuapare/leosyscfg/internal/checksum"
	"github.com/joshuapare/leosyscfg/internal/format"
	"github.com/joshuapare/leosyscfg/internal/logger"
	"github.com/joshuapare/leosyscfg/pkg/types"
)

// Overwrite records one edit applied in place during the scan.
type Overwrite struct {
	types.Edit
	Previous uint32 // value the entry held before the edit
	Index    int    // block-relative word index of the value
}

// Block is the located sysconfig block.
type Block struct {
	// Words holds the block from the first header magic word through the
	// last trailer word, with in-place overwrites already applied.
	Words []uint32

	// Start is the image index just past the 3-word header pattern; End is
	// the image index of the last trailer word. The block occupies image
	// words [Start-3, End].
	Start int
	End   int

	// Applied lists the edits overwritten in place, in scan order.
	Applied []Overwrite

	// Residual holds the edits no entry matched, in request order.
	Residual types.EditSet
}

// Find locates the sysconfig block without editing it.
func Find(image []uint32) (*Block, error) {
	return Locate(image, nil)
}

// Locate scans image for the sysconfig block and overwrites entries whose id
// appears in edits. The image and edits are not modified.
func Locate(image []uint32, edits types.EditSet) (*Block, error) {
	pending := edits.Clone()
	hdr := newWindow(len(format.HeaderPattern))
	pair := newWindow(format.EntryWords)

	var (
		b     Block
		found bool
		cnt   int
	)

	for i, w := range image {
		if !found && hdr.matches(format.HeaderPattern[:]) {
			found = true
			b.Start = i
			b.Words = append(b.Words, format.HeaderPattern[:]...)
			cnt = len(format.HeaderPattern)
		}
		if !found {
			hdr.push(w)
			continue
		}

		b.Words = append(b.Words, w)

		// rest of the header
		if cnt < format.HeaderWords {
			cnt++
			continue
		}

		if prev, ok := pair.last(); ok && prev == format.TrailerPattern[0] && w == format.TrailerPattern[1] {
			b.End = i
			b.Residual = pending
			if len(b.Words) < format.MinBlockWords {
				return nil, types.Errorf(types.ErrKindTruncatedBlock,
					"sysconfig block at word %d has no checksum slot (%d words)", b.Start-len(format.HeaderPattern), len(b.Words))
			}
			if body := len(b.Words) - format.HeaderWords - format.ReservedTailWords; body%format.EntryWords != 0 {
				return nil, types.Errorf(types.ErrKindTruncatedBlock,
					"sysconfig block at word %d has %d body words, want whole (id, value) pairs", b.Start-len(format.HeaderPattern), body)
			}
			logger.Debug("sysconfig block located",
				"start", b.Start-len(format.HeaderPattern), "end", b.End,
				"words", len(b.Words), "overwrites", len(b.Applied))
			return &b, nil
		}

		if !pair.full() {
			pair.push(w)
			continue
		}

		// A complete (id, value) pair is followed by w, so it is an entry.
		id := pair.at(0)
		if idx := slices.IndexFunc(pending, func(e types.Edit) bool { return e.ID == id }); idx >= 0 {
			edit := pending[idx]
			pending = slices.Delete(pending, idx, idx+1)

			valIdx := len(b.Words) - 2
			old := b.Words[valIdx]
			b.Words[valIdx] = edit.Value
			b.Applied = append(b.Applied, Overwrite{Edit: edit, Previous: old, Index: valIdx})
			logger.Debug("overwrite register", "id", id, "old", old, "new", edit.Value)
		}

		pair.reset()
		pair.push(w)
	}

	if !found {
		if hdr.matches(format.HeaderPattern[:]) {
			return nil, types.Errorf(types.ErrKindTruncatedBlock,
				"sysconfig header ends the image at word %d", len(image)-len(format.HeaderPattern))
		}
		return nil, types.Errorf(types.ErrKindBlockNotFound,
			"no sysconfig header in %d words", len(image))
	}
	return nil, types.Errorf(types.ErrKindTruncatedBlock,
		"no sysconfig trailer after header at word %d", b.Start-len(format.HeaderPattern))
}

// SpanStart is the image index of the first block word.
func (b *Block) SpanStart() int { return b.Start - len(format.HeaderPattern) }

// SpanEnd is the image index just past the last block word.
func (b *Block) SpanEnd() int { return b.End + 1 }

// ChecksumIndex is the block-relative index of the checksum word.
func (b *Block) ChecksumIndex() int { return len(b.Words) - format.ReservedTailWords }

// StoredChecksum returns the checksum word held by the block.
func (b *Block) StoredChecksum() uint32 { return b.Words[b.ChecksumIndex()] }

// ComputeChecksum recomputes the checksum over the block's covered range.
func (b *Block) ComputeChecksum(e checksum.Engine) uint32 {
	return e.Sum(b.Words[format.ChecksumStart:b.ChecksumIndex()])
}

// SizeCounters returns the two block-size header words.
func (b *Block) SizeCounters() (uint32, uint32) {
	return b.Words[format.SizeCounterA], b.Words[format.SizeCounterB]
}

// Entries decomposes the block body into (id, value) pairs in block order.
func (b *Block) Entries() ([]types.Entry, error) {
	body := b.Words[format.HeaderWords:b.ChecksumIndex()]
	if len(body)%format.EntryWords != 0 {
		return nil, types.Errorf(types.ErrKindTruncatedBlock,
			"sysconfig body has %d words, want whole (id, value) pairs", len(body))
	}

	entries := make([]types.Entry, 0, len(body)/format.EntryWords)
	for i := 0; i < len(body); i += format.EntryWords {
		entries = append(entries, types.Entry{ID: body[i], Value: body[i+1]})
	}
	return entries, nil
}
