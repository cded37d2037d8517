// Package edit applies register edits to the sysconfig block of a flash image.
//
// An edit pass has two phases. The locator overwrites entries whose id is
// already present; every edit it could not match is appended as a new
// (id, value) pair just ahead of the checksum slot. Each append grows both
// header size counters by 8 bytes. The checksum is then recomputed, the
// block is spliced back into a copy of the image, and the build metadata
// iteration counter is bumped. The caller's image is never modified, so a
// failed pass leaves nothing half-edited.
package edit

import (
	"slices"

	"github.com/joshuapare/leosyscfg/internal/checksum"
	"github.com/joshuapare/leosyscfg/internal/format"
	"github.com/joshuapare/leosyscfg/internal/locate"
	"github.com/joshuapare/leosyscfg/internal/logger"
	"github.com/joshuapare/leosyscfg/pkg/types"
)

// Editor applies edit sets to images.
type Editor struct {
	sum checksum.Engine
}

// EditorOptions configures editor behavior.
type EditorOptions struct {
	// Checksum selects the checksum table. The zero value is the firmware's.
	Checksum checksum.Engine
}

// NewEditor creates an Editor using the firmware checksum.
func NewEditor() *Editor {
	return &Editor{sum: checksum.Default}
}

// NewEditorWithOptions creates an Editor with custom options.
func NewEditorWithOptions(opts EditorOptions) *Editor {
	return &Editor{sum: opts.Checksum}
}

// Result describes one completed edit pass.
type Result struct {
	// Image is the edited image. It is a new slice; the input is untouched.
	Image []uint32

	// Block is the edited block; its Start and End are image indices in Image.
	Block *locate.Block

	// Overwritten lists the edits applied to existing entries.
	Overwritten []locate.Overwrite

	// Appended lists the edits added as new entries, in block order.
	Appended types.EditSet

	// EditsApplied counts every applied edit, whether or not it changed a value.
	EditsApplied int

	// Checksum is the new checksum word.
	Checksum uint32

	// Iteration is the new build metadata iteration counter. IterationBumped
	// is false when the image is too short to carry build metadata or when
	// the counter word lies inside the written block.
	Iteration       uint32
	IterationBumped bool
}

// Apply edits the sysconfig block of image.
func (e *Editor) Apply(image []uint32, edits types.EditSet) (*Result, error) {
	blk, err := locate.Locate(image, edits)
	if err != nil {
		return nil, err
	}

	spanStart, spanEnd := blk.SpanStart(), blk.SpanEnd()
	buf := blk.Words
	for _, ed := range blk.Residual {
		pos := len(buf) - format.ReservedTailWords
		buf = slices.Insert(buf, pos, ed.ID, ed.Value)
		buf[format.SizeCounterA] += format.EntryBytes
		buf[format.SizeCounterB] += format.EntryBytes
		logger.Debug("append register", "id", ed.ID, "value", ed.Value, "index", pos)
	}

	crc := e.sum.Sum(buf[format.ChecksumStart : len(buf)-format.ReservedTailWords])
	buf[len(buf)-format.ReservedTailWords] = crc

	out := make([]uint32, 0, len(image)+len(buf)-(spanEnd-spanStart))
	out = append(out, image[:spanStart]...)
	out = append(out, buf...)
	out = append(out, image[spanEnd:]...)

	// The block owns its words, so a block that covers the counter wins.
	var (
		iter   uint32
		bumped bool
	)
	if format.IterationsWord < spanStart || format.IterationsWord >= spanStart+len(buf) {
		iter, bumped = format.BumpIterations(out)
	}

	blk.Words = buf
	blk.End += len(blk.Residual) * format.EntryWords

	res := &Result{
		Image:           out,
		Block:           blk,
		Overwritten:     blk.Applied,
		Appended:        blk.Residual,
		EditsApplied:    len(blk.Applied) + len(blk.Residual),
		Checksum:        crc,
		Iteration:       iter,
		IterationBumped: bumped,
	}
	logger.Debug("sysconfig edit pass complete",
		"overwritten", len(res.Overwritten), "appended", len(res.Appended),
		"checksum", crc, "iteration", iter)
	return res, nil
}

// Apply edits image with the firmware checksum.
func Apply(image []uint32, edits types.EditSet) (*Result, error) {
	return NewEditor().Apply(image, edits)
}
