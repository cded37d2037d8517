// Package verify checks the structural invariants of a sysconfig block.
package verify

import (
	"fmt"

	"github.com/joshuapare/leosyscfg/internal/checksum"
	"github.com/joshuapare/leosyscfg/internal/locate"
	"github.com/joshuapare/leosyscfg/pkg/types"
)

// ValidationError reports a failed check. Offset is an image word index, or
// -1 when the failure has no single location.
type ValidationError struct {
	Type    string
	Kind    types.ErrKind
	Message string
	Offset  int
}

func (e *ValidationError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%s at word 0x%X: %s", e.Type, e.Offset, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Is matches *types.Error sentinels of the same kind.
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*types.Error)
	return ok && t != nil && t.Kind == e.Kind
}

// AllInvariants locates the block in image and runs every check on it.
// It returns the located block when all checks pass.
func AllInvariants(image []uint32, eng checksum.Engine) (*locate.Block, error) {
	blk, err := locate.Find(image)
	if err != nil {
		return nil, err
	}
	if err := Entries(blk); err != nil {
		return nil, err
	}
	if err := Checksum(blk, eng); err != nil {
		return nil, err
	}
	return blk, nil
}

// Entries checks that the block body holds whole (id, value) pairs.
func Entries(blk *locate.Block) error {
	if _, err := blk.Entries(); err != nil {
		return &ValidationError{
			Type:    "Entries",
			Kind:    types.ErrKindTruncatedBlock,
			Message: err.Error(),
			Offset:  blk.SpanStart(),
		}
	}
	return nil
}

// Checksum compares the stored checksum word against the block contents.
func Checksum(blk *locate.Block, eng checksum.Engine) error {
	stored, computed := blk.StoredChecksum(), blk.ComputeChecksum(eng)
	if stored != computed {
		return &ValidationError{
			Type:    "Checksum",
			Kind:    types.ErrKindChecksumMismatch,
			Message: fmt.Sprintf("stored 0x%08x, computed 0x%08x", stored, computed),
			Offset:  blk.SpanStart() + blk.ChecksumIndex(),
		}
	}
	return nil
}

// DuplicateIDs lists ids stored more than once, in order of first repeat.
func DuplicateIDs(blk *locate.Block) []uint32 {
	entries, err := blk.Entries()
	if err != nil {
		return nil
	}
	seen := make(map[uint32]int, len(entries))
	var dups []uint32
	for _, e := range entries {
		seen[e.ID]++
		if seen[e.ID] == 2 {
			dups = append(dups, e.ID)
		}
	}
	return dups
}
