package edit

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/leosyscfg/internal/checksum"
	"github.com/joshuapare/leosyscfg/internal/format"
	"github.com/joshuapare/leosyscfg/internal/locate"
	"github.com/joshuapare/leosyscfg/internal/testutil"
	"github.com/joshuapare/leosyscfg/pkg/types"
)

var scenarioEntries = []types.Entry{{ID: 0x10, Value: 5}, {ID: 0x20, Value: 7}}

// assertChecksumValid re-locates the block in image and checks the stored
// checksum against the covered range.
func assertChecksumValid(t *testing.T, image []uint32) *locate.Block {
	t.Helper()
	blk, err := locate.Find(image)
	require.NoError(t, err)
	require.Equal(t, checksum.Sum(blk.Words[2:len(blk.Words)-3]), blk.StoredChecksum())
	return blk
}

func TestApply_ScenarioA_Overwrite(t *testing.T) {
	b := testutil.Builder{Entries: scenarioEntries, Suffix: 3}
	image := b.Words()

	res, err := Apply(image, types.EditSet{{ID: 0x20, Value: 9}})
	require.NoError(t, err)

	require.Len(t, res.Image, len(image))
	require.Len(t, res.Overwritten, 1)
	require.Empty(t, res.Appended)
	require.Equal(t, 1, res.EditsApplied)

	blk := assertChecksumValid(t, res.Image)
	entries, err := blk.Entries()
	require.NoError(t, err)
	require.Equal(t, []types.Entry{{ID: 0x10, Value: 5}, {ID: 0x20, Value: 9}}, entries)

	// Size counters untouched by an overwrite.
	origBlk, err := locate.Find(image)
	require.NoError(t, err)
	a0, b0 := origBlk.SizeCounters()
	a1, b1 := blk.SizeCounters()
	require.Equal(t, a0, a1)
	require.Equal(t, b0, b1)
}

func TestApply_ScenarioB_Append(t *testing.T) {
	b := testutil.Builder{Entries: scenarioEntries, Suffix: 3}
	image := b.Words()
	origBlk, err := locate.Find(image)
	require.NoError(t, err)

	res, err := Apply(image, types.EditSet{{ID: 0x30, Value: 42}})
	require.NoError(t, err)

	require.Len(t, res.Image, len(image)+2)
	require.Equal(t, types.EditSet{{ID: 0x30, Value: 42}}, res.Appended)
	require.Equal(t, 1, res.EditsApplied)

	blk := assertChecksumValid(t, res.Image)
	require.Len(t, blk.Words, len(origBlk.Words)+2)

	a0, b0 := origBlk.SizeCounters()
	a1, b1 := blk.SizeCounters()
	require.Equal(t, a0+8, a1)
	require.Equal(t, b0+8, b1)

	// New entry sits immediately before the checksum slot.
	n := len(blk.Words)
	require.Equal(t, []uint32{0x30, 42}, blk.Words[n-5:n-3])

	entries, err := blk.Entries()
	require.NoError(t, err)
	require.Equal(t, []types.Entry{{ID: 0x10, Value: 5}, {ID: 0x20, Value: 7}, {ID: 0x30, Value: 42}}, entries)
}

func TestApply_AppendLaw(t *testing.T) {
	for _, n := range []int{1, 2, 5} {
		image := testutil.Builder{Entries: scenarioEntries, Suffix: 2}.Words()
		origBlk, err := locate.Find(image)
		require.NoError(t, err)

		var edits types.EditSet
		for i := 0; i < n; i++ {
			edits = edits.Add(uint32(0x100+i), uint32(i))
		}

		res, err := Apply(image, edits)
		require.NoError(t, err)

		blk := assertChecksumValid(t, res.Image)
		require.Len(t, blk.Words, len(origBlk.Words)+2*n, "n=%d", n)
		require.Len(t, res.Image, len(image)+2*n, "n=%d", n)

		a0, _ := origBlk.SizeCounters()
		a1, b1 := blk.SizeCounters()
		require.Equal(t, a0+uint32(8*n), a1, "n=%d", n)
		require.Equal(t, a1, b1, "n=%d", n)

		// Appends keep request order.
		entries, err := blk.Entries()
		require.NoError(t, err)
		for i := 0; i < n; i++ {
			require.Equal(t, types.Entry{ID: uint32(0x100 + i), Value: uint32(i)}, entries[2+i])
		}
	}
}

func TestApply_MixedOverwriteAndAppend(t *testing.T) {
	image := testutil.Builder{Entries: scenarioEntries}.Words()
	edits := types.EditSet{{ID: 0x30, Value: 1}, {ID: 0x10, Value: 2}, {ID: 0x40, Value: 3}}

	res, err := Apply(image, edits)
	require.NoError(t, err)
	require.Equal(t, 3, res.EditsApplied)
	require.Len(t, res.Overwritten, 1)
	require.Equal(t, types.EditSet{{ID: 0x30, Value: 1}, {ID: 0x40, Value: 3}}, res.Appended)

	entries, err := assertChecksumValid(t, res.Image).Entries()
	require.NoError(t, err)
	require.Equal(t, []types.Entry{
		{ID: 0x10, Value: 2}, {ID: 0x20, Value: 7}, {ID: 0x30, Value: 1}, {ID: 0x40, Value: 3},
	}, entries)
}

func TestApply_IdempotentOverwrite(t *testing.T) {
	b := testutil.Builder{Entries: scenarioEntries, Iterations: 4}
	image := b.Words()

	res, err := Apply(image, types.EditSet{{ID: 0x20, Value: 7}})
	require.NoError(t, err)

	// The edit is still counted and the iteration still advances.
	require.Equal(t, 1, res.EditsApplied)
	require.True(t, res.IterationBumped)
	require.Equal(t, uint32(5), res.Iteration)

	// Everything else is word-for-word identical.
	want := append([]uint32(nil), image...)
	want[format.IterationsWord]++
	if diff := cmp.Diff(want, res.Image); diff != "" {
		t.Fatalf("image changed beyond the iteration counter (-want +got):\n%s", diff)
	}
}

func TestApply_ReapplyIsNoLongerAnAppend(t *testing.T) {
	edits := types.EditSet{{ID: 0x30, Value: 42}}

	first, err := Apply(testutil.Builder{Entries: scenarioEntries}.Words(), edits)
	require.NoError(t, err)
	second, err := Apply(first.Image, edits)
	require.NoError(t, err)

	require.Len(t, second.Image, len(first.Image))
	require.Len(t, second.Overwritten, 1)
	require.Empty(t, second.Appended)
	require.Equal(t, first.Iteration+1, second.Iteration)
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	image := testutil.Builder{Entries: scenarioEntries}.Words()
	orig := append([]uint32(nil), image...)
	edits := types.EditSet{{ID: 0x10, Value: 1}, {ID: 0x99, Value: 2}}

	_, err := Apply(image, edits)
	require.NoError(t, err)
	require.Equal(t, orig, image)
	require.Equal(t, types.EditSet{{ID: 0x10, Value: 1}, {ID: 0x99, Value: 2}}, edits)
}

func TestApply_PreservesSurroundings(t *testing.T) {
	b := testutil.Builder{Entries: scenarioEntries, Suffix: 6}
	image := b.Words()
	image[len(image)-1] = 0x12345678

	res, err := Apply(image, types.EditSet{{ID: 0x30, Value: 1}, {ID: 0x31, Value: 2}})
	require.NoError(t, err)

	start := b.BlockStart()
	want := append([]uint32(nil), image[:start]...)
	want[format.IterationsWord]++
	require.Equal(t, want, res.Image[:start])
	require.Equal(t, image[len(image)-6:], res.Image[len(res.Image)-6:])
	require.Equal(t, res.Block.SpanEnd(), len(res.Image)-6)
	require.Equal(t, res.Block.Words, res.Image[res.Block.SpanStart():res.Block.SpanEnd()])
}

func TestApply_BareBlockSkipsIteration(t *testing.T) {
	res, err := Apply(testutil.Builder{Bare: true, Entries: scenarioEntries}.Words(), types.EditSet{{ID: 0x10, Value: 0}})
	require.NoError(t, err)
	assert.False(t, res.IterationBumped)
	assertChecksumValid(t, res.Image)
}

func TestApply_BlockCoveringIterationWordWins(t *testing.T) {
	var entries []types.Entry
	for i := uint32(1); i <= 6; i++ {
		entries = append(entries, types.Entry{ID: 0x10 * i, Value: i})
	}
	image := testutil.Builder{Bare: true, Entries: entries}.Words()
	require.Greater(t, len(image), format.IterationsWord)

	res, err := Apply(image, types.EditSet{{ID: 0x20, Value: 9}})
	require.NoError(t, err)
	assert.False(t, res.IterationBumped)

	blk := assertChecksumValid(t, res.Image)
	got, err := blk.Entries()
	require.NoError(t, err)
	entries[1].Value = 9
	require.Equal(t, entries, got)
}

func TestApply_OddBodyRejected(t *testing.T) {
	image := append(testutil.Builder{Bare: true}.Block()[:format.HeaderWords:format.HeaderWords],
		0x10, 5, 0x20, 0)
	image = append(image, format.TrailerPattern[:]...)

	_, err := Apply(image, types.EditSet{{ID: 0x20, Value: 9}})
	require.ErrorIs(t, err, types.ErrTruncatedBlock)
}

func TestApply_RepairsBadChecksum(t *testing.T) {
	image := testutil.Builder{Entries: scenarioEntries, BadChecksum: true}.Words()

	res, err := Apply(image, types.EditSet{{ID: 0x10, Value: 5}})
	require.NoError(t, err)
	assertChecksumValid(t, res.Image)
}

func TestApply_EmptyEditSetStillRefreshes(t *testing.T) {
	image := testutil.Builder{Entries: scenarioEntries, BadChecksum: true}.Words()

	res, err := Apply(image, nil)
	require.NoError(t, err)
	require.Equal(t, 0, res.EditsApplied)
	assertChecksumValid(t, res.Image)
}

func TestApply_CustomChecksumTable(t *testing.T) {
	ed := NewEditorWithOptions(EditorOptions{Checksum: checksum.Engine{Table: checksum.IEEE}})

	res, err := ed.Apply(testutil.Builder{Entries: scenarioEntries}.Words(), types.EditSet{{ID: 0x30, Value: 1}})
	require.NoError(t, err)

	blk := res.Block
	want := checksum.Engine{Table: checksum.IEEE}.Sum(blk.Words[2 : len(blk.Words)-3])
	require.Equal(t, want, res.Checksum)
	require.Equal(t, want, blk.StoredChecksum())
}

func TestApply_ScenarioC_TruncatedBlock(t *testing.T) {
	image := testutil.Builder{Entries: scenarioEntries, NoTrailer: true}.Words()

	_, err := Apply(image, types.EditSet{{ID: 0x20, Value: 9}})
	require.ErrorIs(t, err, types.ErrTruncatedBlock)
}

func TestApply_BlockNotFound(t *testing.T) {
	_, err := Apply(make([]uint32, 64), types.EditSet{{ID: 0x20, Value: 9}})
	require.ErrorIs(t, err, types.ErrBlockNotFound)
}
