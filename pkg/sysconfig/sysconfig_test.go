package sysconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/leosyscfg/internal/catalog"
	"github.com/joshuapare/leosyscfg/internal/checksum"
	"github.com/joshuapare/leosyscfg/internal/format"
	"github.com/joshuapare/leosyscfg/internal/testutil"
	"github.com/joshuapare/leosyscfg/pkg/types"
)

// setupImage writes an image built from b and places the test catalog next
// to it under its default name.
func setupImage(t *testing.T, b testutil.Builder) string {
	t.Helper()
	path := testutil.WriteImage(t, "leo_flash.mem", b.Words())

	data, err := os.ReadFile(testutil.CatalogPath(t))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), catalog.DefaultFileName), data, 0o644))
	return path
}

func writeCfg(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "preboot.json")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	return path
}

var baseEntries = []types.Entry{{ID: 0x1, Value: 0}, {ID: 0x3, Value: 1}}

func TestEdit_InPlace(t *testing.T) {
	img := setupImage(t, testutil.Builder{Entries: baseEntries, Suffix: 8})
	before := testutil.ReadImage(t, img)
	cfg := writeCfg(t, `{"speed": 4800, "cxl_mem_size": 64, "fw": "leo_flash.mem"}`)

	res, err := Edit(img, cfg, nil)
	require.NoError(t, err)

	assert.True(t, res.InPlace)
	assert.True(t, res.Written)
	assert.Equal(t, img, res.OutputPath)
	assert.Equal(t, 1, res.Overwritten)
	assert.Equal(t, 1, res.Appended)
	assert.Equal(t, 2, res.EditsApplied)
	assert.Equal(t, []string{"4800", "cxlmemsz"}, res.Tags)
	assert.True(t, res.IterationBumped)
	assert.Equal(t, uint32(1), res.Iteration)

	after := testutil.ReadImage(t, img)
	require.Len(t, after, len(before)+format.EntryWords)
	require.NoError(t, Verify(img, nil))

	rep, err := Dump(img, nil)
	require.NoError(t, err)
	var names []string
	for _, l := range rep.Lines {
		names = append(names, l.Name)
	}
	require.Equal(t, []string{"g_ddr_refresh_mode", "g_ddr_page_close_mode", "g_ddr_frequency", "g_cxl_mem_size"}, names)
	require.Equal(t, int64(4800), rep.Lines[2].Value)
	require.Equal(t, int64(64), rep.Lines[3].Value)
}

func TestEdit_AutoNameLeavesInput(t *testing.T) {
	img := setupImage(t, testutil.Builder{Entries: baseEntries})
	before := testutil.ReadImage(t, img)
	cfg := writeCfg(t, `{"ddr_interleave_ways": 4, "speed": 3200}`)

	res, err := Edit(img, cfg, &OperationOptions{AutoName: true})
	require.NoError(t, err)

	want := filepath.Join(filepath.Dir(img), "leo_flash.3200_4wayddrintlg.mem")
	require.Equal(t, want, res.OutputPath)
	require.False(t, res.InPlace)
	require.FileExists(t, want)

	if diff := cmp.Diff(before, testutil.ReadImage(t, img)); diff != "" {
		t.Fatalf("input image changed (-before +after):\n%s", diff)
	}
	require.NoError(t, Verify(want, nil))
}

func TestEdit_OutputPathAndBackup(t *testing.T) {
	img := setupImage(t, testutil.Builder{Entries: baseEntries})
	orig, err := os.ReadFile(img)
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "custom.mem")
	res, err := Edit(img, writeCfg(t, `{"perf_mode": 1}`), &OperationOptions{OutputPath: out, CreateBackup: true})
	require.NoError(t, err)

	require.Equal(t, out, res.OutputPath)
	require.Equal(t, img+".bak", res.BackupPath)
	bak, err := os.ReadFile(res.BackupPath)
	require.NoError(t, err)
	require.Equal(t, orig, bak)
	require.NoError(t, Verify(out, nil))
}

func TestEdit_DryRun(t *testing.T) {
	img := setupImage(t, testutil.Builder{Entries: baseEntries})
	orig, err := os.ReadFile(img)
	require.NoError(t, err)

	res, err := Edit(img, writeCfg(t, `{"speed": 5600}`), &OperationOptions{DryRun: true, CreateBackup: true})
	require.NoError(t, err)
	require.False(t, res.Written)
	require.Empty(t, res.BackupPath)
	require.Equal(t, 1, res.Overwritten)

	now, err := os.ReadFile(img)
	require.NoError(t, err)
	require.Equal(t, orig, now)
	require.NoFileExists(t, img+".bak")
}

func TestEdit_NothingToDo(t *testing.T) {
	img := setupImage(t, testutil.Builder{Entries: baseEntries})
	_, err := Edit(img, writeCfg(t, `{"fw": "x.mem", "speed": null}`), nil)
	require.ErrorIs(t, err, ErrNothingToDo)
}

func TestEdit_ReportsUnrecognized(t *testing.T) {
	img := setupImage(t, testutil.Builder{Entries: baseEntries})
	res, err := Edit(img, writeCfg(t, `{"turbo": 1, "aes_mode": 1}`), &OperationOptions{DryRun: true})
	require.NoError(t, err)
	require.Equal(t, []string{"turbo"}, res.Unrecognized)
}

func TestEdit_Errors(t *testing.T) {
	t.Run("missing catalog", func(t *testing.T) {
		img := testutil.WriteImage(t, "leo_flash.mem", testutil.Builder{}.Words())
		_, err := Edit(img, writeCfg(t, `{"speed": 3200}`), nil)
		require.ErrorIs(t, err, types.ErrCatalogLoad)
	})

	t.Run("unsupported value", func(t *testing.T) {
		img := setupImage(t, testutil.Builder{})
		_, err := Edit(img, writeCfg(t, `{"pmic_current_mode": 7}`), nil)
		require.ErrorIs(t, err, types.ErrUnsupportedOptionValue)
	})

	t.Run("no block", func(t *testing.T) {
		img := setupImage(t, testutil.Builder{})
		require.NoError(t, os.WriteFile(img, []byte("@0000 00 00 00 01 \n"), 0o644))
		_, err := Edit(img, writeCfg(t, `{"speed": 3200}`), nil)
		require.ErrorIs(t, err, types.ErrBlockNotFound)
	})

	t.Run("explicit catalog", func(t *testing.T) {
		img := testutil.WriteImage(t, "leo_flash.mem", testutil.Builder{}.Words())
		res, err := Edit(img, writeCfg(t, `{"speed": 3200}`), &OperationOptions{
			CatalogPath: testutil.CatalogPath(t),
			DryRun:      true,
		})
		require.NoError(t, err)
		require.Equal(t, 1, res.Appended)
	})
}

func TestSet(t *testing.T) {
	img := setupImage(t, testutil.Builder{Entries: baseEntries})

	res, err := Set(img, []string{"g_ddr_frequency=4400", "g_drive_strength = high"}, nil)
	require.NoError(t, err)
	require.Equal(t, types.EditSet{{ID: 0x1, Value: 2}, {ID: 0x39, Value: 2}}, res.Edits)
	require.Equal(t, 1, res.Overwritten)
	require.Equal(t, 1, res.Appended)

	rep, err := Dump(img, nil)
	require.NoError(t, err)
	last := rep.Lines[len(rep.Lines)-1]
	require.Equal(t, "g_drive_strength", last.Name)
	require.Equal(t, "high", last.Label)
}

func TestParseAssignments_Errors(t *testing.T) {
	cat, err := catalog.LoadFile(testutil.CatalogPath(t))
	require.NoError(t, err)

	tests := []struct {
		name string
		in   string
		want error
	}{
		{"no equals", "g_ddr_frequency", nil},
		{"empty value", "g_ddr_frequency=", nil},
		{"unknown register", "g_nope=1", types.ErrUnknownRegister},
		{"bad label", "g_ddr_frequency=1234", types.ErrInvalidMappingValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseAssignments(cat, []string{tt.in})
			require.Error(t, err)
			if tt.want != nil {
				require.ErrorIs(t, err, tt.want)
			}
		})
	}

	_, err = Set("unused.mem", nil, &OperationOptions{CatalogPath: testutil.CatalogPath(t)})
	require.ErrorIs(t, err, ErrNothingToDo)
}

func TestDump_ShortWithBuildInfo(t *testing.T) {
	img := setupImage(t, testutil.Builder{Entries: []types.Entry{{ID: 0x18, Value: 1}, {ID: 0x1, Value: 3}}, Iterations: 2})

	rep, err := Dump(img, &DumpOptions{Short: true, BuildInfo: true})
	require.NoError(t, err)
	require.Len(t, rep.Lines, 2)
	require.True(t, rep.Lines[0].Defaulted)
	require.Equal(t, "g_ddr_page_close_mode", rep.Lines[1].Name)
	require.False(t, rep.Lines[1].Defaulted)

	require.NotNil(t, rep.Build)
	require.Equal(t, testutil.TestBuildID, rep.Build.BuildID)
	require.Equal(t, "test", rep.Build.Builder)
	require.Equal(t, "2", rep.Build.SysconfigVersion())
}

func TestInfo(t *testing.T) {
	b := testutil.Builder{Entries: []types.Entry{{ID: 1, Value: 0}, {ID: 1, Value: 3}}}
	img := setupImage(t, b)

	info, err := Info(img, nil)
	require.NoError(t, err)
	assert.Equal(t, len(b.Words()), info.Words)
	assert.Equal(t, b.BlockStart(), info.BlockStart)
	assert.Equal(t, len(b.Words())-1, info.BlockEnd)
	assert.Equal(t, 2, info.Entries)
	assert.True(t, info.ChecksumOK)
	assert.Equal(t, []uint32{1}, info.DuplicateIDs)
	assert.Equal(t, info.SizeCounterA, info.SizeCounterB)
	require.NotNil(t, info.Build)
	assert.Equal(t, "Original", info.Build.SysconfigVersion())
}

func TestInfo_BadChecksum(t *testing.T) {
	img := setupImage(t, testutil.Builder{Entries: baseEntries, BadChecksum: true})

	info, err := Info(img, nil)
	require.NoError(t, err)
	require.False(t, info.ChecksumOK)
	require.Equal(t, info.ComputedChecksum+1, info.StoredChecksum)
}

func TestVerify(t *testing.T) {
	good := setupImage(t, testutil.Builder{Entries: baseEntries})
	require.NoError(t, Verify(good, nil))

	bad := setupImage(t, testutil.Builder{Entries: baseEntries, BadChecksum: true})
	require.ErrorIs(t, Verify(bad, nil), types.ErrChecksumMismatch)

	require.ErrorIs(t, Verify(good, &InspectOptions{Checksum: checksum.Engine{Table: checksum.IEEE}}), types.ErrChecksumMismatch)

	truncated := setupImage(t, testutil.Builder{Entries: baseEntries, NoTrailer: true})
	require.ErrorIs(t, Verify(truncated, nil), types.ErrTruncatedBlock)

	malformed := filepath.Join(t.TempDir(), "bad.mem")
	require.NoError(t, os.WriteFile(malformed, []byte("@0000 01 02 03\n"), 0o644))
	require.ErrorIs(t, Verify(malformed, nil), types.ErrMalformedLine)

	require.Error(t, Verify(filepath.Join(t.TempDir(), "missing.mem"), nil))
}
