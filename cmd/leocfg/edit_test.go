package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/leosyscfg/internal/format"
	"github.com/joshuapare/leosyscfg/internal/testutil"
	"github.com/joshuapare/leosyscfg/pkg/sysconfig"
	"github.com/joshuapare/leosyscfg/pkg/types"
)

var editEntries = []types.Entry{{ID: 0x1, Value: 0}, {ID: 0x18, Value: 0}}

func writeCfg(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "preboot.json")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	return path
}

func TestEditCommand_ConfirmInPlace(t *testing.T) {
	tests := []struct {
		name        string
		answer      string
		yes         bool
		wantWritten bool
		wantContain []string
	}{
		{"declined", "n\n", false, false, []string{"Aborted"}},
		{"no answer", "", false, false, []string{"Aborted"}},
		{"accepted", "y\n", false, true, []string{"Overwritten: 1", "Appended: 1", "Sysconfig version: 1", "✓ Image written"}},
		{"yes flag", "", true, true, []string{"Updated sysconfig in"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags()
			img := testImage(t, testutil.Builder{Entries: editEntries})
			before := testutil.ReadImage(t, img)

			editCfg = writeCfg(t, `{"speed": 4400, "perf_mode": 1}`)
			editYes = tt.yes
			confirmInput = strings.NewReader(tt.answer)

			output, err := captureOutput(t, func() error { return runEdit([]string{img}) })
			require.NoError(t, err)
			assertContains(t, output, tt.wantContain)

			after := testutil.ReadImage(t, img)
			if tt.wantWritten {
				require.Len(t, after, len(before)+format.EntryWords)
				require.NoError(t, sysconfig.Verify(img, nil))
			} else {
				require.Equal(t, before, after)
			}
		})
	}
}

func TestEditCommand_AutoName(t *testing.T) {
	resetFlags()
	img := testImage(t, testutil.Builder{Entries: editEntries})
	editCfg = writeCfg(t, `{"cxl2x8": true, "speed": 4800, "bis_lat": 200}`)
	editAutoName = true

	output, err := captureOutput(t, func() error { return runEdit([]string{img}) })
	require.NoError(t, err)

	want := filepath.Join(filepath.Dir(img), "leo_flash.4800_x2_bislat-200-ns.mem")
	require.FileExists(t, want)
	assertContains(t, output, []string{want})
	require.NoError(t, sysconfig.Verify(want, nil))
}

func TestEditCommand_SetWithBackup(t *testing.T) {
	resetFlags()
	img := testImage(t, testutil.Builder{Entries: editEntries})
	orig, err := os.ReadFile(img)
	require.NoError(t, err)

	editSet = []string{"g_ddr_frequency=5600", "g_drive_strength=high"}
	editYes = true
	editBackup = true

	output, err := captureOutput(t, func() error { return runEdit([]string{img}) })
	require.NoError(t, err)
	assertContains(t, output, []string{"Backup created: " + img + ".bak"})

	bak, err := os.ReadFile(img + ".bak")
	require.NoError(t, err)
	require.Equal(t, orig, bak)

	output, err = captureOutput(t, func() error { return runDump([]string{img}) })
	require.NoError(t, err)
	assertContains(t, output, []string{"5600    DDR speed (MT/s)", "Drive strength (high)"})
}

func TestEditCommand_DryRunJSON(t *testing.T) {
	resetFlags()
	img := testImage(t, testutil.Builder{Entries: editEntries})
	before := testutil.ReadImage(t, img)

	editCfg = writeCfg(t, `{"ddr_page_close": 1, "turbo": 9}`)
	editDryRun = true
	jsonOut = true

	output, err := captureOutput(t, func() error { return runEdit([]string{img}) })
	require.NoError(t, err)
	assertJSON(t, output)
	assertContains(t, output, []string{`"written": false`, `"turbo"`, `"pgcl"`})
	require.Equal(t, before, testutil.ReadImage(t, img))
}

func TestEditCommand_NothingToDo(t *testing.T) {
	resetFlags()
	img := testImage(t, testutil.Builder{Entries: editEntries})

	output, err := captureOutput(t, func() error { return runEdit([]string{img}) })
	require.NoError(t, err)
	assertContains(t, output, []string{"No custom config given, exiting."})

	editCfg = writeCfg(t, `{"fw": "leo_flash.mem"}`)
	editYes = true
	output, err = captureOutput(t, func() error { return runEdit([]string{img}) })
	require.NoError(t, err)
	assertContains(t, output, []string{"No custom config given, exiting."})
}

func TestEditCommand_Errors(t *testing.T) {
	t.Run("unsupported option value", func(t *testing.T) {
		resetFlags()
		img := testImage(t, testutil.Builder{Entries: editEntries})
		editCfg = writeCfg(t, `{"speed": 1234}`)
		editYes = true

		_, err := captureOutput(t, func() error { return runEdit([]string{img}) })
		require.ErrorIs(t, err, types.ErrUnsupportedOptionValue)
	})

	t.Run("unknown checksum table", func(t *testing.T) {
		resetFlags()
		img := testImage(t, testutil.Builder{Entries: editEntries})
		editSet = []string{"g_perf_mode=1"}
		crcName = "adler"

		_, err := captureOutput(t, func() error { return runEdit([]string{img}) })
		require.Error(t, err)
	})
}
