package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/joshuapare/leosyscfg/internal/catalog"
	"github.com/joshuapare/leosyscfg/internal/testutil"
)

// testImage writes an image built from b into a temp directory, next to a
// copy of the test catalog, and returns its path.
func testImage(t *testing.T, b testutil.Builder) string {
	t.Helper()
	path := testutil.WriteImage(t, "leo_flash.mem", b.Words())

	data, err := os.ReadFile(testutil.CatalogPath(t))
	if err != nil {
		t.Fatalf("failed to read catalog: %v", err)
	}
	if err := os.WriteFile(filepath.Join(filepath.Dir(path), catalog.DefaultFileName), data, 0o644); err != nil {
		t.Fatalf("failed to copy catalog: %v", err)
	}
	return path
}

// resetFlags restores every command flag to its default.
func resetFlags() {
	verbose, quiet, jsonOut = false, false, false
	catalogPath, crcName, logDir = "", "castagnoli", ""
	dumpShort, dumpBuildInfo = false, false
	editCfg, editSet, editOut = "", nil, ""
	editAutoName, editYes, editBackup, editDryRun = false, false, false, false
	confirmInput = strings.NewReader("")
}

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	origStdout := os.Stdout

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}

	os.Stdout = w

	fnErr := fn()

	w.Close()
	os.Stdout = origStdout

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		t.Fatalf("failed to read output: %v", err)
	}

	return buf.String(), fnErr
}

// assertJSON checks that output is valid JSON
func assertJSON(t *testing.T, output string) {
	t.Helper()
	var result interface{}
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Errorf("invalid JSON output: %v\nOutput: %s", err, output)
	}
}

// assertContains checks that output contains all expected strings
func assertContains(t *testing.T, output string, expected []string) {
	t.Helper()
	for _, want := range expected {
		if !strings.Contains(output, want) {
			t.Errorf("output missing expected string %q\nGot: %s", want, output)
		}
	}
}

// assertNotContains checks that output doesn't contain unwanted strings
func assertNotContains(t *testing.T, output string, unwanted []string) {
	t.Helper()
	for _, dont := range unwanted {
		if strings.Contains(output, dont) {
			t.Errorf("output contains unwanted string %q\nGot: %s", dont, output)
		}
	}
}
