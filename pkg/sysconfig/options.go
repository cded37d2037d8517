package sysconfig

import (
	"errors"

	"github.com/joshuapare/leosyscfg/internal/checksum"
)

// ErrNothingToDo is returned by Edit and Set when no edits were requested.
var ErrNothingToDo = errors.New("no custom config given")

// OperationOptions controls edit behavior.
type OperationOptions struct {
	// CatalogPath overrides the register catalog location.
	// Default: leo_system_config_param_id_pub.json next to the image.
	CatalogPath string

	// OutputPath writes the edited image here instead of over the input.
	OutputPath string

	// AutoName writes the edited image next to the input under a name built
	// from the applied options (leo_flash.<tags>.mem). Ignored when
	// OutputPath is set.
	AutoName bool

	// CreateBackup copies the input image to <imagePath>.bak first.
	CreateBackup bool

	// DryRun computes the edit without writing anything.
	DryRun bool

	// Checksum selects the block checksum table.
	// Default: the firmware's reflected CRC-32C table.
	Checksum checksum.Engine
}

// DumpOptions controls report construction.
type DumpOptions struct {
	// CatalogPath overrides the register catalog location.
	CatalogPath string

	// Short limits the report to the shortlisted registers.
	Short bool

	// BuildInfo adds the firmware build metadata to the report.
	BuildInfo bool
}

// InspectOptions controls Info and Verify.
type InspectOptions struct {
	// Checksum selects the block checksum table.
	Checksum checksum.Engine
}
