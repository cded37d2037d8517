package sysconfig

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/joshuapare/leosyscfg/internal/catalog"
	"github.com/joshuapare/leosyscfg/internal/edit"
	"github.com/joshuapare/leosyscfg/internal/logger"
	"github.com/joshuapare/leosyscfg/internal/options"
	"github.com/joshuapare/leosyscfg/internal/writer"
	"github.com/joshuapare/leosyscfg/pkg/types"
)

// EditResult summarizes an edit operation.
type EditResult struct {
	// OutputPath is where the image was (or, for a dry run, would be) written.
	OutputPath string `json:"output_path"`
	// BackupPath is set when a backup was created.
	BackupPath string `json:"backup_path,omitempty"`
	// InPlace reports that OutputPath is the input image.
	InPlace bool `json:"in_place"`
	// Written is false for dry runs.
	Written bool `json:"written"`

	Edits types.EditSet `json:"edits"`
	Tags  []string      `json:"tags,omitempty"`
	// Unrecognized lists option keys that were ignored.
	Unrecognized []string `json:"unrecognized,omitempty"`

	Overwritten     int    `json:"overwritten"`
	Appended        int    `json:"appended"`
	EditsApplied    int    `json:"edits_applied"`
	Checksum        uint32 `json:"checksum"`
	Iteration       uint32 `json:"iteration"`
	IterationBumped bool   `json:"iteration_bumped"`
}

// Edit applies the preboot option document at cfgPath to the image at
// imagePath.
//
// Example:
//
//	res, err := sysconfig.Edit("leo_flash.mem", "preboot.json", &sysconfig.OperationOptions{DryRun: true})
func Edit(imagePath, cfgPath string, opts *OperationOptions) (*EditResult, error) {
	if opts == nil {
		opts = &OperationOptions{}
	}

	cat, err := LoadCatalog(imagePath, opts.CatalogPath)
	if err != nil {
		return nil, err
	}
	doc, err := options.LoadFile(cfgPath)
	if err != nil {
		return nil, err
	}
	res, err := options.Resolve(doc, cat)
	if err != nil {
		return nil, err
	}
	for _, key := range doc.Unrecognized() {
		logger.Warn("ignoring unknown option", "key", key)
	}

	out, err := apply(imagePath, res.Edits, res.Tags, opts)
	if err != nil {
		return nil, err
	}
	out.Unrecognized = doc.Unrecognized()
	return out, nil
}

// Set applies name=label assignments to the image at imagePath. Labels are
// translated through the register catalog.
//
// Example:
//
//	res, err := sysconfig.Set("leo_flash.mem", []string{"g_ddr_frequency=4800", "g_cxl_mem_size=0x40"}, nil)
func Set(imagePath string, assignments []string, opts *OperationOptions) (*EditResult, error) {
	if opts == nil {
		opts = &OperationOptions{}
	}

	cat, err := LoadCatalog(imagePath, opts.CatalogPath)
	if err != nil {
		return nil, err
	}
	edits, tags, err := ParseAssignments(cat, assignments)
	if err != nil {
		return nil, err
	}
	return apply(imagePath, edits, tags, opts)
}

// ParseAssignments converts name=label strings into edits. The returned tags
// name each assignment for output naming.
func ParseAssignments(cat *catalog.Catalog, assignments []string) (types.EditSet, []string, error) {
	var (
		edits types.EditSet
		tags  []string
	)
	for _, a := range assignments {
		name, label, ok := strings.Cut(a, "=")
		name, label = strings.TrimSpace(name), strings.TrimSpace(label)
		if !ok || name == "" || label == "" {
			return nil, nil, fmt.Errorf("invalid assignment %q (want name=value)", a)
		}
		id, err := cat.ResolveID(name)
		if err != nil {
			return nil, nil, err
		}
		raw, err := cat.EncodeValue(name, label)
		if err != nil {
			return nil, nil, err
		}
		edits = edits.Add(id, raw)
		tags = append(tags, name+"-"+label)
	}
	return edits, tags, nil
}

func apply(imagePath string, edits types.EditSet, tags []string, opts *OperationOptions) (*EditResult, error) {
	if len(edits) == 0 {
		return nil, ErrNothingToDo
	}

	image, err := ReadImage(imagePath)
	if err != nil {
		return nil, err
	}

	r, err := edit.NewEditorWithOptions(edit.EditorOptions{Checksum: opts.Checksum}).Apply(image, edits)
	if err != nil {
		return nil, fmt.Errorf("failed to edit %s: %w", imagePath, err)
	}

	res := &EditResult{
		OutputPath:      outputPath(imagePath, tags, opts),
		Edits:           edits,
		Tags:            tags,
		Overwritten:     len(r.Overwritten),
		Appended:        len(r.Appended),
		EditsApplied:    r.EditsApplied,
		Checksum:        r.Checksum,
		Iteration:       r.Iteration,
		IterationBumped: r.IterationBumped,
	}
	res.InPlace = sameFile(res.OutputPath, imagePath)

	if opts.DryRun {
		return res, nil
	}

	if opts.CreateBackup {
		bak, err := writer.Backup(imagePath)
		if err != nil {
			return nil, fmt.Errorf("failed to create backup: %w", err)
		}
		res.BackupPath = bak
	}

	if err := writer.WriteWords(&writer.FileWriter{Path: res.OutputPath}, r.Image); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", res.OutputPath, err)
	}
	res.Written = true
	logger.Info("image written", "path", res.OutputPath, "edits", res.EditsApplied)
	return res, nil
}

func outputPath(imagePath string, tags []string, opts *OperationOptions) string {
	switch {
	case opts.OutputPath != "":
		return opts.OutputPath
	case opts.AutoName:
		return filepath.Join(filepath.Dir(imagePath), options.OutputName(tags))
	default:
		return imagePath
	}
}

func sameFile(a, b string) bool {
	aa, errA := filepath.Abs(a)
	bb, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return aa == bb
}
