package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshuapare/leosyscfg/pkg/sysconfig"
)

var (
	editCfg      string
	editSet      []string
	editOut      string
	editAutoName bool
	editYes      bool
	editBackup   bool
	editDryRun   bool

	// confirmInput answers the overwrite prompt.
	confirmInput io.Reader = os.Stdin
)

func init() {
	cmd := newEditCmd()
	cmd.Flags().StringVar(&editCfg, "cfg", "", "Preboot option document (JSON or YAML)")
	cmd.Flags().StringArrayVar(&editSet, "set", nil, "Set a register by name, e.g. --set g_ddr_frequency=4800 (repeatable)")
	cmd.Flags().StringVarP(&editOut, "out", "o", "", "Write the edited image to this path")
	cmd.Flags().BoolVar(&editAutoName, "auto-name", false, "Name the output after the applied options")
	cmd.Flags().BoolVarP(&editYes, "yes", "y", false, "Overwrite the input image without asking")
	cmd.Flags().BoolVar(&editBackup, "backup", false, "Copy the input image to <image>.bak first")
	cmd.Flags().BoolVar(&editDryRun, "dry-run", false, "Show what would change without writing")
	cmd.MarkFlagsMutuallyExclusive("cfg", "set")
	cmd.MarkFlagsMutuallyExclusive("out", "auto-name")
	rootCmd.AddCommand(cmd)
}

func newEditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <image>",
		Short: "Apply preboot options or register settings to an image",
		Long: `The edit command updates the sysconfig block of a flash image. Registers
already in the block are overwritten in place; others are appended. The block
checksum is recomputed and the image's sysconfig iteration counter is bumped.

Without --out or --auto-name the input image is replaced, after confirmation.

Example:
  leocfg edit leo_flash.mem --cfg preboot.json
  leocfg edit leo_flash.mem --cfg preboot.json --auto-name
  leocfg edit leo_flash.mem --set g_ddr_frequency=4800 --set g_cxl_mem_size=64 -o new.mem
  leocfg edit leo_flash.mem --cfg preboot.yaml --dry-run --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(args)
		},
	}
	return cmd
}

func runEdit(args []string) error {
	imagePath := args[0]

	if editCfg == "" && len(editSet) == 0 {
		printInfo("No custom config given, exiting.\n")
		return nil
	}

	eng, err := checksumEngine()
	if err != nil {
		return err
	}

	opts := &sysconfig.OperationOptions{
		CatalogPath:  catalogPath,
		OutputPath:   editOut,
		AutoName:     editAutoName,
		CreateBackup: editBackup,
		DryRun:       editDryRun,
		Checksum:     eng,
	}

	if editOut == "" && !editAutoName && !editDryRun && !editYes {
		ok, err := confirm(fmt.Sprintf("Overwrite %s?", imagePath))
		if err != nil {
			return err
		}
		if !ok {
			printInfo("Aborted, %s left unchanged.\n", imagePath)
			return nil
		}
	}

	printVerbose("Reading image: %s\n", imagePath)
	printVerbose("Using catalog: %s\n", sysconfig.CatalogPath(imagePath, catalogPath))

	var res *sysconfig.EditResult
	if editCfg != "" {
		printVerbose("Applying options from %s\n", editCfg)
		res, err = sysconfig.Edit(imagePath, editCfg, opts)
	} else {
		res, err = sysconfig.Set(imagePath, editSet, opts)
	}
	if errors.Is(err, sysconfig.ErrNothingToDo) {
		printInfo("No custom config given, exiting.\n")
		return nil
	}
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(res)
	}

	for _, key := range res.Unrecognized {
		printInfo("Warning: ignoring unknown option %q\n", key)
	}
	for _, e := range res.Edits {
		printVerbose("  %s\n", e)
	}

	if editDryRun {
		printInfo("\nDry run, nothing written.\n")
	} else {
		printInfo("\nUpdated sysconfig in %s\n", res.OutputPath)
	}
	printInfo("  Overwritten: %d\n", res.Overwritten)
	printInfo("  Appended: %d\n", res.Appended)
	printInfo("  Checksum: 0x%08x\n", res.Checksum)
	if res.IterationBumped {
		printInfo("  Sysconfig version: %d\n", res.Iteration)
	}
	if res.BackupPath != "" {
		printInfo("Backup created: %s\n", res.BackupPath)
	}
	if res.Written {
		printInfo("\n✓ Image written successfully\n")
	}
	return nil
}

// confirm asks a yes/no question; anything but y or yes is a no.
func confirm(question string) (bool, error) {
	fmt.Fprintf(os.Stderr, "%s [y/N] ", question)
	line, err := bufio.NewReader(confirmInput).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read answer: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
