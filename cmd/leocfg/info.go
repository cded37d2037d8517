package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/leosyscfg/internal/report"
	"github.com/joshuapare/leosyscfg/pkg/sysconfig"
)

func init() {
	rootCmd.AddCommand(newInfoCmd())
}

func newInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <image>",
		Short: "Show build metadata and sysconfig block layout",
		Long: `The info command prints the firmware build metadata of an image and
describes its sysconfig block: location, entry count, size counters and
checksum state. It does not need the register catalog.

Example:
  leocfg info leo_flash.mem
  leocfg info leo_flash.mem --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(args)
		},
	}
	return cmd
}

func runInfo(args []string) error {
	imagePath := args[0]

	eng, err := checksumEngine()
	if err != nil {
		return err
	}

	printVerbose("Reading image: %s\n", imagePath)

	info, err := sysconfig.Info(imagePath, &sysconfig.InspectOptions{Checksum: eng})
	if err != nil {
		return fmt.Errorf("failed to get image info: %w", err)
	}

	if jsonOut {
		return printJSON(info)
	}

	printInfo("\nImage Information:\n")
	printInfo("  File: %s\n", imagePath)
	printInfo("  Words: %d\n", info.Words)
	if info.Build != nil && !quiet {
		if err := report.WriteBuildInfo(os.Stdout, *info.Build); err != nil {
			return err
		}
	}

	printInfo("Sysconfig Block:\n")
	printInfo("  Words: %d-%d\n", info.BlockStart, info.BlockEnd)
	printInfo("  Entries: %d\n", info.Entries)
	printInfo("  Size counters: %d, %d\n", info.SizeCounterA, info.SizeCounterB)
	printInfo("  Checksum: 0x%08x\n", info.StoredChecksum)
	if info.ChecksumOK {
		printInfo("  ✓ Checksum valid\n")
	} else {
		printInfo("  ✗ Checksum mismatch (computed 0x%08x)\n", info.ComputedChecksum)
	}
	for _, id := range info.DuplicateIDs {
		printInfo("  ! Register 0x%x stored more than once\n", id)
	}
	return nil
}
