package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/leosyscfg/pkg/sysconfig"
)

var (
	dumpShort     bool
	dumpBuildInfo bool
)

func init() {
	cmd := newDumpCmd()
	cmd.Flags().BoolVar(&dumpShort, "short", false, "Only show the shortlisted registers")
	cmd.Flags().BoolVar(&dumpBuildInfo, "build-info", false, "Print firmware build metadata first")
	rootCmd.AddCommand(cmd)
}

func newDumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump <image>",
		Short: "Print the registers stored in the sysconfig block",
		Long: `The dump command decodes every entry of the sysconfig block against the
register catalog. Shortlisted registers are listed first; one that is absent
from the block is shown with its default value and marked with '*'.

Example:
  leocfg dump leo_flash.mem
  leocfg dump leo_flash.mem --short
  leocfg dump leo_flash.mem --build-info --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(args)
		},
	}
	return cmd
}

func runDump(args []string) error {
	imagePath := args[0]

	printVerbose("Reading image: %s\n", imagePath)
	printVerbose("Using catalog: %s\n", sysconfig.CatalogPath(imagePath, catalogPath))

	rep, err := sysconfig.Dump(imagePath, &sysconfig.DumpOptions{
		CatalogPath: catalogPath,
		Short:       dumpShort,
		BuildInfo:   dumpBuildInfo,
	})
	if err != nil {
		return fmt.Errorf("failed to dump %s: %w", imagePath, err)
	}

	if jsonOut {
		return printJSON(rep)
	}
	if quiet {
		return nil
	}
	return rep.WriteText(os.Stdout)
}
