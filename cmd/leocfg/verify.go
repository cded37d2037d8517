package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/leosyscfg/pkg/sysconfig"
)

func init() {
	rootCmd.AddCommand(newVerifyCmd())
}

func newVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <image>...",
		Short: "Check that images carry a complete sysconfig block with a valid checksum",
		Long: `The verify command locates the sysconfig block of each image, checks that
it holds whole (id, value) entries, and compares the stored checksum with
one computed from the block contents.

Example:
  leocfg verify leo_flash.mem
  leocfg verify a.mem b.mem --crc iso-hdlc`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(args)
		},
	}
	return cmd
}

type verifyResult struct {
	Image string `json:"image"`
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

func runVerify(args []string) error {
	eng, err := checksumEngine()
	if err != nil {
		return err
	}

	var (
		results []verifyResult
		failed  int
	)
	for _, imagePath := range args {
		printVerbose("Verifying %s\n", imagePath)
		res := verifyResult{Image: imagePath, Valid: true}
		if err := sysconfig.Verify(imagePath, &sysconfig.InspectOptions{Checksum: eng}); err != nil {
			res.Valid = false
			res.Error = err.Error()
			failed++
		}
		results = append(results, res)
	}

	if jsonOut {
		if err := printJSON(results); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			if r.Valid {
				printInfo("✓ %s\n", r.Image)
			} else {
				printInfo("✗ %s: %s\n", r.Image, r.Error)
			}
		}
	}

	if failed > 0 {
		if len(args) == 1 {
			return fmt.Errorf("image failed verification")
		}
		return fmt.Errorf("%d of %d images failed verification", failed, len(args))
	}
	return nil
}
