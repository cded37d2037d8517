package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshuapare/leosyscfg/internal/checksum"
	"github.com/joshuapare/leosyscfg/internal/logger"
)

var (
	// Global flags
	verbose     bool
	quiet       bool
	jsonOut     bool
	catalogPath string
	crcName     string
	logDir      string

	closeLog = func() error { return nil }
)

var rootCmd = &cobra.Command{
	Use:   "leocfg",
	Short: "Inspect and edit the sysconfig block of Leo flash images",
	Long: `leocfg reads Leo flash images in their text hex-line form, decodes the
sysconfig register block against a register catalog, and writes edited
images with a recomputed block checksum.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging()
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeLog()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output and debug logging")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "",
		"Register catalog (default: leo_system_config_param_id_pub.json next to the image)")
	rootCmd.PersistentFlags().StringVar(&crcName, "crc", "castagnoli", "Block checksum table (castagnoli, iso-hdlc)")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "", "Write debug logs to a dated file in this directory")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		printError("%v\n", err)
		os.Exit(1)
	}
}

func setupLogging() error {
	if !verbose && logDir == "" {
		return nil
	}
	closeFn, err := logger.Init(logger.Options{
		Enabled: true,
		LogDir:  logDir,
		Level:   slog.LevelDebug,
	})
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	closeLog = closeFn
	return nil
}

// checksumEngine maps the --crc flag to a checksum table.
func checksumEngine() (checksum.Engine, error) {
	switch strings.ToLower(crcName) {
	case "", "castagnoli", "crc32c":
		return checksum.Default, nil
	case "iso-hdlc", "ieee":
		return checksum.Engine{Table: checksum.IEEE}, nil
	default:
		return checksum.Engine{}, fmt.Errorf("unknown checksum table %q (want castagnoli or iso-hdlc)", crcName)
	}
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printError prints an error message
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format, args...)
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...interface{}) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
