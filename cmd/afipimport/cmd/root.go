package cmd

import (
	"github.com/spf13/cobra"

	"afipimport/internal/config"
	"afipimport/internal/logger"
)

var (
	version = "1.0.0"

	// Global flags
	verbose bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "afipimport",
	Short: "Import AFIP received-invoice exports into the ledger",
	Long: `afipimport loads the "Mis Comprobantes Recibidos" CSV export downloaded
from AFIP, creates the missing suppliers, drafts one supplier invoice per row
and validates every invoice whose totals match the export.

Configuration is read from AFIPIMPORT_* environment variables.

Examples:
  # Import a local export
  afipimport import --company <uuid> --file comprobantes.csv

  # Import an export stored in S3 and write an XLSX report
  afipimport import --company <uuid> --file s3://exports/2024-06.csv --report result.xlsx

  # Issue an API token for a company
  afipimport token --company <uuid> --subject accounting`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: initConfig,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func initConfig(_ *cobra.Command, _ []string) error {
	loaded, err := config.Load()
	if err != nil {
		return err
	}
	if verbose {
		loaded.Log.Level = "debug"
	}
	if err := logger.Setup(loaded.Log); err != nil {
		return err
	}
	cfg = loaded
	return nil
}
