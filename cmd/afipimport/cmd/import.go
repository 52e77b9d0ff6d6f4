package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"afipimport/internal/csvexport"
	"afipimport/internal/email/noop"
	"afipimport/internal/port"
	"afipimport/internal/registry"
	"afipimport/internal/report"
	"afipimport/internal/repository/postgres"
	"afipimport/internal/service"
	s3storage "afipimport/internal/storage/s3"
)

var (
	companyFlag string
	fileFlag    string
	reportFile  string
	jsonOutput  bool
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import an AFIP export file",
	Long: `Import reads every row of the export before writing anything. Rows are
then imported in file order; the first row that fails aborts the run and the
rows already imported stay in the ledger.

--file accepts a local path or an s3://bucket/key location.`,
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVar(&companyFlag, "company", "", "Company ID to import for")
	importCmd.Flags().StringVarP(&fileFlag, "file", "f", "", "Export file path or s3://bucket/key")
	importCmd.Flags().StringVar(&reportFile, "report", "", "Write a report to this path (.csv or .xlsx)")
	importCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the result as JSON")
	_ = importCmd.MarkFlagRequired("company")
	_ = importCmd.MarkFlagRequired("file")
}

func runImport(cmd *cobra.Command, _ []string) error {
	companyID, err := uuid.Parse(companyFlag)
	if err != nil {
		return fmt.Errorf("invalid company id %q: %w", companyFlag, err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return err
	}
	defer db.Close()

	var storage port.ObjectStorage
	if s3storage.IsURI(fileFlag) {
		storage, err = s3storage.NewS3Client(ctx, &cfg.S3)
		if err != nil {
			return err
		}
	}

	importSvc := service.NewImportService(
		postgres.NewLedgerRepo(db),
		postgres.NewPartyRepo(db),
		registry.New(&cfg.Registry),
		postgres.NewImportConfigRepo(db),
		storage,
		noop.NewNoopNotifier(),
		&cfg.S3,
		&cfg.Import,
	)

	result, importErr := importFile(ctx, importSvc, companyID, fileFlag)
	if result != nil {
		if err := printResult(cmd.OutOrStdout(), result); err != nil {
			return err
		}
		if reportFile != "" {
			if err := writeReport(reportFile, result); err != nil {
				return err
			}
		}
	}
	return importErr
}

func importFile(ctx context.Context, svc service.ImportService, companyID uuid.UUID, location string) (*service.ImportResult, error) {
	if s3storage.IsURI(location) {
		bucket, key, err := s3storage.ParseURI(location)
		if err != nil {
			return nil, err
		}
		return svc.ImportObject(ctx, companyID, bucket, key)
	}

	f, err := os.Open(location)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return svc.Import(ctx, companyID, f)
}

func printResult(w io.Writer, result *service.ImportResult) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "LINE\tTYPE\tREFERENCE\tISSUER\tOUTCOME\tDIFFERENCES")
	for _, inv := range result.Invoices {
		diffs := make([]string, 0, len(inv.Mismatches))
		for _, m := range inv.Mismatches {
			diffs = append(diffs, m.String())
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			inv.Line, inv.DocType, inv.Reference, inv.IssuerName, inv.Outcome, strings.Join(diffs, "; "))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%d rows: %d validated, %d to review, %d already imported\n",
		result.Rows, result.Validated, result.Flagged, result.Skipped)
	return err
}

// writeReport writes a CSV report for .csv paths and an XLSX workbook otherwise.
func writeReport(path string, result *service.ImportResult) error {
	write := report.WriteXLSX
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		write = csvexport.WriteResult
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f, result); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
