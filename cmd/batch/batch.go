// Package batch handles the import of every export of a directory
package batch

import (
	"fmt"
	"path/filepath"
	"strings"

	"fjacquet/budget-csv/cmd/root"
	"fjacquet/budget-csv/internal/batch"
	"fjacquet/budget-csv/internal/fileutils"
	"fjacquet/budget-csv/internal/logging"
	"fjacquet/budget-csv/internal/report"

	"github.com/spf13/cobra"
)

var (
	account   string
	format    string
	reportDir string
)

// Cmd represents the batch command
var Cmd = &cobra.Command{
	Use:   "batch <directory>",
	Short: "Import every CSV export of a directory into an account",
	Long: `Import every *.csv file of a directory, in name order, into one account.

A file that cannot be imported is reported and the batch moves on to the
next one. The summary lists every file and the overall period covered.

Example:
  budget-csv batch exports/2024 --account "Compte Courant" --report-dir reports/`,
	Args: cobra.ExactArgs(1),
	RunE: batchFunc,
}

func init() {
	Cmd.Flags().StringVarP(&account, "account", "a", "", "Account the transactions belong to")
	Cmd.Flags().StringVarP(&format, "format", "f", report.FormatText, "Report format (text or json)")
	Cmd.Flags().StringVarP(&reportDir, "report-dir", "r", "", "Also write the JSON report into this directory")
	_ = Cmd.MarkFlagRequired("account")
}

func batchFunc(cmd *cobra.Command, args []string) error {
	c, err := root.GetContainer()
	if err != nil {
		return err
	}
	logger := c.GetLogger()
	inputDir := args[0]

	files, err := batch.ScanDirectory(inputDir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		logger.Warn("No CSV files found in input directory", logging.Field{Key: logging.FieldFile, Value: inputDir})
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "No CSV files found in %s\n", inputDir)
		return err
	}

	summary, err := c.NewBatchAggregator().ImportAll(cmd.Context(), files, strings.TrimSpace(account))
	if err != nil {
		return err
	}

	generator := c.GetReportGenerator()
	out, err := generator.BatchReport(summary, format)
	if err != nil {
		return err
	}
	if _, err := cmd.OutOrStdout().Write(out); err != nil {
		return err
	}

	if reportDir != "" {
		if err := writeReport(generator, summary, reportDir); err != nil {
			return err
		}
	}

	if summary.Succeeded == 0 {
		return fmt.Errorf("none of the %d files could be imported", summary.Failed)
	}
	return nil
}

func writeReport(generator *report.Generator, summary *batch.Summary, dir string) error {
	data, err := generator.BatchReport(summary, report.FormatJSON)
	if err != nil {
		return err
	}
	path := filepath.Join(dir, batch.ReportFilename(summary.Account, summary.DateRange, "json"))
	if err := fileutils.WriteFileAtomic(path, data, fileutils.PermissionDataFile); err != nil {
		return fmt.Errorf("failed to write batch report: %w", err)
	}
	root.GetLogger().Info("Batch report written", logging.Field{Key: logging.FieldFile, Value: path})
	return nil
}
