// Package batch imports every bank export of a directory into one account and
// aggregates the per-file outcomes.
package batch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"fjacquet/budget-csv/internal/fileutils"
	"fjacquet/budget-csv/internal/logging"
	"fjacquet/budget-csv/internal/models"
)

// DateRange represents a date range with start and end dates
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// String returns the date range in the format "YYYY-MM-DD_YYYY-MM-DD"
func (dr DateRange) String() string {
	if dr.Start.IsZero() || dr.End.IsZero() {
		return ""
	}
	return fmt.Sprintf("%s_%s",
		dr.Start.Format("2006-01-02"),
		dr.End.Format("2006-01-02"))
}

// Merge combines this date range with another, returning the overall range
func (dr DateRange) Merge(other DateRange) DateRange {
	start := dr.Start
	end := dr.End

	if dr.Start.IsZero() {
		start = other.Start
	} else if !other.Start.IsZero() && other.Start.Before(start) {
		start = other.Start
	}

	if dr.End.IsZero() {
		end = other.End
	} else if !other.End.IsZero() && other.End.After(end) {
		end = other.End
	}

	return DateRange{Start: start, End: end}
}

// FileImporter imports one file into an account.
type FileImporter interface {
	ImportFile(ctx context.Context, path, account string) (*models.ImportResult, error)
}

// FileOutcome is the result of one file of a batch. Exactly one of Result
// and Err is set.
type FileOutcome struct {
	File   string               `json:"file"`
	Result *models.ImportResult `json:"result,omitempty"`
	Err    error                `json:"-"`
	Error  string               `json:"error,omitempty"`
}

// Summary aggregates the outcomes of a batch.
type Summary struct {
	Account        string        `json:"account"`
	Files          []FileOutcome `json:"files"`
	Succeeded      int           `json:"succeeded"`
	Failed         int           `json:"failed"`
	Parsed         int           `json:"parsed"`
	Inserted       int           `json:"inserted"`
	Duplicates     int           `json:"duplicates"`
	DroppedRows    int           `json:"dropped_rows"`
	AmountDefaults int           `json:"amount_defaults"`
	DateRange      DateRange     `json:"date_range"`
}

// Add records the outcome of one file.
func (s *Summary) Add(file string, result *models.ImportResult, err error) {
	outcome := FileOutcome{File: file, Result: result, Err: err}
	if err != nil {
		outcome.Result = nil
		outcome.Error = err.Error()
		s.Failed++
		s.Files = append(s.Files, outcome)
		return
	}

	s.Succeeded++
	s.Parsed += result.Parsed
	s.Inserted += result.Inserted
	s.Duplicates += result.Duplicates
	s.DroppedRows += result.DroppedRows
	s.AmountDefaults += result.AmountDefaults
	s.DateRange = s.DateRange.Merge(DateRange{Start: result.FirstDate, End: result.LastDate})
	s.Files = append(s.Files, outcome)
}

// ScanDirectory returns the CSV files of dir, sorted by name. Sub-directories
// and hidden files are ignored.
func ScanDirectory(dir string) ([]string, error) {
	return fileutils.ListFilesWithExtension(dir, ".csv")
}

// Aggregator imports a list of files into one account.
type Aggregator struct {
	importer FileImporter
	logger   logging.Logger
}

// NewAggregator creates an Aggregator.
func NewAggregator(importer FileImporter, logger logging.Logger) *Aggregator {
	return &Aggregator{
		importer: importer,
		logger:   logging.OrDefault(logger),
	}
}

// ImportAll imports files in order into account. A file that fails is
// recorded and the batch moves on; only cancellation of ctx stops it.
func (a *Aggregator) ImportAll(ctx context.Context, files []string, account string) (*Summary, error) {
	summary := &Summary{Account: strings.TrimSpace(account)}

	a.logger.Info("Starting batch import",
		logging.Field{Key: logging.FieldAccount, Value: summary.Account},
		logging.Field{Key: "file_count", Value: len(files)})

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		result, err := a.importer.ImportFile(ctx, file, summary.Account)
		if err != nil {
			a.logger.WithError(err).Error("Failed to import file",
				logging.Field{Key: logging.FieldFile, Value: file})
		} else {
			a.logger.Debug("Imported file",
				logging.Field{Key: logging.FieldFile, Value: filepath.Base(file)},
				logging.Field{Key: logging.FieldCount, Value: result.Inserted})
		}
		summary.Add(file, result, err)
	}

	a.logger.Info("Batch import completed",
		logging.Field{Key: logging.FieldAccount, Value: summary.Account},
		logging.Field{Key: "succeeded", Value: summary.Succeeded},
		logging.Field{Key: "failed", Value: summary.Failed},
		logging.Field{Key: "inserted", Value: summary.Inserted},
		logging.Field{Key: "date_range", Value: summary.DateRange.String()})
	return summary, nil
}

// ReportFilename creates a filesystem-safe name for the report of a batch.
// Format: {account}_{start_date}_{end_date}.{ext}
func ReportFilename(account string, dateRange DateRange, ext string) string {
	name := sanitizeName(account)
	if r := dateRange.String(); r != "" {
		name += "_" + r
	}
	return name + "." + strings.TrimPrefix(ext, ".")
}

// sanitizeName keeps letters, digits, '_', '-' and '.', replaces everything
// else with '_', and removes path traversal sequences.
func sanitizeName(value string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(value) {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') ||
			r == '_' || r == '-' || r == '.' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}

	sanitized := b.String()
	for strings.Contains(sanitized, "..") {
		sanitized = strings.ReplaceAll(sanitized, "..", "_")
	}
	for strings.Contains(sanitized, "__") {
		sanitized = strings.ReplaceAll(sanitized, "__", "_")
	}
	sanitized = strings.Trim(sanitized, "_.")
	if sanitized == "" {
		return "UNKNOWN"
	}
	return sanitized
}
