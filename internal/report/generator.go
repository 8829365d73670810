// Package report renders import outcomes for the terminal or for tools.
package report

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"fjacquet/budget-csv/internal/batch"
	"fjacquet/budget-csv/internal/logging"
	"fjacquet/budget-csv/internal/models"
)

// Supported formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Generator renders import results in text or JSON.
type Generator struct {
	logger logging.Logger
}

// NewGenerator creates a new Generator.
func NewGenerator(logger logging.Logger) *Generator {
	return &Generator{logger: logging.OrDefault(logger)}
}

// ImportReport renders the result of one import in the given format.
func (g *Generator) ImportReport(result *models.ImportResult, format string) ([]byte, error) {
	switch format {
	case FormatJSON:
		return g.marshal(result)
	case FormatText, "":
		var b strings.Builder
		writeImport(&b, result)
		return []byte(b.String()), nil
	default:
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}
}

// BatchReport renders the aggregated result of a batch import.
func (g *Generator) BatchReport(summary *batch.Summary, format string) ([]byte, error) {
	switch format {
	case FormatJSON:
		return g.marshal(summary)
	case FormatText, "":
		return []byte(batchText(summary)), nil
	default:
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}
}

func (g *Generator) marshal(v interface{}) ([]byte, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		g.logger.WithError(err).Error("Failed to marshal JSON report")
		return nil, fmt.Errorf("failed to marshal JSON report: %w", err)
	}
	return append(out, '\n'), nil
}

func writeImport(b *strings.Builder, r *models.ImportResult) {
	fmt.Fprintf(b, "Imported %s into %s", filepath.Base(r.Source), r.Account)
	if r.AccountCreated {
		b.WriteString(" (new account)")
	}
	b.WriteString("\n")
	fmt.Fprintf(b, "  encoding %s, delimiter %q, header on line %d\n", r.Encoding, r.Delimiter, r.HeaderLine)
	fmt.Fprintf(b, "  %d rows read, %d inserted, %d already in the ledger\n", r.Parsed, r.Inserted, r.Duplicates)
	if !r.FirstDate.IsZero() {
		fmt.Fprintf(b, "  period %s to %s\n", r.FirstDate.Format("2006-01-02"), r.LastDate.Format("2006-01-02"))
	}
	if r.DroppedRows > 0 {
		fmt.Fprintf(b, "  %d rows dropped (unreadable date)\n", r.DroppedRows)
	}
	if r.AmountDefaults > 0 {
		fmt.Fprintf(b, "  %d rows had an unreadable amount, stored as 0\n", r.AmountDefaults)
	}
	if r.SkippedLines > 0 {
		fmt.Fprintf(b, "  %d lines were not valid CSV\n", r.SkippedLines)
	}
	for _, d := range r.Diagnostics {
		fmt.Fprintf(b, "    row %d, %s %q: %s\n", d.Row, d.Field, d.Value, d.Reason)
	}

	if r.Stats != nil && r.Stats.Total > 0 {
		names := r.Stats.Strategies()
		parts := make([]string, 0, len(names))
		for _, name := range names {
			parts = append(parts, fmt.Sprintf("%s %d", name, r.Stats.ByStrategy[name]))
		}
		fmt.Fprintf(b, "  categorized by: %s\n", strings.Join(parts, ", "))
	}
}

func batchText(s *batch.Summary) string {
	var b strings.Builder
	for _, f := range s.Files {
		if f.Err != nil || f.Result == nil {
			fmt.Fprintf(&b, "FAILED %s: %s\n", filepath.Base(f.File), f.Error)
			continue
		}
		writeImport(&b, f.Result)
	}
	fmt.Fprintf(&b, "\n%d files imported, %d failed into %s\n", s.Succeeded, s.Failed, s.Account)
	fmt.Fprintf(&b, "%d rows read, %d inserted, %d already in the ledger\n", s.Parsed, s.Inserted, s.Duplicates)
	if s.DateRange.String() != "" {
		fmt.Fprintf(&b, "period %s to %s\n", s.DateRange.Start.Format("2006-01-02"), s.DateRange.End.Format("2006-01-02"))
	}
	return b.String()
}
