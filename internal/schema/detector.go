// Package schema locates the header of a bank export of unknown layout and
// maps its column names onto the canonical transaction fields.
package schema

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"fjacquet/budget-csv/internal/logging"
	"fjacquet/budget-csv/internal/parsererror"
	"fjacquet/budget-csv/internal/textutils"
)

// DefaultScanLines is how many non-blank lines are searched for the header.
const DefaultScanLines = 20

var (
	defaultDateTokens   = []string{"date"}
	defaultAmountTokens = []string{"montant", "debit", "credit", "valeur", "amount"}
)

// Header is the outcome of header detection: where the header is, how the
// file is delimited, and the data records that follow it.
type Header struct {
	// Line is the 1-based physical line number of the header.
	Line      int
	Delimiter rune
	Columns   []string
	Records   [][]string
	// SkippedLines counts data lines that could not be parsed as CSV.
	SkippedLines int
}

// Detector finds the header line of a decoded export.
type Detector struct {
	scanLines    int
	dateTokens   []string
	amountTokens []string
	logger       logging.Logger
}

// NewDetector returns a Detector scanning scanLines non-blank lines
// (DefaultScanLines when scanLines <= 0).
func NewDetector(scanLines int, logger logging.Logger) *Detector {
	if scanLines <= 0 {
		scanLines = DefaultScanLines
	}
	return &Detector{
		scanLines:    scanLines,
		dateTokens:   defaultDateTokens,
		amountTokens: defaultAmountTokens,
		logger:       logging.OrDefault(logger),
	}
}

// Detect returns the first line among the first ScanLines non-blank lines
// that holds a date token and an amount token, with the records after it.
func (d *Detector) Detect(source, text string) (*Header, error) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	scanned := 0
	for i, line := range lines {
		trimmed := strings.TrimSpace(strings.TrimPrefix(line, "\ufeff"))
		if trimmed == "" {
			continue
		}
		if scanned == d.scanLines {
			break
		}
		scanned++

		if !d.isHeader(trimmed) {
			continue
		}

		header := &Header{Line: i + 1, Delimiter: InferDelimiter(trimmed)}
		header.Columns = splitHeader(trimmed, header.Delimiter)
		header.Records, header.SkippedLines = readRecords(lines[i+1:], header.Delimiter)

		d.logger.Debug("Header detected",
			logging.Field{Key: logging.FieldFile, Value: source},
			logging.Field{Key: logging.FieldHeaderLine, Value: header.Line},
			logging.Field{Key: logging.FieldDelimiter, Value: string(header.Delimiter)},
			logging.Field{Key: logging.FieldCount, Value: len(header.Records)})
		return header, nil
	}

	return nil, &parsererror.SchemaNotFoundError{FilePath: source, ScannedLines: scanned}
}

func (d *Detector) isHeader(line string) bool {
	normalized := textutils.NormalizeToken(line)
	return containsAny(normalized, d.dateTokens) && containsAny(normalized, d.amountTokens)
}

func containsAny(s string, tokens []string) bool {
	for _, token := range tokens {
		if strings.Contains(s, token) {
			return true
		}
	}
	return false
}

// InferDelimiter returns ';' when the line has more semicolons than commas,
// ',' otherwise.
func InferDelimiter(line string) rune {
	if strings.Count(line, ";") > strings.Count(line, ",") {
		return ';'
	}
	return ','
}

func newReader(r io.Reader, delimiter rune) *csv.Reader {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	return reader
}

func splitHeader(line string, delimiter rune) []string {
	record, err := newReader(strings.NewReader(line), delimiter).Read()
	if err != nil {
		record = strings.Split(line, string(delimiter))
	}
	columns := make([]string, len(record))
	for i, col := range record {
		columns[i] = strings.TrimSpace(strings.Trim(strings.TrimSpace(col), `"`))
	}
	return columns
}

func readRecords(lines []string, delimiter rune) ([][]string, int) {
	reader := newReader(strings.NewReader(strings.Join(lines, "\n")), delimiter)

	var records [][]string
	skipped := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				skipped++
				continue
			}
			break
		}
		if isBlankRecord(record) {
			continue
		}
		records = append(records, record)
	}
	return records, skipped
}

func isBlankRecord(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
