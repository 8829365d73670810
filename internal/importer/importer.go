// Package importer turns one bank export of unknown layout into a batch of
// categorized transactions: decode, find the header, map the columns, parse
// every row and classify it. Nothing is persisted here.
package importer

import (
	"context"
	"fmt"
	"os"
	"strings"

	"fjacquet/budget-csv/internal/categorizer"
	"fjacquet/budget-csv/internal/currencyutils"
	"fjacquet/budget-csv/internal/dateutils"
	"fjacquet/budget-csv/internal/decoder"
	"fjacquet/budget-csv/internal/logging"
	"fjacquet/budget-csv/internal/models"
	"fjacquet/budget-csv/internal/parsererror"
	"fjacquet/budget-csv/internal/schema"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const parserName = "import"

// Classifier picks the category of one transaction.
type Classifier interface {
	CategorizeWithStats(ctx context.Context, tx categorizer.Transaction, stats *models.CategorizationStats) categorizer.StrategyResult
}

// Options tunes the pipeline.
type Options struct {
	Encodings                 []string
	HeaderScanLines           int
	DescriptionColumnFallback int
	Synonyms                  []models.ColumnSynonyms
}

// Batch is the parsed content of one file.
type Batch struct {
	ID           string
	Source       string
	Account      string
	Encoding     string
	Delimiter    rune
	HeaderLine   int
	Columns      []string
	Transactions []models.Transaction

	// Parsed counts the data records read after the header.
	Parsed int
	// DroppedRows counts records dropped for an unreadable date.
	DroppedRows int
	// AmountDefaults counts records whose amount degraded to zero.
	AmountDefaults int
	// SkippedLines counts lines that were not valid CSV.
	SkippedLines int
	Diagnostics  []*parsererror.ParseError
	Stats        *models.CategorizationStats
}

// Importer runs the pipeline. It is safe for concurrent use as long as the
// classifier is.
type Importer struct {
	decoder             *decoder.Decoder
	detector            *schema.Detector
	mapper              *schema.Mapper
	classifier          Classifier
	descriptionFallback int
	logger              logging.Logger
}

// New creates an Importer. An unknown encoding label is an error.
func New(opts Options, classifier Classifier, logger logging.Logger) (*Importer, error) {
	logger = logging.OrDefault(logger)

	dec, err := decoder.New(opts.Encodings, logger)
	if err != nil {
		return nil, err
	}
	synonyms := opts.Synonyms
	if len(synonyms) == 0 {
		synonyms = schema.DefaultSynonyms
	}

	return &Importer{
		decoder:             dec,
		detector:            schema.NewDetector(opts.HeaderScanLines, logger),
		mapper:              schema.NewMapper(synonyms),
		classifier:          classifier,
		descriptionFallback: opts.DescriptionColumnFallback,
		logger:              logger,
	}, nil
}

// ParseFile reads path and parses it for account.
func (im *Importer) ParseFile(ctx context.Context, path, account string) (*Batch, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading input file: %w", err)
	}
	return im.Parse(ctx, path, raw, account)
}

// Parse runs the pipeline over raw. Structural problems (encoding, header,
// required columns) fail the whole batch; per-row problems are recorded in
// the batch diagnostics.
func (im *Importer) Parse(ctx context.Context, source string, raw []byte, account string) (*Batch, error) {
	account = strings.TrimSpace(account)
	if account == "" {
		return nil, parsererror.ErrEmptyAccountName
	}

	decoded, err := im.decoder.Decode(source, raw)
	if err != nil {
		return nil, err
	}

	header, err := im.detector.Detect(source, decoded.Text)
	if err != nil {
		return nil, err
	}

	mapping := im.mapper.Map(header.Columns)
	if err := requireColumns(source, mapping); err != nil {
		return nil, err
	}

	batch := &Batch{
		ID:           uuid.NewString(),
		Source:       source,
		Account:      account,
		Encoding:     decoded.Encoding,
		Delimiter:    header.Delimiter,
		HeaderLine:   header.Line,
		Columns:      mapping.Columns,
		SkippedLines: header.SkippedLines,
		Stats:        models.NewCategorizationStats(),
	}
	log := im.logger.WithFields(
		logging.Field{Key: logging.FieldFile, Value: source},
		logging.Field{Key: logging.FieldBatchID, Value: batch.ID},
		logging.Field{Key: logging.FieldAccount, Value: account},
	)

	descColumn := mapping.DescriptionColumn(im.descriptionFallback)
	for i, record := range header.Records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		batch.Parsed++
		rowNum := i + 1

		date, _, err := dateutils.ParseDate(mapping.Value(record, models.ColumnDate))
		if err != nil {
			batch.DroppedRows++
			batch.Diagnostics = append(batch.Diagnostics, &parsererror.ParseError{
				Parser: parserName, Field: models.ColumnDate, Value: mapping.Value(record, models.ColumnDate), Row: rowNum, Err: err,
			})
			log.Warn("Dropping row with invalid date",
				logging.Field{Key: logging.FieldRow, Value: rowNum},
				logging.Field{Key: logging.FieldRawValue, Value: mapping.Value(record, models.ColumnDate)})
			continue
		}

		amount, diags := rowAmount(mapping, record, rowNum)
		if len(diags) > 0 {
			batch.AmountDefaults++
			batch.Diagnostics = append(batch.Diagnostics, diags...)
			for _, d := range diags {
				log.Warn("Amount unreadable, using zero",
					logging.Field{Key: logging.FieldRow, Value: rowNum},
					logging.Field{Key: logging.FieldField, Value: d.Field},
					logging.Field{Key: logging.FieldRawValue, Value: d.Value})
			}
		}

		rawName := mapping.Value(record, descColumn)
		category := models.CategoryUncategorized
		if im.classifier != nil {
			result := im.classifier.CategorizeWithStats(ctx, categorizer.NewTransaction(rawName, amount, account, record), batch.Stats)
			category = result.Category.Name
		}

		batch.Transactions = append(batch.Transactions, models.NewTransaction(date, rawName, amount, account, category))
	}

	log.Info("File parsed",
		logging.Field{Key: logging.FieldEncoding, Value: batch.Encoding},
		logging.Field{Key: logging.FieldHeaderLine, Value: batch.HeaderLine},
		logging.Field{Key: logging.FieldDelimiter, Value: string(batch.Delimiter)},
		logging.Field{Key: logging.FieldCount, Value: len(batch.Transactions)},
		logging.Field{Key: "dropped_rows", Value: batch.DroppedRows},
		logging.Field{Key: "amount_defaults", Value: batch.AmountDefaults})
	batch.Stats.LogSummary(im.logger, source)
	return batch, nil
}

func requireColumns(source string, mapping schema.Mapping) error {
	if !mapping.Has(models.ColumnDate) {
		return &parsererror.MissingRequiredColumnError{FilePath: source, Missing: models.ColumnDate, Columns: mapping.Columns}
	}
	if !mapping.HasDebitCredit() && !mapping.HasAmount() {
		return &parsererror.MissingRequiredColumnError{
			FilePath: source,
			Missing:  models.ColumnAmount + " or " + models.ColumnDebit + "/" + models.ColumnCredit,
			Columns:  mapping.Columns,
		}
	}
	return nil
}

// rowAmount returns the signed amount of a record. A debit/credit pair takes
// precedence over a single amount column. Unreadable values count as zero.
func rowAmount(mapping schema.Mapping, record []string, rowNum int) (decimal.Decimal, []*parsererror.ParseError) {
	var diags []*parsererror.ParseError
	parse := func(field string) decimal.Decimal {
		raw := mapping.Value(record, field)
		value, err := currencyutils.NormalizeAmount(raw)
		if err != nil {
			diags = append(diags, &parsererror.ParseError{Parser: parserName, Field: field, Value: raw, Row: rowNum, Err: err})
		}
		return value
	}

	if mapping.HasDebitCredit() {
		credit := parse(models.ColumnCredit)
		debit := parse(models.ColumnDebit)
		return currencyutils.SignedFromDebitCredit(credit, debit), diags
	}
	return parse(models.ColumnAmount), diags
}
