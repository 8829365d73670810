package ledger

import (
	"bytes"
	"io"
	"strconv"
	"strings"

	"fjacquet/budget-csv/internal/common"
	"fjacquet/budget-csv/internal/currencyutils"
	"fjacquet/budget-csv/internal/dateutils"
	"fjacquet/budget-csv/internal/logging"
	"fjacquet/budget-csv/internal/models"
	"fjacquet/budget-csv/internal/parsererror"

	"github.com/google/uuid"
)

// row is the persisted form of a transaction.
type row struct {
	ID        string `csv:"ID"`
	Date      string `csv:"Date"`
	Name      string `csv:"Name"`
	Nom       string `csv:"Nom"`
	Amount    string `csv:"Amount"`
	Categorie string `csv:"Categorie"`
	Compte    string `csv:"Compte"`
	Mois      string `csv:"Mois"`
	Annee     string `csv:"Annee"`
}

// Header is the column order of the ledger file.
var Header = []string{"ID", "Date", "Name", "Nom", "Amount", "Categorie", "Compte", "Mois", "Annee"}

func toRow(tx models.Transaction) row {
	return row{
		ID:        tx.ID,
		Date:      dateutils.ToISODate(tx.Date),
		Name:      tx.RawName,
		Nom:       tx.SimplifiedName,
		Amount:    tx.Amount.String(),
		Categorie: tx.Category,
		Compte:    tx.Account,
		Mois:      tx.Month,
		Annee:     strconv.Itoa(tx.Year),
	}
}

// patchHeader accepts the accented year column written by older files.
func patchHeader(header []string) {
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "Année" {
			h = "Annee"
		}
		header[i] = h
	}
}

// decode parses a ledger file. Rows with an unreadable date are dropped and
// reported; unreadable amounts are kept as zero and reported.
func decode(data []byte, path string, logger logging.Logger) ([]models.Transaction, []*parsererror.ParseError, error) {
	rows, err := common.ReadCSV[row](data, ',', patchHeader)
	if err != nil {
		return nil, nil, err
	}

	var diagnostics []*parsererror.ParseError
	transactions := make([]models.Transaction, 0, len(rows))
	for i, r := range rows {
		line := i + 2

		date, _, err := dateutils.ParseDate(r.Date)
		if err != nil {
			diag := &parsererror.ParseError{Parser: "ledger", Field: "Date", Value: r.Date, Row: line, Err: err}
			diagnostics = append(diagnostics, diag)
			logger.Warn("Dropping ledger row with invalid date",
				logging.Field{Key: logging.FieldFile, Value: path},
				logging.Field{Key: logging.FieldRow, Value: line},
				logging.Field{Key: logging.FieldRawValue, Value: r.Date})
			continue
		}

		amount, err := currencyutils.NormalizeAmount(r.Amount)
		if err != nil {
			diagnostics = append(diagnostics, &parsererror.ParseError{Parser: "ledger", Field: "Amount", Value: r.Amount, Row: line, Err: err})
			logger.Warn("Ledger amount unreadable, using zero",
				logging.Field{Key: logging.FieldFile, Value: path},
				logging.Field{Key: logging.FieldRow, Value: line},
				logging.Field{Key: logging.FieldRawValue, Value: r.Amount})
		}

		rawName := strings.TrimSpace(r.Name)
		if rawName == "" {
			rawName = strings.TrimSpace(r.Nom)
		}
		category := strings.TrimSpace(r.Categorie)
		if category == "" {
			category = models.CategoryUncategorized
		}
		id := strings.TrimSpace(r.ID)
		if id == "" {
			id = uuid.NewString()
		}

		tx := models.Transaction{
			ID:       id,
			Date:     date,
			RawName:  rawName,
			Amount:   amount,
			Account:  strings.TrimSpace(r.Compte),
			Category: category,
		}
		tx.Derive()
		transactions = append(transactions, tx)
	}
	return transactions, diagnostics, nil
}

// Encode writes transactions in ledger format.
func Encode(out io.Writer, transactions []models.Transaction, bom bool) error {
	rows := make([]row, len(transactions))
	for i, tx := range transactions {
		rows[i] = toRow(tx)
	}
	return common.WriteCSV(out, rows, ',', bom)
}

func encode(transactions []models.Transaction, bom bool) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, transactions, bom); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
