package schema

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"fjacquet/budget-csv/internal/logging"
	"fjacquet/budget-csv/internal/parsererror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect_SemicolonWithPreamble(t *testing.T) {
	text := strings.Join([]string{
		"Relevé de compte",
		"",
		"Compte courant n° 0001234;;",
		"Date opération;Date valeur;Libellé;Débit;Crédit",
		"02/01/2024;03/01/2024;CB CARREFOUR;12,50;",
		"",
		"05/01/2024;05/01/2024;VIR SALAIRE;;2 100,00",
	}, "\n")

	header, err := NewDetector(20, logging.NewMockLogger()).Detect("bank.csv", text)
	require.NoError(t, err)

	assert.Equal(t, 4, header.Line)
	assert.Equal(t, ';', header.Delimiter)
	assert.Equal(t, []string{"Date opération", "Date valeur", "Libellé", "Débit", "Crédit"}, header.Columns)
	require.Len(t, header.Records, 2)
	assert.Equal(t, "CB CARREFOUR", header.Records[0][2])
	assert.Equal(t, "2 100,00", header.Records[1][4])
}

func TestDetect_CommaWithQuotedFields(t *testing.T) {
	text := "\"Date\",\"Description\",\"Amount\"\r\n\"2024-01-02\",\"AMAZON, EU\",\"-1,234.56\"\r\n"

	header, err := NewDetector(0, nil).Detect("bank.csv", text)
	require.NoError(t, err)

	assert.Equal(t, 1, header.Line)
	assert.Equal(t, ',', header.Delimiter)
	assert.Equal(t, []string{"Date", "Description", "Amount"}, header.Columns)
	require.Len(t, header.Records, 1)
	assert.Equal(t, []string{"2024-01-02", "AMAZON, EU", "-1,234.56"}, header.Records[0])
}

func TestDetect_MatchesAccentedAmountToken(t *testing.T) {
	header, err := NewDetector(20, nil).Detect("bank.csv", "DATE;LIBELLE;DÉBIT\n01/01/2024;X;1")
	require.NoError(t, err)
	assert.Equal(t, 1, header.Line)
}

func TestDetect_HeaderBeyondWindow(t *testing.T) {
	tests := []struct {
		name       string
		preamble   int
		wantHeader bool
	}{
		{"header on line 20", 19, true},
		{"header on line 21", 20, false},
		{"header on line 30", 29, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var lines []string
			for i := 0; i < tt.preamble; i++ {
				lines = append(lines, fmt.Sprintf("info %d", i))
				lines = append(lines, "")
			}
			lines = append(lines, "Date;Montant", "01/01/2024;3")

			header, err := NewDetector(20, nil).Detect("bank.csv", strings.Join(lines, "\n"))
			if tt.wantHeader {
				require.NoError(t, err)
				assert.Equal(t, tt.preamble*2+1, header.Line)
				return
			}

			var schemaErr *parsererror.SchemaNotFoundError
			require.True(t, errors.As(err, &schemaErr))
			assert.Equal(t, 20, schemaErr.ScannedLines)
		})
	}
}

func TestDetect_NoAmountToken(t *testing.T) {
	_, err := NewDetector(20, nil).Detect("bank.csv", "Date;Libellé\n01/01/2024;X")

	var schemaErr *parsererror.SchemaNotFoundError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, 2, schemaErr.ScannedLines)
}

func TestInferDelimiter(t *testing.T) {
	assert.Equal(t, ';', InferDelimiter("Date;Libellé;Montant"))
	assert.Equal(t, ',', InferDelimiter("Date,Libellé,Montant"))
	assert.Equal(t, ',', InferDelimiter("Date Montant"))
	assert.Equal(t, ';', InferDelimiter("Date;Montant;Solde (1,2)"))
}
