package currencyutils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAmount(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		hasError bool
	}{
		{"French grouping with euro sign", "1 234,56 €", "1234.56", false},
		{"English grouping", "1,234.56", "1234.56", false},
		{"plain negative integer", "-42", "-42", false},
		{"blank", "  ", "0", false},
		{"empty", "", "0", false},
		{"non-breaking space grouping", "1\u00a0234,56", "1234.56", false},
		{"narrow no-break space grouping", "-2\u202f500,00", "-2500", false},
		{"dotted grouping with decimal comma", "1.234,56", "1234.56", false},
		{"apostrophe grouping", "CHF 1'234.50", "1234.5", false},
		{"decimal comma", "12,5", "12.5", false},
		{"repeated comma grouping", "1,234,567", "1234567", false},
		{"repeated dot grouping", "1.234.567", "1234567", false},
		{"explicit plus", "+15.00", "15", false},
		{"accounting parentheses", "(12,50)", "-12.5", false},
		{"trailing minus", "80,00-", "-80", false},
		{"currency code", "EUR -3,20", "-3.2", false},
		{"text", "n/a", "0", true},
		{"only a sign", "-", "0", true},
		{"only currency", "€", "0", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeAmount(tt.input)
			if tt.hasError {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			want := decimal.RequireFromString(tt.expected)
			assert.True(t, want.Equal(got), "expected %s, got %s", want, got)
		})
	}
}

func TestAmountOrZero(t *testing.T) {
	assert.True(t, AmountOrZero("abc").IsZero())
	assert.True(t, decimal.RequireFromString("9.99").Equal(AmountOrZero("9,99")))
}

func TestSignedFromDebitCredit(t *testing.T) {
	tests := []struct {
		name   string
		credit string
		debit  string
		want   string
	}{
		{"credit only", "100", "0", "100"},
		{"positive debit", "0", "25.5", "-25.5"},
		{"debit already negative", "0", "-25.5", "-25.5"},
		{"both present", "10", "3", "7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SignedFromDebitCredit(decimal.RequireFromString(tt.credit), decimal.RequireFromString(tt.debit))
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestFormatAmount(t *testing.T) {
	amount := decimal.RequireFromString("-1234.5")
	assert.Equal(t, "-1234.50", FormatAmount(amount, ""))
	assert.Equal(t, "-1234.50 €", FormatAmount(amount, "eur"))
	assert.Equal(t, "CHF -1234.50", FormatAmount(amount, "CHF"))
	assert.Equal(t, "-1234.50 SEK", FormatAmount(amount, "SEK"))
}
