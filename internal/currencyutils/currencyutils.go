// Package currencyutils turns the amount strings found in bank exports into
// signed decimal values.
package currencyutils

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

var (
	currencySymbols = regexp.MustCompile(`[€$£¥₣₤₧₹₺₽₩฿₫₲₴₸₼₪]`)
	currencyCodes   = regexp.MustCompile(`(?i)\b(?:EUR|EUROS?|CHF|USD|GBP)\b`)
)

// NormalizeAmount parses a raw amount such as "1 234,56 €", "1,234.56",
// "-42" or "(12,50)". Blank input is zero without error. Unparseable input
// is zero with an error so the caller can record a diagnostic and go on.
// When both separators appear the last one is the decimal mark, so
// "1.234,56" reads European-style as 1234.56.
func NormalizeAmount(raw string) (decimal.Decimal, error) {
	if strings.TrimSpace(raw) == "" {
		return decimal.Zero, nil
	}

	standardized := StandardizeAmount(raw)
	if standardized == "" || standardized == "-" {
		return decimal.Zero, fmt.Errorf("failed to parse amount '%s': no digits", raw)
	}

	amount, err := decimal.NewFromString(standardized)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse amount '%s': %w", raw, err)
	}
	return amount, nil
}

// AmountOrZero is NormalizeAmount without the error.
func AmountOrZero(raw string) decimal.Decimal {
	amount, _ := NormalizeAmount(raw)
	return amount
}

// StandardizeAmount rewrites an amount string into the form accepted by
// decimal.NewFromString.
//
// When both ',' and '.' appear, the rightmost one is the decimal separator.
// A lone ',' is a decimal comma; repeated ',' or '.' are thousands separators.
func StandardizeAmount(raw string) string {
	s := currencySymbols.ReplaceAllString(raw, "")
	s = currencyCodes.ReplaceAllString(s, "")
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '\'' || r == '’' {
			return -1
		}
		return r
	}, s)

	negative := false
	switch {
	case strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")"):
		negative = true
		s = s[1 : len(s)-1]
	case strings.HasSuffix(s, "-") && len(s) > 1:
		negative = true
		s = s[:len(s)-1]
	}
	s = strings.TrimPrefix(s, "+")
	if strings.HasPrefix(s, "-") {
		negative = !negative
		s = s[1:]
	}

	commas, dots := strings.Count(s, ","), strings.Count(s, ".")
	switch {
	case commas > 0 && dots > 0:
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case commas == 1:
		s = strings.Replace(s, ",", ".", 1)
	case commas > 1:
		s = strings.ReplaceAll(s, ",", "")
	case dots > 1:
		s = strings.ReplaceAll(s, ".", "")
	}

	if negative && s != "" {
		s = "-" + s
	}
	return s
}

// SignedFromDebitCredit combines separate debit and credit columns into one
// signed amount. Debits are outbound whatever sign the bank wrote them with.
func SignedFromDebitCredit(credit, debit decimal.Decimal) decimal.Decimal {
	return credit.Sub(debit.Abs())
}

// FormatAmount formats an amount with two decimals and an optional currency
// symbol for terminal output.
func FormatAmount(amount decimal.Decimal, currency string) string {
	formatted := amount.StringFixed(2)
	switch strings.ToUpper(currency) {
	case "":
		return formatted
	case "EUR":
		return formatted + " €"
	case "USD":
		return "$" + formatted
	case "CHF":
		return "CHF " + formatted
	default:
		return formatted + " " + currency
	}
}
