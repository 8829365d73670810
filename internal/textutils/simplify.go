// Package textutils canonicalizes free-text transaction descriptions.
package textutils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// UnnamedPlaceholder is the simplified name of a description that contains
// nothing but references, dates and boilerplate.
const UnnamedPlaceholder = "AUTRE"

const refPrefixes = `(?:FAC|REF|NUM|ID|PRLV|VIREMENT)`

var (
	// A prefix glued to a numeric code (REF123) or separated from any code (REF: A12, PRLV SEPA).
	referencePattern = regexp.MustCompile(
		`\b` + refPrefixes + `(?:\s*[:.\-]\s*|\s+)?[0-9][0-9A-Z]*` +
			`|\b` + refPrefixes + `(?:\s*[:.\-]\s*|\s+)[A-Z][0-9A-Z]*`)
	embeddedDatePattern = regexp.MustCompile(`\d{2}[./]\d{2}(?:[./]\d{2,4})?`)
	boilerplatePattern  = regexp.MustCompile(`\b(?:ACHAT CB|ACHAT|CB|CARTE|VERSEMENT|CHEQUE|SEPA)\b`)
	punctuationPattern  = regexp.MustCompile(`[*\-/#_|:;]`)
)

// SimplifyName reduces a raw bank description to the stable key used for
// deduplication and learned categories. It is deterministic, idempotent and
// never returns an empty string.
//
// Dates are removed while their separators are intact. Punctuation is
// removed before references, so "REF*123" and "REF 123" reduce alike.
func SimplifyName(raw string) string {
	name := strings.ToUpper(raw)
	name = embeddedDatePattern.ReplaceAllString(name, " ")
	name = punctuationPattern.ReplaceAllString(name, " ")
	name = referencePattern.ReplaceAllString(name, " ")
	name = boilerplatePattern.ReplaceAllString(name, " ")
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return UnnamedPlaceholder
	}
	return name
}

var accentFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// FoldAccents removes combining diacritics: "Débit" becomes "Debit".
func FoldAccents(s string) string {
	folded, _, err := transform.String(accentFolder, s)
	if err != nil {
		return s
	}
	return folded
}

// NormalizeToken lower-cases, trims and folds accents so that header cells
// written by different banks compare equal.
func NormalizeToken(s string) string {
	return strings.ToLower(FoldAccents(strings.TrimSpace(s)))
}
