// Package dateutils parses the day-first dates found in bank exports and
// derives the calendar fields stored alongside each ledger row.
package dateutils

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	DateLayoutISO      = "2006-01-02"
	DateLayoutFrench   = "02/01/2006"
	DateLayoutShort    = "02/01/06"
	DateLayoutDotted   = "02.01.2006"
	DateLayoutDashed   = "02-01-2006"
	DateLayoutFull     = "2006-01-02 15:04:05"
	DateLayoutISOStamp = "2006-01-02T15:04:05"
)

// CommonFormats is the ordered list of layouts tried by ParseDate. Slashed
// dates are always read day first.
var CommonFormats = []string{
	DateLayoutISO,
	DateLayoutFrench,
	DateLayoutShort,
	DateLayoutDotted,
	"02.01.06",
	DateLayoutDashed,
	"02-01-06",
	"2/1/2006",
	"2.1.2006",
	"2006/01/02",
	DateLayoutFull,
	DateLayoutISOStamp,
	time.RFC3339,
	"02/01/2006 15:04",
	"02/01/2006 15:04:05",
	"2 Jan 2006",
	"2-Jan-2006",
}

var frenchMonths = [...]string{
	"Janvier", "Février", "Mars", "Avril", "Mai", "Juin",
	"Juillet", "Août", "Septembre", "Octobre", "Novembre", "Décembre",
}

var spaces = regexp.MustCompile(`\s+`)

// ParseDate parses dateStr with the first matching layout of CommonFormats
// and returns the date truncated to midnight UTC together with the layout used.
func ParseDate(dateStr string) (time.Time, string, error) {
	cleaned := CleanDateString(dateStr)
	if cleaned == "" {
		return time.Time{}, "", fmt.Errorf("unable to parse date: empty value")
	}

	for _, layout := range CommonFormats {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return Truncate(t), layout, nil
		}
	}

	return time.Time{}, "", fmt.Errorf("unable to parse date: %q", dateStr)
}

// CleanDateString trims the value, collapses inner whitespace and strips the
// quotes some exports wrap around every cell.
func CleanDateString(dateStr string) string {
	dateStr = strings.Trim(strings.TrimSpace(dateStr), `"'`)
	return spaces.ReplaceAllString(strings.TrimSpace(dateStr), " ")
}

// Truncate drops the time of day and the location, keeping the calendar date.
func Truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ToISODate formats a date as YYYY-MM-DD.
func ToISODate(date time.Time) string {
	return date.Format(DateLayoutISO)
}

// MonthName returns the French month name stored in the ledger Mois column.
func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return frenchMonths[m-1]
}

// ParseMonth resolves a month given as a number ("3", "03") or a French name
// in any case ("mars", "FÉVRIER").
func ParseMonth(value string) (time.Month, error) {
	value = strings.TrimSpace(value)
	var n int
	if _, err := fmt.Sscanf(value, "%d", &n); err == nil && fmt.Sprint(n) == strings.TrimLeft(value, "0") {
		if n >= 1 && n <= 12 {
			return time.Month(n), nil
		}
		return 0, fmt.Errorf("month out of range: %d", n)
	}
	for i, name := range frenchMonths {
		if strings.EqualFold(name, value) {
			return time.Month(i + 1), nil
		}
	}
	return 0, fmt.Errorf("unknown month %q", value)
}

// StartOfMonth returns the first day of the month for a given date
func StartOfMonth(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, date.Location())
}
