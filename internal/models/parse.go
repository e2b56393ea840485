package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Cell parsers for the load path. The load contract is: a single bad cell
// never fails a load. Bad numbers degrade to 0, bad dates to nil.

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"01-02-06",
	"1/2/06",
	"01/02/2006",
	"2006-01-02T15:04:05Z07:00",
}

// ParseMoney accepts user- and spreadsheet-formatted amounts such as
// "1,250.50", "$1,250.50" or "25.00%". Keep digits, '.', and a leading '-'
// only; anything unparseable, and any negative amount, degrades to 0.
func ParseMoney(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}
	neg := strings.HasPrefix(s, "-")
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	clean := b.String()
	if clean == "" || neg {
		return 0
	}
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0
	}
	return d.InexactFloat64()
}

// ParseQuoteID coerces an ID cell to an integer. Spreadsheets routinely
// render integer IDs as "1001.0"; invalid or missing values become 0.
func ParseQuoteID(raw string) int {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	return int(d.IntPart())
}

// ParseDate tries the layouts the backing workbooks have been seen to use.
// Invalid dates become nil, not an error. The time component is dropped.
func ParseDate(raw string) *time.Time {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &day
		}
	}
	return nil
}

// FormatDate renders a date cell as date-only, empty for nil.
func FormatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
