package dates

import (
	"fmt"
	"time"
)

// Canonical is the storage format for all date fields.
const Canonical = "2006-01-02"

// flexibleLayouts are tried in order. Day-first layouts come before
// month-first so an ambiguous value like 03/04/2024 resolves to 3 April.
var flexibleLayouts = []string{
	Canonical,
	"2006/01/02",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2-1-2006",
	"02.01.2006",
	"02 Jan 2006",
	"2 January 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"01/02/2006",
	"1/2/2006",
}

// ParseFlexible parses a date string in any of the accepted input formats.
func ParseFlexible(value string) (time.Time, bool) {
	for _, layout := range flexibleLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Normalize converts a date string to canonical YYYY-MM-DD form. Unparsable
// or empty input yields the empty string. Already-canonical input is returned
// unchanged.
func Normalize(value string) string {
	if value == "" {
		return ""
	}
	t, ok := ParseFlexible(value)
	if !ok {
		return ""
	}
	return t.Format(Canonical)
}

// ParseCanonical parses a canonical YYYY-MM-DD string.
func ParseCanonical(value string) (time.Time, error) {
	return time.Parse(Canonical, value)
}

// Ordinal renders a date in human-readable ordinal form, e.g. "15th March 2024".
func Ordinal(t time.Time) string {
	return fmt.Sprintf("%d%s %s %d", t.Day(), ordinalSuffix(t.Day()), t.Month(), t.Year())
}

// OrdinalFromCanonical renders a canonical date string in ordinal form. A
// value that does not parse is returned as-is so the caller never loses it.
func OrdinalFromCanonical(value string) string {
	t, err := ParseCanonical(value)
	if err != nil {
		return value
	}
	return Ordinal(t)
}

func ordinalSuffix(day int) string {
	if day%100 >= 4 && day%100 <= 20 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}
