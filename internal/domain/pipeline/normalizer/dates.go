package normalizer

import (
	"regexp"
	"sort"
	"strings"
	"time"
)

// DisplayDate is the canonical output format used throughout standardized
// records and for ledger comparison.
const DisplayDate = "02/01/2006"

// dateFormats are tried in order; ISO first because a DD/MM/YYYY value can
// never accidentally parse as ISO, while the reverse is ambiguous.
var dateFormats = []string{
	"2006-01-02",
	"02/01/2006",
}

// ParseDate parses an ISO (YYYY-MM-DD) or Brazilian (DD/MM/YYYY) date
// string. The second return is false when neither format matches.
func ParseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatDate renders a date in the canonical DD/MM/YYYY display format.
func FormatDate(t time.Time) string {
	return t.Format(DisplayDate)
}

// NormalizeDate re-renders a date string in the canonical display format,
// accepting either supported input shape. Unparsable input is returned
// unchanged so the caller can still surface the raw token.
func NormalizeDate(raw string) string {
	if t, ok := ParseDate(raw); ok {
		return FormatDate(t)
	}
	return raw
}

var dateToken = regexp.MustCompile(`\d{2}/\d{2}/\d{2,4}`)

// FindDates collects every date-shaped token in a text, deduplicated and
// sorted ascending. Two-digit-year tokens are matched but dropped: the OCR
// output is too noisy to guess a century from them.
func FindDates(text string) []time.Time {
	seen := make(map[string]bool)
	var dates []time.Time
	for _, tok := range dateToken.FindAllString(text, -1) {
		if len(tok) != 10 || seen[tok] {
			continue
		}
		seen[tok] = true
		if t, ok := ParseDate(tok); ok {
			dates = append(dates, t)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}
