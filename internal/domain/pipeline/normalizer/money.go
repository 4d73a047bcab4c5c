// Package normalizer handles Brazilian money and date parsing.
// Converts the display formats found on fiscal documents into the pipeline's
// canonical representation and back.
package normalizer

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseBRL converts a Brazilian-formatted amount string ("R$ 1.234,56") into
// an exact decimal. The second return is false on empty input or a
// non-numeric remainder; absence is a normal condition here, not an error.
func ParseBRL(raw string) (decimal.Decimal, bool) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(raw, "R$", ""))
	if cleaned == "" {
		return decimal.Decimal{}, false
	}

	// 1.234,56 -> 1234.56
	cleaned = strings.ReplaceAll(cleaned, ".", "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

// FormatBRL renders a decimal with two fraction digits, "." thousands
// separators and a "," decimal separator: 1234.5 -> "1.234,50".
// For any value with at most two fraction digits, ParseBRL(FormatBRL(x)) == x.
func FormatBRL(d decimal.Decimal) string {
	fixed := d.StringFixed(2) // e.g. "-1234.50"

	negative := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	intPart, fracPart, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	b.WriteByte(',')
	b.WriteString(fracPart)
	return b.String()
}
