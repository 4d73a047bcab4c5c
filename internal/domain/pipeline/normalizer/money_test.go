package normalizer

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseBRL(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		ok       bool
	}{
		{"45,23", "45.23", true},
		{"1.234,56", "1234.56", true},
		{"1.000.000,00", "1000000", true},
		{"R$ 150,00", "150", true},
		{"R$1.234,50", "1234.5", true},
		{"  250,00  ", "250", true},
		{"", "", false},
		{"R$ ", "", false},
		{"abc", "", false},
		{"12,3a", "", false},
	}

	for _, tc := range tests {
		got, ok := ParseBRL(tc.input)
		if ok != tc.ok {
			t.Errorf("ParseBRL(%q) ok = %v, want %v", tc.input, ok, tc.ok)
			continue
		}
		if !ok {
			continue
		}
		want, err := decimal.NewFromString(tc.expected)
		if err != nil {
			t.Fatalf("bad expected value %q: %v", tc.expected, err)
		}
		if !got.Equal(want) {
			t.Errorf("ParseBRL(%q) = %s, want %s", tc.input, got, want)
		}
	}
}

func TestFormatBRL(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1234.5", "1.234,50"},
		{"0.99", "0,99"},
		{"1000000", "1.000.000,00"},
		{"150", "150,00"},
		{"-1234.56", "-1.234,56"},
		{"12", "12,00"},
	}

	for _, tc := range tests {
		d, err := decimal.NewFromString(tc.input)
		if err != nil {
			t.Fatalf("bad input %q: %v", tc.input, err)
		}
		if got := FormatBRL(d); got != tc.expected {
			t.Errorf("FormatBRL(%s) = %q, want %q", tc.input, got, tc.expected)
		}
	}
}

// Parse must be the exact inverse of Format for values with two or fewer
// fraction digits.
func TestParseFormatRoundTrip(t *testing.T) {
	values := []string{
		"0", "0.01", "0.99", "1", "10.5", "150", "999.99",
		"1000", "1234.5", "98765.43", "1000000", "-45.23",
	}

	for _, v := range values {
		want, err := decimal.NewFromString(v)
		if err != nil {
			t.Fatal(err)
		}
		got, ok := ParseBRL(FormatBRL(want))
		if !ok {
			t.Errorf("round trip of %s failed to parse %q", want, FormatBRL(want))
			continue
		}
		if !got.Equal(want) {
			t.Errorf("ParseBRL(FormatBRL(%s)) = %s", want, got)
		}
	}
}
