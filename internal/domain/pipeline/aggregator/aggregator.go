// Package aggregator merges the candidate fields extracted from the
// documents of one submission into a single record. Merge rules are
// field-specific: once a field is set, a weaker candidate never overwrites
// it, and operator-supplied overrides beat everything.
package aggregator

import (
	"github.com/shopspring/decimal"

	"github.com/doppio-labs/fiscaldoc/internal/domain/pipeline/extractor"
	"github.com/doppio-labs/fiscaldoc/internal/domain/pipeline/normalizer"
)

// Override carries the fields the operator typed at submission time. Any
// non-empty field here wins over every extracted candidate. Dates are
// accepted in either supported input format.
type Override struct {
	Supplier       string
	PaymentMethod  string
	AmountText     string
	IssueDate      string
	DueDate        string
	PaymentDate    string
	DocumentNumber string
}

// Merge folds a sequence of per-document candidates, in submission order,
// into one record and then applies the operator override on top.
//
//   - supplier and document number: first non-empty candidate wins
//   - amount: the maximum parsed amount wins (repeated subtotals on
//     multi-page receipts are smaller than the principal)
//   - due and payment dates: the latest date wins (captures final settlement
//     when intermediate dates appear)
//   - issue date: first non-empty candidate wins
func Merge(candidates []extractor.CandidateFields, override Override) extractor.CandidateFields {
	var merged extractor.CandidateFields

	var bestAmount decimal.Decimal
	for _, c := range candidates {
		if merged.SupplierFragment == "" && c.SupplierFragment != "" {
			merged.SupplierFragment = c.SupplierFragment
		}
		if merged.DocumentNumber == "" && c.DocumentNumber != "" {
			merged.DocumentNumber = c.DocumentNumber
		}
		if merged.IssueDate == "" && c.IssueDate != "" {
			merged.IssueDate = c.IssueDate
		}
		if v, ok := normalizer.ParseBRL(c.AmountText); ok {
			if merged.AmountText == "" || v.GreaterThan(bestAmount) {
				merged.AmountText = c.AmountText
				bestAmount = v
			}
		}
		merged.DueDate = latestDate(merged.DueDate, c.DueDate)
		merged.PaymentDate = latestDate(merged.PaymentDate, c.PaymentDate)
		merged.LowConfidence = merged.LowConfidence || c.LowConfidence
	}

	applyOverride(&merged, override)
	return merged
}

func applyOverride(merged *extractor.CandidateFields, o Override) {
	if o.Supplier != "" {
		merged.SupplierFragment = o.Supplier
	}
	if o.AmountText != "" {
		merged.AmountText = o.AmountText
	}
	if o.IssueDate != "" {
		merged.IssueDate = normalizer.NormalizeDate(o.IssueDate)
	}
	if o.DueDate != "" {
		merged.DueDate = normalizer.NormalizeDate(o.DueDate)
	}
	if o.PaymentDate != "" {
		merged.PaymentDate = normalizer.NormalizeDate(o.PaymentDate)
	}
	if o.DocumentNumber != "" {
		merged.DocumentNumber = o.DocumentNumber
	}
}

// latestDate keeps whichever of two display-format dates is later.
// An unparsable candidate never displaces a parsed one.
func latestDate(current, candidate string) string {
	if candidate == "" {
		return current
	}
	cand, ok := normalizer.ParseDate(candidate)
	if !ok {
		return current
	}
	if current == "" {
		return normalizer.FormatDate(cand)
	}
	cur, ok := normalizer.ParseDate(current)
	if !ok || cand.After(cur) {
		return normalizer.FormatDate(cand)
	}
	return current
}
