package aggregator

import (
	"testing"

	"github.com/doppio-labs/fiscaldoc/internal/domain/pipeline/extractor"
)

func TestMergeAmountMaxWins(t *testing.T) {
	merged := Merge([]extractor.CandidateFields{
		{AmountText: "10,00"},
		{AmountText: "25,50"},
		{AmountText: "3,99"},
	}, Override{})

	if merged.AmountText != "25,50" {
		t.Errorf("amount = %q, want maximum across candidates", merged.AmountText)
	}
}

func TestMergeLatestPaymentDateWins(t *testing.T) {
	merged := Merge([]extractor.CandidateFields{
		{PaymentDate: "01/03/2025"},
		{PaymentDate: "15/03/2025"},
		{PaymentDate: "10/03/2025"},
	}, Override{})

	if merged.PaymentDate != "15/03/2025" {
		t.Errorf("payment date = %q, want latest", merged.PaymentDate)
	}
}

func TestMergeFirstNonEmptyWins(t *testing.T) {
	merged := Merge([]extractor.CandidateFields{
		{},
		{SupplierFragment: "illy cafe", DocumentNumber: "100"},
		{SupplierFragment: "outro fornecedor", DocumentNumber: "999"},
	}, Override{})

	if merged.SupplierFragment != "illy cafe" {
		t.Errorf("supplier = %q, want first non-empty", merged.SupplierFragment)
	}
	if merged.DocumentNumber != "100" {
		t.Errorf("document number = %q, want first non-empty", merged.DocumentNumber)
	}
}

func TestMergeUnparsableNeverDisplaces(t *testing.T) {
	merged := Merge([]extractor.CandidateFields{
		{AmountText: "25,50", DueDate: "20/03/2025"},
		{AmountText: "garbage", DueDate: "not-a-date"},
	}, Override{})

	if merged.AmountText != "25,50" {
		t.Errorf("amount = %q", merged.AmountText)
	}
	if merged.DueDate != "20/03/2025" {
		t.Errorf("due date = %q", merged.DueDate)
	}
}

func TestMergeOverrideBeatsExtraction(t *testing.T) {
	merged := Merge([]extractor.CandidateFields{
		{SupplierFragment: "illy", AmountText: "100,00", DueDate: "10/04/2025"},
	}, Override{
		Supplier:   "oggi",
		AmountText: "50,00",
		DueDate:    "2025-04-30",
	})

	if merged.SupplierFragment != "oggi" {
		t.Errorf("supplier = %q, override must win", merged.SupplierFragment)
	}
	// Even a smaller operator amount wins: overrides are authoritative.
	if merged.AmountText != "50,00" {
		t.Errorf("amount = %q, override must win", merged.AmountText)
	}
	if merged.DueDate != "30/04/2025" {
		t.Errorf("due date = %q, want override normalized to display format", merged.DueDate)
	}
}

func TestMergeLowConfidencePropagates(t *testing.T) {
	merged := Merge([]extractor.CandidateFields{
		{AmountText: "10,00"},
		{AmountText: "11,00", LowConfidence: true},
	}, Override{})

	if !merged.LowConfidence {
		t.Error("expected low-confidence flag to survive the merge")
	}
}

func TestMergeEmptyInput(t *testing.T) {
	merged := Merge(nil, Override{})
	if !merged.Empty() {
		t.Errorf("expected empty record, got %+v", merged)
	}
}
