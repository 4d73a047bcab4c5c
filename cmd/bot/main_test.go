package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/doppio-labs/fiscaldoc/internal/domain/pipeline/service"
)

func TestParseOverride(t *testing.T) {
	o := parseOverride("fornecedor=illy vencimento=10/04/2025 valor=150,00 lixo")

	assert.Equal(t, "illy", o.Supplier)
	assert.Equal(t, "10/04/2025", o.DueDate)
	assert.Equal(t, "150,00", o.AmountText)
	assert.Empty(t, o.PaymentMethod)
}

func TestParseOverrideEmpty(t *testing.T) {
	assert.Equal(t, service.Override{}, parseOverride(""))
}

func TestSummarize(t *testing.T) {
	outcome := service.Outcome{
		Record: service.StandardizedRecord{
			Supplier:   "ILLY",
			AmountText: "150,00",
			DueDate:    "10/04/2025",
		},
		Decision: service.Decision{
			Kind:      service.DecisionCreate,
			LedgerTab: "ABRIL",
		},
		ArchivedFiles: []string{"a.pdf"},
	}

	got := summarize(outcome)
	assert.Contains(t, got, "ILLY")
	assert.Contains(t, got, "ABRIL")

	outcome.Decision.Kind = service.DecisionIncomplete
	outcome.Decision.MissingFields = []string{"vencimento"}
	assert.Contains(t, summarize(outcome), "vencimento")
}
