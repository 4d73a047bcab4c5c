// Package service orchestrates document processing: OCR, field extraction,
// supplier resolution and reconciliation against the ledger.
package service

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/doppio-labs/fiscaldoc/internal/domain/ledger"
)

// DocumentKind distinguishes fiscal invoices from payment receipts.
type DocumentKind string

const (
	KindInvoice DocumentKind = "NOTA_FISCAL"
	KindReceipt DocumentKind = "COMPROVANTE"
)

// DecisionKind is the outcome of reconciling a record against the ledger.
type DecisionKind string

const (
	DecisionCreate             DecisionKind = "CREATE"
	DecisionUpdate             DecisionKind = "UPDATE"
	DecisionIncomplete         DecisionKind = "INCOMPLETE"
	DecisionUnresolvedSupplier DecisionKind = "UNRESOLVED_SUPPLIER"
)

// StandardizedRecord is a fully normalized view of one document, ready for
// reconciliation. Dates are in DD/MM/YYYY display form; Amount carries the
// exact decimal value and AmountText its BRL rendering.
type StandardizedRecord struct {
	Kind           DocumentKind
	Supplier       string
	SupplierScore  int
	PaymentMethod  string
	Amount         decimal.Decimal
	AmountText     string
	IssueDate      string
	DueDate        string
	PaymentDate    string
	DocumentNumber string
	LowConfidence  bool
	RawText        string
}

// HasAmount reports whether an amount was successfully parsed.
func (r StandardizedRecord) HasAmount() bool {
	return r.AmountText != ""
}

// Decision describes what the pipeline concluded for one record.
type Decision struct {
	Kind          DecisionKind
	LedgerTab     string
	ArchiveFolder string
	RowRef        *ledger.RowRef
	FillCells     map[ledger.Column]string
	MissingFields []string
	Reason        string
}

// SubmissionFile is one uploaded document page or attachment.
type SubmissionFile struct {
	Path         string
	OriginalName string
}

// Override carries fields supplied by the operator alongside the upload.
// Non-empty values win over extracted ones.
type Override struct {
	Supplier       string
	PaymentMethod  string
	AmountText     string
	IssueDate      string
	DueDate        string
	PaymentDate    string
	DocumentNumber string
}

// Submission is one processing request: a batch of files describing a single
// ledger entry, plus operator overrides.
type Submission struct {
	ID       uuid.UUID
	Kind     DocumentKind
	Files    []SubmissionFile
	Override Override
}

// Outcome is the result of processing one submission.
type Outcome struct {
	SubmissionID  uuid.UUID
	Record        StandardizedRecord
	Decision      Decision
	ArchivedFiles []string
	ReviewItemID  *uuid.UUID
}

// requiredFields lists the ledger-critical fields per document kind. Field
// names follow the operator-facing Portuguese vocabulary.
var requiredFields = map[DocumentKind][]string{
	KindInvoice: {"fornecedor", "vencimento", "valor", "numero_nota", "emissao"},
	KindReceipt: {"fornecedor", "valor", "pagamento"},
}
