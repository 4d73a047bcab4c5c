// Package ledger defines the spreadsheet-like ledger collaborator the
// reconciliation engine reads and writes through. The engine never touches
// worksheet mechanics; it only speaks rows, match keys and cell updates.
package ledger

import (
	"context"

	"github.com/shopspring/decimal"
)

// Column names a ledger column. Values are the literal header captions the
// operators maintain on the sheet.
type Column string

const (
	ColSupplier       Column = "Conta"
	ColPaymentMethod  Column = "Meio Pagto"
	ColDocumentNumber Column = "Nro NF"
	ColAmount         Column = "Valor"
	ColIssueDate      Column = "Data de Emissão da nota"
	ColDueDate        Column = "Data de vencimento"
	ColPaymentDate    Column = "Data do pagamento"
)

// Columns is the ledger header in sheet order.
var Columns = []Column{
	ColSupplier, ColPaymentMethod, ColDocumentNumber, ColAmount,
	ColIssueDate, ColDueDate, ColPaymentDate,
}

// FillWhitelist lists the columns an update may fill in. Only blank cells
// among these are ever written; populated cells are never overwritten.
var FillWhitelist = []Column{
	ColPaymentMethod, ColDocumentNumber, ColIssueDate, ColPaymentDate,
}

// Row is one ledger entry as persisted, all values in display format.
type Row struct {
	Supplier       string
	PaymentMethod  string
	DocumentNumber string
	Amount         string
	IssueDate      string
	DueDate        string
	PaymentDate    string
}

// Cell returns the row's value for a column.
func (r Row) Cell(col Column) string {
	switch col {
	case ColSupplier:
		return r.Supplier
	case ColPaymentMethod:
		return r.PaymentMethod
	case ColDocumentNumber:
		return r.DocumentNumber
	case ColAmount:
		return r.Amount
	case ColIssueDate:
		return r.IssueDate
	case ColDueDate:
		return r.DueDate
	case ColPaymentDate:
		return r.PaymentDate
	}
	return ""
}

// RowRef points at a persisted row: worksheet tab plus 1-based sheet row.
type RowRef struct {
	Tab   string
	Index int
}

// MatchKey is the duplicate-detection tuple. Two records describe the same
// economic event iff supplier and due date match exactly and the amounts are
// decimal-equal.
type MatchKey struct {
	Supplier string
	Amount   decimal.Decimal
	DueDate  string
}

// Store is the narrow interface the engine uses. Implementations report
// infrastructure failures as errors; a missing row is (nil, nil, nil), not
// an error.
type Store interface {
	FindRow(ctx context.Context, tab string, key MatchKey) (*Row, *RowRef, error)
	AppendRow(ctx context.Context, tab string, row Row) error
	UpdateCells(ctx context.Context, ref RowRef, cells map[Column]string) error
}
