// Package repository provides data access for the manual review queue.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Item statuses.
const (
	StatusPending  = "pending"
	StatusResolved = "resolved"
)

// Reasons an item lands in the queue.
const (
	ReasonUnresolvedSupplier = "unresolved_supplier"
	ReasonMissingFields      = "missing_fields"
)

// Item is a submission that could not be reconciled automatically and
// awaits an operator decision.
type Item struct {
	ID             uuid.UUID  `db:"id"`
	SubmissionID   uuid.UUID  `db:"submission_id"`
	DocumentKind   string     `db:"document_kind"`
	Reason         string     `db:"reason"`
	SupplierGuess  *string    `db:"supplier_guess"`
	AmountText     *string    `db:"amount_text"`
	DueDate        *string    `db:"due_date"`
	ExtractedText  string     `db:"extracted_text"`
	MissingFields  []string   `db:"missing_fields"`
	Status         string     `db:"status"`
	ResolvedBy     *string    `db:"resolved_by"`
	ResolutionNote *string    `db:"resolution_note"`
	CreatedAt      time.Time  `db:"created_at"`
	ResolvedAt     *time.Time `db:"resolved_at"`
}

// Resolution is an operator's answer to a pending item.
type Resolution struct {
	ResolvedBy string
	Note       string
}

// ReviewRepository defines data access operations for the review queue
type ReviewRepository interface {
	Enqueue(ctx context.Context, item *Item) error
	GetByID(ctx context.Context, id uuid.UUID) (*Item, error)
	ListPending(ctx context.Context, limit int) ([]*Item, error)
	Resolve(ctx context.Context, id uuid.UUID, res Resolution) error
}
