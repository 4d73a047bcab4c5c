package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/doppio-labs/fiscaldoc/internal/domain/common"
)

// Querier is the subset of pgxpool.Pool the repository needs. It keeps the
// repository testable against a mock connection.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresReviewRepository implements ReviewRepository using PostgreSQL
type PostgresReviewRepository struct {
	db Querier
}

// NewPostgresReviewRepository creates a new PostgreSQL-backed review repository
func NewPostgresReviewRepository(db Querier) *PostgresReviewRepository {
	return &PostgresReviewRepository{db: db}
}

const itemColumns = `id, submission_id, document_kind, reason, supplier_guess, amount_text,
	       due_date, extracted_text, missing_fields, status, resolved_by,
	       resolution_note, created_at, resolved_at`

// Enqueue inserts a pending review item
func (r *PostgresReviewRepository) Enqueue(ctx context.Context, item *Item) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if item.Status == "" {
		item.Status = StatusPending
	}

	query := `
		INSERT INTO review_items (
			id, submission_id, document_kind, reason, supplier_guess, amount_text,
			due_date, extracted_text, missing_fields, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.Exec(ctx, query,
		item.ID, item.SubmissionID, item.DocumentKind, item.Reason,
		item.SupplierGuess, item.AmountText, item.DueDate,
		item.ExtractedText, item.MissingFields, item.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue review item: %w", err)
	}

	return nil
}

// GetByID looks up a single review item
func (r *PostgresReviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*Item, error) {
	query := `SELECT ` + itemColumns + ` FROM review_items WHERE id = $1`

	item, err := scanItem(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get review item: %w", err)
	}

	return item, nil
}

// ListPending returns pending items, oldest first
func (r *PostgresReviewRepository) ListPending(ctx context.Context, limit int) ([]*Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM review_items
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, StatusPending, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending review items: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate review items: %w", err)
	}

	return items, nil
}

// Resolve marks an item resolved. Resolving a missing or already-resolved
// item reports common.ErrNotFound.
func (r *PostgresReviewRepository) Resolve(ctx context.Context, id uuid.UUID, res Resolution) error {
	query := `
		UPDATE review_items SET
			status = $2, resolved_by = $3, resolution_note = $4, resolved_at = NOW()
		WHERE id = $1 AND status = $5
	`

	tag, err := r.db.Exec(ctx, query, id, StatusResolved, res.ResolvedBy, res.Note, StatusPending)
	if err != nil {
		return fmt.Errorf("failed to resolve review item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}

	return nil
}

func scanItem(row pgx.Row) (*Item, error) {
	var item Item
	err := row.Scan(
		&item.ID, &item.SubmissionID, &item.DocumentKind, &item.Reason,
		&item.SupplierGuess, &item.AmountText, &item.DueDate,
		&item.ExtractedText, &item.MissingFields, &item.Status,
		&item.ResolvedBy, &item.ResolutionNote, &item.CreatedAt, &item.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}
