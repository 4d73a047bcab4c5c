// Package excel implements the ledger store on top of an xlsx workbook,
// one worksheet per period tab, mirroring the spreadsheet the operators
// keep by hand.
package excel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/xuri/excelize/v2"

	"github.com/doppio-labs/fiscaldoc/internal/domain/common"
	"github.com/doppio-labs/fiscaldoc/internal/domain/ledger"
	"github.com/doppio-labs/fiscaldoc/internal/domain/pipeline/normalizer"
)

// Store reads and writes ledger rows in a single workbook file. Access is
// serialized: concurrent submissions may interleave, but each call sees a
// consistent workbook.
type Store struct {
	path   string
	logger *slog.Logger
	mu     sync.Mutex
}

// NewStore creates a workbook-backed ledger store. The file is created on
// first append if it does not exist yet.
func NewStore(path string, logger *slog.Logger) *Store {
	return &Store{path: path, logger: logger}
}

// FindRow scans the tab for a row matching the key. Supplier and due date
// compare as exact strings, the amount as an exact decimal, so "1.234,50"
// and "1234,50" describe the same money.
func (s *Store) FindRow(ctx context.Context, tab string, key ledger.MatchKey) (*ledger.Row, *ledger.RowRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, nil // no workbook yet means no rows
		}
		return nil, nil, common.NewCollaboratorError("ledger", err)
	}
	defer f.Close()

	rows, err := f.GetRows(tab)
	if err != nil || len(rows) < 2 {
		// A missing or empty tab holds no rows to match against.
		return nil, nil, nil
	}

	header := columnIndex(rows[0])
	supplierIdx, okS := header[ledger.ColSupplier]
	amountIdx, okA := header[ledger.ColAmount]
	dueIdx, okD := header[ledger.ColDueDate]
	if !okS || !okA || !okD {
		return nil, nil, common.NewCollaboratorError("ledger",
			fmt.Errorf("tab %q is missing key columns", tab))
	}

	for i, cells := range rows[1:] {
		if supplierIdx >= len(cells) || dueIdx >= len(cells) || amountIdx >= len(cells) {
			continue
		}
		if cells[supplierIdx] != key.Supplier || cells[dueIdx] != key.DueDate {
			continue
		}
		amount, ok := normalizer.ParseBRL(cells[amountIdx])
		if !ok || !amount.Equal(key.Amount) {
			continue
		}
		row := rowFromCells(header, cells)
		ref := &ledger.RowRef{Tab: tab, Index: i + 2} // 1-based, after header
		return &row, ref, nil
	}
	return nil, nil, nil
}

// AppendRow adds a new row at the bottom of the tab, creating workbook,
// worksheet and header as needed.
func (s *Store) AppendRow(ctx context.Context, tab string, row ledger.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	f, created, err := s.openOrCreate()
	if err != nil {
		return err
	}
	defer f.Close()

	if err := s.ensureTab(f, tab); err != nil {
		return err
	}

	rows, err := f.GetRows(tab)
	if err != nil {
		return common.NewCollaboratorError("ledger", err)
	}
	next := len(rows) + 1

	values := make([]interface{}, len(ledger.Columns))
	for i, col := range ledger.Columns {
		values[i] = row.Cell(col)
	}
	cell, _ := excelize.CoordinatesToCellName(1, next)
	if err := f.SetSheetRow(tab, cell, &values); err != nil {
		return common.NewCollaboratorError("ledger", err)
	}

	if err := s.save(f, created); err != nil {
		return err
	}
	s.logger.Info("ledger row appended", "tab", tab, "row", next, "supplier", row.Supplier)
	return nil
}

// UpdateCells writes the given column values into an existing row. Callers
// are expected to pass only cells they verified to be blank; the store does
// not re-check.
func (s *Store) UpdateCells(ctx context.Context, ref ledger.RowRef, cells map[ledger.Column]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if len(cells) == 0 {
		return nil
	}

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return common.NewCollaboratorError("ledger", err)
	}
	defer f.Close()

	rows, err := f.GetRows(ref.Tab)
	if err != nil || len(rows) == 0 {
		return common.NewCollaboratorError("ledger",
			fmt.Errorf("tab %q not readable for update", ref.Tab))
	}
	header := columnIndex(rows[0])

	for col, value := range cells {
		idx, ok := header[col]
		if !ok {
			continue
		}
		cell, _ := excelize.CoordinatesToCellName(idx+1, ref.Index)
		if err := f.SetCellStr(ref.Tab, cell, value); err != nil {
			return common.NewCollaboratorError("ledger", err)
		}
	}

	if err := s.save(f, false); err != nil {
		return err
	}
	s.logger.Info("ledger row updated", "tab", ref.Tab, "row", ref.Index, "cells", len(cells))
	return nil
}

func (s *Store) openOrCreate() (*excelize.File, bool, error) {
	f, err := excelize.OpenFile(s.path)
	if err == nil {
		return f, false, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, false, common.NewCollaboratorError("ledger", err)
	}
	return excelize.NewFile(), true, nil
}

func (s *Store) ensureTab(f *excelize.File, tab string) error {
	if idx, err := f.GetSheetIndex(tab); err == nil && idx >= 0 {
		return nil
	}
	if _, err := f.NewSheet(tab); err != nil {
		return common.NewCollaboratorError("ledger", err)
	}
	header := make([]interface{}, len(ledger.Columns))
	for i, col := range ledger.Columns {
		header[i] = string(col)
	}
	if err := f.SetSheetRow(tab, "A1", &header); err != nil {
		return common.NewCollaboratorError("ledger", err)
	}
	return nil
}

func (s *Store) save(f *excelize.File, created bool) error {
	var err error
	if created {
		err = f.SaveAs(s.path)
	} else {
		err = f.Save()
	}
	if err != nil {
		return common.NewCollaboratorError("ledger", err)
	}
	return nil
}

func columnIndex(headerRow []string) map[ledger.Column]int {
	index := make(map[ledger.Column]int, len(headerRow))
	for i, caption := range headerRow {
		index[ledger.Column(caption)] = i
	}
	return index
}

func rowFromCells(header map[ledger.Column]int, cells []string) ledger.Row {
	get := func(col ledger.Column) string {
		if idx, ok := header[col]; ok && idx < len(cells) {
			return cells[idx]
		}
		return ""
	}
	return ledger.Row{
		Supplier:       get(ledger.ColSupplier),
		PaymentMethod:  get(ledger.ColPaymentMethod),
		DocumentNumber: get(ledger.ColDocumentNumber),
		Amount:         get(ledger.ColAmount),
		IssueDate:      get(ledger.ColIssueDate),
		DueDate:        get(ledger.ColDueDate),
		PaymentDate:    get(ledger.ColPaymentDate),
	}
}
