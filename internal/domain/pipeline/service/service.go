package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/doppio-labs/fiscaldoc/internal/domain/archive"
	"github.com/doppio-labs/fiscaldoc/internal/domain/catalog"
	"github.com/doppio-labs/fiscaldoc/internal/domain/common"
	"github.com/doppio-labs/fiscaldoc/internal/domain/ledger"
	"github.com/doppio-labs/fiscaldoc/internal/domain/ocr"
	"github.com/doppio-labs/fiscaldoc/internal/domain/pipeline/aggregator"
	"github.com/doppio-labs/fiscaldoc/internal/domain/pipeline/extractor"
	"github.com/doppio-labs/fiscaldoc/internal/domain/pipeline/normalizer"
	"github.com/doppio-labs/fiscaldoc/internal/domain/pipeline/resolver"
	reviewrepo "github.com/doppio-labs/fiscaldoc/internal/domain/review/repository"
)

// Service runs the full document pipeline. All collaborators are injected;
// the review repository may be nil when no queue is configured.
type Service struct {
	cat       *catalog.Catalog
	extractor *extractor.Extractor
	resolver  *resolver.Resolver
	store     ledger.Store
	archive   archive.Archive
	ocr       ocr.Backend
	reviews   reviewrepo.ReviewRepository
	logger    *slog.Logger
}

// NewService wires the pipeline together.
func NewService(
	cat *catalog.Catalog,
	ex *extractor.Extractor,
	res *resolver.Resolver,
	store ledger.Store,
	arc archive.Archive,
	backend ocr.Backend,
	reviews reviewrepo.ReviewRepository,
	logger *slog.Logger,
) *Service {
	return &Service{
		cat:       cat,
		extractor: ex,
		resolver:  res,
		store:     store,
		archive:   arc,
		ocr:       backend,
		reviews:   reviews,
		logger:    logger,
	}
}

// Process runs one submission end to end: OCR every file, merge the
// candidates, reconcile against the ledger, archive the originals and queue
// anything that needs a human. Uploaded temp files are removed on every
// path, success or failure.
func (s *Service) Process(ctx context.Context, sub Submission) (Outcome, error) {
	defer s.removeTempFiles(sub)

	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	logger := s.logger.With("submission_id", sub.ID, "kind", sub.Kind)
	start := time.Now()

	record := s.buildRecord(ctx, sub, logger)
	decision, err := s.Reconcile(ctx, record)
	if err != nil {
		return Outcome{SubmissionID: sub.ID, Record: record}, err
	}

	outcome := Outcome{SubmissionID: sub.ID, Record: record, Decision: decision}

	switch decision.Kind {
	case DecisionCreate, DecisionUpdate:
		if err := s.execute(ctx, record, decision); err != nil {
			return outcome, err
		}
		archived, err := s.archiveFiles(ctx, sub, record, decision)
		if err != nil {
			return outcome, err
		}
		outcome.ArchivedFiles = archived
	case DecisionIncomplete, DecisionUnresolvedSupplier:
		itemID, err := s.enqueueReview(ctx, sub, record, decision)
		if err != nil {
			return outcome, err
		}
		outcome.ReviewItemID = itemID
	}

	logger.Info("submission processed",
		"decision", decision.Kind,
		"supplier", record.Supplier,
		"tab", decision.LedgerTab,
		"duration", time.Since(start))
	return outcome, nil
}

// Analyze is the preview path: extract and standardize without touching the
// ledger, the archive or the review queue.
func (s *Service) Analyze(ctx context.Context, sub Submission) (StandardizedRecord, error) {
	defer s.removeTempFiles(sub)

	logger := s.logger.With("kind", sub.Kind)
	record := s.buildRecord(ctx, sub, logger)
	return record, nil
}

func (s *Service) buildRecord(ctx context.Context, sub Submission, logger *slog.Logger) StandardizedRecord {
	var candidates []extractor.CandidateFields
	var texts []string

	for _, file := range sub.Files {
		text, err := s.ocr.ExtractText(ctx, file.Path)
		if err != nil {
			// A failed page contributes nothing; overrides and the other
			// pages may still carry the record.
			logger.Warn("ocr failed, skipping file", "file", file.OriginalName, "error", err)
			continue
		}
		texts = append(texts, text)

		var fields extractor.CandidateFields
		if sub.Kind == KindReceipt {
			fields = s.extractor.ExtractReceipt(text)
		} else {
			fields = s.extractor.Extract(text)
		}
		candidates = append(candidates, fields)
	}

	merged := aggregator.Merge(candidates, aggregator.Override{
		Supplier:       sub.Override.Supplier,
		AmountText:     sub.Override.AmountText,
		IssueDate:      sub.Override.IssueDate,
		DueDate:        sub.Override.DueDate,
		PaymentDate:    sub.Override.PaymentDate,
		DocumentNumber: sub.Override.DocumentNumber,
	})

	return s.standardize(sub, merged, strings.Join(texts, "\n"))
}

// standardize turns merged candidates into normalized, resolved values.
func (s *Service) standardize(sub Submission, merged extractor.CandidateFields, rawText string) StandardizedRecord {
	record := StandardizedRecord{
		Kind:           sub.Kind,
		PaymentMethod:  sub.Override.PaymentMethod,
		IssueDate:      normalizer.NormalizeDate(merged.IssueDate),
		DueDate:        normalizer.NormalizeDate(merged.DueDate),
		PaymentDate:    normalizer.NormalizeDate(merged.PaymentDate),
		DocumentNumber: merged.DocumentNumber,
		LowConfidence:  merged.LowConfidence,
		RawText:        rawText,
	}

	if amount, ok := normalizer.ParseBRL(merged.AmountText); ok {
		record.Amount = amount
		record.AmountText = normalizer.FormatBRL(amount)
	}

	res := s.resolveSupplier(merged.SupplierFragment, sub.Override.Supplier != "")
	record.Supplier = res.Canonical
	record.SupplierScore = res.Confidence

	return record
}

// resolveSupplier picks the matching mode by provenance. Operator-typed
// names go through the lenient form path; fragments lifted from OCR text use
// exact alias containment and the stricter partial match.
func (s *Service) resolveSupplier(fragment string, fromForm bool) resolver.Resolution {
	if strings.TrimSpace(fragment) == "" {
		return resolver.Resolution{Canonical: resolver.Unresolved}
	}
	if fromForm {
		return s.resolver.Resolve(fragment)
	}
	if res, ok := s.resolver.ResolveAlias(fragment); ok {
		return res
	}
	if res, ok := s.resolver.ResolveOCR(fragment); ok {
		return res
	}
	return resolver.Resolution{Canonical: resolver.Unresolved}
}

// Reconcile decides what a standardized record means for the ledger. A record
// that can key a lookup (resolved supplier, amount, a date) is matched against
// the ledger first; an existing row becomes an UPDATE even when fields the
// record would need for a fresh row are absent. The full required set for the
// document kind gates only the CREATE branch.
func (s *Service) Reconcile(ctx context.Context, record StandardizedRecord) (Decision, error) {
	if record.Supplier == "" || record.Supplier == resolver.Unresolved {
		return Decision{
			Kind:   DecisionUnresolvedSupplier,
			Reason: "supplier could not be resolved against the catalog",
		}, nil
	}

	if !s.matchable(record) {
		missing := s.missingFields(record)
		return Decision{
			Kind:          DecisionIncomplete,
			MissingFields: missing,
			Reason:        fmt.Sprintf("missing required fields: %s", strings.Join(missing, ", ")),
		}, nil
	}

	bucket, ok := s.periodBucket(record)
	if !ok {
		return Decision{
			Kind:   DecisionIncomplete,
			Reason: "no ledger period mapped for the record's dates",
		}, nil
	}

	decision := Decision{
		LedgerTab:     bucket.LedgerTab,
		ArchiveFolder: bucket.ArchiveFolder,
	}

	if record.DueDate != "" {
		key := ledger.MatchKey{Supplier: record.Supplier, Amount: record.Amount, DueDate: record.DueDate}
		row, ref, err := s.store.FindRow(ctx, bucket.LedgerTab, key)
		if err != nil {
			return Decision{}, fmt.Errorf("ledger lookup: %w", err)
		}
		if row != nil {
			decision.Kind = DecisionUpdate
			decision.RowRef = ref
			decision.FillCells = fillableCells(*row, record)
			return decision, nil
		}
	}

	if missing := s.missingFields(record); len(missing) > 0 {
		return Decision{
			Kind:          DecisionIncomplete,
			MissingFields: missing,
			Reason:        fmt.Sprintf("missing required fields: %s", strings.Join(missing, ", ")),
		}, nil
	}

	decision.Kind = DecisionCreate
	return decision, nil
}

// matchable reports whether the record carries enough to key a ledger lookup:
// an amount and at least one parsable date.
func (s *Service) matchable(record StandardizedRecord) bool {
	if !record.HasAmount() {
		return false
	}
	for _, raw := range []string{record.DueDate, record.PaymentDate, record.IssueDate} {
		if _, ok := normalizer.ParseDate(raw); ok {
			return true
		}
	}
	return false
}

// fillableCells computes the blank whitelisted cells the record can supply.
// Populated cells are never overwritten.
func fillableCells(row ledger.Row, record StandardizedRecord) map[ledger.Column]string {
	cells := make(map[ledger.Column]string)
	for _, col := range ledger.FillWhitelist {
		if row.Cell(col) != "" {
			continue
		}
		if value := recordCell(record, col); value != "" {
			cells[col] = value
		}
	}
	return cells
}

func recordCell(record StandardizedRecord, col ledger.Column) string {
	switch col {
	case ledger.ColSupplier:
		return record.Supplier
	case ledger.ColPaymentMethod:
		return record.PaymentMethod
	case ledger.ColDocumentNumber:
		return record.DocumentNumber
	case ledger.ColAmount:
		return record.AmountText
	case ledger.ColIssueDate:
		return record.IssueDate
	case ledger.ColDueDate:
		return record.DueDate
	case ledger.ColPaymentDate:
		return record.PaymentDate
	}
	return ""
}

func (s *Service) execute(ctx context.Context, record StandardizedRecord, decision Decision) error {
	switch decision.Kind {
	case DecisionCreate:
		row := ledger.Row{
			Supplier:       record.Supplier,
			PaymentMethod:  record.PaymentMethod,
			DocumentNumber: record.DocumentNumber,
			Amount:         record.AmountText,
			IssueDate:      record.IssueDate,
			DueDate:        record.DueDate,
			PaymentDate:    record.PaymentDate,
		}
		if err := s.store.AppendRow(ctx, decision.LedgerTab, row); err != nil {
			return fmt.Errorf("ledger append: %w", err)
		}
	case DecisionUpdate:
		if len(decision.FillCells) == 0 {
			return nil
		}
		if err := s.store.UpdateCells(ctx, *decision.RowRef, decision.FillCells); err != nil {
			return fmt.Errorf("ledger update: %w", err)
		}
	}
	return nil
}

// archiveFiles uploads the originals under the period/supplier folder with
// sequential part numbering, continuing from any parts already stored for
// the same ledger entry.
func (s *Service) archiveFiles(ctx context.Context, sub Submission, record StandardizedRecord, decision Decision) ([]string, error) {
	folder, err := s.archive.EnsureFolder(ctx, decision.ArchiveFolder, record.Supplier)
	if err != nil {
		return nil, err
	}

	prefix := archive.Prefix(record.DueDate, record.AmountText)
	existing, err := s.archive.CountByPrefix(ctx, folder, prefix)
	if err != nil {
		return nil, err
	}

	var archived []string
	for i, file := range sub.Files {
		name := archive.PartFilename(prefix, existing+i+1, file.OriginalName)
		f, err := os.Open(file.Path)
		if err != nil {
			return archived, fmt.Errorf("%w: %s", common.ErrNoLocalFile, file.OriginalName)
		}
		err = s.archive.Upload(ctx, folder, name, f)
		f.Close()
		if err != nil {
			return archived, err
		}
		archived = append(archived, name)
	}
	return archived, nil
}

func (s *Service) enqueueReview(ctx context.Context, sub Submission, record StandardizedRecord, decision Decision) (*uuid.UUID, error) {
	if s.reviews == nil {
		return nil, nil
	}

	reason := reviewrepo.ReasonMissingFields
	if decision.Kind == DecisionUnresolvedSupplier {
		reason = reviewrepo.ReasonUnresolvedSupplier
	}

	item := &reviewrepo.Item{
		SubmissionID:  sub.ID,
		DocumentKind:  string(sub.Kind),
		Reason:        reason,
		ExtractedText: record.RawText,
		MissingFields: decision.MissingFields,
	}
	if record.Supplier != "" && record.Supplier != resolver.Unresolved {
		item.SupplierGuess = &record.Supplier
	}
	if record.AmountText != "" {
		item.AmountText = &record.AmountText
	}
	if record.DueDate != "" {
		item.DueDate = &record.DueDate
	}

	if err := s.reviews.Enqueue(ctx, item); err != nil {
		return nil, fmt.Errorf("enqueue review: %w", err)
	}
	return &item.ID, nil
}

// missingFields checks the record against the required set for its kind.
func (s *Service) missingFields(record StandardizedRecord) []string {
	var missing []string
	for _, field := range requiredFields[record.Kind] {
		var present bool
		switch field {
		case "fornecedor":
			present = record.Supplier != "" && record.Supplier != resolver.Unresolved
		case "vencimento":
			present = record.DueDate != ""
		case "valor":
			present = record.HasAmount()
		case "numero_nota":
			present = record.DocumentNumber != ""
		case "emissao":
			present = record.IssueDate != ""
		case "pagamento":
			present = record.PaymentDate != ""
		}
		if !present {
			missing = append(missing, field)
		}
	}
	return missing
}

// periodBucket maps the record to its ledger tab and archive folder. The due
// date anchors the period; payment and issue dates are fallbacks.
func (s *Service) periodBucket(record StandardizedRecord) (catalog.PeriodBucket, bool) {
	for _, raw := range []string{record.DueDate, record.PaymentDate, record.IssueDate} {
		if t, ok := normalizer.ParseDate(raw); ok {
			return s.cat.Bucket(t.Month())
		}
	}
	return catalog.PeriodBucket{}, false
}

func (s *Service) removeTempFiles(sub Submission) {
	for _, file := range sub.Files {
		if file.Path == "" {
			continue
		}
		if err := os.Remove(file.Path); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("failed to remove temp file", "path", file.Path, "error", err)
		}
	}
}
