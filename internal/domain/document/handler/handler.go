// Package handler exposes the document pipeline over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/doppio-labs/fiscaldoc/internal/domain/common"
	"github.com/doppio-labs/fiscaldoc/internal/domain/pipeline/service"
	"github.com/doppio-labs/fiscaldoc/pkg/observability"
)

// Pipeline is the slice of the document service the handler drives.
type Pipeline interface {
	Process(ctx context.Context, sub service.Submission) (service.Outcome, error)
	Analyze(ctx context.Context, sub service.Submission) (service.StandardizedRecord, error)
}

// DocumentHandler handles document submission and preview requests.
type DocumentHandler struct {
	pipeline       Pipeline
	uploadDir      string
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewDocumentHandler creates a document handler.
func NewDocumentHandler(pipeline Pipeline, uploadDir string, maxUploadBytes int64, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{
		pipeline:       pipeline,
		uploadDir:      uploadDir,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

type recordResponse struct {
	Supplier       string `json:"fornecedor"`
	SupplierScore  int    `json:"fornecedor_score,omitempty"`
	PaymentMethod  string `json:"meio_pagto,omitempty"`
	Amount         string `json:"valor,omitempty"`
	IssueDate      string `json:"emissao,omitempty"`
	DueDate        string `json:"vencimento,omitempty"`
	PaymentDate    string `json:"pagamento,omitempty"`
	DocumentNumber string `json:"numero_nota,omitempty"`
	LowConfidence  bool   `json:"baixa_confianca,omitempty"`
}

type processResponse struct {
	SubmissionID  string         `json:"submission_id"`
	Decision      string         `json:"decision"`
	LedgerTab     string         `json:"ledger_tab,omitempty"`
	MissingFields []string       `json:"missing_fields,omitempty"`
	Reason        string         `json:"reason,omitempty"`
	ArchivedFiles []string       `json:"archived_files,omitempty"`
	ReviewItemID  *uuid.UUID     `json:"review_item_id,omitempty"`
	Record        recordResponse `json:"record"`
}

// Submit handles POST /v1/documents: multipart upload plus optional field
// overrides, processed end to end.
func (h *DocumentHandler) Submit(w http.ResponseWriter, r *http.Request) {
	sub, err := h.parseSubmission(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	start := time.Now()
	outcome, err := h.pipeline.Process(r.Context(), sub)
	if err != nil {
		h.writeError(w, err)
		return
	}
	observability.ObserveSubmission(string(sub.Kind), string(outcome.Decision.Kind), time.Since(start))

	h.writeJSON(w, http.StatusOK, processResponse{
		SubmissionID:  outcome.SubmissionID.String(),
		Decision:      string(outcome.Decision.Kind),
		LedgerTab:     outcome.Decision.LedgerTab,
		MissingFields: outcome.Decision.MissingFields,
		Reason:        outcome.Decision.Reason,
		ArchivedFiles: outcome.ArchivedFiles,
		ReviewItemID:  outcome.ReviewItemID,
		Record:        toRecordResponse(outcome.Record),
	})
}

// Analyze handles POST /v1/documents/analyze: extraction preview without any
// ledger or archive side effects.
func (h *DocumentHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	sub, err := h.parseSubmission(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	record, err := h.pipeline.Analyze(r.Context(), sub)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, toRecordResponse(record))
}

func toRecordResponse(record service.StandardizedRecord) recordResponse {
	return recordResponse{
		Supplier:       record.Supplier,
		SupplierScore:  record.SupplierScore,
		PaymentMethod:  record.PaymentMethod,
		Amount:         record.AmountText,
		IssueDate:      record.IssueDate,
		DueDate:        record.DueDate,
		PaymentDate:    record.PaymentDate,
		DocumentNumber: record.DocumentNumber,
		LowConfidence:  record.LowConfidence,
	}
}

func (h *DocumentHandler) parseSubmission(r *http.Request) (service.Submission, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		return service.Submission{}, fmt.Errorf("%w: invalid multipart form: %v", common.ErrBadRequest, err)
	}

	kind := service.DocumentKind(r.FormValue("kind"))
	switch kind {
	case service.KindInvoice, service.KindReceipt:
	default:
		return service.Submission{}, fmt.Errorf("%w: kind must be NOTA_FISCAL or COMPROVANTE", common.ErrBadRequest)
	}

	uploads := r.MultipartForm.File["documento"]
	if len(uploads) == 0 {
		return service.Submission{}, fmt.Errorf("%w: at least one file is required", common.ErrBadRequest)
	}

	sub := service.Submission{
		ID:   uuid.New(),
		Kind: kind,
		Override: service.Override{
			Supplier:       r.FormValue("fornecedor"),
			PaymentMethod:  r.FormValue("meio_pagto"),
			AmountText:     r.FormValue("valor"),
			IssueDate:      r.FormValue("emissao"),
			DueDate:        r.FormValue("vencimento"),
			PaymentDate:    r.FormValue("pagamento"),
			DocumentNumber: r.FormValue("numero_nota"),
		},
	}

	for _, header := range uploads {
		path, err := h.saveUpload(header)
		if err != nil {
			// Drop anything already staged; the pipeline never runs.
			for _, f := range sub.Files {
				os.Remove(f.Path)
			}
			return service.Submission{}, err
		}
		sub.Files = append(sub.Files, service.SubmissionFile{
			Path:         path,
			OriginalName: header.Filename,
		})
	}

	return sub, nil
}

func (h *DocumentHandler) saveUpload(header *multipart.FileHeader) (string, error) {
	src, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("%w: unreadable upload %s: %v", common.ErrBadRequest, header.Filename, err)
	}
	defer src.Close()

	dst, err := os.CreateTemp(h.uploadDir, "upload-*"+filepath.Ext(header.Filename))
	if err != nil {
		return "", fmt.Errorf("stage upload: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return "", fmt.Errorf("stage upload: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("stage upload: %w", err)
	}
	return dst.Name(), nil
}

func (h *DocumentHandler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *DocumentHandler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, common.ErrBadRequest):
		status = http.StatusBadRequest
	case errors.Is(err, common.ErrNotFound):
		status = http.StatusNotFound
	}
	if _, ok := common.AsCollaboratorError(err); ok {
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", "error", err)
	}
	h.writeJSON(w, status, map[string]string{"error": err.Error()})
}
