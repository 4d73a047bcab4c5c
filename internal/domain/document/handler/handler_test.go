package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/doppio-labs/fiscaldoc/internal/domain/pipeline/service"
)

type mockPipeline struct{ mock.Mock }

func (m *mockPipeline) Process(ctx context.Context, sub service.Submission) (service.Outcome, error) {
	args := m.Called(ctx, sub)
	return args.Get(0).(service.Outcome), args.Error(1)
}

func (m *mockPipeline) Analyze(ctx context.Context, sub service.Submission) (service.StandardizedRecord, error) {
	args := m.Called(ctx, sub)
	return args.Get(0).(service.StandardizedRecord), args.Error(1)
}

func newHandler(t *testing.T) (*DocumentHandler, *mockPipeline) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	pipeline := &mockPipeline{}
	return NewDocumentHandler(pipeline, t.TempDir(), 25<<20, logger), pipeline
}

func multipartBody(t *testing.T, fields map[string]string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for name, content := range files {
		fw, err := w.CreateFormFile("documento", name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestSubmitProcessesUpload(t *testing.T) {
	h, pipeline := newHandler(t)

	outcome := service.Outcome{
		SubmissionID: uuid.New(),
		Record: service.StandardizedRecord{
			Supplier:   "ILLY",
			AmountText: "150,00",
			DueDate:    "10/04/2025",
		},
		Decision: service.Decision{
			Kind:      service.DecisionCreate,
			LedgerTab: "ABRIL",
		},
		ArchivedFiles: []string{"10-04-2025 - R$150,00 - parte 1.pdf"},
	}

	pipeline.On("Process", mock.Anything, mock.MatchedBy(func(sub service.Submission) bool {
		return sub.Kind == service.KindInvoice &&
			len(sub.Files) == 1 &&
			sub.Files[0].OriginalName == "boleto.pdf" &&
			sub.Override.Supplier == "illy"
	})).Return(outcome, nil)

	body, contentType := multipartBody(t,
		map[string]string{"kind": "NOTA_FISCAL", "fornecedor": "illy"},
		map[string]string{"boleto.pdf": "pdf-bytes"},
	)
	req := httptest.NewRequest(http.MethodPost, "/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.Submit(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "CREATE", resp["decision"])
	assert.Equal(t, "ABRIL", resp["ledger_tab"])
	pipeline.AssertExpectations(t)
}

func TestSubmitRejectsUnknownKind(t *testing.T) {
	h, pipeline := newHandler(t)

	body, contentType := multipartBody(t,
		map[string]string{"kind": "RECIBO"},
		map[string]string{"doc.pdf": "x"},
	)
	req := httptest.NewRequest(http.MethodPost, "/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.Submit(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	pipeline.AssertNotCalled(t, "Process", mock.Anything, mock.Anything)
}

func TestSubmitRequiresFiles(t *testing.T) {
	h, pipeline := newHandler(t)

	body, contentType := multipartBody(t, map[string]string{"kind": "COMPROVANTE"}, nil)
	req := httptest.NewRequest(http.MethodPost, "/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.Submit(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	pipeline.AssertNotCalled(t, "Process", mock.Anything, mock.Anything)
}

func TestAnalyzeReturnsRecordOnly(t *testing.T) {
	h, pipeline := newHandler(t)

	pipeline.On("Analyze", mock.Anything, mock.Anything).Return(service.StandardizedRecord{
		Supplier:      "OGGI",
		AmountText:    "90,00",
		PaymentDate:   "05/01/2025",
		DueDate:       "05/01/2025",
		SupplierScore: 100,
	}, nil)

	body, contentType := multipartBody(t,
		map[string]string{"kind": "COMPROVANTE"},
		map[string]string{"comprovante.jpg": "jpg-bytes"},
	)
	req := httptest.NewRequest(http.MethodPost, "/v1/documents/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.Analyze(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "OGGI", resp["fornecedor"])
	assert.Equal(t, "90,00", resp["valor"])
	pipeline.AssertNotCalled(t, "Process", mock.Anything, mock.Anything)
}

func TestSubmitPipelineFailure(t *testing.T) {
	h, pipeline := newHandler(t)

	pipeline.On("Process", mock.Anything, mock.Anything).
		Return(service.Outcome{}, assert.AnError)

	body, contentType := multipartBody(t,
		map[string]string{"kind": "NOTA_FISCAL"},
		map[string]string{"doc.pdf": "x"},
	)
	req := httptest.NewRequest(http.MethodPost, "/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.Submit(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
