package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/doppio-labs/fiscaldoc/internal/domain/common"
	"github.com/doppio-labs/fiscaldoc/internal/domain/review/repository"
)

type mockRepo struct{ mock.Mock }

func (m *mockRepo) Enqueue(ctx context.Context, item *repository.Item) error {
	return m.Called(ctx, item).Error(0)
}

func (m *mockRepo) GetByID(ctx context.Context, id uuid.UUID) (*repository.Item, error) {
	args := m.Called(ctx, id)
	var item *repository.Item
	if v := args.Get(0); v != nil {
		item = v.(*repository.Item)
	}
	return item, args.Error(1)
}

func (m *mockRepo) ListPending(ctx context.Context, limit int) ([]*repository.Item, error) {
	args := m.Called(ctx, limit)
	var items []*repository.Item
	if v := args.Get(0); v != nil {
		items = v.([]*repository.Item)
	}
	return items, args.Error(1)
}

func (m *mockRepo) Resolve(ctx context.Context, id uuid.UUID, res repository.Resolution) error {
	return m.Called(ctx, id, res).Error(0)
}

func newHandler(t *testing.T) (*ReviewHandler, *mockRepo) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	repo := &mockRepo{}
	return NewReviewHandler(repo, logger), repo
}

func TestListDefaultsLimit(t *testing.T) {
	h, repo := newHandler(t)

	repo.On("ListPending", mock.Anything, 50).Return([]*repository.Item{
		{ID: uuid.New(), Reason: repository.ReasonUnresolvedSupplier, Status: repository.StatusPending},
	}, nil)

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/v1/review", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Items []repository.Item `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Items, 1)
	repo.AssertExpectations(t)
}

func TestListEmptyQueueIsEmptyArray(t *testing.T) {
	h, repo := newHandler(t)

	repo.On("ListPending", mock.Anything, 50).Return(nil, nil)

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/v1/review", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"items":[]}`, rec.Body.String())
}

func TestListRejectsBadLimit(t *testing.T) {
	h, repo := newHandler(t)

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/v1/review?limit=zero", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	repo.AssertNotCalled(t, "ListPending", mock.Anything, mock.Anything)
}

func resolveRequestFor(t *testing.T, id, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/review/"+id+"/resolve", strings.NewReader(body))
	req.SetPathValue("id", id)
	return req
}

func TestResolve(t *testing.T) {
	h, repo := newHandler(t)
	id := uuid.New()

	repo.On("Resolve", mock.Anything, id, repository.Resolution{
		ResolvedBy: "operator",
		Note:       "lançado manualmente",
	}).Return(nil)

	rec := httptest.NewRecorder()
	h.Resolve(rec, resolveRequestFor(t, id.String(), `{"resolved_by":"operator","note":"lançado manualmente"}`))

	assert.Equal(t, http.StatusOK, rec.Code)
	repo.AssertExpectations(t)
}

func TestResolveNotFound(t *testing.T) {
	h, repo := newHandler(t)
	id := uuid.New()

	repo.On("Resolve", mock.Anything, id, mock.Anything).Return(common.ErrNotFound)

	rec := httptest.NewRecorder()
	h.Resolve(rec, resolveRequestFor(t, id.String(), `{"resolved_by":"operator"}`))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestResolveRequiresResolvedBy(t *testing.T) {
	h, repo := newHandler(t)
	id := uuid.New()

	rec := httptest.NewRecorder()
	h.Resolve(rec, resolveRequestFor(t, id.String(), `{"note":"x"}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	repo.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything, mock.Anything)
}

func TestResolveBadID(t *testing.T) {
	h, _ := newHandler(t)

	rec := httptest.NewRecorder()
	h.Resolve(rec, resolveRequestFor(t, "not-a-uuid", `{"resolved_by":"operator"}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
