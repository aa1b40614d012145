package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/ticketman/internal/model"
)

// --- モック定義 ---

// mockLabelService はLabelServiceInterfaceのモック実装。
type mockLabelService struct {
	attachFn func(ctx context.Context, ticketID, labelID string) (*model.TicketLabel, error)
	detachFn func(ctx context.Context, ticketID, labelID string) error
	listFn   func(ctx context.Context, ticketID string) ([]model.TicketLabelWithInfo, error)

	attachCalls int
	detachCalls int
	listCalls   int
}

func (m *mockLabelService) Attach(ctx context.Context, ticketID, labelID string) (*model.TicketLabel, error) {
	m.attachCalls++
	if m.attachFn != nil {
		return m.attachFn(ctx, ticketID, labelID)
	}
	return nil, errors.New("not implemented")
}

func (m *mockLabelService) Detach(ctx context.Context, ticketID, labelID string) error {
	m.detachCalls++
	if m.detachFn != nil {
		return m.detachFn(ctx, ticketID, labelID)
	}
	return errors.New("not implemented")
}

func (m *mockLabelService) ListByTicket(ctx context.Context, ticketID string) ([]model.TicketLabelWithInfo, error) {
	m.listCalls++
	if m.listFn != nil {
		return m.listFn(ctx, ticketID)
	}
	return nil, errors.New("not implemented")
}

// newLabelTestRouter はハンドラー単体テスト用のchiルーターを構築する。
// ミドルウェアは適用しない。
func newLabelTestRouter(service LabelServiceInterface) http.Handler {
	h := NewLabelHandler(service)
	r := chi.NewRouter()
	r.Route("/api/support/labels/{ticketId}", func(r chi.Router) {
		r.Get("/", h.ListLabels)
		r.Post("/", h.AttachLabel)
		r.Delete("/", h.DetachLabel)
	})
	return r
}

func decodeErrorBody(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return body["error"]
}

// --- AttachLabel ---

func TestAttachLabel_Success_Returns201(t *testing.T) {
	createdAt := time.Now()
	service := &mockLabelService{
		attachFn: func(ctx context.Context, ticketID, labelID string) (*model.TicketLabel, error) {
			return &model.TicketLabel{
				ID:        "assoc-1",
				TicketID:  ticketID,
				LabelID:   labelID,
				CreatedAt: createdAt,
			}, nil
		},
	}
	router := newLabelTestRouter(service)

	req := httptest.NewRequest(http.MethodPost, "/api/support/labels/ticket-1", strings.NewReader(`{"labelId":"label-1"}`))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}

	var body ticketLabelResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.ID != "assoc-1" {
		t.Errorf("id = %q, want %q", body.ID, "assoc-1")
	}
	if body.TicketID != "ticket-1" {
		t.Errorf("ticket_id = %q, want %q", body.TicketID, "ticket-1")
	}
	if body.LabelID != "label-1" {
		t.Errorf("label_id = %q, want %q", body.LabelID, "label-1")
	}
}

func TestAttachLabel_MissingLabelID_Returns400(t *testing.T) {
	service := &mockLabelService{}
	router := newLabelTestRouter(service)

	req := httptest.NewRequest(http.MethodPost, "/api/support/labels/ticket-1", strings.NewReader(`{}`))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusBadRequest)
	}
	if msg := decodeErrorBody(t, w); msg != "labelId is required" {
		t.Errorf("error = %q, want %q", msg, "labelId is required")
	}
	// バリデーション失敗時はストアに触れない
	if service.attachCalls != 0 {
		t.Errorf("attach calls = %d, want 0", service.attachCalls)
	}
}

func TestAttachLabel_EmptyLabelID_Returns400(t *testing.T) {
	service := &mockLabelService{}
	router := newLabelTestRouter(service)

	req := httptest.NewRequest(http.MethodPost, "/api/support/labels/ticket-1", strings.NewReader(`{"labelId":""}`))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusBadRequest)
	}
	if service.attachCalls != 0 {
		t.Errorf("attach calls = %d, want 0", service.attachCalls)
	}
}

func TestAttachLabel_InvalidJSON_Returns400(t *testing.T) {
	service := &mockLabelService{}
	router := newLabelTestRouter(service)

	req := httptest.NewRequest(http.MethodPost, "/api/support/labels/ticket-1", strings.NewReader(`not-json`))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusBadRequest)
	}
	if msg := decodeErrorBody(t, w); msg != "labelId is required" {
		t.Errorf("error = %q, want %q", msg, "labelId is required")
	}
}

func TestAttachLabel_Duplicate_Returns409(t *testing.T) {
	service := &mockLabelService{
		attachFn: func(ctx context.Context, ticketID, labelID string) (*model.TicketLabel, error) {
			return nil, model.NewDuplicateLabelError(ticketID, labelID)
		},
	}
	router := newLabelTestRouter(service)

	req := httptest.NewRequest(http.MethodPost, "/api/support/labels/ticket-1", strings.NewReader(`{"labelId":"label-1"}`))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusConflict {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusConflict)
	}
	if msg := decodeErrorBody(t, w); msg == "" {
		t.Error("error message should not be empty")
	}
}

func TestAttachLabel_UnknownReference_Returns404(t *testing.T) {
	service := &mockLabelService{
		attachFn: func(ctx context.Context, ticketID, labelID string) (*model.TicketLabel, error) {
			return nil, model.NewUnknownReferenceError(ticketID, labelID)
		},
	}
	router := newLabelTestRouter(service)

	req := httptest.NewRequest(http.MethodPost, "/api/support/labels/ticket-1", strings.NewReader(`{"labelId":"no-such-label"}`))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusNotFound)
	}
}

func TestAttachLabel_StoreError_Returns500(t *testing.T) {
	service := &mockLabelService{
		attachFn: func(ctx context.Context, ticketID, labelID string) (*model.TicketLabel, error) {
			return nil, errors.New("connection refused")
		},
	}
	router := newLabelTestRouter(service)

	req := httptest.NewRequest(http.MethodPost, "/api/support/labels/ticket-1", strings.NewReader(`{"labelId":"label-1"}`))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusInternalServerError)
	}
	// 内部エラーの詳細はレスポンスに漏らさない
	if msg := decodeErrorBody(t, w); strings.Contains(msg, "connection refused") {
		t.Errorf("error message should not leak internals: %q", msg)
	}
}

// --- DetachLabel ---

func TestDetachLabel_Success_ReturnsSuccessTrue(t *testing.T) {
	var gotTicketID, gotLabelID string
	service := &mockLabelService{
		detachFn: func(ctx context.Context, ticketID, labelID string) error {
			gotTicketID = ticketID
			gotLabelID = labelID
			return nil
		},
	}
	router := newLabelTestRouter(service)

	req := httptest.NewRequest(http.MethodDelete, "/api/support/labels/ticket-1?labelId=label-1", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var body successResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !body.Success {
		t.Error("success = false, want true")
	}
	if gotTicketID != "ticket-1" || gotLabelID != "label-1" {
		t.Errorf("detach called with (%q, %q), want (ticket-1, label-1)", gotTicketID, gotLabelID)
	}
}

func TestDetachLabel_MissingLabelID_Returns400(t *testing.T) {
	service := &mockLabelService{}
	router := newLabelTestRouter(service)

	req := httptest.NewRequest(http.MethodDelete, "/api/support/labels/ticket-1", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusBadRequest)
	}
	if msg := decodeErrorBody(t, w); msg != "labelId is required" {
		t.Errorf("error = %q, want %q", msg, "labelId is required")
	}
	if service.detachCalls != 0 {
		t.Errorf("detach calls = %d, want 0", service.detachCalls)
	}
}

func TestDetachLabel_NotAttached_Returns404(t *testing.T) {
	service := &mockLabelService{
		detachFn: func(ctx context.Context, ticketID, labelID string) error {
			return model.NewLabelNotAttachedError(ticketID, labelID)
		},
	}
	router := newLabelTestRouter(service)

	req := httptest.NewRequest(http.MethodDelete, "/api/support/labels/ticket-1?labelId=label-9", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusNotFound)
	}
}

// --- ListLabels ---

func TestListLabels_Success(t *testing.T) {
	now := time.Now()
	service := &mockLabelService{
		listFn: func(ctx context.Context, ticketID string) ([]model.TicketLabelWithInfo, error) {
			return []model.TicketLabelWithInfo{
				{
					TicketLabel: model.TicketLabel{
						ID:        "assoc-1",
						TicketID:  ticketID,
						LabelID:   "label-1",
						CreatedAt: now,
					},
					LabelName:  "urgent",
					LabelColor: "#ff0000",
				},
			}, nil
		},
	}
	router := newLabelTestRouter(service)

	req := httptest.NewRequest(http.MethodGet, "/api/support/labels/ticket-1", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}

	var body []ticketLabelWithInfoResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(body) != 1 {
		t.Fatalf("len = %d, want 1", len(body))
	}
	if body[0].LabelName != "urgent" {
		t.Errorf("label_name = %q, want %q", body[0].LabelName, "urgent")
	}
	if body[0].LabelColor != "#ff0000" {
		t.Errorf("label_color = %q, want %q", body[0].LabelColor, "#ff0000")
	}
}

func TestListLabels_Empty_ReturnsEmptyArray(t *testing.T) {
	service := &mockLabelService{
		listFn: func(ctx context.Context, ticketID string) ([]model.TicketLabelWithInfo, error) {
			return nil, nil
		},
	}
	router := newLabelTestRouter(service)

	req := httptest.NewRequest(http.MethodGet, "/api/support/labels/ticket-1", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}

	// nilスライスでも空配列としてエンコードされる
	got := strings.TrimSpace(w.Body.String())
	if got != "[]" {
		t.Errorf("body = %q, want %q", got, "[]")
	}
}
