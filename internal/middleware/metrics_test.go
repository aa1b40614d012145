package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// mockHTTPStatusRecorder はHTTPStatusRecorderのモック実装。
type mockHTTPStatusRecorder struct {
	recorded []int
}

func (m *mockHTTPStatusRecorder) RecordHTTPStatus(statusCode int) {
	m.recorded = append(m.recorded, statusCode)
}

func TestMetricsMiddleware_RecordsStatusCode(t *testing.T) {
	recorder := &mockHTTPStatusRecorder{}
	mw := NewMetricsMiddleware(recorder)

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/test", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if len(recorder.recorded) != 1 {
		t.Fatalf("recorded count = %d, want 1", len(recorder.recorded))
	}
	if recorder.recorded[0] != http.StatusCreated {
		t.Errorf("recorded status = %d, want %d", recorder.recorded[0], http.StatusCreated)
	}
}

func TestMetricsMiddleware_DefaultsTo200(t *testing.T) {
	recorder := &mockHTTPStatusRecorder{}
	mw := NewMetricsMiddleware(recorder)

	// WriteHeaderを呼ばないハンドラー
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/test", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if len(recorder.recorded) != 1 {
		t.Fatalf("recorded count = %d, want 1", len(recorder.recorded))
	}
	if recorder.recorded[0] != http.StatusOK {
		t.Errorf("recorded status = %d, want %d", recorder.recorded[0], http.StatusOK)
	}
}

func TestMetricsMiddleware_RecordsErrorStatuses(t *testing.T) {
	recorder := &mockHTTPStatusRecorder{}
	mw := NewMetricsMiddleware(recorder)

	statuses := []int{http.StatusUnauthorized, http.StatusConflict, http.StatusNotFound}
	for _, status := range statuses {
		s := status
		handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(s)
		}))
		req := httptest.NewRequest(http.MethodGet, "/api/test", nil)
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	if len(recorder.recorded) != len(statuses) {
		t.Fatalf("recorded count = %d, want %d", len(recorder.recorded), len(statuses))
	}
	for i, status := range statuses {
		if recorder.recorded[i] != status {
			t.Errorf("recorded[%d] = %d, want %d", i, recorder.recorded[i], status)
		}
	}
}
