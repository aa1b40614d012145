// Package handler はHTTP APIのハンドラーとルーティングを提供する。
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/ticketman/internal/middleware"
	"github.com/hitoshi/ticketman/internal/model"
)

// LabelServiceInterface はラベルハンドラーが必要とするサービスインターフェース。
type LabelServiceInterface interface {
	// Attach はチケットにラベルを関連付ける。
	Attach(ctx context.Context, ticketID, labelID string) (*model.TicketLabel, error)
	// Detach はチケットからラベルの関連付けを解除する。
	Detach(ctx context.Context, ticketID, labelID string) error
	// ListByTicket はチケットの関連付け一覧をラベル情報付きで返す。
	ListByTicket(ctx context.Context, ticketID string) ([]model.TicketLabelWithInfo, error)
}

// LabelHandler はチケットラベル関連付けのHTTPハンドラー。
type LabelHandler struct {
	service LabelServiceInterface
}

// NewLabelHandler はLabelHandlerを生成する。
func NewLabelHandler(service LabelServiceInterface) *LabelHandler {
	return &LabelHandler{
		service: service,
	}
}

// attachLabelRequest はラベル付与リクエストのボディ。
type attachLabelRequest struct {
	LabelID string `json:"labelId"`
}

// ticketLabelResponse は関連付けレコードのAPIレスポンス。
type ticketLabelResponse struct {
	ID        string    `json:"id"`
	TicketID  string    `json:"ticket_id"`
	LabelID   string    `json:"label_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ticketLabelWithInfoResponse はラベル情報付き関連付けのAPIレスポンス。
type ticketLabelWithInfoResponse struct {
	ID         string    `json:"id"`
	TicketID   string    `json:"ticket_id"`
	LabelID    string    `json:"label_id"`
	LabelName  string    `json:"label_name"`
	LabelColor string    `json:"label_color"`
	CreatedAt  time.Time `json:"created_at"`
}

// successResponse は削除成功時のAPIレスポンス。
type successResponse struct {
	Success bool `json:"success"`
}

// AttachLabel はチケットにラベルを関連付ける。
// POST /api/support/labels/:ticketId
//
// ボディのlabelIdが欠落・空の場合はストアに触れる前に400を返す。
// ボディのJSONが不正な場合もlabelIdは解決できないため同じ400になる。
func (h *LabelHandler) AttachLabel(w http.ResponseWriter, r *http.Request) {
	ticketID := chi.URLParam(r, "ticketId")

	var req attachLabelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.LabelID == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewLabelIDRequiredError())
		return
	}

	created, err := h.service.Attach(r.Context(), ticketID, req.LabelID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toTicketLabelResponse(created))
}

// DetachLabel はチケットからラベルの関連付けを解除する。
// DELETE /api/support/labels/:ticketId?labelId=xxx
//
// 対象の関連付けが存在しない場合は404を返す。
func (h *LabelHandler) DetachLabel(w http.ResponseWriter, r *http.Request) {
	ticketID := chi.URLParam(r, "ticketId")

	labelID := r.URL.Query().Get("labelId")
	if labelID == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewLabelIDRequiredError())
		return
	}

	if err := h.service.Detach(r.Context(), ticketID, labelID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(successResponse{Success: true})
}

// ListLabels はチケットの関連付け一覧を取得する。
// GET /api/support/labels/:ticketId
func (h *LabelHandler) ListLabels(w http.ResponseWriter, r *http.Request) {
	ticketID := chi.URLParam(r, "ticketId")

	infos, err := h.service.ListByTicket(r.Context(), ticketID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]ticketLabelWithInfoResponse, len(infos))
	for i, info := range infos {
		results[i] = ticketLabelWithInfoResponse{
			ID:         info.ID,
			TicketID:   info.TicketID,
			LabelID:    info.LabelID,
			LabelName:  info.LabelName,
			LabelColor: info.LabelColor,
			CreatedAt:  info.CreatedAt,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(results)
}

// toTicketLabelResponse はドメインのTicketLabelをレスポンス型に変換する。
func toTicketLabelResponse(tl *model.TicketLabel) ticketLabelResponse {
	return ticketLabelResponse{
		ID:        tl.ID,
		TicketID:  tl.TicketID,
		LabelID:   tl.LabelID,
		CreatedAt: tl.CreatedAt,
	}
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	middleware.WriteErrorResponse(w, statusCode, apiErr)
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		statusCode := mapAPIErrorToHTTPStatus(apiErr)
		writeAPIErrorResponse(w, statusCode, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	middleware.WriteInternalServerError(w)
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case model.ErrCodeLabelIDRequired:
		return http.StatusBadRequest
	case model.ErrCodeDuplicateLabel:
		return http.StatusConflict
	case model.ErrCodeLabelNotAttached, model.ErrCodeUnknownReference:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
