// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// HTTPレスポンスには Message のみを `{"error": "..."}` の形で載せる。
type APIError struct {
	Code     string // エラーコード
	Message  string // クライアントに返すエラーメッセージ
	Category string // カテゴリ: auth, validation, label, system
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUnauthorized      = "UNAUTHORIZED"
	ErrCodeLabelIDRequired   = "LABEL_ID_REQUIRED"
	ErrCodeDuplicateLabel    = "DUPLICATE_LABEL"
	ErrCodeLabelNotAttached  = "LABEL_NOT_ATTACHED"
	ErrCodeUnknownReference  = "UNKNOWN_REFERENCE"
	ErrCodeInternal          = "INTERNAL_ERROR"
)

// NewUnauthorizedError は認可エラーを生成する。
// 未認証、セッション失効、非管理者ロール、プロファイル不在のいずれも同一のエラーになる。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "Unauthorized",
		Category: "auth",
	}
}

// NewLabelIDRequiredError はlabelId未指定のバリデーションエラーを生成する。
func NewLabelIDRequiredError() *APIError {
	return &APIError{
		Code:     ErrCodeLabelIDRequired,
		Message:  "labelId is required",
		Category: "validation",
	}
}

// NewDuplicateLabelError は既に関連付け済みのラベルを再度付与しようとした場合のエラーを生成する。
func NewDuplicateLabelError(ticketID, labelID string) *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateLabel,
		Message:  fmt.Sprintf("label %s is already attached to ticket %s", labelID, ticketID),
		Category: "label",
	}
}

// NewLabelNotAttachedError は存在しない関連付けを解除しようとした場合のエラーを生成する。
func NewLabelNotAttachedError(ticketID, labelID string) *APIError {
	return &APIError{
		Code:     ErrCodeLabelNotAttached,
		Message:  fmt.Sprintf("label %s is not attached to ticket %s", labelID, ticketID),
		Category: "label",
	}
}

// NewUnknownReferenceError はチケットまたはラベルがストアに存在しない場合のエラーを生成する。
// 事前の存在チェックは行わず、外部キー制約違反をこのエラーに分類する。
func NewUnknownReferenceError(ticketID, labelID string) *APIError {
	return &APIError{
		Code:     ErrCodeUnknownReference,
		Message:  fmt.Sprintf("ticket %s or label %s does not exist", ticketID, labelID),
		Category: "label",
	}
}
