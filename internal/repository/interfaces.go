// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/ticketman/internal/model"
)

// ストア制約違反を分類するためのセンチネルエラー。
// サービス層がerrors.Isで判別し、APIエラーに変換する。
var (
	// ErrDuplicateTicketLabel は同一の(ticket_id, label_id)の関連付けが既に存在することを示す。
	// 重複の事前チェックは行わず、UNIQUE制約違反をこのエラーに分類する。
	ErrDuplicateTicketLabel = errors.New("ticket label association already exists")

	// ErrTicketLabelNotFound は削除対象の関連付けが存在しないことを示す。
	ErrTicketLabelNotFound = errors.New("ticket label association not found")

	// ErrTicketLabelRefMissing は参照先のチケットまたはラベルが存在しないことを示す。
	// 存在の事前チェックは行わず、外部キー制約違反をこのエラーに分類する。
	ErrTicketLabelRefMissing = errors.New("referenced ticket or label does not exist")
)

// SessionRepository はセッションデータの永続化インターフェース。
// セッションの発行は外部の認証フローが行うため、本サービスは読み取りのみ。
type SessionRepository interface {
	// FindByID は指定IDのセッションを取得する。存在しないか期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
}

// ProfileRepository はプロファイルデータの永続化インターフェース。
type ProfileRepository interface {
	// FindByUserID は指定ユーザーIDのプロファイルを取得する。見つからない場合はnilを返す。
	// プロファイル不在はエラーではなく「権限なし」として扱うのは呼び出し側の責務。
	FindByUserID(ctx context.Context, userID string) (*model.Profile, error)
}

// TicketLabelRepository はチケットラベル関連付けの永続化インターフェース。
type TicketLabelRepository interface {
	// Create は関連付けを作成する。
	// (ticket_id, label_id)が既に存在する場合はErrDuplicateTicketLabelを、
	// チケットまたはラベルが存在しない場合はErrTicketLabelRefMissingを返す。
	Create(ctx context.Context, tl *model.TicketLabel) error

	// Delete は(ticketID, labelID)の組に一致する関連付けを削除する。
	// 該当する関連付けが存在しない場合はErrTicketLabelNotFoundを返す。
	Delete(ctx context.Context, ticketID, labelID string) error

	// ListByTicketID はチケットの関連付け一覧をラベル情報付きで返す。
	ListByTicketID(ctx context.Context, ticketID string) ([]model.TicketLabelWithInfo, error)
}
