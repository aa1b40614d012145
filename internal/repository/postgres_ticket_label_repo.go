package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/ticketman/internal/model"
)

// PostgreSQLのSQLSTATEエラーコード。
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// PostgresTicketLabelRepo はPostgreSQLを使用したチケットラベル関連付けリポジトリ。
type PostgresTicketLabelRepo struct {
	db *sql.DB
}

// NewPostgresTicketLabelRepo はPostgresTicketLabelRepoを生成する。
func NewPostgresTicketLabelRepo(db *sql.DB) *PostgresTicketLabelRepo {
	return &PostgresTicketLabelRepo{db: db}
}

// Create は関連付けを作成する。
// 重複の事前チェックは行わず、単一INSERTの制約違反を分類して返す:
// UNIQUE制約違反はErrDuplicateTicketLabel、外部キー制約違反はErrTicketLabelRefMissing。
func (r *PostgresTicketLabelRepo) Create(ctx context.Context, tl *model.TicketLabel) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO ticket_labels (id, ticket_id, label_id, created_at)
		 VALUES ($1, $2, $3, $4)`,
		tl.ID, tl.TicketID, tl.LabelID, tl.CreatedAt,
	)
	if err != nil {
		switch {
		case isPgError(err, pgUniqueViolation):
			return fmt.Errorf("(%s, %s): %w", tl.TicketID, tl.LabelID, ErrDuplicateTicketLabel)
		case isPgError(err, pgForeignKeyViolation):
			return fmt.Errorf("(%s, %s): %w", tl.TicketID, tl.LabelID, ErrTicketLabelRefMissing)
		default:
			return fmt.Errorf("関連付けの作成に失敗しました: %w", err)
		}
	}
	return nil
}

// Delete は(ticketID, labelID)の組に一致する関連付けを削除する。
// 該当行が存在しない場合はErrTicketLabelNotFoundを返す。
func (r *PostgresTicketLabelRepo) Delete(ctx context.Context, ticketID, labelID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM ticket_labels WHERE ticket_id = $1 AND label_id = $2`,
		ticketID, labelID,
	)
	if err != nil {
		return fmt.Errorf("関連付けの削除に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("削除結果の取得に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("(%s, %s): %w", ticketID, labelID, ErrTicketLabelNotFound)
	}
	return nil
}

// ListByTicketID はチケットの関連付け一覧をラベル情報付きで返す。
func (r *PostgresTicketLabelRepo) ListByTicketID(ctx context.Context, ticketID string) ([]model.TicketLabelWithInfo, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT tl.id, tl.ticket_id, tl.label_id, tl.created_at, l.name, l.color
		 FROM ticket_labels tl
		 JOIN labels l ON tl.label_id = l.id
		 WHERE tl.ticket_id = $1
		 ORDER BY tl.created_at ASC`,
		ticketID,
	)
	if err != nil {
		return nil, fmt.Errorf("関連付け一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var results []model.TicketLabelWithInfo
	for rows.Next() {
		var info model.TicketLabelWithInfo
		if err := rows.Scan(&info.ID, &info.TicketID, &info.LabelID, &info.CreatedAt, &info.LabelName, &info.LabelColor); err != nil {
			return nil, fmt.Errorf("関連付け行の読み取りに失敗しました: %w", err)
		}
		results = append(results, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("関連付け一覧の走査に失敗しました: %w", err)
	}
	return results, nil
}

// isPgError はエラーが指定のSQLSTATEコードを持つPostgreSQLエラーかどうかを判定する。
func isPgError(err error, code pq.ErrorCode) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == code
}

// compile-time interface check
var _ TicketLabelRepository = (*PostgresTicketLabelRepo)(nil)
