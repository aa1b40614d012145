// Package cleanup は期限切れセッションの自動削除ジョブを提供する。
// expires_atを過ぎたセッション行を定期バッチで削除する。
// 認可ゲートは期限切れセッションを拒否するため、このジョブは
// 正しさではなくストアの肥大化防止のために存在する。
package cleanup

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// Executor はSQLのExecContextを抽象化するインターフェース。
// *sql.DB や *sql.Tx を受け付けることができる。
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// CleanedRecorder は削除件数のメトリクス記録インターフェース。
// metrics.Collectorの部分集合として定義する。
type CleanedRecorder interface {
	RecordSessionsCleaned(count int)
}

// CleanupJob は期限切れセッションの自動削除ジョブ。
// 定期実行のバッチジョブとして設計されており、冪等な削除処理を保証する。
type CleanupJob struct {
	db        Executor
	logger    *slog.Logger
	metrics   CleanedRecorder
	BatchSize int // 1回の実行で削除する最大行数（デフォルト: 1000）
}

// NewCleanupJob は新しいCleanupJobを生成する。metricsはnilでもよい。
// デフォルトのバッチサイズは1000。
func NewCleanupJob(db Executor, logger *slog.Logger, metrics CleanedRecorder) *CleanupJob {
	return &CleanupJob{
		db:        db,
		logger:    logger,
		metrics:   metrics,
		BatchSize: 1000,
	}
}

// Run は期限切れセッションをバッチサイズを上限に削除する。
// 冪等: 削除対象がない場合でもエラーにならない。
func (j *CleanupJob) Run(ctx context.Context) error {
	start := time.Now()

	query := `DELETE FROM sessions WHERE id IN (
		SELECT id FROM sessions WHERE expires_at < now() LIMIT $1
	)`
	result, err := j.db.ExecContext(ctx, query, j.BatchSize)
	if err != nil {
		j.logger.Error("セッションクリーンアップジョブの実行に失敗しました",
			slog.String("error", err.Error()),
			slog.Int("batch_size", j.BatchSize),
		)
		return fmt.Errorf("セッションクリーンアップの実行に失敗: %w", err)
	}

	deletedCount, err := result.RowsAffected()
	if err != nil {
		j.logger.Error("削除件数の取得に失敗しました",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("削除件数の取得に失敗: %w", err)
	}

	if j.metrics != nil {
		j.metrics.RecordSessionsCleaned(int(deletedCount))
	}

	duration := time.Since(start)
	j.logger.Info("セッションクリーンアップジョブが完了しました",
		slog.Int64("deleted_count", deletedCount),
		slog.Int("batch_size", j.BatchSize),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}

// RunLoop は指定間隔でRunを繰り返し実行する。
// コンテキストのキャンセルで停止する。個々の実行の失敗はログに記録し、
// ループ自体は継続する。
func (j *CleanupJob) RunLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				j.logger.Error("セッションクリーンアップの実行をスキップしました",
					slog.String("error", err.Error()),
				)
			}
		case <-ctx.Done():
			j.logger.Info("セッションクリーンアップループを停止します")
			return
		}
	}
}
