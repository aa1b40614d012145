// Package label はチケットラベル関連付けのビジネスロジックを提供する。
package label

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/ticketman/internal/model"
	"github.com/hitoshi/ticketman/internal/repository"
)

// MetricsRecorder はラベル操作のメトリクス記録インターフェース。
// metrics.Collectorの部分集合として定義する。
type MetricsRecorder interface {
	RecordLabelAttach()
	RecordLabelAttachFail(reason string)
	RecordLabelDetach()
	RecordLabelDetachFail(reason string)
}

// Service はラベル関連付けのビジネスロジックを提供する。
// 各操作は単一のストア呼び出しで完結し、競合の裁定はストアの制約に委ねる。
type Service struct {
	repo    repository.TicketLabelRepository
	metrics MetricsRecorder
}

// NewService はServiceを生成する。metricsはnilでもよい。
func NewService(repo repository.TicketLabelRepository, metrics MetricsRecorder) *Service {
	return &Service{
		repo:    repo,
		metrics: metrics,
	}
}

// Attach はチケットにラベルを関連付ける。
// 重複の事前チェックは行わず、INSERT 1回で作成を試みる。
// 同一の組が既に存在する場合は409相当のAPIError、
// チケットまたはラベルが存在しない場合は404相当のAPIErrorを返す。
func (s *Service) Attach(ctx context.Context, ticketID, labelID string) (*model.TicketLabel, error) {
	tl := &model.TicketLabel{
		ID:        uuid.New().String(),
		TicketID:  ticketID,
		LabelID:   labelID,
		CreatedAt: time.Now(),
	}

	if err := s.repo.Create(ctx, tl); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateTicketLabel):
			s.recordAttachFail("duplicate")
			return nil, model.NewDuplicateLabelError(ticketID, labelID)
		case errors.Is(err, repository.ErrTicketLabelRefMissing):
			s.recordAttachFail("unknown_reference")
			return nil, model.NewUnknownReferenceError(ticketID, labelID)
		default:
			s.recordAttachFail("store")
			return nil, fmt.Errorf("failed to attach label: %w", err)
		}
	}

	if s.metrics != nil {
		s.metrics.RecordLabelAttach()
	}
	slog.Info("label attached",
		slog.String("ticket_id", ticketID),
		slog.String("label_id", labelID),
	)
	return tl, nil
}

// Detach はチケットからラベルの関連付けを解除する。
// 該当する関連付けが存在しない場合は404相当のAPIErrorを返す（冪等なno-opにはしない）。
func (s *Service) Detach(ctx context.Context, ticketID, labelID string) error {
	if err := s.repo.Delete(ctx, ticketID, labelID); err != nil {
		if errors.Is(err, repository.ErrTicketLabelNotFound) {
			s.recordDetachFail("not_found")
			return model.NewLabelNotAttachedError(ticketID, labelID)
		}
		s.recordDetachFail("store")
		return fmt.Errorf("failed to detach label: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordLabelDetach()
	}
	slog.Info("label detached",
		slog.String("ticket_id", ticketID),
		slog.String("label_id", labelID),
	)
	return nil
}

// ListByTicket はチケットの関連付け一覧をラベル情報付きで返す。
func (s *Service) ListByTicket(ctx context.Context, ticketID string) ([]model.TicketLabelWithInfo, error) {
	infos, err := s.repo.ListByTicketID(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ticket labels: %w", err)
	}
	return infos, nil
}

func (s *Service) recordAttachFail(reason string) {
	if s.metrics != nil {
		s.metrics.RecordLabelAttachFail(reason)
	}
}

func (s *Service) recordDetachFail(reason string) {
	if s.metrics != nil {
		s.metrics.RecordLabelDetachFail(reason)
	}
}
