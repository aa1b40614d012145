// Package auth は管理者権限の認可ゲートを提供する。
// セッション資格情報の解決とプロファイルのロール検証を行う。
// セッションの発行・破棄は外部の認証フローが担い、本パッケージは読み取りのみ。
package auth

import (
	"context"
	"fmt"

	"github.com/hitoshi/ticketman/internal/repository"
)

// DenyRecorder は認可拒否のメトリクス記録インターフェース。
// metrics.Collectorの部分集合として定義する。
type DenyRecorder interface {
	RecordAuthzDenied()
}

// Service は認可ゲート。リクエストごとにセッションとプロファイルを
// ストアから引き直す。ロール変更後の陳腐化を避けるため、判定結果は
// 一切キャッシュしない。
type Service struct {
	sessionRepo repository.SessionRepository
	profileRepo repository.ProfileRepository
	metrics     DenyRecorder
}

// NewService はServiceを生成する。metricsはnilでもよい。
func NewService(sessionRepo repository.SessionRepository, profileRepo repository.ProfileRepository, metrics DenyRecorder) *Service {
	return &Service{
		sessionRepo: sessionRepo,
		profileRepo: profileRepo,
		metrics:     metrics,
	}
}

// Authorize はセッションIDから認証ユーザーを解決し、管理者ロールを検証する。
// 判定手順:
//  1. セッションIDが空なら即座に拒否（以降のルックアップは行わない）
//  2. セッションをストアから解決。存在しないか期限切れなら拒否
//  3. セッションのユーザーIDでプロファイルを取得。
//     プロファイル不在は非管理者と同一に扱い、エラーにはしない
//
// 許可された場合のみユーザーIDとtrueを返す。
// ストア参照の失敗は認可判定ではなくリクエストレベルの失敗として呼び出し側に伝播する。
func (s *Service) Authorize(ctx context.Context, sessionID string) (string, bool, error) {
	if sessionID == "" {
		s.recordDenied()
		return "", false, nil
	}

	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve session: %w", err)
	}
	if session == nil {
		s.recordDenied()
		return "", false, nil
	}

	profile, err := s.profileRepo.FindByUserID(ctx, session.UserID)
	if err != nil {
		return "", false, fmt.Errorf("failed to load profile: %w", err)
	}
	if !profile.IsAdmin() {
		s.recordDenied()
		return "", false, nil
	}

	return session.UserID, true, nil
}

func (s *Service) recordDenied() {
	if s.metrics != nil {
		s.metrics.RecordAuthzDenied()
	}
}
