package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/ticketman/internal/middleware"
)

// HealthChecker は/healthエンドポイントが利用するストア疎通確認のインターフェース。
// *sql.DB が実装する。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Authorizer        middleware.Authorizer
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	CSRFConfig        middleware.CSRFConfig
	Logger            *slog.Logger
	StatusRecorder    middleware.HTTPStatusRecorder

	// 運用エンドポイント
	HealthChecker  HealthChecker
	MetricsHandler http.Handler

	// ラベル関連付け
	LabelService LabelServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging → Metrics
//	→ AdminSession → CSRF → RateLimit(General) [→ RateLimit(Mutation)]
//
// AdminSessionをCSRFより先に評価する。資格情報を持たないリクエストは
// CSRFトークンの有無にかかわらず401で応答する。
//
// 運用ルート（/health, /metrics）とCSRFトークン取得は認可ゲートの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	if deps.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	}
	if deps.StatusRecorder != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.StatusRecorder))
	}

	labelHandler := NewLabelHandler(deps.LabelService)

	// --- 認可不要のルート ---

	r.Get("/health", NewHealthHandler(deps.HealthChecker))

	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	r.Method(http.MethodGet, "/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig))

	// --- 管理者認可が必要なルート ---
	// ミドルウェアスタック: AdminSession → CSRF → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAdminSessionMiddleware(deps.Authorizer))
		r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// ラベル関連付け管理
		r.Route("/api/support/labels/{ticketId}", func(r chi.Router) {
			r.Get("/", labelHandler.ListLabels)

			// 変更操作には専用レート制限を追加
			r.With(deps.RateLimiter.MutationMiddleware()).Post("/", labelHandler.AttachLabel)
			r.With(deps.RateLimiter.MutationMiddleware()).Delete("/", labelHandler.DetachLabel)
		})
	})

	return r
}

// NewHealthHandler はヘルスチェックエンドポイントのハンドラーを返す。
// ストアへの疎通が取れない場合は503を返す。
func NewHealthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if checker != nil {
			if err := checker.PingContext(r.Context()); err != nil {
				slog.Error("health check failed", slog.String("error", err.Error()))
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{"status": "unavailable"})
				return
			}
		}

		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}
