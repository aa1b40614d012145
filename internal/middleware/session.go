// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
)

const sessionCookieName = "session_id"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// userIDContextKey はリクエストコンテキストにユーザーIDを格納するためのキー。
var userIDContextKey = contextKey("user_id")

// Authorizer は管理者認可ゲートのインターフェース。auth.Serviceが実装する。
type Authorizer interface {
	// Authorize はセッションIDから認証ユーザーを解決し、管理者権限を検証する。
	Authorize(ctx context.Context, sessionID string) (userID string, ok bool, err error)
}

// NewAdminSessionMiddleware はHTTP Only Cookieからセッション資格情報を読み取り、
// 認可ゲートで管理者権限を検証するミドルウェアを返す。
// 許可された場合のみユーザーIDをリクエストコンテキストに注入する。
// Cookie不在・セッション無効・非管理者はいずれも401 Unauthorizedになる。
// ゲートのストア参照が失敗した場合は認可判定ではなく500を返す。
func NewAdminSessionMiddleware(authorizer Authorizer) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. Cookieからセッション資格情報を取得（不在は空文字としてゲートに渡す）
			var sessionID string
			if cookie, err := r.Cookie(sessionCookieName); err == nil {
				sessionID = cookie.Value
			}

			// 2. 認可ゲートで判定
			userID, ok, err := authorizer.Authorize(r.Context(), sessionID)
			if err != nil {
				slog.Error("authorization gate failed",
					slog.String("error", err.Error()),
				)
				WriteInternalServerError(w)
				return
			}
			if !ok {
				WriteUnauthorizedResponse(w)
				return
			}

			// 3. 認可済みユーザーIDをコンテキストに注入
			ctx := context.WithValue(r.Context(), userIDContextKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext はリクエストコンテキストからユーザーIDを取得する。
// 管理者セッションミドルウェアを通過したリクエストでのみ有効。
func UserIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(userIDContextKey).(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}

// ContextWithUserID はコンテキストにユーザーIDを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}
