// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
type User struct {
	ID        string
	Email     string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Role はプロファイルに付与される権限ロールを表す。
type Role string

const (
	// RoleAdmin は管理者ロール。ラベル管理エンドポイントへのアクセスを許可する。
	RoleAdmin Role = "admin"
	// RoleAgent はサポート担当者ロール。
	RoleAgent Role = "agent"
	// RoleUser は一般ユーザーロール。
	RoleUser Role = "user"
)

// Profile はユーザーごとの認可属性を保持するレコードを表す。
// ユーザーIDにつき必ず1件。存在しない場合は「権限なし」として扱う。
type Profile struct {
	ID        string
	UserID    string
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsAdmin はプロファイルが管理者ロールを持つかどうかを返す。
func (p *Profile) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

// Session はユーザーのログインセッションを表す。
// セッションの発行は外部の認証フローが行い、本サービスは読み取りのみ。
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
