// Package model はドメインモデルを定義する。
package model

import "time"

// Ticket はサポートチケットを表す。
// チケットのライフサイクル（作成、状態遷移、割り当て）は外部のチケッティング
// サブシステムが管理し、本サービスはラベル関連付けの対象としてのみ参照する。
type Ticket struct {
	ID        string
	Subject   string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Label はチケットに付与できるラベルを表す。
type Label struct {
	ID        string
	Name      string
	Color     string // UI表示用の16進カラーコード
	CreatedAt time.Time
}

// TicketLabel はチケットとラベルの関連付けを表す。
// (ticket_id, label_id) の組につき最大1件。一意性はストアのUNIQUE制約が保証する。
type TicketLabel struct {
	ID        string
	TicketID  string
	LabelID   string
	CreatedAt time.Time
}

// TicketLabelWithInfo は関連付けにラベル情報を結合したモデル。
// labelsテーブルとJOINして取得される。
type TicketLabelWithInfo struct {
	TicketLabel
	LabelName  string
	LabelColor string
}
