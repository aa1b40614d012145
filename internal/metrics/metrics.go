// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ハンドラーやサービス層から利用する。
type MetricsCollector interface {
	RecordLabelAttach()
	RecordLabelAttachFail(reason string)
	RecordLabelDetach()
	RecordLabelDetachFail(reason string)
	RecordAuthzDenied()
	RecordHTTPStatus(statusCode int)
	RecordSessionsCleaned(count int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	labelAttach     prometheus.Counter
	labelAttachFail *prometheus.CounterVec
	labelDetach     prometheus.Counter
	labelDetachFail *prometheus.CounterVec
	authzDenied     prometheus.Counter
	httpStatus      *prometheus.CounterVec
	sessionsCleaned prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		labelAttach: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ticketman_label_attach_total",
			Help: "ラベル関連付け成功の合計数",
		}),
		labelAttachFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ticketman_label_attach_fail_total",
			Help: "ラベル関連付け失敗の合計数（理由別）",
		}, []string{"reason"}),
		labelDetach: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ticketman_label_detach_total",
			Help: "ラベル解除成功の合計数",
		}),
		labelDetachFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ticketman_label_detach_fail_total",
			Help: "ラベル解除失敗の合計数（理由別）",
		}, []string{"reason"}),
		authzDenied: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ticketman_authz_denied_total",
			Help: "管理者認可ゲートによる拒否の合計数",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ticketman_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		sessionsCleaned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ticketman_sessions_cleaned_total",
			Help: "クリーンアップされた期限切れセッションの合計数",
		}),
	}

	reg.MustRegister(
		c.labelAttach,
		c.labelAttachFail,
		c.labelDetach,
		c.labelDetachFail,
		c.authzDenied,
		c.httpStatus,
		c.sessionsCleaned,
	)

	return c
}

// RecordLabelAttach はラベル関連付け成功を記録する。
func (c *Collector) RecordLabelAttach() {
	c.labelAttach.Inc()
}

// RecordLabelAttachFail はラベル関連付け失敗を理由付きで記録する。
func (c *Collector) RecordLabelAttachFail(reason string) {
	c.labelAttachFail.WithLabelValues(reason).Inc()
}

// RecordLabelDetach はラベル解除成功を記録する。
func (c *Collector) RecordLabelDetach() {
	c.labelDetach.Inc()
}

// RecordLabelDetachFail はラベル解除失敗を理由付きで記録する。
func (c *Collector) RecordLabelDetachFail(reason string) {
	c.labelDetachFail.WithLabelValues(reason).Inc()
}

// RecordAuthzDenied は認可拒否を記録する。
func (c *Collector) RecordAuthzDenied() {
	c.authzDenied.Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordSessionsCleaned はクリーンアップされたセッション数を記録する。
func (c *Collector) RecordSessionsCleaned(count int) {
	c.sessionsCleaned.Add(float64(count))
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
