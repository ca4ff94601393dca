// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層・通知ディスパッチャー・ワーカーから利用する。
type MetricsCollector interface {
	RecordTaskCreated()
	RecordTaskUpdated()
	RecordTaskDeleted()
	RecordNotificationSent(channel string)
	RecordNotificationFailure(channel string)
	RecordHTTPStatus(statusCode int)
	RecordScanLatency(duration time.Duration)
	RecordDeadlineAlerts(count int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	tasksCreated   prometheus.Counter
	tasksUpdated   prometheus.Counter
	tasksDeleted   prometheus.Counter
	notifySent     *prometheus.CounterVec
	notifyFail     *prometheus.CounterVec
	httpStatus     *prometheus.CounterVec
	scanLatency    prometheus.Histogram
	deadlineAlerts prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		tasksCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskhub_tasks_created_total",
			Help: "作成されたタスクの合計数",
		}),
		tasksUpdated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskhub_tasks_updated_total",
			Help: "更新されたタスクの合計数",
		}),
		tasksDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskhub_tasks_deleted_total",
			Help: "削除されたタスクの合計数",
		}),
		notifySent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskhub_notifications_sent_total",
			Help: "チャネル別の通知送信成功数",
		}, []string{"channel"}),
		notifyFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskhub_notifications_fail_total",
			Help: "チャネル別の通知送信失敗数",
		}, []string{"channel"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskhub_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		scanLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "taskhub_deadline_scan_latency_seconds",
			Help:    "期限スキャン1回あたりのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		deadlineAlerts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskhub_deadline_alerts_total",
			Help: "送信された期限アラートの合計数",
		}),
	}

	reg.MustRegister(
		c.tasksCreated,
		c.tasksUpdated,
		c.tasksDeleted,
		c.notifySent,
		c.notifyFail,
		c.httpStatus,
		c.scanLatency,
		c.deadlineAlerts,
	)

	return c
}

// RecordTaskCreated はタスク作成を記録する。
func (c *Collector) RecordTaskCreated() {
	c.tasksCreated.Inc()
}

// RecordTaskUpdated はタスク更新を記録する。
func (c *Collector) RecordTaskUpdated() {
	c.tasksUpdated.Inc()
}

// RecordTaskDeleted はタスク削除を記録する。
func (c *Collector) RecordTaskDeleted() {
	c.tasksDeleted.Inc()
}

// RecordNotificationSent は通知送信成功をチャネル別に記録する。
func (c *Collector) RecordNotificationSent(channel string) {
	c.notifySent.WithLabelValues(channel).Inc()
}

// RecordNotificationFailure は通知送信失敗をチャネル別に記録する。
func (c *Collector) RecordNotificationFailure(channel string) {
	c.notifyFail.WithLabelValues(channel).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordScanLatency は期限スキャンのレイテンシを記録する。
func (c *Collector) RecordScanLatency(duration time.Duration) {
	c.scanLatency.Observe(duration.Seconds())
}

// RecordDeadlineAlerts は送信された期限アラート数を記録する。
func (c *Collector) RecordDeadlineAlerts(count int) {
	c.deadlineAlerts.Add(float64(count))
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
