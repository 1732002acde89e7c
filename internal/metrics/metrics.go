// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector はPrometheusメトリクスを収集する実装。
// ミドルウェアと各サービス層のRecorderインターフェースを満たす。
type Collector struct {
	httpRequests   *prometheus.CounterVec
	httpLatency    prometheus.Histogram
	upstreamCalls  *prometheus.CounterVec
	otpIssued      prometheus.Counter
	otpVerified    *prometheus.CounterVec
	mailDispatches *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "zipdeck_http_requests_total",
			Help: "HTTPリクエストの合計数（メソッド・ステータスコード別）",
		}, []string{"method", "status_code"}),
		httpLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "zipdeck_http_request_duration_seconds",
			Help:    "HTTPリクエスト処理のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		upstreamCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "zipdeck_upstream_calls_total",
			Help: "外部サービス呼び出しの合計数（サービス・結果別）",
		}, []string{"service", "outcome"}),
		otpIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "zipdeck_otp_issued_total",
			Help: "発行されたOTPコードの合計数",
		}),
		otpVerified: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "zipdeck_otp_verified_total",
			Help: "OTP検証の合計数（結果別）",
		}, []string{"outcome"}),
		mailDispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "zipdeck_mail_dispatches_total",
			Help: "問い合わせメール送信の合計数（結果別）",
		}, []string{"outcome"}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpLatency,
		c.upstreamCalls,
		c.otpIssued,
		c.otpVerified,
		c.mailDispatches,
	)

	return c
}

// RecordHTTPRequest はHTTPリクエストの完了を記録する。
func (c *Collector) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	c.httpLatency.Observe(duration.Seconds())
}

// RecordUpstreamCall は外部サービス呼び出しの結果を記録する。
func (c *Collector) RecordUpstreamCall(service string, success bool) {
	c.upstreamCalls.WithLabelValues(service, outcomeLabel(success)).Inc()
}

// RecordOTPIssued はOTPコードの発行を記録する。
func (c *Collector) RecordOTPIssued() {
	c.otpIssued.Inc()
}

// RecordOTPVerified はOTP検証の結果を記録する。
func (c *Collector) RecordOTPVerified(success bool) {
	c.otpVerified.WithLabelValues(outcomeLabel(success)).Inc()
}

// RecordMailDispatch は問い合わせメール送信の結果を記録する。
func (c *Collector) RecordMailDispatch(success bool) {
	c.mailDispatches.WithLabelValues(outcomeLabel(success)).Inc()
}

func outcomeLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
