// Package metrics 提供 Prometheus 指标收集
package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 指标收集器
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge
	bookingsTotal        *prometheus.CounterVec
	paymentsTotal        *prometheus.CounterVec
	refundsTotal         *prometheus.CounterVec
	providerCallDuration *prometheus.HistogramVec
	notificationsTotal   *prometheus.CounterVec
}

var (
	defaultMetrics *Metrics
	mu             sync.Mutex
)

// Init 初始化指标收集器，每次调用使用独立的 Registry
func Init(namespace string) *Metrics {
	if namespace == "" {
		namespace = "hotel_booking"
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	m := &Metrics{
		registry: reg,
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		httpRequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_flight",
				Help:      "Current number of HTTP requests being processed",
			},
		),
		bookingsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "bookings_total",
				Help:      "Booking state machine outcomes",
			},
			[]string{"result"},
		),
		paymentsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "payments_total",
				Help:      "Payment reconciliation events",
			},
			[]string{"event"},
		),
		refundsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "refunds_total",
				Help:      "Refund attempts by result",
			},
			[]string{"result"},
		),
		providerCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "provider_call_duration_seconds",
				Help:      "Payment provider call latency",
				Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"op", "outcome"},
		),
		notificationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "notifications_total",
				Help:      "Notification tasks by type and result",
			},
			[]string{"type", "result"},
		),
	}

	mu.Lock()
	defaultMetrics = m
	mu.Unlock()
	return m
}

// GetMetrics 获取默认指标收集器
func GetMetrics() *Metrics {
	mu.Lock()
	m := defaultMetrics
	mu.Unlock()
	if m == nil {
		return Init("")
	}
	return m
}

// Registry 返回底层 Registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Middleware 返回 Gin 中间件
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		m.httpRequestsInFlight.Inc()

		c.Next()

		m.httpRequestsInFlight.Dec()
		path := c.FullPath()
		if path == "" {
			path = "unknown"
		}

		m.httpRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler 返回 Prometheus HTTP 处理器
func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// 预订结果标签
const (
	BookingCreated      = "created"
	BookingUnavailable  = "unavailable"
	BookingConfirmed    = "confirmed"
	BookingCancelled    = "cancelled"
	BookingCompleted    = "completed"
	PaymentIntent       = "intent_created"
	PaymentSucceeded    = "succeeded"
	PaymentDuplicate    = "duplicate"
	PaymentFailed       = "failed"
	PaymentBadSignature = "bad_signature"
)

// RecordBooking 记录预订状态变化
func RecordBooking(result string) {
	GetMetrics().bookingsTotal.WithLabelValues(result).Inc()
}

// RecordPayment 记录支付对账事件
func RecordPayment(event string) {
	GetMetrics().paymentsTotal.WithLabelValues(event).Inc()
}

// RecordRefund 记录退款结果
func RecordRefund(result string) {
	GetMetrics().refundsTotal.WithLabelValues(result).Inc()
}

// ObserveProviderCall 记录支付渠道调用耗时
func ObserveProviderCall(op string, err error, d time.Duration) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	GetMetrics().providerCallDuration.WithLabelValues(op, outcome).Observe(d.Seconds())
}

// RecordNotification 记录通知任务结果
func RecordNotification(typ, result string) {
	GetMetrics().notificationsTotal.WithLabelValues(typ, result).Inc()
}
