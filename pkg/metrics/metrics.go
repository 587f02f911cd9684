// Package metrics 定义服务的Prometheus指标
//
// 指标类型：
//   - Counter: 只增不减（请求总数、借阅次数、罚款金额）
//   - Gauge: 可增可减（在借副本数、熔断器状态）
//   - Histogram: 分布统计（请求耗时、操作耗时）
//
// 所有指标在包加载时通过promauto注册到默认Registry，
// 由/metrics路由（promhttp.Handler）暴露给Prometheus抓取。
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "library"

var (
	// ========== HTTP指标 ==========

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP请求总数",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP请求耗时（秒）",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 5},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_progress",
			Help:      "正在处理的HTTP请求数",
		},
	)

	// ========== 业务指标 ==========

	// OperationsTotal 核心操作次数，result为成功或错误类别（not_found、precondition_failed等）
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "图书馆核心操作总数",
		},
		[]string{"operation", "result"},
	)

	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "图书馆核心操作耗时（秒）",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"operation"},
	)

	// BorrowRollbacksTotal 借书持久化失败后撤销内存预占的次数
	BorrowRollbacksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "borrow_rollbacks_total",
			Help:      "借书写入失败后回滚内存状态的次数",
		},
	)

	// ReturnDivergencesTotal 还书持久化失败、内存状态已变更的次数（不回滚）
	ReturnDivergencesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "return_divergences_total",
			Help:      "还书写入失败导致内存与存储不一致的次数",
		},
	)

	FinesAssessedCents = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fines_assessed_cents_total",
			Help:      "累计产生的逾期罚款（分）",
		},
	)

	FinesCollectedCents = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fines_collected_cents_total",
			Help:      "累计缴纳的罚款（分）",
		},
	)

	CopiesOnLoan = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "copies_on_loan",
			Help:      "当前借出的副本数",
		},
	)

	// ========== 熔断器指标 ==========

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_requests_total",
			Help:      "熔断器请求总数",
		},
		[]string{"name", "result"}, // success/failure/rejected
	)

	// ========== Saga指标 ==========

	SagaCompensationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "saga_compensations_total",
			Help:      "Saga补偿执行总数",
		},
		[]string{"step"},
	)

	// ========== 消息队列指标 ==========

	MessagesPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_published_total",
			Help:      "消息发布总数",
		},
		[]string{"exchange", "routing_key", "result"},
	)

	MessagesConsumedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_consumed_total",
			Help:      "消息消费总数",
		},
		[]string{"queue", "result"},
	)
)

// ========== 辅助函数 ==========

// IncCounter 递增Counter
func IncCounter(counter prometheus.Counter) {
	counter.Inc()
}

// AddCounter Counter增加指定值（负数会panic，这里直接忽略）
func AddCounter(counter prometheus.Counter, value float64) {
	if value <= 0 {
		return
	}
	counter.Add(value)
}

// IncCounterVec 递增带标签的Counter
func IncCounterVec(counter *prometheus.CounterVec, labels map[string]string) {
	counter.With(labels).Inc()
}

// SetGauge 设置Gauge值
func SetGauge(gauge prometheus.Gauge, value float64) {
	gauge.Set(value)
}

// SetGaugeVec 设置带标签的Gauge值
func SetGaugeVec(gauge *prometheus.GaugeVec, labels map[string]string, value float64) {
	gauge.With(labels).Set(value)
}

// ObserveHistogramVec 记录带标签的Histogram值
func ObserveHistogramVec(histogram *prometheus.HistogramVec, labels map[string]string, value float64) {
	histogram.With(labels).Observe(value)
}

// ObserveOperation 记录一次核心操作的结果和耗时
func ObserveOperation(operation, result string, start time.Time) {
	OperationsTotal.WithLabelValues(operation, result).Inc()
	OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
