package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "familytree"

// MetricsService 业务指标
type MetricsService struct {
	// Operations 家族图操作计数，labels: operation, outcome
	Operations *prometheus.CounterVec
	// CascadeDeleted 级联删除的成员数
	CascadeDeleted prometheus.Counter
	// ChainCache 家族链缓存命中情况，labels: result (hit, miss)
	ChainCache *prometheus.CounterVec
	// RequestDuration HTTP请求耗时，labels: method, route, status
	RequestDuration *prometheus.HistogramVec
}

// NewMetricsService 创建并注册指标
func NewMetricsService(reg prometheus.Registerer) *MetricsService {
	m := &MetricsService{
		Operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "family_operations_total",
			Help:      "Family graph operations by operation and outcome.",
		}, []string{"operation", "outcome"}),
		CascadeDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "cascade_deleted_members_total",
			Help:      "Members removed by cascading deletes.",
		}),
		ChainCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "family_chain_cache_total",
			Help:      "Family chain cache lookups by result.",
		}, []string{"result"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	if reg != nil {
		reg.MustRegister(m.Operations, m.CascadeDeleted, m.ChainCache, m.RequestDuration)
	}
	return m
}

// Observe 记录一次操作结果
func (m *MetricsService) Observe(operation string, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = CodeOf(err).String()
	}
	m.Operations.WithLabelValues(operation, outcome).Inc()
}

func (m *MetricsService) cacheResult(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.ChainCache.WithLabelValues("hit").Inc()
		return
	}
	m.ChainCache.WithLabelValues("miss").Inc()
}

func (m *MetricsService) cascadeDeleted(n int) {
	if m == nil || n == 0 {
		return
	}
	m.CascadeDeleted.Add(float64(n))
}
