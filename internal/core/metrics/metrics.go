// Package metrics 导出核心三个组件的 Prometheus 指标
//
// 指标面刻意收窄：流配对结果、认证成败与超时、搜索延迟与在途数，
// 用 client_golang/prometheus 的标准 promauto 注册方式实现。
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry 持有三个核心组件导出的全部指标
type Registry struct {
	StreamPairsTotal     *prometheus.CounterVec
	StreamPairTimeouts   prometheus.Counter
	AuthSuccessTotal     *prometheus.CounterVec
	AuthFailureTotal     *prometheus.CounterVec
	AuthTimeoutTotal     *prometheus.CounterVec
	SearchLatencySeconds prometheus.Histogram
	ActiveSearches       prometheus.Gauge
}

// NewRegistry 在给定的 prometheus.Registerer 上注册全部指标
//
// 传入 nil 时使用 prometheus.DefaultRegisterer。
func NewRegistry(reg prometheus.Registerer) *Registry {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Registry{
		StreamPairsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "xcore",
			Subsystem: "xstream",
			Name:      "pairs_total",
			Help:      "Total number of substream pairs resolved, by outcome.",
		}, []string{"outcome"}),
		StreamPairTimeouts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "xcore",
			Subsystem: "xstream",
			Name:      "pair_timeouts_total",
			Help:      "Total number of pending substreams that expired unpaired.",
		}),
		AuthSuccessTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "xcore",
			Subsystem: "xauth",
			Name:      "success_total",
			Help:      "Total number of successful directional PoR authentications.",
		}, []string{"direction"}),
		AuthFailureTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "xcore",
			Subsystem: "xauth",
			Name:      "failure_total",
			Help:      "Total number of failed directional PoR authentications.",
		}, []string{"direction"}),
		AuthTimeoutTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "xcore",
			Subsystem: "xauth",
			Name:      "timeout_total",
			Help:      "Total number of PoR authentication timeouts, by direction.",
		}, []string{"direction"}),
		SearchLatencySeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "xcore",
			Subsystem: "xroutes",
			Name:      "search_latency_seconds",
			Help:      "Latency of resolved FindPeerAddresses searches.",
			Buckets:   prometheus.DefBuckets,
		}),
		ActiveSearches: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "xcore",
			Subsystem: "xroutes",
			Name:      "active_searches",
			Help:      "Number of peer searches currently in flight.",
		}),
	}
}

// NewTestRegistry 返回一个挂在全新私有 registry 上的 Registry，
// 避免跨包测试在 prometheus.DefaultRegisterer 上互相冲突
func NewTestRegistry() *Registry {
	return NewRegistry(prometheus.NewRegistry())
}
