// internal/utils/metrics/collector.go
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricType представляет тип метрики
type MetricType string

const (
	InstructionCounterType  MetricType = "instruction_counter"
	InstructionDurationType MetricType = "instruction_duration"
	SwapLegCounterType      MetricType = "swap_leg_counter"
	SwapAmountOutType       MetricType = "swap_amount_out"
	RPCLatencyType          MetricType = "rpc_latency"
)

const namespace = "solana_router"

// Collector owns the router metrics and the registry they are exposed on.
// A nil *Collector records nothing.
type Collector struct {
	metrics  sync.Map
	registry *prometheus.Registry
}

// NewCollector создает новый экземпляр коллектора метрик
func NewCollector() *Collector {
	c := &Collector{registry: prometheus.NewRegistry()}
	c.initializeMetrics()
	return c
}

func (c *Collector) initializeMetrics() {
	metricsMap := map[MetricType]prometheus.Collector{
		InstructionCounterType: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "instructions_total",
				Help:      "Total number of router instructions processed",
			},
			[]string{"instruction", "result"},
		),
		InstructionDurationType: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "instruction_duration_seconds",
				Help:      "Instruction processing time in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
			},
			[]string{"instruction"},
		),
		SwapLegCounterType: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "swap_legs_total",
				Help:      "Swap legs by dex and outcome",
			},
			[]string{"dex", "status"},
		),
		SwapAmountOutType: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "swap_amount_out",
				Help:      "Amount released to the destination by successful swaps",
				Buckets:   prometheus.ExponentialBuckets(1, 10, 12),
			},
		),
		RPCLatencyType: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "rpc_latency_seconds",
				Help:      "RPC request latency in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 10),
			},
			[]string{"method"},
		),
	}

	for metricType, metric := range metricsMap {
		c.metrics.Store(metricType, metric)
		c.registry.MustRegister(metric)
	}
}

// Registry exposes the collector's registry for gathering.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Reset сбрасывает все метрики (полезно для тестирования)
func (c *Collector) Reset() {
	c.metrics.Range(func(_, value interface{}) bool {
		switch m := value.(type) {
		case *prometheus.CounterVec:
			m.Reset()
		case *prometheus.GaugeVec:
			m.Reset()
		case *prometheus.HistogramVec:
			m.Reset()
		}
		return true
	})
}

func (c *Collector) counterVec(t MetricType) (*prometheus.CounterVec, bool) {
	v, ok := c.metrics.Load(t)
	if !ok {
		return nil, false
	}
	cv, ok := v.(*prometheus.CounterVec)
	return cv, ok
}

func (c *Collector) histogramVec(t MetricType) (*prometheus.HistogramVec, bool) {
	v, ok := c.metrics.Load(t)
	if !ok {
		return nil, false
	}
	hv, ok := v.(*prometheus.HistogramVec)
	return hv, ok
}
