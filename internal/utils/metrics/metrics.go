// internal/utils/metrics/metrics.go
package metrics

import (
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// RecordInstruction записывает результат обработки инструкции
func (c *Collector) RecordInstruction(instruction string, duration time.Duration, err error) {
	if c == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failed"
	}
	if cv, ok := c.counterVec(InstructionCounterType); ok {
		cv.WithLabelValues(instruction, result).Inc()
	}
	if hv, ok := c.histogramVec(InstructionDurationType); ok {
		hv.WithLabelValues(instruction).Observe(duration.Seconds())
	}
}

// RecordLeg записывает выполненную или пропущенную ветку свапа
func (c *Collector) RecordLeg(dex, status string) {
	if c == nil {
		return
	}
	if cv, ok := c.counterVec(SwapLegCounterType); ok {
		cv.WithLabelValues(dex, status).Inc()
	}
}

// RecordSwapOutput записывает итоговую сумму свапа
func (c *Collector) RecordSwapOutput(amount uint64) {
	if c == nil {
		return
	}
	if v, ok := c.metrics.Load(SwapAmountOutType); ok {
		if h, ok := v.(prometheus.Histogram); ok {
			h.Observe(float64(amount))
		}
	}
}

// RecordRPCLatency записывает метрики RPC-запроса
func (c *Collector) RecordRPCLatency(method string, duration time.Duration) {
	if c == nil {
		return
	}
	if hv, ok := c.histogramVec(RPCLatencyType); ok {
		hv.WithLabelValues(method).Observe(duration.Seconds())
	}
}

// WriteText dumps every metric in the Prometheus text format.
func (c *Collector) WriteText(w io.Writer) error {
	families, err := c.registry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
