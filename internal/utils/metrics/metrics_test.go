package metrics

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordInstruction(t *testing.T) {
	c := NewCollector()

	c.RecordInstruction("swap", time.Millisecond, nil)
	c.RecordInstruction("swap", time.Millisecond, errors.New("boom"))
	c.RecordInstruction("initialize", time.Millisecond, nil)

	cv, ok := c.counterVec(InstructionCounterType)
	require.True(t, ok)
	assert.Equal(t, 1.0, testutil.ToFloat64(cv.WithLabelValues("swap", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(cv.WithLabelValues("swap", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(cv.WithLabelValues("initialize", "success")))

	c.Reset()
	assert.Equal(t, 0.0, testutil.ToFloat64(cv.WithLabelValues("swap", "success")))
}

func TestRecordLegAndOutput(t *testing.T) {
	c := NewCollector()
	c.RecordLeg("token-swap", "executed")
	c.RecordLeg("token-swap", "executed")
	c.RecordLeg("dex(9)", "skipped")
	c.RecordSwapOutput(30)
	c.RecordRPCLatency("getMultipleAccounts", 20*time.Millisecond)

	cv, ok := c.counterVec(SwapLegCounterType)
	require.True(t, ok)
	assert.Equal(t, 2.0, testutil.ToFloat64(cv.WithLabelValues("token-swap", "executed")))

	var buf bytes.Buffer
	require.NoError(t, c.WriteText(&buf))
	assert.Contains(t, buf.String(), "solana_router_swap_amount_out_sum 30")
	assert.Contains(t, buf.String(), `solana_router_swap_legs_total{dex="dex(9)",status="skipped"} 1`)
}

func TestNilCollector(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.RecordInstruction("swap", time.Second, nil)
		c.RecordLeg("token-swap", "executed")
		c.RecordSwapOutput(1)
		c.RecordRPCLatency("getMultipleAccounts", time.Second)
	})
}

func TestCollectorsAreIndependent(t *testing.T) {
	assert.NotPanics(t, func() {
		NewCollector()
		NewCollector()
	})
}
