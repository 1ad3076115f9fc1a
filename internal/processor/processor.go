// =============================
// File: internal/processor/processor.go
// =============================
package processor

import (
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-router/internal/dex"
	"github.com/rovshanmuradov/solana-router/internal/errcode"
	"github.com/rovshanmuradov/solana-router/internal/instruction"
	"github.com/rovshanmuradov/solana-router/internal/runtime"
	"github.com/rovshanmuradov/solana-router/internal/utils/metrics"
)

// UnknownDexPolicy decides what a swap does with a dex type the registry
// does not know.
type UnknownDexPolicy string

const (
	// PolicySkip leaves the config out of the route without consuming any
	// accounts; built adapters take ratios by their own position.
	PolicySkip UnknownDexPolicy = "skip"
	// PolicySkipAligned consumes the skipped config's accounts and keeps every
	// adapter paired with its own config's ratio.
	PolicySkipAligned UnknownDexPolicy = "skip-aligned"
	// PolicyReject fails the swap with InvalidInput.
	PolicyReject UnknownDexPolicy = "reject"
)

// ParseUnknownDexPolicy validates a policy name.
func ParseUnknownDexPolicy(s string) (UnknownDexPolicy, error) {
	switch UnknownDexPolicy(s) {
	case PolicySkip, PolicySkipAligned, PolicyReject:
		return UnknownDexPolicy(s), nil
	default:
		return "", fmt.Errorf("unknown dex policy %q, expected %q, %q or %q", s, PolicySkip, PolicySkipAligned, PolicyReject)
	}
}

// Processor is the router program.
type Processor struct {
	registry *dex.Registry
	logger   *zap.Logger
	metrics  *metrics.Collector
	policy   UnknownDexPolicy
	strict   bool
}

// Option configures a Processor.
type Option func(*Processor)

// WithUnknownDexPolicy sets how unregistered dex types are handled.
func WithUnknownDexPolicy(policy UnknownDexPolicy) Option {
	return func(p *Processor) {
		p.policy = policy
	}
}

// WithStrictDecode rejects instructions carrying trailing bytes.
func WithStrictDecode(strict bool) Option {
	return func(p *Processor) {
		p.strict = strict
	}
}

// WithMetrics records instruction and leg metrics into c.
func WithMetrics(c *metrics.Collector) Option {
	return func(p *Processor) {
		p.metrics = c
	}
}

// New creates a router program backed by registry.
func New(registry *dex.Registry, logger *zap.Logger, opts ...Option) *Processor {
	p := &Processor{
		registry: registry,
		logger:   logger.Named("processor"),
		policy:   PolicySkip,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process decodes data and dispatches to the matching handler.
func (p *Processor) Process(ic *runtime.InvokeContext, programID solana.PublicKey, accounts []*runtime.AccountInfo, data []byte) error {
	start := time.Now()

	decode := instruction.Decode
	if p.strict {
		decode = instruction.DecodeStrict
	}

	ix, err := decode(data)
	if err != nil {
		p.fail(ic, "unknown", start, err)
		return err
	}

	kind := ix.Tag().String()
	switch v := ix.(type) {
	case *instruction.Initialize:
		ic.Log("Instruction: Initialize")
		err = p.ProcessInitialize(ic, programID, v.Nonce, accounts)

	case *instruction.Swap:
		ic.Log("Instruction: Swap")
		var outcome *SwapOutcome
		outcome, err = p.ProcessSwap(ic, programID, v.AmountIn, v.MinimumAmountOut, v.DexConfigs, accounts)
		if err == nil {
			p.metrics.RecordSwapOutput(outcome.AmountOut)
		}
	}

	if err != nil {
		p.fail(ic, kind, start, err)
		return err
	}

	p.metrics.RecordInstruction(kind, time.Since(start), nil)
	return nil
}

// fail emits the error label for router codes and records the failure.
func (p *Processor) fail(ic *runtime.InvokeContext, kind string, start time.Time, err error) {
	var code errcode.Code
	if errors.As(err, &code) {
		ic.Log(code.Label())
	}
	p.logger.Debug("Instruction failed",
		zap.String("instruction", kind),
		zap.Error(err))
	p.metrics.RecordInstruction(kind, time.Since(start), err)
}
