// =============================
// File: internal/scenario/report.go
// =============================
package scenario

import (
	"fmt"
	"io"
	"math/big"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
)

// Balance is a token account's amount before and after the swap.
type Balance struct {
	Name     string
	Key      solana.PublicKey
	Mint     string
	Decimals int32
	Before   uint64
	After    uint64
}

func (b Balance) BeforeUI() decimal.Decimal { return uiAmount(b.Before, b.Decimals) }
func (b Balance) AfterUI() decimal.Decimal  { return uiAmount(b.After, b.Decimals) }

// Delta is the signed UI-amount change.
func (b Balance) Delta() decimal.Decimal {
	return b.AfterUI().Sub(b.BeforeUI())
}

func uiAmount(amount uint64, decimals int32) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(amount), -decimals)
}

// Report is the outcome of one scenario run.
type Report struct {
	Scenario   string
	RunID      string
	Err        error
	Logs       []string
	Balances   []Balance
	Mismatches []string
}

// Passed reports whether every expectation held.
func (r *Report) Passed() bool {
	return len(r.Mismatches) == 0
}

// Balance looks up a reported balance by name.
func (r *Report) Balance(name string) (Balance, bool) {
	for _, b := range r.Balances {
		if b.Name == name {
			return b, true
		}
	}
	return Balance{}, false
}

func (r *Report) WriteText(w io.Writer) error {
	status := "PASS"
	if !r.Passed() {
		status = "FAIL"
	}
	result := "ok"
	if r.Err != nil {
		result = r.Err.Error()
	}

	if _, err := fmt.Fprintf(w, "scenario %s [%s] run %s\nresult: %s\n\n", r.Scenario, status, r.RunID, result); err != nil {
		return err
	}
	for _, line := range r.Logs {
		if _, err := fmt.Fprintf(w, "  %s\n", line); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, "\nbalances:"); err != nil {
		return err
	}
	for _, b := range r.Balances {
		if _, err := fmt.Fprintf(w, "  %-24s %-8s %s -> %s (%s)\n",
			b.Name, b.Mint, b.BeforeUI().String(), b.AfterUI().String(), signed(b.Delta())); err != nil {
			return err
		}
	}
	for _, m := range r.Mismatches {
		if _, err := fmt.Fprintf(w, "mismatch: %s\n", m); err != nil {
			return err
		}
	}
	return nil
}

func signed(d decimal.Decimal) string {
	if d.IsPositive() {
		return "+" + d.String()
	}
	return d.String()
}
