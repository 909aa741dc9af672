// Package feepolicy decides the fees of the next submission attempt. It is
// the only component in the manager that ever looks at the previous
// attempt's fees and the oracle's fresh quote together.
package feepolicy

import (
	"math/big"

	"github.com/cartesi/tx-manager/internal/chain"
)

// DefaultMinBumpFactor is the minimum multiplicative bump a resubmission
// must clear over the previous attempt, expressed as a percentage (110 =
// +10%). Nodes reject same-nonce resubmissions that don't meaningfully
// outbid the prior variant.
const DefaultMinBumpFactor = 110

// Decision tells the manager whether the candidate fees are a real bump
// over the previous attempt.
type Decision int

const (
	// Submit means the candidate fees strictly bump the previous attempt;
	// the manager should broadcast a new variant.
	Submit Decision = iota
	// HoldPrevious means the candidate did not clear the minimum bump; the
	// manager should keep waiting on the current attempt.
	HoldPrevious
)

// Policy computes the next attempt's fees from the chain's fee model, the
// oracle's fresh quote, and (if any) the previous attempt.
type Policy struct {
	// MinBumpFactorPct is the minimum bump, as a percentage (110 = +10%).
	// Zero means DefaultMinBumpFactor.
	MinBumpFactorPct int64
}

func (p Policy) minBumpFactorPct() int64 {
	if p.MinBumpFactorPct == 0 {
		return DefaultMinBumpFactor
	}
	return p.MinBumpFactorPct
}

// bump multiplies v by MinBumpFactorPct/100, rounding up.
func (p Policy) bump(v *big.Int) *big.Int {
	if v == nil {
		return nil
	}
	pct := big.NewInt(p.minBumpFactorPct())
	num := new(big.Int).Mul(v, pct)
	den := big.NewInt(100)
	q, r := new(big.Int).QuoRem(num, den, new(big.Int))
	if r.Sign() != 0 {
		q.Add(q, big.NewInt(1))
	}
	return q
}

func maxBig(a, b *big.Int) *big.Int {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if a.Cmp(b) >= 0 {
		return a
	}
	return b
}

// Next computes the fees for the next attempt and whether they constitute a
// legitimate bump over prev. baseFee is only consulted for EIP-1559 chains
// and may be nil for legacy chains.
func (p Policy) Next(desc chain.Descriptor, baseFee *big.Int, prev *chain.Quote, fresh chain.Quote) (chain.Quote, Decision) {
	if prev == nil {
		// First attempt: take the oracle's quote directly.
		return fresh, Submit
	}

	if desc.IsLegacy {
		candidate := maxBig(fresh.GasPrice, p.bump(prev.GasPrice))
		if candidate.Cmp(prev.GasPrice) <= 0 {
			return *prev, HoldPrevious
		}
		return chain.Quote{GasPrice: candidate}, Submit
	}

	maxFee := maxBig(fresh.MaxFee, p.bump(prev.MaxFee))
	tip := maxBig(fresh.MaxPriorityFee, p.bump(prev.MaxPriorityFee))

	// Preserve max_priority_fee <= max_fee; if the oracle's tip outran its
	// own max_fee suggestion, raise max_fee to cover it over base fee.
	if tip.Cmp(maxFee) > 0 {
		if baseFee != nil {
			floor := new(big.Int).Add(baseFee, tip)
			maxFee = maxBig(maxFee, floor)
		} else {
			maxFee = tip
		}
	}

	if maxFee.Cmp(prev.MaxFee) <= 0 && tip.Cmp(prev.MaxPriorityFee) <= 0 {
		return *prev, HoldPrevious
	}

	return chain.Quote{MaxFee: maxFee, MaxPriorityFee: tip}, Submit
}
