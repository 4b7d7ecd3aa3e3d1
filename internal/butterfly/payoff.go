// Package butterfly builds and ranks 1:-2:1 broken wing call butterfly
// candidates from a normalized options chain.
//
// All monetary values are per share; multiply by 100 for per-contract PnL.
package butterfly

import (
	"errors"
	"fmt"
	"math"
)

// ErrStrikeOrder is returned when a payoff calculation is asked for strikes
// that are not strictly increasing.
var ErrStrikeOrder = errors.New("strikes must satisfy k1 < k2 < k3")

// PayoffAtExpiry returns the per-share profit at expiry price S for a 1:-2:1
// call structure with net credit received. It evaluates correctly for any
// strikes; ordering is only required by MaxProfitAndLoss.
func PayoffAtExpiry(s, k1, k2, k3, netCredit float64) float64 {
	payoff := callPayoff(s, k1) - 2*callPayoff(s, k2) + callPayoff(s, k3)
	return payoff + netCredit
}

func callPayoff(s, k float64) float64 {
	return math.Max(s-k, 0)
}

// MaxProfitAndLoss returns the closed-form per-share max profit and max loss
// for a 1:-2:1 broken wing call butterfly with k1 < k2 < k3.
//
// The option-only payoff is piecewise linear: flat at 0 below k1, peaking at
// k2-k1 at S=k2, and settling on the plateau 2*k2-k1-k3 above k3 (negative
// when the outer wing is wider). Extrema can therefore only occur at S=k2 or
// in the two flat regions, which gives:
//
//	max_profit = (k2 - k1) + net_credit
//	max_loss   = max(0, -(min(0, plateau) + net_credit))
//
// Max loss is reported as a non-negative magnitude; a structure still
// profitable in its worst region has max loss 0.
func MaxProfitAndLoss(k1, k2, k3, netCredit float64) (float64, float64, error) {
	if !(k1 < k2 && k2 < k3) {
		return 0, 0, fmt.Errorf("%w: got %g, %g, %g", ErrStrikeOrder, k1, k2, k3)
	}

	plateau := 2*k2 - k1 - k3
	peak := k2 - k1

	maxProfit := peak + netCredit

	worstProfit := math.Min(0, plateau) + netCredit
	maxLoss := math.Max(0, -worstProfit)

	return maxProfit, maxLoss, nil
}
