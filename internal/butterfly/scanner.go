package butterfly

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/NimaEtemadi/broken-wing-butterfly-scanner/internal/chain"
)

// ErrAmbiguousExpiry is returned when a scan without an explicit expiry
// filter finds legs from more than one expiry inside the DTE window. Mixing
// expiries in one structure would produce candidates labeled with the wrong
// expiry, so the caller has to narrow the scan instead.
var ErrAmbiguousExpiry = errors.New("filtered chain spans multiple expiries; pass an explicit expiry")

// ErrBadLeg is returned when a filtered leg carries a NaN mid or delta.
// Normalization never produces such rows, but Scan also accepts caller-built
// ones.
var ErrBadLeg = errors.New("chain leg has missing mid or delta")

// Params control a single scan.
//
// Symbol is required. Expiry is optional at this layer: when empty, the DTE
// window must resolve to a single expiry or the scan fails.
type Params struct {
	Symbol        string
	Expiry        string
	MinDTE        int
	MaxDTE        int
	MinCredit     float64
	ShortDeltaMin float64
	ShortDeltaMax float64
}

// DefaultParams returns scan parameters with the standard filter thresholds.
func DefaultParams(symbol, expiry string) Params {
	return Params{
		Symbol:        symbol,
		Expiry:        expiry,
		MinDTE:        1,
		MaxDTE:        10,
		MinCredit:     0.50,
		ShortDeltaMin: 0.20,
		ShortDeltaMax: 0.35,
	}
}

// Spread is one candidate broken wing butterfly: long 1 call at K1, short 2
// at K2, long 1 at K3, with its per-share economics. Immutable once built.
type Spread struct {
	Symbol    string  `json:"symbol"`
	Expiry    string  `json:"expiry"`
	DTE       int     `json:"dte"`
	K1        float64 `json:"k1"`
	K2        float64 `json:"k2"`
	K3        float64 `json:"k3"`
	Credit    float64 `json:"credit"`
	MaxProfit float64 `json:"max_profit"`
	MaxLoss   float64 `json:"max_loss"`
	Score     float64 `json:"score"`
}

// Scan builds and scores candidate broken wing butterflies for one symbol.
//
// It enumerates every strictly increasing strike triple (K1, K2, K3) over
// the filtered call legs and keeps a triple only if:
//
//   - the outer wing K3-K2 is strictly wider than the inner wing K2-K1
//   - |delta| of the short strike K2 is within [ShortDeltaMin, ShortDeltaMax]
//   - the net credit 2*m2 - m1 - m3 is at least MinCredit
//   - the structure has a real worst case (max loss > 0)
//
// Survivors are scored max_profit/max_loss and returned in descending score
// order; ties keep enumeration order. An empty chain or zero qualifying
// triples yields an empty, non-nil error-free result.
//
// The enumeration is an exhaustive O(n³) pass over the filtered leg count;
// callers needing bounded latency bound n upstream via the DTE window.
func Scan(rows []chain.Row, p Params) ([]Spread, error) {
	legs := FilterCalls(rows, p.Symbol, p.Expiry, p.MinDTE, p.MaxDTE)
	if len(legs) == 0 {
		return []Spread{}, nil
	}

	if p.Expiry == "" {
		for _, leg := range legs[1:] {
			if leg.Expiry != legs[0].Expiry {
				return nil, fmt.Errorf("%w: found %q and %q", ErrAmbiguousExpiry, legs[0].Expiry, leg.Expiry)
			}
		}
	}

	// NaN mids or deltas would sail through the threshold comparisons below
	// and surface as NaN-scored candidates.
	for _, leg := range legs {
		if math.IsNaN(leg.Mid) || math.IsNaN(leg.Delta) {
			return nil, fmt.Errorf("%w: %s %s strike %g", ErrBadLeg, leg.Symbol, leg.Expiry, leg.Strike)
		}
	}

	// The filter guarantees a single expiry at this point; report it (and
	// its DTE) on every candidate.
	expiry := legs[0].Expiry
	dte := legs[0].DTE

	n := len(legs)
	var results []Spread

	for i := 0; i < n; i++ {
		k1 := legs[i].Strike
		m1 := legs[i].Mid

		for j := i + 1; j < n; j++ {
			k2 := legs[j].Strike
			m2 := legs[j].Mid

			innerWing := k2 - k1
			if innerWing <= 0 {
				continue
			}

			shortDelta := math.Abs(legs[j].Delta)
			if shortDelta < p.ShortDeltaMin || shortDelta > p.ShortDeltaMax {
				continue
			}

			for k := j + 1; k < n; k++ {
				k3 := legs[k].Strike
				m3 := legs[k].Mid

				outerWing := k3 - k2
				if outerWing <= innerWing {
					continue
				}

				netCredit := 2*m2 - m1 - m3
				if netCredit < p.MinCredit {
					continue
				}

				maxProfit, maxLoss, err := MaxProfitAndLoss(k1, k2, k3, netCredit)
				if err != nil {
					return nil, err
				}
				if maxLoss <= 0 {
					// A structure with no losing region is a data artifact,
					// not a tradeable free lunch.
					continue
				}

				results = append(results, Spread{
					Symbol:    p.Symbol,
					Expiry:    expiry,
					DTE:       dte,
					K1:        k1,
					K2:        k2,
					K3:        k3,
					Credit:    netCredit,
					MaxProfit: maxProfit,
					MaxLoss:   maxLoss,
					Score:     maxProfit / maxLoss,
				})
			}
		}
	}

	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Score > results[b].Score
	})

	if results == nil {
		results = []Spread{}
	}
	return results, nil
}
