package butterfly

import (
	"sort"
	"strings"

	"github.com/NimaEtemadi/broken-wing-butterfly-scanner/internal/chain"
)

// NormalizeOptionType maps the option type shorthands brokers emit onto
// "call" / "put". Anything unrecognized passes through lowercased; it simply
// won't match either side.
func NormalizeOptionType(optionType string) string {
	t := strings.ToLower(strings.TrimSpace(optionType))
	switch t {
	case "c", "call", "calls":
		return "call"
	case "p", "put", "puts":
		return "put"
	}
	return t
}

// FilterCalls trims a full chain down to the candidate legs for one scan:
// a single symbol (matched exactly), calls only, DTE within [minDTE, maxDTE]
// and, when expiry is non-empty, a single expiry.
//
// The result is sorted ascending by strike; rows with equal strikes keep
// their input order. An empty result is valid and not an error.
func FilterCalls(rows []chain.Row, symbol, expiry string, minDTE, maxDTE int) []chain.Row {
	legs := make([]chain.Row, 0, len(rows))
	for _, row := range rows {
		if row.Symbol != symbol {
			continue
		}
		if NormalizeOptionType(row.Type) != "call" {
			continue
		}
		if row.DTE < minDTE || row.DTE > maxDTE {
			continue
		}
		if expiry != "" && row.Expiry != expiry {
			continue
		}
		legs = append(legs, row)
	}

	sort.SliceStable(legs, func(i, j int) bool {
		return legs[i].Strike < legs[j].Strike
	})
	return legs
}
