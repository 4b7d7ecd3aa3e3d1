package chain

import (
	"math"
	"strconv"
	"strings"

	"github.com/NimaEtemadi/broken-wing-butterfly-scanner/internal/util"
)

// Normalize converts a raw table (header plus records) into canonical rows.
//
// Header names are matched case- and whitespace-insensitively. If any
// required column is absent the whole table is rejected with a *SchemaError
// naming the missing columns. When a mid column is absent, mid is computed
// per row as (bid+ask)/2.
//
// Numeric cells that fail to parse become missing values rather than errors.
// A row survives only if symbol, expiry, dte, strike, type, mid and delta are
// all present after coercion; bid, ask and iv may stay missing (NaN).
func Normalize(header []string, records [][]string) ([]Row, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Missing: missing}
	}

	midIdx, hasMid := index["mid"]

	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		symbol := cell(rec, index["symbol"])
		expiry := cell(rec, index["expiry"])
		typ := cell(rec, index["type"])
		if symbol == "" || expiry == "" || typ == "" {
			continue
		}

		dte, dteOK := parseNumeric(cell(rec, index["dte"]))
		strike, strikeOK := parseNumeric(cell(rec, index["strike"]))
		delta, deltaOK := parseNumeric(cell(rec, index["delta"]))
		if !dteOK || !strikeOK || !deltaOK {
			continue
		}

		bid, bidOK := parseNumeric(cell(rec, index["bid"]))
		ask, askOK := parseNumeric(cell(rec, index["ask"]))
		iv, ivOK := parseNumeric(cell(rec, index["iv"]))

		var mid float64
		var midOK bool
		if hasMid {
			mid, midOK = parseNumeric(cell(rec, midIdx))
		} else if bidOK && askOK {
			mid, midOK = util.MidPrice(bid, ask), true
		}
		if !midOK {
			continue
		}

		if !bidOK {
			bid = math.NaN()
		}
		if !askOK {
			ask = math.NaN()
		}
		if !ivOK {
			iv = math.NaN()
		}

		rows = append(rows, Row{
			Symbol: symbol,
			Expiry: expiry,
			DTE:    int(dte),
			Strike: strike,
			Type:   typ,
			Bid:    bid,
			Ask:    ask,
			Mid:    mid,
			Delta:  delta,
			IV:     iv,
		})
	}

	return rows, nil
}

func cell(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func parseNumeric(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}
