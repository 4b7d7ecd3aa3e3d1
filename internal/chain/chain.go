// Package chain loads and normalizes raw options-chain tables into canonical
// rows the scanner can work with. A chain arrives as tabular data (CSV on
// disk or fetched over HTTP); normalization handles header casing, the
// optional mid column and numeric coercion.
package chain

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
)

// Row is one quoted option instrument after normalization.
//
// Bid, Ask and IV are informational and may be NaN when the source cell was
// empty or unparsable. Every other field is guaranteed populated; rows that
// would violate that are dropped during normalization.
type Row struct {
	Symbol string
	Expiry string
	DTE    int
	Strike float64
	Type   string
	Bid    float64
	Ask    float64
	Mid    float64
	Delta  float64
	IV     float64
}

// Source produces the raw rows of an options chain.
type Source interface {
	Fetch(ctx context.Context) ([]Row, error)
}

// SchemaError reports required chain columns missing from the source table.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	cols := append([]string(nil), e.Missing...)
	sort.Strings(cols)
	return fmt.Sprintf("missing required chain columns: %s", strings.Join(cols, ", "))
}

// requiredColumns is the minimum schema of a chain table. mid is optional and
// default-filled from bid/ask when absent.
var requiredColumns = []string{"symbol", "expiry", "dte", "strike", "type", "bid", "ask", "delta", "iv"}

// IsMissing reports whether an informational cell (bid/ask/iv) was absent.
func IsMissing(v float64) bool {
	return math.IsNaN(v)
}
