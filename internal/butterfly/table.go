package butterfly

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
)

// Columns is the fixed output schema of a scan, in order. It is identical
// whether or not the scan produced any rows.
var Columns = []string{"symbol", "expiry", "dte", "k1", "k2", "k3", "credit", "max_profit", "max_loss", "score"}

// Table is a flat tabular view of scan results for rendering.
type Table struct {
	Header []string
	Rows   [][]string
}

// ResultTable converts ranked spreads into a table with the fixed column
// order. Zero spreads still yield the full header.
func ResultTable(spreads []Spread) Table {
	rows := make([][]string, 0, len(spreads))
	for _, s := range spreads {
		rows = append(rows, []string{
			s.Symbol,
			s.Expiry,
			strconv.Itoa(s.DTE),
			formatStrike(s.K1),
			formatStrike(s.K2),
			formatStrike(s.K3),
			fmt.Sprintf("%.2f", s.Credit),
			fmt.Sprintf("%.2f", s.MaxProfit),
			fmt.Sprintf("%.2f", s.MaxLoss),
			fmt.Sprintf("%.3f", s.Score),
		})
	}
	return Table{Header: append([]string(nil), Columns...), Rows: rows}
}

// RenderCSV renders the table as CSV text, header first. Cells are escaped,
// so symbols containing commas or quotes stay intact.
func (t Table) RenderCSV() string {
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	_ = w.Write(t.Header)
	for _, row := range t.Rows {
		_ = w.Write(row)
	}
	w.Flush()
	return sb.String()
}

// RenderText renders the table as aligned columns for terminal output.
func (t Table) RenderText() string {
	widths := make([]int, len(t.Header))
	for i, h := range t.Header {
		widths[i] = len(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var sb strings.Builder
	writeRow := func(cells []string) {
		for i, cell := range cells {
			if i > 0 {
				sb.WriteString("  ")
			}
			sb.WriteString(fmt.Sprintf("%*s", widths[i], cell))
		}
		sb.WriteByte('\n')
	}

	writeRow(t.Header)
	for _, row := range t.Rows {
		writeRow(row)
	}
	return sb.String()
}

func formatStrike(k float64) string {
	return strconv.FormatFloat(k, 'f', -1, 64)
}
