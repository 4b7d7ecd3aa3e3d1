package chain

import (
	"errors"
	"strings"
	"testing"
)

func fullHeader() []string {
	return []string{"symbol", "expiry", "dte", "strike", "type", "bid", "ask", "mid", "delta", "iv"}
}

func sampleRecord() []string {
	return []string{"XYZ", "2025-01-17", "5", "100", "C", "4.3", "4.7", "4.5", "0.30", "0.23"}
}

func TestNormalize_HappyPath(t *testing.T) {
	rows, err := Normalize(fullHeader(), [][]string{sampleRecord()})
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}

	row := rows[0]
	if row.Symbol != "XYZ" || row.Expiry != "2025-01-17" || row.DTE != 5 {
		t.Errorf("row identity = (%s, %s, %d)", row.Symbol, row.Expiry, row.DTE)
	}
	if row.Strike != 100 || row.Mid != 4.5 || row.Delta != 0.30 {
		t.Errorf("row numerics = (%v, %v, %v)", row.Strike, row.Mid, row.Delta)
	}
}

func TestNormalize_HeaderCaseAndWhitespace(t *testing.T) {
	header := []string{" Symbol ", "EXPIRY", "Dte", "STRIKE", "Type", "Bid", "Ask", "Mid", "Delta", "IV"}

	rows, err := Normalize(header, [][]string{sampleRecord()})
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("got %d rows, want 1", len(rows))
	}
}

func TestNormalize_MissingColumns(t *testing.T) {
	header := []string{"symbol", "expiry", "strike", "type", "bid", "ask"}

	_, err := Normalize(header, nil)
	if err == nil {
		t.Fatal("expected schema error")
	}

	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("error type = %T, want *SchemaError", err)
	}

	for _, col := range []string{"dte", "delta", "iv"} {
		if !strings.Contains(err.Error(), col) {
			t.Errorf("error %q should name missing column %q", err.Error(), col)
		}
	}
}

func TestNormalize_MidComputedWhenColumnAbsent(t *testing.T) {
	header := []string{"symbol", "expiry", "dte", "strike", "type", "bid", "ask", "delta", "iv"}
	record := []string{"XYZ", "2025-01-17", "5", "100", "C", "4.3", "4.7", "0.30", "0.23"}

	rows, err := Normalize(header, [][]string{record})
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0].Mid != 4.5 {
		t.Errorf("mid = %v, want (4.3+4.7)/2 = 4.5", rows[0].Mid)
	}
}

func TestNormalize_CoercionFailureDropsRow(t *testing.T) {
	bad := sampleRecord()
	bad[3] = "not-a-number" // strike

	rows, err := Normalize(fullHeader(), [][]string{bad, sampleRecord()})
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("got %d rows, want 1 (unparsable strike dropped)", len(rows))
	}
}

func TestNormalize_MissingRequiredCellDropsRow(t *testing.T) {
	tests := []struct {
		name string
		col  int
	}{
		{"symbol", 0},
		{"expiry", 1},
		{"dte", 2},
		{"strike", 3},
		{"type", 4},
		{"mid", 7},
		{"delta", 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bad := sampleRecord()
			bad[tt.col] = ""

			rows, err := Normalize(fullHeader(), [][]string{bad})
			if err != nil {
				t.Fatalf("Normalize() error = %v", err)
			}
			if len(rows) != 0 {
				t.Errorf("row with empty %s should be dropped", tt.name)
			}
		})
	}
}

func TestNormalize_InformationalCellsMayBeMissing(t *testing.T) {
	rec := sampleRecord()
	rec[5] = "" // bid
	rec[6] = "" // ask
	rec[9] = "" // iv

	rows, err := Normalize(fullHeader(), [][]string{rec})
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1 (bid/ask/iv are informational)", len(rows))
	}

	row := rows[0]
	if !IsMissing(row.Bid) || !IsMissing(row.Ask) || !IsMissing(row.IV) {
		t.Errorf("bid/ask/iv should be marked missing, got (%v, %v, %v)", row.Bid, row.Ask, row.IV)
	}
	if row.Mid != 4.5 {
		t.Errorf("explicit mid column should survive missing bid/ask, got %v", row.Mid)
	}
}

func TestNormalize_NoMidColumnAndUnparsableBidDropsRow(t *testing.T) {
	header := []string{"symbol", "expiry", "dte", "strike", "type", "bid", "ask", "delta", "iv"}
	record := []string{"XYZ", "2025-01-17", "5", "100", "C", "n/a", "4.7", "0.30", "0.23"}

	rows, err := Normalize(header, [][]string{record})
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("row should be dropped when mid cannot be derived")
	}
}
