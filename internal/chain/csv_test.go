package chain

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleCSV = `symbol,expiry,dte,strike,type,bid,ask,mid,delta,iv
XYZ,2025-01-17,5,90,C,10.0,10.4,10.2,0.45,0.25
XYZ,2025-01-17,5,95,C,7.0,7.4,7.2,0.38,0.24
XYZ,2025-01-17,5,100,P,4.3,4.7,4.5,-0.30,0.23
`

func TestReadCSV(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if rows[0].Strike != 90 || rows[2].Delta != -0.30 {
		t.Errorf("unexpected parse: %+v", rows)
	}
}

func TestReadCSV_Empty(t *testing.T) {
	if _, err := ReadCSV(strings.NewReader("")); err == nil {
		t.Error("expected error for empty input")
	}
}

func TestReadCSV_MissingColumns(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("symbol,strike\nXYZ,100\n"))
	if err == nil {
		t.Fatal("expected schema error")
	}
	if !strings.Contains(err.Error(), "missing required chain columns") {
		t.Errorf("error = %v, want schema error", err)
	}
}

func TestCSVSource_Fetch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chain.csv")
	if err := os.WriteFile(path, []byte(sampleCSV), 0o600); err != nil {
		t.Fatal(err)
	}

	rows, err := NewCSVSource(path).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(rows) != 3 {
		t.Errorf("got %d rows, want 3", len(rows))
	}
}

func TestCSVSource_FetchMissingFile(t *testing.T) {
	_, err := NewCSVSource(filepath.Join(t.TempDir(), "absent.csv")).Fetch(context.Background())
	if err == nil {
		t.Error("expected error for missing file")
	}
}
