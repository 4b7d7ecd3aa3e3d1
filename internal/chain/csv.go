package chain

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// CSVSource reads an options chain from a CSV file on disk.
type CSVSource struct {
	Path string
}

// NewCSVSource creates a Source backed by the CSV file at path.
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{Path: path}
}

// Fetch reads and normalizes the whole file.
func (s *CSVSource) Fetch(ctx context.Context) ([]Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.Path) // #nosec G304 -- path comes from operator config
	if err != nil {
		return nil, fmt.Errorf("opening chain file: %w", err)
	}
	defer f.Close()

	return ReadCSV(f)
}

// ReadCSV parses CSV chain data from r and normalizes it. The first record
// is the header.
func ReadCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("chain data is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("reading chain header: %w", err)
	}

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading chain records: %w", err)
	}

	return Normalize(header, records)
}
