// Command scanner runs a one-shot broken wing butterfly scan against a chain
// CSV and prints the ranked candidates.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/NimaEtemadi/broken-wing-butterfly-scanner/internal/butterfly"
	"github.com/NimaEtemadi/broken-wing-butterfly-scanner/internal/chain"
)

func main() {
	var (
		csvPath       = flag.String("csv", "", "Path to options chain CSV")
		demo          = flag.Bool("demo", false, "Scan a synthetic chain instead of a CSV")
		symbol        = flag.String("symbol", "", "Underlying symbol, exact match (required)")
		expiry        = flag.String("expiry", "", "Expiry to scan; empty scans the whole DTE window")
		minDTE        = flag.Int("min-dte", 1, "Minimum days to expiry")
		maxDTE        = flag.Int("max-dte", 10, "Maximum days to expiry")
		minCredit     = flag.Float64("min-credit", 0.50, "Minimum net credit per share")
		shortDeltaMin = flag.Float64("short-delta-min", 0.20, "Minimum |delta| of the short strike")
		shortDeltaMax = flag.Float64("short-delta-max", 0.35, "Maximum |delta| of the short strike")
		limit         = flag.Int("limit", 20, "Maximum rows to print; 0 prints all")
		format        = flag.String("format", "text", "Output format: text or csv")
	)
	flag.Parse()

	if (*csvPath == "" && !*demo) || *symbol == "" {
		fmt.Fprintln(os.Stderr, "usage: scanner (-csv <path> | -demo) -symbol <symbol> [-expiry <date>] [options]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	var source chain.Source = chain.NewCSVSource(*csvPath)
	if *demo {
		source = chain.NewSyntheticSource(*symbol)
	}

	rows, err := source.Fetch(context.Background())
	if err != nil {
		log.Fatalf("Failed to load chain: %v", err)
	}

	results, err := butterfly.Scan(rows, butterfly.Params{
		Symbol:        *symbol,
		Expiry:        *expiry,
		MinDTE:        *minDTE,
		MaxDTE:        *maxDTE,
		MinCredit:     *minCredit,
		ShortDeltaMin: *shortDeltaMin,
		ShortDeltaMax: *shortDeltaMax,
	})
	if err != nil {
		log.Fatalf("Scan failed: %v", err)
	}

	if *limit > 0 && len(results) > *limit {
		results = results[:*limit]
	}

	table := butterfly.ResultTable(results)
	switch *format {
	case "csv":
		fmt.Print(table.RenderCSV())
	default:
		fmt.Print(table.RenderText())
	}
}
