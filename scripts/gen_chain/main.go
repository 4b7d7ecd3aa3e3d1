// gen_chain - Generate a synthetic options chain CSV
// Produces a single-expiry call chain for trying the scanner without a data feed.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/NimaEtemadi/broken-wing-butterfly-scanner/internal/chain"
)

func main() {
	symbol := flag.String("symbol", "SPY", "Underlying symbol")
	spot := flag.Float64("spot", 0, "Spot price (0 = randomized)")
	dte := flag.Int("dte", 7, "Days to expiry")
	iv := flag.Float64("iv", 0, "Annualized volatility (0 = randomized)")
	wings := flag.Int("wings", 10, "Strikes generated on each side of spot")
	interval := flag.Float64("interval", 5, "Strike spacing")
	output := flag.String("output", "chain.csv", "Output CSV path")
	flag.Parse()

	src := chain.NewSyntheticSource(*symbol)
	src.DTE = *dte
	src.Wings = *wings
	src.Interval = *interval
	if *spot > 0 {
		src.Spot = *spot
	}
	if *iv > 0 {
		src.IV = *iv
	}

	rows, err := src.Fetch(context.Background())
	if err != nil {
		log.Fatalf("Failed to generate chain: %v", err)
	}

	file, err := os.Create(*output)
	if err != nil {
		log.Fatalf("Failed to create file: %v", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	header := []string{"symbol", "expiry", "dte", "strike", "type", "bid", "ask", "mid", "delta", "iv"}
	if err := w.Write(header); err != nil {
		log.Fatalf("Failed to write header: %v", err)
	}
	for _, r := range rows {
		record := []string{
			r.Symbol,
			r.Expiry,
			strconv.Itoa(r.DTE),
			strconv.FormatFloat(r.Strike, 'f', -1, 64),
			r.Type,
			strconv.FormatFloat(r.Bid, 'f', 2, 64),
			strconv.FormatFloat(r.Ask, 'f', 2, 64),
			strconv.FormatFloat(r.Mid, 'f', 2, 64),
			strconv.FormatFloat(r.Delta, 'f', 4, 64),
			strconv.FormatFloat(r.IV, 'f', 4, 64),
		}
		if err := w.Write(record); err != nil {
			log.Fatalf("Failed to write row: %v", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		log.Fatalf("Failed to flush CSV: %v", err)
	}

	fmt.Printf("Wrote %d call rows for %s (spot %.2f, %dd to expiry) to %s\n",
		len(rows), *symbol, src.Spot, src.DTE, *output)
}
