package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"fraudlab/internal/dataset"
)

func main() {
	var (
		outPath   = flag.String("out", "data/raw/creditcard.csv", "Output CSV path")
		rows      = flag.Int("rows", 50000, "Number of transactions to generate")
		fraudRate = flag.Float64("fraud-rate", 0.0017, "Share of fraudulent transactions")
		seed      = flag.Int64("seed", 42, "Random seed")
	)
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	fmt.Printf("Generating sample transactions...\n")
	fmt.Printf("  Rows: %d\n", *rows)
	fmt.Printf("  Fraud rate: %.4f\n", *fraudRate)
	fmt.Printf("  Output: %s\n", *outPath)

	ds, err := dataset.Synthetic(*rows, *fraudRate, *seed)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to generate data")
	}

	if err := dataset.WriteCSV(*outPath, ds); err != nil {
		log.Fatal().Err(err).Msg("Failed to write data")
	}

	b := dataset.ClassBalance(ds.Labels)
	fmt.Printf("Generated %d transactions (%d fraud, %.4f%%)\n", b.Total, b.Fraud, b.FraudPct)
}
