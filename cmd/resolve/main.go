// Command resolve runs a single query through the pipeline from the command
// line, either against the live portal or against a saved table page. Useful
// for checking the parser against real upstream samples without starting the
// server.
//
// Usage:
//
//	go run ./cmd/resolve -query "Will it rain in Dhaka in 3 days?"
//	go run ./cmd/resolve -query "ঢাকায় কি বৃষ্টি হবে?" -page sample.html
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/weatherwise/district-forecast/internal/explain"
	"github.com/weatherwise/district-forecast/internal/gazetteer"
	"github.com/weatherwise/district-forecast/internal/interpret"
	"github.com/weatherwise/district-forecast/internal/observability"
	"github.com/weatherwise/district-forecast/internal/pipeline"
	"github.com/weatherwise/district-forecast/internal/retrieve"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	query := flag.String("query", "", "free-text weather query")
	page := flag.String("page", "", "optional saved HTML page to parse instead of fetching")
	baseURL := flag.String("base-url", "https://www.bamis.gov.bd", "portal base URL")
	timeout := flag.Duration("timeout", 10*time.Second, "fetch timeout")
	flag.Parse()

	if *query == "" {
		flag.Usage()
		return fmt.Errorf("-query is required")
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetricsForTesting()

	gaz, err := gazetteer.Load()
	if err != nil {
		return err
	}

	var fetcher retrieve.Fetcher
	if *page != "" {
		raw, err := os.ReadFile(*page)
		if err != nil {
			return err
		}
		fetcher = fileFetcher(raw)
	} else {
		fetcher = retrieve.NewHTTPFetcher(*timeout)
	}

	resolver := pipeline.New(
		interpret.New(gaz, 3, 7),
		retrieve.New(fetcher, *baseURL, logger, metrics),
		explain.New(nil, logger, metrics),
		nil, nil, logger, metrics, gaz.Len(),
	)

	result, err := resolver.Resolve(context.Background(), *query)
	if err != nil {
		return err
	}

	out := map[string]any{
		"district":    result.Forecast.District.Name,
		"horizon":     result.Query.Horizon,
		"role":        result.Query.Role,
		"location":    result.Location,
		"days":        result.Forecast.Days,
		"explanation": result.Explanation.Text,
		"warnings":    result.Warnings,
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// fileFetcher serves the same saved page for every URL.
type fileFetcher []byte

func (f fileFetcher) Fetch(_ context.Context, _ string) ([]byte, error) {
	return f, nil
}
