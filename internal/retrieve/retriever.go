// Package retrieve orchestrates fetching raw BMD table pages for a resolved
// district and handing them to the table parser. Network I/O happens only
// through the injected Fetcher capability, which keeps the parser and the
// retriever itself independently testable.
package retrieve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/weatherwise/district-forecast/internal/bmdtable"
	"github.com/weatherwise/district-forecast/internal/domain"
	"github.com/weatherwise/district-forecast/internal/observability"
)

// Fetcher returns the raw page content for a URL. Implementations own
// timeouts; the retriever never retries a variant.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Retriever builds district table URLs and turns page bytes into forecasts.
type Retriever struct {
	fetcher Fetcher
	baseURL string
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates a Retriever. baseURL is the portal root without a trailing
// slash, e.g. "https://www.bamis.gov.bd".
func New(fetcher Fetcher, baseURL string, logger *slog.Logger, metrics *observability.Metrics) *Retriever {
	return &Retriever{
		fetcher: fetcher,
		baseURL: baseURL,
		logger:  logger,
		metrics: metrics,
	}
}

// Retrieve fetches and parses the forecast for a district. Every URL name
// variant is attempted in order until one yields a page with a forecast
// table; empty pages and fetch errors move on to the next variant. A page
// whose table parses to zero valid days is a parse failure, not a retrieval
// failure, so operators can tell an outage from an upstream format
// regression.
func (r *Retriever) Retrieve(ctx context.Context, district domain.District, horizon int) (domain.Forecast, []domain.Warning, error) {
	var lastErr error

	for _, name := range district.URLNames {
		target := r.tableURL(name, horizon)

		start := time.Now()
		raw, err := r.fetcher.Fetch(ctx, target)
		r.metrics.FetchDuration.Observe(time.Since(start).Seconds())

		if err != nil {
			r.metrics.FetchErrors.Inc()
			r.logger.Warn("fetch failed", "district", district.Name, "url", target, "error", err)
			lastErr = err
			continue
		}
		if len(raw) == 0 {
			r.logger.Warn("fetch returned empty page", "district", district.Name, "url", target)
			lastErr = fmt.Errorf("empty page from %s", target)
			continue
		}

		days, warnings, err := bmdtable.Parse(raw, horizon, domain.Now())
		if errors.Is(err, bmdtable.ErrNoTable) {
			// Placeholder page for a name the portal does not know.
			r.logger.Warn("page has no forecast table", "district", district.Name, "url", target)
			lastErr = err
			continue
		}
		if err != nil {
			return domain.Forecast{}, warnings, domain.NewResolveError(domain.KindParse,
				fmt.Sprintf("parse forecast table for %s", district.Name), err)
		}

		if len(days) < horizon {
			warnings = append(warnings, domain.HorizonShortfallWarning(horizon, len(days)))
		}
		return domain.Forecast{District: district, Days: days}, warnings, nil
	}

	return domain.Forecast{}, nil, domain.NewResolveError(domain.KindRetrieval,
		fmt.Sprintf("fetch forecast for %s: all %d name variants failed", district.Name, len(district.URLNames)), lastErr)
}

func (r *Retriever) tableURL(urlName string, horizon int) string {
	return fmt.Sprintf("%s/en/bmd/wrf/table/%s/%d/", r.baseURL, url.PathEscape(urlName), horizon)
}
