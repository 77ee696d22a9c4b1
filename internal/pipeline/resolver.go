// Package pipeline composes the interpreter, retriever, and composer into a
// single resolution call. Each call is stateless over immutable inputs; the
// gazetteer behind the interpreter is the only shared state and it is
// read-only, so resolutions run in parallel with no coordination.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/weatherwise/district-forecast/internal/domain"
	"github.com/weatherwise/district-forecast/internal/observability"
)

// Interpreter extracts district, horizon, and role from query text.
type Interpreter interface {
	Interpret(text string) domain.ForecastQuery
}

// Retriever fetches and parses the forecast for a resolved district.
type Retriever interface {
	Retrieve(ctx context.Context, district domain.District, horizon int) (domain.Forecast, []domain.Warning, error)
}

// Composer produces the explanation for a forecast.
type Composer interface {
	Compose(ctx context.Context, forecast domain.Forecast, role domain.Role) domain.Explanation
}

// Publisher emits resolved queries to downstream consumers (map layer,
// analytics). Optional; failures are logged, never surfaced to the caller.
type Publisher interface {
	Publish(ctx context.Context, result domain.Result) error
}

// Resolver is the pipeline orchestrator.
type Resolver struct {
	interpreter Interpreter
	retriever   Retriever
	composer    Composer
	publisher   Publisher
	geocoder    domain.Geocoder
	logger      *slog.Logger
	metrics     *observability.Metrics
	districts   int
}

// New creates a Resolver. publisher and geocoder may be nil; districts is
// the gazetteer size, used by the readiness probe.
func New(i Interpreter, r Retriever, c Composer, publisher Publisher, geocoder domain.Geocoder,
	logger *slog.Logger, metrics *observability.Metrics, districts int) *Resolver {
	return &Resolver{
		interpreter: i,
		retriever:   r,
		composer:    c,
		publisher:   publisher,
		geocoder:    geocoder,
		logger:      logger,
		metrics:     metrics,
		districts:   districts,
	}
}

// CheckReadiness reports whether the service can resolve queries: the
// gazetteer must have loaded districts.
func (r *Resolver) CheckReadiness(_ context.Context) error {
	if r.districts == 0 {
		return errors.New("gazetteer has no districts loaded")
	}
	return nil
}

// Resolve runs interpret → retrieve → compose. Failures come back as
// *domain.ResolveError and never as raw errors from the stages; parse-level
// partial data proceeds with warnings attached instead of failing.
func (r *Resolver) Resolve(ctx context.Context, queryText string) (domain.Result, error) {
	start := time.Now()

	query := r.interpreter.Interpret(queryText)
	if query.District == nil {
		r.metrics.QueriesTotal.WithLabelValues(string(domain.KindDistrictNotRecognized)).Inc()
		return domain.Result{Query: query}, domain.DistrictNotRecognizedError(queryText)
	}

	forecast, warnings, err := r.retriever.Retrieve(ctx, *query.District, query.Horizon)
	if err != nil {
		kind := domain.KindOf(err)
		if kind == "" {
			kind = domain.KindRetrieval
			err = domain.NewResolveError(kind, "retrieve forecast", err)
		}
		r.metrics.QueriesTotal.WithLabelValues(string(kind)).Inc()
		return domain.Result{Query: query}, err
	}

	warnings = append(query.Warnings, warnings...)
	r.countDataQuality(warnings)

	result := domain.Result{
		Query:       query,
		Forecast:    forecast,
		Location:    domain.EnrichLocation(ctx, forecast.District, r.geocoder, r.logger),
		Explanation: r.composer.Compose(ctx, forecast, query.Role),
		Warnings:    warnings,
	}

	r.publish(ctx, result)

	r.metrics.QueriesTotal.WithLabelValues("success").Inc()
	r.metrics.ResolveDuration.Observe(time.Since(start).Seconds())
	r.logger.Info("query resolved",
		"district", forecast.District.Name,
		"horizon", query.Horizon,
		"role", query.Role,
		"days", len(forecast.Days),
		"warnings", len(warnings),
	)
	return result, nil
}

func (r *Resolver) countDataQuality(warnings []domain.Warning) {
	for _, w := range warnings {
		switch w.Code {
		case domain.WarnDayDropped:
			r.metrics.DaysDropped.Inc()
		case domain.WarnRainfallMismatch:
			r.metrics.RainfallMismatches.Inc()
		}
	}
}

// publish emits the resolved query to downstream consumers, best effort.
func (r *Resolver) publish(ctx context.Context, result domain.Result) {
	if r.publisher == nil {
		return
	}
	if err := r.publisher.Publish(ctx, result); err != nil {
		r.metrics.PublishErrors.Inc()
		r.logger.Warn("publish resolved query failed",
			"district", result.Forecast.District.Name, "error", err)
	}
}
