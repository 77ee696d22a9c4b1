package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weatherwise/district-forecast/internal/domain"
)

type stubResolver struct {
	result domain.Result
	err    error
	gotQ   string
}

func (s *stubResolver) Resolve(_ context.Context, queryText string) (domain.Result, error) {
	s.gotQ = queryText
	return s.result, s.err
}

type stubReadiness struct {
	err error
}

func (s stubReadiness) CheckReadiness(context.Context) error { return s.err }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleResult() domain.Result {
	district := domain.District{Name: "Dhaka", Lat: 23.7104, Lon: 90.4074}
	return domain.Result{
		Query: domain.ForecastQuery{District: &district, Horizon: 1, Role: domain.RoleCitizen},
		Forecast: domain.Forecast{
			District: district,
			Days: []domain.DayForecast{{
				Date: time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC),
				Temperature: domain.Triple{
					Min: domain.Sample{Value: 25.1, Valid: true},
					Max: domain.Sample{Value: 33.0, Valid: true},
				},
				Humidity: domain.Triple{Avg: domain.Sample{Value: 74, Valid: true}},
				Rain:     domain.Rainfall{Total: domain.Sample{Value: 10.0, Valid: true}, Unit: "mm"},
			}},
		},
		Location: domain.Location{
			Name:   "Dhaka",
			Lat:    23.7104,
			Lon:    90.4074,
			Source: "gazetteer",
		},
		Explanation: domain.Explanation{Text: "Carry an umbrella."},
		Warnings:    []domain.Warning{domain.HorizonShortfallWarning(3, 1)},
	}
}

func postQuery(t *testing.T, srv *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/query", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestHandleQuery_Success(t *testing.T) {
	resolver := &stubResolver{result: sampleResult()}
	srv := NewServer(":0", resolver, stubReadiness{}, discardLogger())

	rec := postQuery(t, srv, `{"query": "Will it rain in Dhaka tomorrow?"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "Will it rain in Dhaka tomorrow?", resolver.gotQ)

	var resp struct {
		Forecast struct {
			District string `json:"district"`
			Location struct {
				Name   string  `json:"area_name"`
				Lat    float64 `json:"latitude"`
				Source string  `json:"source"`
			} `json:"location"`
			Days []struct {
				Date       string `json:"date"`
				Parameters struct {
					Temperature struct {
						Min  float64 `json:"min"`
						Max  float64 `json:"max"`
						Unit string  `json:"unit"`
					} `json:"temperature"`
					Precipitation struct {
						Value       float64 `json:"value"`
						Unit        string  `json:"unit"`
						Probability float64 `json:"probability"`
					} `json:"precipitation"`
					Humidity struct {
						Value float64 `json:"value"`
					} `json:"humidity"`
					SoilMoisture *struct{} `json:"soil_moisture"`
				} `json:"parameters"`
			} `json:"days"`
		} `json:"forecast"`
		Explanation string   `json:"explanation"`
		Warnings    []string `json:"warnings"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, "Dhaka", resp.Forecast.District)
	assert.Equal(t, "gazetteer", resp.Forecast.Location.Source)
	require.Len(t, resp.Forecast.Days, 1)

	day := resp.Forecast.Days[0]
	assert.Equal(t, "2026-08-24", day.Date)
	assert.Equal(t, 25.1, day.Parameters.Temperature.Min)
	assert.Equal(t, 33.0, day.Parameters.Temperature.Max)
	assert.Equal(t, "celsius", day.Parameters.Temperature.Unit)
	assert.Equal(t, 10.0, day.Parameters.Precipitation.Value)
	assert.Equal(t, "mm", day.Parameters.Precipitation.Unit)
	assert.Equal(t, 0.5, day.Parameters.Precipitation.Probability)
	assert.Equal(t, 74.0, day.Parameters.Humidity.Value)
	assert.Nil(t, day.Parameters.SoilMoisture)

	assert.Equal(t, "Carry an umbrella.", resp.Explanation)
	require.Len(t, resp.Warnings, 1)
	assert.Contains(t, resp.Warnings[0], "requested 3")
}

func TestHandleQuery_DistrictNotRecognized(t *testing.T) {
	resolver := &stubResolver{err: domain.DistrictNotRecognizedError("gibberish")}
	srv := NewServer(":0", resolver, stubReadiness{}, discardLogger())

	rec := postQuery(t, srv, `{"query": "gibberish"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var resp struct {
		Error string `json:"error"`
		Kind  string `json:"kind"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "district_not_recognized", resp.Kind)
}

func TestHandleQuery_RetrievalError(t *testing.T) {
	resolver := &stubResolver{err: domain.NewResolveError(domain.KindRetrieval, "portal unreachable", nil)}
	srv := NewServer(":0", resolver, stubReadiness{}, discardLogger())

	rec := postQuery(t, srv, `{"query": "Dhaka weather"}`)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "temporarily unavailable")
	// Internal detail never leaks to the caller.
	assert.NotContains(t, rec.Body.String(), "portal unreachable")
}

func TestHandleQuery_ParseError(t *testing.T) {
	resolver := &stubResolver{err: domain.NewResolveError(domain.KindParse, "no valid days", nil)}
	srv := NewServer(":0", resolver, stubReadiness{}, discardLogger())

	rec := postQuery(t, srv, `{"query": "Dhaka weather"}`)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestHandleQuery_UnexpectedError(t *testing.T) {
	resolver := &stubResolver{err: fmt.Errorf("boom")}
	srv := NewServer(":0", resolver, stubReadiness{}, discardLogger())

	rec := postQuery(t, srv, `{"query": "Dhaka weather"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "boom")
}

func TestHandleQuery_BadRequests(t *testing.T) {
	srv := NewServer(":0", &stubResolver{}, stubReadiness{}, discardLogger())

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{"query": `},
		{"missing query", `{}`},
		{"empty query", `{"query": ""}`},
		{"oversized query", fmt.Sprintf(`{"query": %q}`, strings.Repeat("x", 1001))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postQuery(t, srv, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHandleHealth(t *testing.T) {
	srv := NewServer(":0", &stubResolver{}, stubReadiness{}, discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestHandleReady(t *testing.T) {
	srv := NewServer(":0", &stubResolver{}, stubReadiness{}, discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleReady_NotReady(t *testing.T) {
	srv := NewServer(":0", &stubResolver{}, stubReadiness{err: fmt.Errorf("gazetteer empty")}, discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "not ready")
}

func TestMetricsRoute(t *testing.T) {
	srv := NewServer(":0", &stubResolver{}, stubReadiness{}, discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestQueryRouteRejectsGet(t *testing.T) {
	srv := NewServer(":0", &stubResolver{}, stubReadiness{}, discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/query", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
