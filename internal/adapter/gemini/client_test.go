package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weatherwise/district-forecast/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testClient(srvURL string) *Client {
	c := NewClient("test-key", "gemini-2.5-flash", 5*time.Second, discardLogger())
	c.baseURL = srvURL
	return c
}

func sampleForecast() domain.Forecast {
	return domain.Forecast{
		District: domain.District{Name: "Bogura"},
		Days: []domain.DayForecast{{
			Date: time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC),
			Temperature: domain.Triple{
				Min: domain.Sample{Value: 24.5, Valid: true},
				Max: domain.Sample{Value: 32.0, Valid: true},
			},
			Humidity: domain.Triple{Avg: domain.Sample{Value: 78, Valid: true}},
			Rain:     domain.Rainfall{Total: domain.Sample{Value: 6.0, Valid: true}, Unit: "mm"},
		}},
	}
}

func TestPolish(t *testing.T) {
	var gotPath string
	var gotBody generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path + "?" + r.URL.RawQuery
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		fmt.Fprint(w, `{
			"candidates": [{
				"content": {"parts": [{"text": "  Expect 6.0mm of rain in Bogura tomorrow.  "}]}
			}]
		}`)
	}))
	defer srv.Close()

	text, err := testClient(srv.URL).Polish(context.Background(), sampleForecast(), domain.RoleFarmer, "draft text")
	require.NoError(t, err)
	assert.Equal(t, "Expect 6.0mm of rain in Bogura tomorrow.", text)

	assert.Contains(t, gotPath, "/models/gemini-2.5-flash:generateContent")
	assert.Contains(t, gotPath, "key=test-key")

	// The prompt carries the real figures and the draft.
	require.Len(t, gotBody.Contents, 1)
	prompt := gotBody.Contents[0].Parts[0].Text
	assert.Contains(t, prompt, "District: Bogura")
	assert.Contains(t, prompt, "Audience: farmer")
	assert.Contains(t, prompt, "rain 6.0mm (30% chance)")
	assert.Contains(t, prompt, "24.5-32.0°C")
	assert.Contains(t, prompt, "draft text")

	require.NotNil(t, gotBody.SystemInstruction)
	assert.Equal(t, 0.3, gotBody.GenerationConfig.Temperature)
}

func TestPolish_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error": {"message": "quota exceeded"}}`)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Polish(context.Background(), sampleForecast(), domain.RoleFarmer, "draft")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}

func TestPolish_NoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"candidates": []}`)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Polish(context.Background(), sampleForecast(), domain.RoleCitizen, "draft")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no candidates")
}

func TestBuildPrompt_MultiDay(t *testing.T) {
	forecast := sampleForecast()
	second := forecast.Days[0]
	second.Date = second.Date.AddDate(0, 0, 1)
	second.Rain.Total.Value = 0
	forecast.Days = append(forecast.Days, second)

	prompt := buildPrompt(forecast, domain.RoleCitizen, "draft")

	assert.Contains(t, prompt, "Day 1 (2026-08-24)")
	assert.Contains(t, prompt, "Day 2 (2026-08-25)")
	assert.Contains(t, prompt, "rain 0.0mm (0% chance)")
}
