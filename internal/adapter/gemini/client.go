// Package gemini implements domain.Polisher against the Google Generative
// Language REST API. The polisher only rephrases deterministic explanation
// text; the composer rejects its output when the figures stop tracing back
// to the forecast.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/weatherwise/district-forecast/internal/domain"
)

const systemInstruction = `You are a weather assistant for Bangladesh.
Rephrase the draft explanation naturally. Keep every numeric figure exactly
as given, keep the district name, use metric units (°C, mm), and give
actionable advice for the stated audience in two to three sentences. Respond
with the explanation text only.`

// Client implements domain.Polisher using the Generative Language API.
type Client struct {
	apiKey     string
	model      string
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a Gemini polishing client.
func NewClient(apiKey, model string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		apiKey: apiKey,
		model:  model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://generativelanguage.googleapis.com/v1beta",
		logger:  logger,
	}
}

// Polish rephrases the draft explanation for the given forecast and role.
func (c *Client) Polish(ctx context.Context, forecast domain.Forecast, role domain.Role, draft string) (string, error) {
	body, err := json.Marshal(generateRequest{
		SystemInstruction: &content{Parts: []part{{Text: systemInstruction}}},
		Contents:          []content{{Parts: []part{{Text: buildPrompt(forecast, role, draft)}}}},
		GenerationConfig: generationConfig{
			Temperature:     0.3,
			MaxOutputTokens: 300,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	u := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("polish request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("gemini API error: status %d: %s", resp.StatusCode, respBody)
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}
	return strings.TrimSpace(genResp.Candidates[0].Content.Parts[0].Text), nil
}

// buildPrompt lays out the normalized forecast so the model has the real
// figures in front of it and no reason to invent any.
func buildPrompt(forecast domain.Forecast, role domain.Role, draft string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "District: %s\nAudience: %s\nForecast:\n", forecast.District.Name, role)
	for i, day := range forecast.Days {
		fmt.Fprintf(&sb, "Day %d (%s): %.1f-%.1f°C, rain %.1fmm (%.0f%% chance), humidity %.0f%%\n",
			i+1,
			day.Date.Format("2006-01-02"),
			day.Temperature.Min.Value,
			day.Temperature.Max.Value,
			day.Rain.Total.Value,
			day.RainProbability()*100,
			day.Humidity.Headline().Value,
		)
	}
	fmt.Fprintf(&sb, "\nDraft explanation:\n%s\n", draft)
	return sb.String()
}

// Generative Language API request/response types.

type generateRequest struct {
	SystemInstruction *content         `json:"systemInstruction,omitempty"`
	Contents          []content        `json:"contents"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}
