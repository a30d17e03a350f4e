package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ayush112812/disaster-response-platform-sub001/internal/models"
)

type nwsResponse struct {
	Features []nwsFeature `json:"features"`
}

type nwsFeature struct {
	ID         string        `json:"id"`
	Properties nwsProperties `json:"properties"`
}

type nwsProperties struct {
	Event       string `json:"event"`
	Headline    string `json:"headline"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
	AreaDesc    string `json:"areaDesc"`
	Effective   string `json:"effective"`
}

// WeatherAdapter polls an NWS-style active-alerts endpoint.
type WeatherAdapter struct {
	url    string
	client *http.Client
}

func NewWeatherAdapter(url string, timeout time.Duration) *WeatherAdapter {
	return &WeatherAdapter{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

func (a *WeatherAdapter) Name() string { return "weather" }

func (a *WeatherAdapter) Fetch(ctx context.Context) (Batch, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.url, nil)
	if err != nil {
		return Batch{}, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Accept", "application/geo+json")

	resp, err := a.client.Do(req)
	if err != nil {
		return Batch{}, fmt.Errorf("weather fetch: %w: %v", classifyFetchErr(ctx, err), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Batch{}, fmt.Errorf("weather fetch: %w: unexpected status code %d", ErrSourceUnavailable, resp.StatusCode)
	}

	var data nwsResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return Batch{}, fmt.Errorf("weather fetch: error decoding resp.Body: %w", err)
	}

	alerts := make([]models.WeatherAlert, 0, len(data.Features))
	for _, f := range data.Features {
		alerts = append(alerts, models.WeatherAlert{
			ID:          f.ID,
			Event:       f.Properties.Event,
			Headline:    f.Properties.Headline,
			Description: f.Properties.Description,
			Severity:    mapWeatherSeverity(f.Properties.Severity),
			Area:        f.Properties.AreaDesc,
			Effective:   parseNWSTime(f.Properties.Effective),
		})
	}

	return Batch{Weather: alerts}, nil
}

func mapWeatherSeverity(s string) models.WeatherSeverity {
	switch strings.ToLower(s) {
	case "extreme":
		return models.WeatherSeverityExtreme
	case "severe":
		return models.WeatherSeveritySevere
	case "moderate":
		return models.WeatherSeverityModerate
	default:
		return models.WeatherSeverityMinor
	}
}

func parseNWSTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
