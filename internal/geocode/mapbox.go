// Package geocode resolves location names to coordinates via the Mapbox
// Geocoding API.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ayush112812/disaster-response-platform-sub001/internal/models"
)

// ErrNotFound signals that the query returned no usable feature.
var ErrNotFound = errors.New("location not found")

// Geocoder converts a place name to coordinates.
type Geocoder interface {
	Forward(ctx context.Context, place string) (models.Coordinates, error)
}

// Client implements Geocoder against the Mapbox places endpoint.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

func NewClient(token string, timeout time.Duration) *Client {
	return &Client{
		token:      token,
		baseURL:    "https://api.mapbox.com/geocoding/v5/mapbox.places",
		httpClient: &http.Client{Timeout: timeout},
	}
}

type mapboxResponse struct {
	Features []struct {
		Center []float64 `json:"center"` // [lon, lat]
	} `json:"features"`
}

func (c *Client) Forward(ctx context.Context, place string) (models.Coordinates, error) {
	u := fmt.Sprintf("%s/%s.json", c.baseURL, url.PathEscape(place))
	params := url.Values{
		"access_token": {c.token},
		"limit":        {"1"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u+"?"+params.Encode(), nil)
	if err != nil {
		return models.Coordinates{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.Coordinates{}, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return models.Coordinates{}, fmt.Errorf("mapbox API error: status %d: %s", resp.StatusCode, body)
	}

	var data mapboxResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return models.Coordinates{}, fmt.Errorf("decode response: %w", err)
	}

	if len(data.Features) == 0 || len(data.Features[0].Center) != 2 {
		return models.Coordinates{}, ErrNotFound
	}

	return models.Coordinates{
		Longitude: data.Features[0].Center[0],
		Latitude:  data.Features[0].Center[1],
	}, nil
}

// Disabled is the Geocoder used when no token is configured: every lookup
// misses cleanly.
type Disabled struct{}

func (Disabled) Forward(context.Context, string) (models.Coordinates, error) {
	return models.Coordinates{}, ErrNotFound
}
