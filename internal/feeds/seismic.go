package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ayush112812/disaster-response-platform-sub001/internal/models"
)

// minMagnitude is the adapter-local noise floor: micro-quakes below this
// are dropped before they ever reach the aggregator.
const minMagnitude = 2.0

type usgsResponse struct {
	Features []usgsFeature `json:"features"`
}

type usgsFeature struct {
	ID         string         `json:"id"`
	Properties usgsProperties `json:"properties"`
	Geometry   usgsGeometry   `json:"geometry"`
}
type usgsProperties struct {
	Mag     float64 `json:"mag"`
	Place   string  `json:"place"`
	Time    int64   `json:"time"` // unix millis
	Tsunami int     `json:"tsunami"`
}
type usgsGeometry struct {
	Coordinates []float64 `json:"coordinates"` // [lon, lat, depth]
}

// SeismicAdapter polls a USGS-style GeoJSON earthquake feed.
type SeismicAdapter struct {
	url    string
	client *http.Client
}

func NewSeismicAdapter(url string, timeout time.Duration) *SeismicAdapter {
	return &SeismicAdapter{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

func (a *SeismicAdapter) Name() string { return "seismic" }

func (a *SeismicAdapter) Fetch(ctx context.Context) (Batch, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.url, nil)
	if err != nil {
		return Batch{}, fmt.Errorf("error creating request: %w", err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return Batch{}, fmt.Errorf("seismic fetch: %w: %v", classifyFetchErr(ctx, err), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Batch{}, fmt.Errorf("seismic fetch: %w: unexpected status code %d", ErrSourceUnavailable, resp.StatusCode)
	}

	var data usgsResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return Batch{}, fmt.Errorf("seismic fetch: error decoding resp.Body: %w", err)
	}

	events := make([]models.SeismicEvent, 0, len(data.Features))
	for _, f := range data.Features {
		if f.Properties.Mag < minMagnitude {
			continue
		}
		if len(f.Geometry.Coordinates) < 2 {
			continue
		}
		e := models.SeismicEvent{
			ID:        "usgs_" + f.ID,
			Place:     f.Properties.Place,
			Magnitude: f.Properties.Mag,
			Tsunami:   f.Properties.Tsunami == 1,
			Coordinates: models.Coordinates{
				Longitude: f.Geometry.Coordinates[0],
				Latitude:  f.Geometry.Coordinates[1],
			},
			Time: time.UnixMilli(f.Properties.Time),
		}
		if len(f.Geometry.Coordinates) > 2 {
			e.DepthKM = f.Geometry.Coordinates[2]
		}
		events = append(events, e)
	}

	return Batch{Seismic: events}, nil
}
