package feeds

import (
	"context"
	"errors"
	"time"

	"github.com/ayush112812/disaster-response-platform-sub001/internal/models"
)

// DefaultFetchTimeout bounds a single adapter fetch. Adapters do not retry;
// the aggregator's next cycle is the retry mechanism.
const DefaultFetchTimeout = 10 * time.Second

// ErrSourceUnavailable marks a fetch that could not reach its backing
// source at all. The aggregator substitutes an empty batch for the cycle.
var ErrSourceUnavailable = errors.New("source unavailable")

// ErrSourceTimeout marks a fetch that exceeded its time bound.
var ErrSourceTimeout = errors.New("source timeout")

// Batch carries one adapter's result. Each adapter fills exactly one of the
// four collections; the aggregator merges batches field-wise.
type Batch struct {
	Weather []models.WeatherAlert
	Seismic []models.SeismicEvent
	Social  []models.SocialAlert
	News    []models.NewsAlert
}

// Adapter fetches one alert variant from its backing source. Fetch must
// return within the context deadline or fail; partial-batch problems are
// handled adapter-locally, never raised as a whole-call failure.
type Adapter interface {
	Name() string
	Fetch(ctx context.Context) (Batch, error)
}

// classifyFetchErr maps transport errors onto the feed error taxonomy.
func classifyFetchErr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ErrSourceTimeout
	}
	return ErrSourceUnavailable
}
