package feeds

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/ayush112812/disaster-response-platform-sub001/internal/models"
)

var newsTemplates = []struct {
	title   string
	summary string
	source  string
}{
	{"Evacuation ordered for riverside districts", "Officials ordered a mandatory evacuation as flood waters breached the levee overnight.", "City Wire"},
	{"Magnitude 5.4 quake rattles coastal region", "No casualties reported yet; structural damage assessments are underway.", "GeoPress"},
	{"Relief supplies arriving at regional depot", "Trucks with water and blankets reached the staging area this morning.", "Relief Daily"},
	{"Hospitals report surge in storm injuries", "Emergency rooms are near capacity; non-critical patients asked to defer visits.", "Health Tribune"},
	{"Road crews reopen two mountain passes", "Cleanup continues after landslides blocked key routes for two days.", "Transit News"},
}

// NewsAdapter synthesizes agency bulletins and classifies their severity by
// keyword. Mock stand-in for a real news API.
type NewsAdapter struct {
	clock clockwork.Clock

	mu  sync.Mutex
	rng *rand.Rand
	seq int
}

func NewNewsAdapter(clock clockwork.Clock, seed int64) *NewsAdapter {
	return &NewsAdapter{
		clock: clock,
		rng:   rand.New(rand.NewSource(seed)),
	}
}

func (a *NewsAdapter) Name() string { return "news" }

func (a *NewsAdapter) Fetch(ctx context.Context) (Batch, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	n := 2 + a.rng.Intn(3)
	now := a.clock.Now()

	items := make([]models.NewsAlert, 0, n)
	for i := 0; i < n; i++ {
		tmpl := newsTemplates[a.rng.Intn(len(newsTemplates))]
		a.seq++
		items = append(items, models.NewsAlert{
			ID:          fmt.Sprintf("news_%d", a.seq),
			Title:       tmpl.title,
			Summary:     tmpl.summary,
			Source:      tmpl.source,
			Severity:    ClassifyNewsSeverity(tmpl.title + " " + tmpl.summary),
			PublishedAt: now,
		})
	}

	return Batch{News: items}, nil
}

// ClassifyNewsSeverity buckets a bulletin by keyword: evacuation/casualty
// language is high, damage/injury language medium, everything else low.
func ClassifyNewsSeverity(text string) models.NewsSeverity {
	lower := strings.ToLower(text)
	for _, kw := range []string{"evacuation", "casualties", "mandatory", "breached", "life-threatening"} {
		if strings.Contains(lower, kw) {
			return models.NewsSeverityHigh
		}
	}
	for _, kw := range []string{"damage", "injuries", "surge", "blocked", "capacity"} {
		if strings.Contains(lower, kw) {
			return models.NewsSeverityMedium
		}
	}
	return models.NewsSeverityLow
}
