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

// Urgency scoring: +2 per distress keyword, +1 per hazard keyword,
// clamped to 5. A post scoring >= 4 counts as high priority.
var (
	distressKeywords = []string{"sos", "trapped", "urgent", "help needed", "emergency", "life-threatening"}
	hazardKeywords   = []string{"flood", "fire", "earthquake", "collapsed", "injured", "evacuate", "shelter", "rescue"}
)

// ScoreUrgency runs the keyword heuristics over a post and returns the
// clamped score plus the keywords that matched.
func ScoreUrgency(text string) (int, []string) {
	lower := strings.ToLower(text)
	score := 0
	var matched []string
	for _, kw := range distressKeywords {
		if strings.Contains(lower, kw) {
			score += 2
			matched = append(matched, kw)
		}
	}
	for _, kw := range hazardKeywords {
		if strings.Contains(lower, kw) {
			score++
			matched = append(matched, kw)
		}
	}
	if score > 5 {
		score = 5
	}
	return score, matched
}

var socialTemplates = []struct {
	user string
	text string
}{
	{"citizen_jane", "Massive flood on 5th street, water rising fast. Need rescue boats. #floodrelief"},
	{"relief_watch", "Shelter at Lincoln High is at capacity, redirect to Eastside community center"},
	{"local_eye", "Power lines down near the river crossing, area looks dangerous"},
	{"sos_now", "SOS! Family trapped on rooftop near Oak and 3rd, urgent help needed"},
	{"road_report", "Highway 9 closed both directions, debris everywhere after the quake"},
	{"vol_net", "Volunteers gathering at the fairgrounds with water and blankets"},
	{"med_aid", "Clinic on Maple accepting injured, supplies running low"},
	{"calm_obs", "Rain easing up downtown, river level still high but stable"},
}

// SocialAdapter synthesizes a batch of social posts each cycle. There is no
// real ingest here; content comes from fixed templates and the urgency
// scores from the same keyword heuristics production posts would get.
type SocialAdapter struct {
	clock clockwork.Clock

	mu  sync.Mutex
	rng *rand.Rand
	seq int
}

func NewSocialAdapter(clock clockwork.Clock, seed int64) *SocialAdapter {
	return &SocialAdapter{
		clock: clock,
		rng:   rand.New(rand.NewSource(seed)),
	}
}

func (a *SocialAdapter) Name() string { return "social" }

func (a *SocialAdapter) Fetch(ctx context.Context) (Batch, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	n := 3 + a.rng.Intn(4)
	now := a.clock.Now()

	posts := make([]models.SocialAlert, 0, n)
	for i := 0; i < n; i++ {
		tmpl := socialTemplates[a.rng.Intn(len(socialTemplates))]
		a.seq++
		score, keywords := ScoreUrgency(tmpl.text)
		posts = append(posts, models.SocialAlert{
			ID:           fmt.Sprintf("social_%d", a.seq),
			User:         tmpl.user,
			Text:         tmpl.text,
			Keywords:     keywords,
			UrgencyScore: score,
			PostedAt:     now,
		})
	}

	return Batch{Social: posts}, nil
}

// ForDisaster synthesizes posts scoped to a single disaster, preferring
// templates that mention one of the disaster's tags. Used by the hub's
// push cycle for topic-scoped social views.
func (a *SocialAdapter) ForDisaster(d models.Disaster) []models.SocialAlert {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.clock.Now()
	var posts []models.SocialAlert
	for _, tmpl := range socialTemplates {
		if !matchesTags(tmpl.text, d.Tags) {
			continue
		}
		a.seq++
		score, keywords := ScoreUrgency(tmpl.text)
		posts = append(posts, models.SocialAlert{
			ID:           fmt.Sprintf("social_%s_%d", d.ID, a.seq),
			User:         tmpl.user,
			Text:         tmpl.text,
			Keywords:     keywords,
			UrgencyScore: score,
			Coordinates:  &models.Coordinates{Latitude: d.Latitude, Longitude: d.Longitude},
			PostedAt:     now,
		})
	}
	return posts
}

func matchesTags(text string, tags []string) bool {
	if len(tags) == 0 {
		return true
	}
	lower := strings.ToLower(text)
	for _, tag := range tags {
		if strings.Contains(lower, strings.ToLower(tag)) {
			return true
		}
	}
	return false
}
