package hub

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/ayush112812/disaster-response-platform-sub001/internal/feeds"
	"github.com/ayush112812/disaster-response-platform-sub001/internal/models"
)

// priorityThreshold selects social posts for the global priority_alerts
// broadcast.
const priorityThreshold = 4

// ActiveTopicSource supplies the working set of disasters the pusher
// recomputes derived views for. The production implementation queries
// storage for disasters with status "active"; tests inject a fixed list.
type ActiveTopicSource interface {
	ActiveDisasters(ctx context.Context) ([]models.Disaster, error)
}

// Pusher drives the fast push cycle: every interval it recomputes social
// and official derived views per active disaster and publishes them
// topic-scoped, plus a handful of global broadcasts. Scoped and global
// addressing are distinct on purpose and must stay that way.
type Pusher struct {
	hub      *Hub
	source   ActiveTopicSource
	social   *feeds.SocialAdapter
	official *feeds.OfficialUpdates
	clock    clockwork.Clock
	interval time.Duration

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewPusher(h *Hub, source ActiveTopicSource, social *feeds.SocialAdapter, official *feeds.OfficialUpdates, clock clockwork.Clock, interval time.Duration) *Pusher {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Pusher{
		hub:      h,
		source:   source,
		social:   social,
		official: official,
		clock:    clock,
		interval: interval,
	}
}

// Start launches the push loop. Calling Start while running is a no-op.
func (p *Pusher) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		slog.Warn("pusher already running, ignoring start")
		return
	}
	p.running = true

	ctx, p.cancel = context.WithCancel(ctx)
	p.wg.Add(1)
	go p.run(ctx)
}

// Stop cancels future push cycles and waits for the loop to exit.
func (p *Pusher) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	cancel := p.cancel
	p.mu.Unlock()

	cancel()
	p.wg.Wait()
	slog.Info("pusher stopped")
}

func (p *Pusher) run(ctx context.Context) {
	defer p.wg.Done()
	slog.Info("pusher started", "interval", p.interval)

	ticker := p.clock.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			p.runCycle(ctx)
		}
	}
}

// ActiveDisasterSummary is the payload item for active_disasters_updated.
type ActiveDisasterSummary struct {
	ID           string                  `json:"id"`
	Title        string                  `json:"title"`
	LocationName string                  `json:"location_name"`
	Severity     models.DisasterSeverity `json:"severity"`
	Tags         []string                `json:"tags"`
}

func (p *Pusher) runCycle(ctx context.Context) {
	disasters, err := p.source.ActiveDisasters(ctx)
	if err != nil {
		slog.Error("active disaster query failed", "error", err)
		return
	}

	summaries := make([]ActiveDisasterSummary, 0, len(disasters))
	var priority []models.SocialAlert
	var globalSample []models.SocialAlert

	for _, d := range disasters {
		topic := Topic(d.ID)

		social := p.social.ForDisaster(d)
		p.hub.PublishToTopic(topic, "social_media_updates", social)

		official := p.official.ForDisaster(d)
		p.hub.PublishToTopic(topic, "official_updates", official)

		for _, post := range social {
			if post.UrgencyScore >= priorityThreshold {
				priority = append(priority, post)
			}
		}
		if len(social) > 0 && len(globalSample) < 5 {
			globalSample = append(globalSample, social[0])
		}

		summaries = append(summaries, ActiveDisasterSummary{
			ID:           d.ID,
			Title:        d.Title,
			LocationName: d.LocationName,
			Severity:     d.Severity,
			Tags:         d.Tags,
		})
	}

	// Global pushes go to every connection regardless of topic membership.
	p.hub.Broadcast("active_disasters_updated", summaries)
	p.hub.Broadcast("priority_alerts", priority)
	p.hub.Broadcast("social_media_global_update", globalSample)

	slog.Debug("push cycle complete",
		"active_disasters", len(disasters),
		"priority_alerts", len(priority),
	)
}
