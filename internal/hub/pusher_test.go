package hub

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/ayush112812/disaster-response-platform-sub001/internal/feeds"
	"github.com/ayush112812/disaster-response-platform-sub001/internal/models"
)

type stubSource struct {
	disasters []models.Disaster
	err       error
}

func (s *stubSource) ActiveDisasters(context.Context) ([]models.Disaster, error) {
	return s.disasters, s.err
}

func newTestPusher(source ActiveTopicSource) (*Pusher, *Hub) {
	h := newTestHub()
	clock := clockwork.NewRealClock()
	p := NewPusher(h, source, feeds.NewSocialAdapter(clock, 1), feeds.NewOfficialUpdates(clock), clock, time.Hour)
	return p, h
}

func eventNames(events []Event) map[string]int {
	names := make(map[string]int)
	for _, evt := range events {
		names[evt.Name]++
	}
	return names
}

func TestPusherCycle_TopicScopedAndGlobal(t *testing.T) {
	source := &stubSource{disasters: []models.Disaster{
		{ID: "d1", Title: "River flood", Tags: []string{"flood"}, Status: models.DisasterStatusActive},
		{ID: "d2", Title: "Hill fire", Tags: []string{"fire"}, Status: models.DisasterStatusActive},
	}}
	p, h := newTestPusher(source)
	defer h.Close()

	subscriber, subCh := h.Register()
	h.Join(subscriber, Topic("d1"))
	_, plainCh := h.Register()

	p.runCycle(context.Background())

	subNames := eventNames(drain(subCh))
	plainNames := eventNames(drain(plainCh))

	// The d1 subscriber gets both scoped views plus all three globals.
	for _, name := range []string{"social_media_updates", "official_updates", "active_disasters_updated", "priority_alerts", "social_media_global_update"} {
		if subNames[name] == 0 {
			t.Errorf("topic subscriber missing %q, got %v", name, subNames)
		}
	}
	if subNames["social_media_updates"] != 1 {
		t.Errorf("subscriber should only see its own topic's social view, got %d", subNames["social_media_updates"])
	}

	// The unsubscribed connection gets only globals.
	if plainNames["social_media_updates"] != 0 || plainNames["official_updates"] != 0 {
		t.Errorf("unsubscribed connection received topic-scoped events: %v", plainNames)
	}
	for _, name := range []string{"active_disasters_updated", "priority_alerts", "social_media_global_update"} {
		if plainNames[name] != 1 {
			t.Errorf("unsubscribed connection missing global %q: %v", name, plainNames)
		}
	}
}

func TestPusherCycle_SummariesPayload(t *testing.T) {
	source := &stubSource{disasters: []models.Disaster{
		{ID: "d1", Title: "River flood", LocationName: "Riverside", Severity: models.DisasterSeverityHigh, Tags: []string{"flood"}},
	}}
	p, h := newTestPusher(source)
	defer h.Close()

	_, ch := h.Register()
	p.runCycle(context.Background())

	for _, evt := range drain(ch) {
		if evt.Name != "active_disasters_updated" {
			continue
		}
		summaries, ok := evt.Payload.([]ActiveDisasterSummary)
		if !ok {
			t.Fatalf("unexpected payload type %T", evt.Payload)
		}
		if len(summaries) != 1 || summaries[0].ID != "d1" || summaries[0].Severity != models.DisasterSeverityHigh {
			t.Errorf("unexpected summaries %+v", summaries)
		}
		return
	}
	t.Fatal("active_disasters_updated not delivered")
}

func TestPusherCycle_SourceErrorSkipsPush(t *testing.T) {
	p, h := newTestPusher(&stubSource{err: errors.New("db down")})
	defer h.Close()

	_, ch := h.Register()
	p.runCycle(context.Background())

	if events := drain(ch); len(events) != 0 {
		t.Errorf("expected no pushes when the source fails, got %d events", len(events))
	}
}

func TestPusher_StartStop(t *testing.T) {
	p, h := newTestPusher(&stubSource{})
	defer h.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p.Start(ctx)
	p.Start(ctx) // no-op
	p.Stop()
	p.Stop() // no-op

	// Restart after a stop works.
	p.Start(ctx)
	p.Stop()
}
