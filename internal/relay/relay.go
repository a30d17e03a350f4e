// Package relay translates storage row changes into topic-scoped client
// events. It is a pure translation layer: payloads pass through untouched.
package relay

import (
	"fmt"
	"log/slog"

	"github.com/ayush112812/disaster-response-platform-sub001/internal/hub"
	"github.com/ayush112812/disaster-response-platform-sub001/internal/observability"
	"github.com/ayush112812/disaster-response-platform-sub001/internal/repository"
)

// entity singular forms used in event names: disasters -> disaster_created.
var tableEntity = map[string]string{
	repository.TableDisasters: "disaster",
	repository.TableResources: "resource",
	repository.TableReports:   "report",
}

var opSuffix = map[repository.ChangeOp]string{
	repository.ChangeInsert: "created",
	repository.ChangeUpdate: "updated",
	repository.ChangeDelete: "deleted",
}

// Relay subscribes to the storage change feed for the three entity tables
// and republishes each change to its owning disaster's topic.
type Relay struct {
	feed    repository.ChangeFeed
	hub     *hub.Hub
	metrics *observability.Metrics

	unsubscribeFns []func()
}

func New(feed repository.ChangeFeed, h *hub.Hub, metrics *observability.Metrics) *Relay {
	return &Relay{
		feed:    feed,
		hub:     h,
		metrics: metrics,
	}
}

// Start registers change-feed subscriptions for all three tables.
func (r *Relay) Start() {
	for _, table := range []string{repository.TableDisasters, repository.TableResources, repository.TableReports} {
		unsub := r.feed.SubscribeChanges(table, r.handle)
		r.unsubscribeFns = append(r.unsubscribeFns, unsub)
	}
	slog.Info("change relay started", "tables", 3)
}

// Stop removes all change-feed subscriptions.
func (r *Relay) Stop() {
	for _, fn := range r.unsubscribeFns {
		fn()
	}
	r.unsubscribeFns = nil
	slog.Info("change relay stopped")
}

func (r *Relay) handle(evt repository.ChangeEvent) {
	name, err := eventName(evt)
	if err != nil {
		slog.Warn("unrelayable change event", "table", evt.Table, "op", evt.Op, "error", err)
		r.metrics.RelayDropped.Inc()
		return
	}

	payload := evt.New
	if evt.Op == repository.ChangeDelete {
		payload = evt.Old
	}

	disasterID, ok := resolveDisasterID(evt.Table, payload)
	if !ok {
		// No resolvable owning disaster: drop, never fatal.
		slog.Warn("change event has no resolvable disaster id", "table", evt.Table, "op", evt.Op)
		r.metrics.RelayDropped.Inc()
		return
	}

	r.hub.PublishToTopic(hub.Topic(disasterID), name, payload)
	r.metrics.RelayEvents.WithLabelValues(evt.Table).Inc()
}

func eventName(evt repository.ChangeEvent) (string, error) {
	entity, ok := tableEntity[evt.Table]
	if !ok {
		return "", fmt.Errorf("unknown table %q", evt.Table)
	}
	suffix, ok := opSuffix[evt.Op]
	if !ok {
		return "", fmt.Errorf("unknown operation %q", evt.Op)
	}
	return entity + "_" + suffix, nil
}

// resolveDisasterID finds the owning disaster: the row's own id for the
// disasters table, the disaster_id field otherwise.
func resolveDisasterID(table string, row map[string]any) (string, bool) {
	if row == nil {
		return "", false
	}
	key := "disaster_id"
	if table == repository.TableDisasters {
		key = "id"
	}
	id, ok := row[key].(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}
