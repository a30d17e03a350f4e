// Package aggregate runs the recurring aggregation cycle: fetch all alert
// sources in parallel, merge whatever arrived, publish a fresh snapshot.
package aggregate

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/ayush112812/disaster-response-platform-sub001/internal/cache"
	"github.com/ayush112812/disaster-response-platform-sub001/internal/feeds"
	"github.com/ayush112812/disaster-response-platform-sub001/internal/models"
	"github.com/ayush112812/disaster-response-platform-sub001/internal/observability"
	"github.com/ayush112812/disaster-response-platform-sub001/internal/snapshot"
)

// SnapshotCacheKey is where the latest snapshot is persisted best-effort.
const SnapshotCacheKey = "alerts:latest"

const persistTimeout = 5 * time.Second

// Options tune the aggregator's cycle and per-fetch bound.
type Options struct {
	Interval     time.Duration // cycle period, default 30s
	FetchTimeout time.Duration // per-adapter bound, default 10s
	SnapshotTTL  time.Duration // cache persistence TTL, default 1h
}

func (o *Options) withDefaults() {
	if o.Interval <= 0 {
		o.Interval = 30 * time.Second
	}
	if o.FetchTimeout <= 0 {
		o.FetchTimeout = feeds.DefaultFetchTimeout
	}
	if o.SnapshotTTL <= 0 {
		o.SnapshotTTL = time.Hour
	}
}

type Aggregator struct {
	adapters []feeds.Adapter
	store    *snapshot.Store
	cache    cache.Provider
	metrics  *observability.Metrics
	clock    clockwork.Clock
	opts     Options

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func New(adapters []feeds.Adapter, store *snapshot.Store, cacheProvider cache.Provider, metrics *observability.Metrics, clock clockwork.Clock, opts Options) *Aggregator {
	opts.withDefaults()
	return &Aggregator{
		adapters: adapters,
		store:    store,
		cache:    cacheProvider,
		metrics:  metrics,
		clock:    clock,
		opts:     opts,
	}
}

// Start launches the recurring cycle with an immediate first run. Calling
// Start while already running is a no-op.
func (a *Aggregator) Start(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.running {
		slog.Warn("aggregator already running, ignoring start")
		return
	}
	a.running = true

	ctx, a.cancel = context.WithCancel(ctx)
	a.wg.Add(1)
	go a.run(ctx)
}

// Stop cancels future cycles and waits for an in-flight cycle to settle.
// A cycle that completes its fetches after Stop discards its result
// instead of publishing it.
func (a *Aggregator) Stop() {
	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		return
	}
	a.running = false
	cancel := a.cancel
	a.mu.Unlock()

	cancel()
	a.wg.Wait()
	slog.Info("aggregator stopped")
}

func (a *Aggregator) run(ctx context.Context) {
	defer a.wg.Done()
	slog.Info("aggregator started", "interval", a.opts.Interval, "sources", len(a.adapters))

	a.runCycle(ctx)

	ticker := a.clock.NewTicker(a.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			a.runCycle(ctx)
		}
	}
}

// fetchResult is one adapter's settled outcome, value or error.
type fetchResult struct {
	source string
	batch  feeds.Batch
	err    error
}

// fetchAll invokes every adapter concurrently and waits for all of them to
// settle. One slow or failed source never blanks out the others; total
// latency is bounded by the per-fetch timeout, not the sum of fetches.
func (a *Aggregator) fetchAll(ctx context.Context) []fetchResult {
	results := make([]fetchResult, len(a.adapters))

	var wg sync.WaitGroup
	for i, adapter := range a.adapters {
		wg.Add(1)
		go func(i int, adapter feeds.Adapter) {
			defer wg.Done()
			fetchCtx, cancel := context.WithTimeout(ctx, a.opts.FetchTimeout)
			defer cancel()

			batch, err := adapter.Fetch(fetchCtx)
			results[i] = fetchResult{source: adapter.Name(), batch: batch, err: err}
		}(i, adapter)
	}
	wg.Wait()

	return results
}

func (a *Aggregator) runCycle(ctx context.Context) {
	start := a.clock.Now()
	results := a.fetchAll(ctx)

	var (
		weather []models.WeatherAlert
		seismic []models.SeismicEvent
		social  []models.SocialAlert
		news    []models.NewsAlert
	)
	for _, r := range results {
		if r.err != nil {
			// Failed source contributes an empty collection this cycle;
			// the next cycle is the retry.
			slog.Error("source fetch failed", "source", r.source, "cycle", start, "error", r.err)
			a.metrics.AdapterFailures.WithLabelValues(r.source).Inc()
			continue
		}
		weather = append(weather, r.batch.Weather...)
		seismic = append(seismic, r.batch.Seismic...)
		social = append(social, r.batch.Social...)
		news = append(news, r.batch.News...)
	}

	if ctx.Err() != nil {
		slog.Info("aggregator stopped mid-cycle, discarding result")
		return
	}

	sn := models.NewSnapshot(weather, seismic, social, news, a.clock.Now())
	a.store.Publish(sn)

	a.metrics.AggregationCycles.Inc()
	a.metrics.SnapshotAlerts.Set(float64(sn.TotalAlerts))
	a.metrics.SnapshotPriority.Set(float64(sn.HighPriorityCount))
	a.metrics.CycleDuration.Observe(a.clock.Now().Sub(start).Seconds())

	a.persist(ctx, sn)

	slog.Debug("aggregation cycle complete",
		"total_alerts", sn.TotalAlerts,
		"high_priority", sn.HighPriorityCount,
	)
}

// persist writes the snapshot to the cache provider. Failure is logged and
// counted; the in-memory snapshot is already published and stays valid.
func (a *Aggregator) persist(ctx context.Context, sn *models.Snapshot) {
	data, err := json.Marshal(sn)
	if err != nil {
		slog.Error("snapshot marshal failed", "error", err)
		a.metrics.PersistenceErrors.Inc()
		return
	}

	persistCtx, cancel := context.WithTimeout(ctx, persistTimeout)
	defer cancel()

	if err := a.cache.Set(persistCtx, SnapshotCacheKey, data, a.opts.SnapshotTTL); err != nil {
		slog.Error("snapshot persistence failed", "cycle", sn.LastUpdated, "error", err)
		a.metrics.PersistenceErrors.Inc()
	}
}
