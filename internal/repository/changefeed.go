package repository

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/ayush112812/disaster-response-platform-sub001/internal/worker"
)

// changefeed fans row-change events out to per-table subscribers through a
// worker pool, keeping notification delivery off the mutating goroutine.
type changefeed struct {
	pool *worker.Pool

	mu     sync.RWMutex
	nextID uint64
	subs   map[string]map[uint64]func(ChangeEvent)
}

type dispatchJob struct {
	fn  func(ChangeEvent)
	evt ChangeEvent
}

func newChangefeed(workers, buffer int) *changefeed {
	cf := &changefeed{
		subs: make(map[string]map[uint64]func(ChangeEvent)),
	}
	cf.pool = worker.NewPool(workers, buffer, func(_ context.Context, job worker.Job) error {
		j := job.(dispatchJob)
		j.fn(j.evt)
		return nil
	})
	return cf
}

func (cf *changefeed) start(ctx context.Context) {
	cf.pool.Start(ctx)
}

func (cf *changefeed) stop() {
	cf.pool.Stop()
}

func (cf *changefeed) SubscribeChanges(table string, fn func(ChangeEvent)) func() {
	cf.mu.Lock()
	cf.nextID++
	id := cf.nextID
	if cf.subs[table] == nil {
		cf.subs[table] = make(map[uint64]func(ChangeEvent))
	}
	cf.subs[table][id] = fn
	cf.mu.Unlock()

	return func() {
		cf.mu.Lock()
		delete(cf.subs[table], id)
		cf.mu.Unlock()
	}
}

func (cf *changefeed) notify(evt ChangeEvent) {
	cf.mu.RLock()
	fns := make([]func(ChangeEvent), 0, len(cf.subs[evt.Table]))
	for _, fn := range cf.subs[evt.Table] {
		fns = append(fns, fn)
	}
	cf.mu.RUnlock()

	for _, fn := range fns {
		if !cf.pool.Submit(dispatchJob{fn: fn, evt: evt}) {
			slog.Warn("change notification dropped, dispatch queue full",
				"table", evt.Table, "op", evt.Op)
		}
	}
}

// rowMap converts an entity into the opaque row representation carried by
// change events.
func rowMap(v any) map[string]any {
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil
	}
	return m
}
