package engine

import (
	"context"
	"sync"
	"time"

	"fanhub/models"

	"go.uber.org/zap"
)

// Kind names a read query.
type Kind string

const (
	KindMembership     Kind = "membership"
	KindPendingSelf    Kind = "pendingSelf"
	KindPendingMembers Kind = "pendingMembers"
	KindGroupDetails   Kind = "groupDetails"
	KindMessages       Kind = "messages"
)

// Key identifies a cached read query. Queries scoped to the whole group
// leave Address empty.
type Key struct {
	Kind    Kind
	GroupID models.GroupID
	Address models.Address
}

// FetchFunc produces the current value of a read query.
type FetchFunc func(ctx context.Context) (any, error)

type query struct {
	fetch    FetchFunc
	interval time.Duration // 0 = on-demand only
	enabled  bool

	value      any
	hasValue   bool
	err        error
	nextSeq    uint64
	appliedSeq uint64
	inflight   int
}

// Engine is the shared read-query cache. Each query holds its last
// applied value; fetches are tagged with a per-key sequence number so a
// stale in-flight response can never overwrite a newer applied value.
// Poll ticks that land while a fetch is outstanding are dropped, not
// queued.
type Engine struct {
	mu      sync.Mutex
	queries map[Key]*query
	subs    []func()
	log     *zap.Logger
	done    chan struct{}
	closed  bool
}

// New creates an empty engine.
func New(log *zap.Logger) *Engine {
	return &Engine{
		queries: make(map[Key]*query),
		log:     log,
		done:    make(chan struct{}),
	}
}

// Register adds a read query. An enabled query is fetched once
// immediately (mount); interval > 0 additionally polls it on a fixed
// timer regardless of focus. Disabled queries perform no fetch and
// report no value until enabled. The cache is process-wide: a key that
// is already registered keeps its existing entry and value.
func (e *Engine) Register(key Key, interval time.Duration, enabled bool, fetch FetchFunc) {
	e.mu.Lock()
	if _, ok := e.queries[key]; ok {
		e.mu.Unlock()
		return
	}
	e.queries[key] = &query{
		fetch:    fetch,
		interval: interval,
		enabled:  enabled,
	}
	e.mu.Unlock()

	if enabled {
		e.tick(key)
	}
	if interval > 0 {
		go e.pollLoop(key, interval)
	}
}

// SetEnabled flips a query's precondition. Enabling a query with no
// applied value triggers a fetch.
func (e *Engine) SetEnabled(key Key, enabled bool) {
	e.mu.Lock()
	q, ok := e.queries[key]
	if !ok || q.enabled == enabled {
		e.mu.Unlock()
		return
	}
	q.enabled = enabled
	needFetch := enabled && !q.hasValue
	e.mu.Unlock()

	if needFetch {
		e.tick(key)
	}
}

// Subscribe registers a callback invoked after every applied update.
func (e *Engine) Subscribe(fn func()) {
	e.mu.Lock()
	e.subs = append(e.subs, fn)
	e.mu.Unlock()
}

// Value returns the last applied value for the key.
func (e *Engine) Value(key Key) (any, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	q, ok := e.queries[key]
	if !ok || !q.hasValue {
		return nil, false
	}
	return q.value, true
}

// ValueAs returns the last applied value converted to T.
func ValueAs[T any](e *Engine, key Key) (T, bool) {
	var zero T
	v, ok := e.Value(key)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		return zero, false
	}
	return t, true
}

// Loading reports whether an enabled query has no applied value yet.
func (e *Engine) Loading(key Key) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	q, ok := e.queries[key]
	return ok && q.enabled && !q.hasValue
}

// Err returns the last fetch error for the key, nil after a successful
// fetch.
func (e *Engine) Err(key Key) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if q, ok := e.queries[key]; ok {
		return q.err
	}
	return nil
}

// Degraded reports whether any enabled query's last fetch failed. The
// stale value stays applied; this only flags the staleness.
func (e *Engine) Degraded() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, q := range e.queries {
		if q.enabled && q.err != nil {
			return true
		}
	}
	return false
}

// Refetch re-executes the query synchronously and applies the result.
// Used by mutations for their targeted invalidations, so callers can
// rely on freshness once it returns.
func (e *Engine) Refetch(ctx context.Context, key Key) error {
	e.mu.Lock()
	q, ok := e.queries[key]
	if !ok || !q.enabled {
		e.mu.Unlock()
		return nil
	}
	q.nextSeq++
	seq := q.nextSeq
	fetch := q.fetch
	e.mu.Unlock()

	value, err := fetch(ctx)
	e.apply(key, seq, value, err)
	return err
}

// tick runs one coalesced asynchronous fetch: if a fetch for the key is
// already in flight the tick is dropped.
func (e *Engine) tick(key Key) {
	e.mu.Lock()
	q, ok := e.queries[key]
	if !ok || !q.enabled || q.inflight > 0 {
		e.mu.Unlock()
		return
	}
	q.inflight++
	q.nextSeq++
	seq := q.nextSeq
	fetch := q.fetch
	e.mu.Unlock()

	go func() {
		value, err := fetch(context.Background())
		e.mu.Lock()
		if q, ok := e.queries[key]; ok {
			q.inflight--
		}
		e.mu.Unlock()
		e.apply(key, seq, value, err)
	}()
}

// apply installs a fetch result unless a newer result was applied while
// this one was in flight.
func (e *Engine) apply(key Key, seq uint64, value any, err error) {
	e.mu.Lock()
	q, ok := e.queries[key]
	if !ok || seq <= q.appliedSeq {
		e.mu.Unlock()
		return
	}
	q.appliedSeq = seq
	if err != nil {
		q.err = err
		e.log.Warn("read query failed",
			zap.String("kind", string(key.Kind)),
			zap.Int64("group", int64(key.GroupID)),
			zap.Error(err))
	} else {
		q.value = value
		q.hasValue = true
		q.err = nil
	}
	subs := e.subs
	e.mu.Unlock()

	for _, fn := range subs {
		fn()
	}
}

func (e *Engine) pollLoop(key Key, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-e.done:
			return
		case <-ticker.C:
			e.tick(key)
		}
	}
}

// Close stops all poll loops. In-flight fetches are left to resolve and
// be discarded or applied by the sequence rule.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.closed {
		e.closed = true
		close(e.done)
	}
}
