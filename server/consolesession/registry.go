// Package consolesession tracks one session.Store per browser.
package consolesession

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-clinic-console/session"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Factory builds the store for a browser session ID. Stores are expected to
// persist under a key derived from the ID so they can be rehydrated.
type Factory func(id string) (*session.Store, error)

// Recorder observes the registry size.
type Recorder interface {
	SessionsActive(n int)
	SessionsSwept(n int)
}

type nopRecorder struct{}

func (nopRecorder) SessionsActive(int) {}
func (nopRecorder) SessionsSwept(int)  {}

const defaultRestoreTimeout = 5 * time.Second

type entry struct {
	store    *session.Store
	lastSeen time.Time

	restoreMu sync.Mutex
	restored  bool
}

// Registry is an in-memory map of browser session ID to store. Dropped
// entries rehydrate from storage the next time the browser shows up.
type Registry struct {
	mu       sync.Mutex
	entries  map[string]*entry
	factory  Factory
	idleAge  time.Duration
	nowTime  func() time.Time
	recorder Recorder
	logger   zerolog.Logger
}

type Option func(*Registry)

// WithIdleAge sets how long an untouched store stays in memory.
func WithIdleAge(d time.Duration) Option {
	return func(r *Registry) {
		if d > 0 {
			r.idleAge = d
		}
	}
}

func WithNowTime(nowTime func() time.Time) Option {
	return func(r *Registry) {
		r.nowTime = nowTime
	}
}

func WithRecorder(rec Recorder) Option {
	return func(r *Registry) {
		if rec != nil {
			r.recorder = rec
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

func New(factory Factory, options ...Option) *Registry {
	r := &Registry{
		entries:  make(map[string]*entry),
		factory:  factory,
		idleAge:  30 * time.Minute,
		nowTime:  time.Now,
		recorder: nopRecorder{},
		logger:   zerolog.Nop(),
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// NewID returns a fresh browser session ID.
func NewID() string {
	return uuid.New().String()
}

// ValidID reports whether id could have come from NewID.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Get returns the store for id, creating and restoring it on first use.
func (r *Registry) Get(ctx context.Context, id string) (*session.Store, error) {
	if !ValidID(id) {
		return nil, fmt.Errorf("invalid session id %q", id)
	}

	r.mu.Lock()
	e, ok := r.entries[id]
	if !ok {
		store, err := r.factory(id)
		if err != nil {
			r.mu.Unlock()
			return nil, fmt.Errorf("[Registry.Get] %w", err)
		}
		e = &entry{store: store}
		r.entries[id] = e
		r.recorder.SessionsActive(len(r.entries))
	}
	e.lastSeen = r.nowTime()
	r.mu.Unlock()

	r.restore(ctx, id, e)
	return e.store, nil
}

// restore rehydrates e from storage until one attempt succeeds. Concurrent
// requests for the same browser wait for the attempt in progress.
func (r *Registry) restore(ctx context.Context, id string, e *entry) {
	e.restoreMu.Lock()
	defer e.restoreMu.Unlock()
	if e.restored {
		return
	}
	// Logged in since a failed attempt: storage holds nothing newer.
	if e.store.Snapshot().HasCredential {
		e.restored = true
		return
	}

	restoreCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), defaultRestoreTimeout)
	defer cancel()
	if err := e.store.Restore(restoreCtx); err != nil {
		r.logger.Warn().Err(err).Str("session_id", id).Msg("Failed to restore browser session, retrying on next request")
		return
	}
	e.restored = true
}

// Drop forgets the in-memory store for id. Persisted state is untouched.
func (r *Registry) Drop(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id)
	r.recorder.SessionsActive(len(r.entries))
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Sweep drops stores idle for longer than the idle age, skipping any with a
// call in flight. It returns how many were dropped.
func (r *Registry) Sweep() int {
	cutoff := r.nowTime().Add(-r.idleAge)

	r.mu.Lock()
	swept := 0
	for id, e := range r.entries {
		if e.lastSeen.After(cutoff) || e.store.Snapshot().IsLoading {
			continue
		}
		delete(r.entries, id)
		swept++
	}
	remaining := len(r.entries)
	r.mu.Unlock()

	r.recorder.SessionsActive(remaining)
	if swept > 0 {
		r.recorder.SessionsSwept(swept)
		r.logger.Debug().Int("swept", swept).Int("remaining", remaining).Msg("Dropped idle browser sessions")
	}
	return swept
}

// StartSweeper runs Sweep on the cron schedule until stop is called.
func (r *Registry) StartSweeper(schedule string) (stop func(), err error) {
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() { r.Sweep() }); err != nil {
		return nil, fmt.Errorf("[Registry.StartSweeper] schedule %q: %w", schedule, err)
	}
	c.Start()
	return func() { <-c.Stop().Done() }, nil
}
