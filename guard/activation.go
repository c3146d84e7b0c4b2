package guard

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-clinic-console/session"
	"github.com/jrsteele09/go-clinic-console/users"
)

// Source is the read side of a session store plus the re-validation it offers.
type Source interface {
	Snapshot() session.Snapshot
	Subscribe(fn func(session.Snapshot)) (cancel func())
	CheckAuth(ctx context.Context) error
}

// Activation is one mounted guard. It re-validates the session once and
// re-evaluates on every session change until closed.
type Activation struct {
	required *users.Role
	policy   Policy

	mu        sync.Mutex
	current   Decision
	seq       uint64
	checked   bool
	closed    bool
	decisions chan Decision
	settled   chan struct{}
	settle    sync.Once

	unsubscribe func()
}

// Activate mounts a guard over src. The decision stays Pending until the
// activation's CheckAuth has completed.
func Activate(ctx context.Context, src Source, required *users.Role, policy Policy) *Activation {
	a := &Activation{
		required:  required,
		policy:    policy,
		current:   Decision{State: Pending},
		decisions: make(chan Decision, 1),
		settled:   make(chan struct{}),
	}
	a.unsubscribe = src.Subscribe(a.observe)

	// The check outlives the caller's cancellation: abandoning a page must
	// not be mistaken for a rejected credential.
	checkCtx := context.WithoutCancel(ctx)
	go func() {
		_ = src.CheckAuth(checkCtx)
		a.mu.Lock()
		a.checked = true
		a.mu.Unlock()
		a.observe(src.Snapshot())
	}()
	return a
}

func (a *Activation) observe(snap session.Snapshot) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed || snap.Seq < a.seq {
		return
	}
	a.seq = snap.Seq

	d := Decision{State: Pending}
	if a.checked {
		d = Evaluate(snap, a.required, a.policy)
	}
	if d == a.current {
		return
	}
	a.current = d
	select {
	case <-a.decisions:
	default:
	}
	a.decisions <- d
	if d.State != Pending {
		a.settle.Do(func() { close(a.settled) })
	}
}

// Current is the latest decision.
func (a *Activation) Current() Decision {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

// Decisions delivers the latest decision whenever it changes. Only the most
// recent undelivered decision is kept. The channel is closed by Close.
func (a *Activation) Decisions() <-chan Decision {
	return a.decisions
}

// Wait blocks until the first Allowed or Denied decision.
func (a *Activation) Wait(ctx context.Context) (Decision, error) {
	select {
	case <-a.settled:
		return a.Current(), nil
	case <-ctx.Done():
		return a.Current(), ctx.Err()
	}
}

// Close unsubscribes from the session; nothing is delivered afterwards.
func (a *Activation) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	close(a.decisions)
	a.mu.Unlock()

	// Unsubscribing takes the store's listener lock, which observe may hold.
	a.unsubscribe()
}
