package gps

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/wellquest/questmap/internal/wellquest"
)

const feedBuffer = 16

// Feed is a Source driven by fixes a client device pushes in. Only the most
// recent fix is kept.
type Feed struct {
	timeout time.Duration

	mu     sync.Mutex
	latest *wellquest.Position
	denied bool
	ready  chan struct{}
	subs   map[*subscription]struct{}
}

// NewFeed returns a feed whose CurrentPosition waits up to timeout for the
// first fix.
func NewFeed(timeout time.Duration) *Feed {
	return &Feed{
		timeout: timeout,
		ready:   make(chan struct{}),
		subs:    make(map[*subscription]struct{}),
	}
}

// Push records pos as the latest fix and delivers it to every watcher.
func (f *Feed) Push(pos wellquest.Position) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.latest = &pos
	f.denied = false
	f.signalReady()
	f.broadcast(Update{Position: pos})
}

// Fail reports a platform error to watchers. ErrPermissionDenied also makes
// subsequent one-shot queries fail until the next Push.
func (f *Feed) Fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if errors.Is(err, ErrPermissionDenied) {
		f.denied = true
		f.signalReady()
	}
	f.broadcast(Update{Err: err})
}

func (f *Feed) CurrentPosition(ctx context.Context) (wellquest.Position, error) {
	f.mu.Lock()
	pos, ok, err := f.snapshot()
	ready := f.ready
	f.mu.Unlock()
	if ok {
		return pos, err
	}

	timer := time.NewTimer(f.timeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return wellquest.Position{}, ctx.Err()
	case <-timer.C:
		return wellquest.Position{}, ErrTimeout
	case <-ready:
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	pos, _, err = f.snapshot()
	return pos, err
}

func (f *Feed) Watch(ctx context.Context) (Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.denied {
		return nil, ErrPermissionDenied
	}

	sub := newSubscription(feedBuffer, f.detach)
	f.subs[sub] = struct{}{}
	context.AfterFunc(ctx, sub.Close)
	return sub, nil
}

// Watchers returns the number of open subscriptions.
func (f *Feed) Watchers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

func (f *Feed) snapshot() (wellquest.Position, bool, error) {
	switch {
	case f.denied:
		return wellquest.Position{}, true, ErrPermissionDenied
	case f.latest != nil:
		return *f.latest, true, nil
	}
	return wellquest.Position{}, false, nil
}

func (f *Feed) signalReady() {
	select {
	case <-f.ready:
	default:
		close(f.ready)
	}
}

// broadcast must be called with f.mu held. A full subscriber loses its
// oldest pending update.
func (f *Feed) broadcast(u Update) {
	for sub := range f.subs {
		select {
		case sub.ch <- u:
			continue
		default:
		}
		select {
		case <-sub.ch:
		default:
		}
		select {
		case sub.ch <- u:
		default:
		}
	}
}

func (f *Feed) detach(sub *subscription) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.subs, sub)
	close(sub.ch)
}
