// Package gps abstracts the device geolocation capability: one-shot position
// queries and continuous position watches.
package gps

import (
	"context"
	"errors"
	"sync"

	"github.com/wellquest/questmap/internal/wellquest"
)

var (
	ErrPermissionDenied = errors.New("location permission denied")
	ErrTimeout          = errors.New("location request timed out")
	ErrUnavailable      = errors.New("geolocation unavailable")
	ErrSignalLost       = errors.New("location signal lost")
)

// Update is one delivery on a watch: either a fix or a platform error.
type Update struct {
	Position wellquest.Position
	Err      error
}

// Subscription is a live position watch. Close releases it; no updates are
// delivered after Close returns and the channel is closed.
type Subscription interface {
	Updates() <-chan Update
	Close()
}

type Source interface {
	CurrentPosition(ctx context.Context) (wellquest.Position, error)
	Watch(ctx context.Context) (Subscription, error)
}

// Static always reports the same position.
type Static struct {
	Position wellquest.Position
}

func (s Static) CurrentPosition(_ context.Context) (wellquest.Position, error) {
	return s.Position, nil
}

func (s Static) Watch(ctx context.Context) (Subscription, error) {
	sub := newSubscription(1, nil)
	sub.ch <- Update{Position: s.Position}
	context.AfterFunc(ctx, sub.Close)
	return sub, nil
}

// Broken fails every request with Err.
type Broken struct {
	Err error
}

// Unsupported models a platform without geolocation.
var Unsupported = Broken{Err: ErrUnavailable}

func (b Broken) CurrentPosition(_ context.Context) (wellquest.Position, error) {
	return wellquest.Position{}, b.Err
}

func (b Broken) Watch(_ context.Context) (Subscription, error) {
	return nil, b.Err
}

type subscription struct {
	ch     chan Update
	once   sync.Once
	detach func(*subscription)
}

func newSubscription(size int, detach func(*subscription)) *subscription {
	return &subscription{ch: make(chan Update, size), detach: detach}
}

func (s *subscription) Updates() <-chan Update { return s.ch }

func (s *subscription) Close() {
	s.once.Do(func() {
		if s.detach != nil {
			s.detach(s)
			return
		}
		close(s.ch)
	})
}
