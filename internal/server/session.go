package server

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/wellquest/questmap/internal/gps"
	"github.com/wellquest/questmap/internal/notify"
	"github.com/wellquest/questmap/internal/tracking"
	"github.com/wellquest/questmap/internal/wellquest"
)

// Session is one device being tracked: the feed its fixes arrive on and the
// tracker evaluating them against its quests.
type Session struct {
	ID        string
	CreatedAt time.Time
	Feed      *gps.Feed
	Tracker   *tracking.Tracker

	broker  *Broker
	done    chan struct{}
	endOnce sync.Once
}

func newSession(id string, feed *gps.Feed, tracker *tracking.Tracker, broker *Broker) *Session {
	return &Session{
		ID:      id,
		Feed:    feed,
		Tracker: tracker,
		broker:  broker,
		done:    make(chan struct{}),
	}
}

// Apply pushes a device report into the session's feed. Reports for an ended
// session are rejected with ErrSessionNotFound.
func (s *Session) Apply(r gps.Report) error {
	select {
	case <-s.done:
		return ErrSessionNotFound
	default:
	}
	return r.Apply(s.Feed, time.Now().UTC())
}

// Done is closed when the session is removed. Open streams end on it.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// end closes Done and stops the tracker.
func (s *Session) end() {
	s.endOnce.Do(func() { close(s.done) })
	s.Tracker.Stop()
}

// Events subscribes to the session's events until cancel is called.
func (s *Session) Events() (<-chan []byte, func()) {
	ch := s.broker.Subscribe(s.ID)
	return ch, func() { s.broker.Unsubscribe(s.ID, ch) }
}

const (
	storeTimeout   = 5 * time.Second
	publishTimeout = 5 * time.Second
)

// completer persists and fans out completions. It runs on tracking
// goroutines, so downstream publishing happens in the background.
type completer struct {
	store     Store
	broker    *Broker
	publisher notify.Publisher
	logger    *slog.Logger
	wg        sync.WaitGroup
}

func (c *completer) complete(sessionID string, done wellquest.Completion) {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	if err := c.store.RecordCompletion(ctx, sessionID, done); err != nil {
		c.logger.Error("recording completion",
			"session_id", sessionID,
			"quest_id", done.QuestID,
			"error", err,
		)
	}

	c.broker.Publish(Event{Type: EventCompletion, SessionID: sessionID, Completion: &done})

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := c.publisher.Publish(ctx, sessionID, done); err != nil {
			c.logger.Warn("publishing completion",
				"session_id", sessionID,
				"quest_id", done.QuestID,
				"error", err,
			)
		}
	}()
}

// wait blocks until in-flight publishes finish.
func (c *completer) wait() {
	c.wg.Wait()
}

func sessionFactory(deps Deps, broker *Broker, done *completer, logger *slog.Logger) func(id string) *Session {
	return func(id string) *Session {
		feed := gps.NewFeed(deps.PositionTimeout)
		tracker := tracking.New(deps.Locator, feed, tracking.Config{
			ThresholdMeters: deps.ProximityMeters,
			OnFix: func(pos wellquest.Position) {
				broker.Publish(Event{Type: EventPosition, SessionID: id, Position: &pos})
			},
			OnComplete: func(c wellquest.Completion) {
				done.complete(id, c)
			},
		}, logger.With("session_id", id))
		return newSession(id, feed, tracker, broker)
	}
}
