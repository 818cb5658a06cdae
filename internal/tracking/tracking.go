// Package tracking runs the live position watch for one session and turns
// fixes into quest completions.
package tracking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/wellquest/questmap/internal/geo"
	"github.com/wellquest/questmap/internal/gps"
	"github.com/wellquest/questmap/internal/locator"
	"github.com/wellquest/questmap/internal/wellquest"
)

var (
	ErrUnknownQuest     = errors.New("unknown quest")
	ErrDuplicateQuest   = errors.New("quest already tracked")
	ErrAlreadyCompleted = errors.New("quest already completed")
	ErrNoFix            = errors.New("no position fix yet")
	ErrOutOfRange       = errors.New("not within proximity of the target")
)

// Walking distance filter: steps only count when the fix is accurate and the
// step is neither jitter nor a GPS jump.
const (
	maxStepAccuracy = 50.0
	minStepMeters   = 0.5
	maxStepMeters   = 100.0
)

// Config controls completion and the callbacks a Tracker reports to.
type Config struct {
	// ThresholdMeters is the proximity radius at which a quest completes.
	ThresholdMeters float64

	// OnFix and OnComplete run on the tracking goroutine (or the caller of
	// Complete). They must not call Stop.
	OnFix      func(wellquest.Position)
	OnComplete func(wellquest.Completion)

	Now func() time.Time
}

// Tracker watches one position source and completes the quests it tracks.
type Tracker struct {
	svc    *locator.Service
	source gps.Source
	cfg    Config
	logger *slog.Logger

	runMu  sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}

	mu       sync.Mutex
	latest   *wellquest.Position
	demo     bool
	quests   map[string]*wellquest.LocationQuest
	order    []string
	walked   float64
	lastStep *wellquest.Position
}

// New returns a stopped Tracker.
func New(svc *locator.Service, source gps.Source, cfg Config, logger *slog.Logger) *Tracker {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Tracker{
		svc:    svc,
		source: source,
		cfg:    cfg,
		logger: logger,
		quests: make(map[string]*wellquest.LocationQuest),
	}
}

// Start acquires a fresh watch on the position source. Calling Start on a
// running tracker does nothing. If the platform refuses the watch and the
// service has a fallback position, the tracker enters demo mode at that
// position and stays stopped.
func (t *Tracker) Start(ctx context.Context) error {
	t.runMu.Lock()
	defer t.runMu.Unlock()

	if t.running() {
		return nil
	}
	if t.cancel != nil {
		// The previous watch ended on its own.
		t.cancel()
		t.cancel, t.done = nil, nil
	}

	sub, err := t.source.Watch(ctx)
	if err != nil {
		fb, ok := t.svc.Fallback()
		if !ok || !(errors.Is(err, gps.ErrPermissionDenied) || errors.Is(err, gps.ErrUnavailable)) {
			return fmt.Errorf("starting position watch: %w", err)
		}
		t.logger.Warn("position watch refused, using fallback position", "error", err)

		fb.Timestamp = t.cfg.Now()
		t.mu.Lock()
		t.latest = &fb
		t.demo = true
		t.mu.Unlock()
		return nil
	}

	loopCtx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.done = make(chan struct{})

	t.mu.Lock()
	t.demo = false
	t.mu.Unlock()

	go t.loop(loopCtx, sub, t.done)
	return nil
}

// Stop releases the watch and waits for the tracking goroutine to exit. No
// fix is handled after Stop returns.
func (t *Tracker) Stop() {
	t.runMu.Lock()
	defer t.runMu.Unlock()

	if t.cancel == nil {
		return
	}
	t.cancel()
	<-t.done
	t.cancel = nil
	t.done = nil
}

func (t *Tracker) Running() bool {
	t.runMu.Lock()
	defer t.runMu.Unlock()
	return t.running()
}

func (t *Tracker) running() bool {
	if t.done == nil {
		return false
	}
	select {
	case <-t.done:
		return false
	default:
		return true
	}
}

func (t *Tracker) loop(ctx context.Context, sub gps.Subscription, done chan struct{}) {
	defer close(done)
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case u, ok := <-sub.Updates():
			if !ok {
				t.logger.Debug("position watch closed")
				return
			}
			if ctx.Err() != nil {
				return
			}
			if u.Err != nil {
				t.logger.Warn("position watch error", "error", u.Err)
				continue
			}
			t.handle(u.Position)
		}
	}
}

// handle records pos as the latest fix and completes every tracked quest it
// reaches.
func (t *Tracker) handle(pos wellquest.Position) {
	t.mu.Lock()
	t.latest = &pos
	t.demo = false
	t.accumulate(pos)

	var completed []wellquest.Completion
	for _, id := range t.order {
		q := t.quests[id]
		if q.Completed {
			continue
		}
		if !t.svc.IsWithinProximity(pos.Point(), q.Target, t.cfg.ThresholdMeters) {
			continue
		}
		completed = append(completed, t.complete(q, pos))
	}
	t.mu.Unlock()

	if t.cfg.OnComplete != nil {
		for _, c := range completed {
			t.cfg.OnComplete(c)
		}
	}
	if t.cfg.OnFix != nil {
		t.cfg.OnFix(pos)
	}
}

// complete latches q and records the visit. Must be called with t.mu held.
func (t *Tracker) complete(q *wellquest.LocationQuest, pos wellquest.Position) wellquest.Completion {
	now := t.cfg.Now()
	q.Completed = true
	q.CompletedAt = &now

	c := wellquest.Completion{
		QuestID:     q.ID,
		LocationID:  q.LocationID,
		Title:       q.Title,
		Description: q.Description,
		XPReward:    q.XPReward,
		Position:    pos,
		CompletedAt: now,
	}

	loc, err := t.svc.RecordVisit(q.LocationID)
	if err != nil {
		t.logger.Error("recording visit", "quest_id", q.ID, "location_id", q.LocationID, "error", err)
		return c
	}
	c.MagicalName = loc.MagicalName

	t.logger.Info("quest completed",
		"quest_id", q.ID,
		"location_id", q.LocationID,
		"xp", q.XPReward,
		"visit_count", loc.VisitCount,
	)
	return c
}

func (t *Tracker) accumulate(pos wellquest.Position) {
	if t.lastStep != nil && pos.Accuracy < maxStepAccuracy {
		d := geo.Distance(t.lastStep.Point(), pos.Point())
		if d > minStepMeters && d < maxStepMeters {
			t.walked += d
		}
	}
	t.lastStep = &pos
}

// Track adds q to the set of quests evaluated on every fix.
func (t *Tracker) Track(q wellquest.LocationQuest) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.trackLocked(q)
}

func (t *Tracker) trackLocked(q wellquest.LocationQuest) error {
	if q.Completed {
		return fmt.Errorf("%w: %s", ErrAlreadyCompleted, q.ID)
	}
	if _, ok := t.quests[q.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateQuest, q.ID)
	}
	t.quests[q.ID] = &q
	t.order = append(t.order, q.ID)
	return nil
}

// Activate makes q the only in-flight quest. Completed quests are kept.
func (t *Tracker) Activate(q wellquest.LocationQuest) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if q.Completed {
		return fmt.Errorf("%w: %s", ErrAlreadyCompleted, q.ID)
	}
	kept := t.order[:0]
	for _, id := range t.order {
		if t.quests[id].Completed {
			kept = append(kept, id)
			continue
		}
		delete(t.quests, id)
	}
	t.order = kept
	return t.trackLocked(q)
}

func (t *Tracker) Untrack(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.quests[id]; !ok {
		return false
	}
	delete(t.quests, id)
	for i, qid := range t.order {
		if qid == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return true
}

// Complete completes quest id against the latest fix, for clients that
// finish a quest explicitly. The proximity threshold still applies.
func (t *Tracker) Complete(id string) (wellquest.Completion, error) {
	t.mu.Lock()
	q, ok := t.quests[id]
	switch {
	case !ok:
		t.mu.Unlock()
		return wellquest.Completion{}, fmt.Errorf("%w: %s", ErrUnknownQuest, id)
	case q.Completed:
		t.mu.Unlock()
		return wellquest.Completion{}, fmt.Errorf("%w: %s", ErrAlreadyCompleted, id)
	case t.latest == nil:
		t.mu.Unlock()
		return wellquest.Completion{}, ErrNoFix
	case !t.svc.IsWithinProximity(t.latest.Point(), q.Target, t.cfg.ThresholdMeters):
		t.mu.Unlock()
		return wellquest.Completion{}, ErrOutOfRange
	}
	c := t.complete(q, *t.latest)
	t.mu.Unlock()

	if t.cfg.OnComplete != nil {
		t.cfg.OnComplete(c)
	}
	return c, nil
}

func (t *Tracker) Quest(id string) (wellquest.LocationQuest, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	q, ok := t.quests[id]
	if !ok {
		return wellquest.LocationQuest{}, false
	}
	return *q, true
}

// Quests returns tracked quests in the order they were added.
func (t *Tracker) Quests() []wellquest.LocationQuest {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]wellquest.LocationQuest, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, *t.quests[id])
	}
	return out
}

// Position returns the latest fix. demo is true when it is the fallback
// position rather than a device fix.
func (t *Tracker) Position() (pos wellquest.Position, demo, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.latest == nil {
		return wellquest.Position{}, false, false
	}
	return *t.latest, t.demo, true
}

// Distance returns the walking distance accumulated from device fixes, in meters.
func (t *Tracker) Distance() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.walked
}
