// Package locator is the location service: position acquisition, nearby
// search, proximity checks, discovery state and quest synthesis.
package locator

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wellquest/questmap/internal/catalog"
	"github.com/wellquest/questmap/internal/geo"
	"github.com/wellquest/questmap/internal/gps"
	"github.com/wellquest/questmap/internal/questbank"
	"github.com/wellquest/questmap/internal/wellquest"
)

// ErrUnknownLocation is returned for an id not in the catalog.
var ErrUnknownLocation = errors.New("unknown location")

// FixStatus says how a position request ended.
type FixStatus string

const (
	FixOK          FixStatus = "ok"
	FixDenied      FixStatus = "denied"
	FixUnavailable FixStatus = "unavailable"
	FixTimeout     FixStatus = "timeout"
)

// Fix is the tagged outcome of a one-shot position request. When Status is
// not FixOK, Err holds the platform error and Position is only meaningful if
// Substituted is set.
type Fix struct {
	Status      FixStatus          `json:"status"`
	Position    wellquest.Position `json:"position"`
	Substituted bool               `json:"substituted"`
	Err         error              `json:"-"`
}

// Options configure a Service.
type Options struct {
	// InitialVisits seeds visit counts, e.g. from persisted state.
	InitialVisits map[string]int

	// Fallback, when set, is substituted for the device position whenever
	// the platform cannot supply one.
	Fallback *wellquest.Position

	Now func() time.Time
}

// Service answers location queries against a catalog and tracks visits.
// It is safe for concurrent use.
type Service struct {
	catalog  *catalog.Catalog
	bank     *questbank.Bank
	source   gps.Source
	logger   *slog.Logger
	fallback *wellquest.Position
	now      func() time.Time

	mu     sync.RWMutex
	visits map[string]int
}

// New returns a Service over c. A nil source means position is never
// available.
func New(c *catalog.Catalog, bank *questbank.Bank, source gps.Source, logger *slog.Logger, opts Options) *Service {
	s := &Service{
		catalog:  c,
		bank:     bank,
		source:   source,
		logger:   logger,
		fallback: opts.Fallback,
		now:      opts.Now,
		visits:   make(map[string]int),
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.source == nil {
		s.source = gps.Unsupported
	}
	for id, n := range opts.InitialVisits {
		if _, ok := c.ByID(id); !ok || n <= 0 {
			logger.Warn("ignoring initial visits", "location_id", id, "count", n)
			continue
		}
		s.visits[id] = n
	}
	return s
}

// Fallback returns the configured fallback position, if any.
func (s *Service) Fallback() (wellquest.Position, bool) {
	if s.fallback == nil {
		return wellquest.Position{}, false
	}
	return *s.fallback, true
}

// CurrentPosition asks the position source for a fix. Platform failures are
// reported through Fix.Status, never as an error; the only error returned is
// ctx's.
func (s *Service) CurrentPosition(ctx context.Context) (Fix, error) {
	return s.FixFrom(ctx, s.source)
}

// FixFrom is CurrentPosition against an explicit source.
func (s *Service) FixFrom(ctx context.Context, source gps.Source) (Fix, error) {
	pos, err := source.CurrentPosition(ctx)
	if err == nil {
		return Fix{Status: FixOK, Position: pos}, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Fix{}, ctxErr
	}

	fix := s.Degrade(err)
	s.logger.Warn("position unavailable",
		"status", fix.Status,
		"substituted", fix.Substituted,
		"error", err,
	)
	return fix, nil
}

// Degrade maps a platform error to a tagged Fix, applying the fallback
// position when one is configured.
func (s *Service) Degrade(err error) Fix {
	fix := Fix{Status: statusOf(err), Err: err}
	if fb, ok := s.Fallback(); ok {
		fix.Position = fb
		fix.Position.Timestamp = s.now()
		fix.Substituted = true
	}
	return fix
}

func statusOf(err error) FixStatus {
	switch {
	case errors.Is(err, gps.ErrPermissionDenied):
		return FixDenied
	case errors.Is(err, gps.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return FixTimeout
	default:
		return FixUnavailable
	}
}

// AllLocations returns every catalog entry with its discovery state.
func (s *Service) AllLocations() []wellquest.MagicalLocation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.catalog.All()
	out := make([]wellquest.MagicalLocation, len(all))
	for i, loc := range all {
		out[i] = s.annotate(loc)
	}
	return out
}

// Location returns entry id with its discovery state.
func (s *Service) Location(id string) (wellquest.MagicalLocation, error) {
	loc, ok := s.catalog.ByID(id)
	if !ok {
		return wellquest.MagicalLocation{}, fmt.Errorf("%w: %q", ErrUnknownLocation, id)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.annotate(loc), nil
}

// NearbyLocations returns catalog entries within radiusMeters of pos, nearest
// first. Entries at equal distance keep catalog order.
func (s *Service) NearbyLocations(pos geo.Point, radiusMeters float64) []wellquest.NearbyLocation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []wellquest.NearbyLocation
	for _, loc := range s.catalog.All() {
		d := geo.Distance(pos, loc.Point())
		if d > radiusMeters {
			continue
		}
		out = append(out, wellquest.NearbyLocation{
			MagicalLocation: s.annotate(loc),
			DistanceMeters:  d,
		})
	}

	slices.SortStableFunc(out, func(a, b wellquest.NearbyLocation) int {
		return cmp.Compare(a.DistanceMeters, b.DistanceMeters)
	})
	return out
}

// IsWithinProximity reports whether pos is within thresholdMeters of target,
// boundary inclusive.
func (s *Service) IsWithinProximity(pos, target geo.Point, thresholdMeters float64) bool {
	return geo.WithinRadius(pos, target, thresholdMeters)
}

// RecordVisit increments the visit count of id. Every call counts; callers
// guard against double completion.
func (s *Service) RecordVisit(id string) (wellquest.MagicalLocation, error) {
	loc, ok := s.catalog.ByID(id)
	if !ok {
		return wellquest.MagicalLocation{}, fmt.Errorf("%w: %q", ErrUnknownLocation, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.visits[id]++
	return s.annotate(loc), nil
}

// SynthesizeQuest builds a quest targeting location id. When from is non-nil
// the distance to the target is snapshotted. Quest ids are unique across
// sessions: location id, creation millisecond and a random suffix.
func (s *Service) SynthesizeQuest(id string, from *wellquest.Position) (wellquest.LocationQuest, error) {
	loc, ok := s.catalog.ByID(id)
	if !ok {
		return wellquest.LocationQuest{}, fmt.Errorf("%w: %q", ErrUnknownLocation, id)
	}

	tmpl := s.bank.Synthesize(loc)
	now := s.now()
	q := wellquest.LocationQuest{
		ID:              fmt.Sprintf("%s-%d-%s", loc.ID, now.UnixMilli(), uuid.NewString()),
		LocationID:      loc.ID,
		Title:           tmpl.Title,
		Description:     tmpl.Description,
		DurationMinutes: tmpl.DurationMinutes,
		Activity:        tmpl.Activity,
		XPReward:        loc.QuestReward,
		Target:          loc.Point(),
		CreatedAt:       now,
	}
	if from != nil {
		d := geo.Distance(from.Point(), loc.Point())
		q.DistanceToTarget = &d
	}
	return q, nil
}

// Visits returns a snapshot of visit counts by location id.
func (s *Service) Visits() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.visits)
}

// annotate must be called with s.mu held.
func (s *Service) annotate(loc wellquest.Location) wellquest.MagicalLocation {
	n := s.visits[loc.ID]
	return wellquest.MagicalLocation{
		Location:   loc,
		Discovered: n > 0,
		VisitCount: n,
	}
}
