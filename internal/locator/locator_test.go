package locator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/wellquest/questmap/internal/catalog"
	"github.com/wellquest/questmap/internal/geo"
	"github.com/wellquest/questmap/internal/gps"
	"github.com/wellquest/questmap/internal/questbank"
	"github.com/wellquest/questmap/internal/wellquest"
)

var (
	discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))
	grove         = geo.Point{Lat: 40.7829, Lon: -73.9654}
	fixedNow      = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
)

// metersNorth returns p moved d meters due north.
func metersNorth(p geo.Point, d float64) geo.Point {
	return geo.Point{Lat: p.Lat + d/geo.EarthRadiusMeters*180/math.Pi, Lon: p.Lon}
}

func newService(t *testing.T, c *catalog.Catalog, source gps.Source, opts Options) *Service {
	t.Helper()
	if c == nil {
		c = catalog.Default()
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return fixedNow }
	}
	return New(c, questbank.Default(rand.NewPCG(1, 2)), source, discardLogger, opts)
}

func TestProximityAndVisitAtLocation(t *testing.T) {
	svc := newService(t, nil, nil, Options{})
	pos := wellquest.Position{Latitude: 40.7829, Longitude: -73.9654}

	loc, err := svc.Location("park-central")
	if err != nil {
		t.Fatalf("Location: %v", err)
	}
	if !svc.IsWithinProximity(pos.Point(), loc.Point(), 50) {
		t.Fatal("user at the location should be within 50 m")
	}

	got, err := svc.RecordVisit("park-central")
	if err != nil {
		t.Fatalf("RecordVisit: %v", err)
	}
	if got.VisitCount != 1 || !got.Discovered {
		t.Errorf("after visit: count=%d discovered=%v, want 1/true", got.VisitCount, got.Discovered)
	}
}

func TestProximityTooFar(t *testing.T) {
	svc := newService(t, nil, nil, Options{})
	pos := metersNorth(grove, 200)

	if svc.IsWithinProximity(pos, grove, 50) {
		t.Fatal("200 m away should not be within 50 m")
	}
	loc, _ := svc.Location("park-central")
	if loc.VisitCount != 0 || loc.Discovered {
		t.Errorf("visit state changed: %+v", loc)
	}
}

func TestProximityBoundaryInclusive(t *testing.T) {
	svc := newService(t, nil, nil, Options{})
	pos := metersNorth(grove, 100)
	d := geo.Distance(pos, grove)

	if !svc.IsWithinProximity(pos, grove, d) {
		t.Error("distance == threshold must be within proximity")
	}
}

func TestNearbyLocationsFiltersAndSorts(t *testing.T) {
	origin := geo.Point{Lat: 10, Lon: 10}
	at := func(d float64) (float64, float64) {
		p := metersNorth(origin, d)
		return p.Lat, p.Lon
	}

	lat900, lon900 := at(900)
	lat200, lon200 := at(200)
	lat1500, lon1500 := at(1500)
	c, err := catalog.New([]wellquest.Location{
		{ID: "far", Category: wellquest.CategoryPark, Latitude: lat1500, Longitude: lon1500},
		{ID: "mid", Category: wellquest.CategoryGym, Latitude: lat900, Longitude: lon900},
		{ID: "near", Category: wellquest.CategoryCafe, Latitude: lat200, Longitude: lon200},
	})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	svc := newService(t, c, nil, Options{InitialVisits: map[string]int{"mid": 2}})

	got := svc.NearbyLocations(origin, 1000)
	if len(got) != 2 {
		t.Fatalf("got %d locations, want 2", len(got))
	}
	if got[0].ID != "near" || got[1].ID != "mid" {
		t.Errorf("order = [%s %s], want [near mid]", got[0].ID, got[1].ID)
	}
	if got[1].VisitCount != 2 || !got[1].Discovered {
		t.Errorf("mid annotation = %+v", got[1].MagicalLocation)
	}
	for _, n := range got {
		if n.DistanceMeters > 1000 {
			t.Errorf("%s at %f m exceeds radius", n.ID, n.DistanceMeters)
		}
	}
}

func TestNearbyLocationsDefaultCatalogProperty(t *testing.T) {
	svc := newService(t, nil, nil, Options{})
	for _, radius := range []float64{0, 500, 2000, 5000, 25000} {
		got := svc.NearbyLocations(grove, radius)
		for i, n := range got {
			if d := geo.Distance(grove, n.Point()); d > radius {
				t.Errorf("radius %v: %s at %f m", radius, n.ID, d)
			}
			if i > 0 && got[i-1].DistanceMeters > n.DistanceMeters {
				t.Errorf("radius %v: not sorted at %d", radius, i)
			}
		}
	}
	if got := svc.NearbyLocations(grove, 0); len(got) != 1 || got[0].ID != "park-central" {
		t.Errorf("radius 0 at the grove = %v, want only park-central", got)
	}
}

func TestRecordVisitCounts(t *testing.T) {
	svc := newService(t, nil, nil, Options{})
	const n = 5
	for i := 0; i < n; i++ {
		if _, err := svc.RecordVisit("library-main"); err != nil {
			t.Fatalf("RecordVisit: %v", err)
		}
	}
	loc, _ := svc.Location("library-main")
	if loc.VisitCount != n || !loc.Discovered {
		t.Errorf("count=%d discovered=%v, want %d/true", loc.VisitCount, loc.Discovered, n)
	}

	if _, err := svc.RecordVisit("nope"); !errors.Is(err, ErrUnknownLocation) {
		t.Errorf("RecordVisit(nope) err = %v", err)
	}
	if got := svc.Visits(); got["library-main"] != n || len(got) != 1 {
		t.Errorf("Visits() = %v", got)
	}
}

func TestInitialVisitsIgnoresUnknown(t *testing.T) {
	svc := newService(t, nil, nil, Options{InitialVisits: map[string]int{
		"park-central": 3,
		"ghost":        1,
		"gym-yoga":     0,
	}})
	visits := svc.Visits()
	if len(visits) != 1 || visits["park-central"] != 3 {
		t.Errorf("Visits() = %v", visits)
	}

	for _, loc := range svc.AllLocations() {
		if loc.Discovered != (loc.VisitCount > 0) {
			t.Errorf("%s: discovered=%v count=%d", loc.ID, loc.Discovered, loc.VisitCount)
		}
	}
}

func TestSynthesizeQuest(t *testing.T) {
	svc := newService(t, nil, nil, Options{})
	from := wellquest.Position{Latitude: 40.7614, Longitude: -73.9776}

	q, err := svc.SynthesizeQuest("park-central", &from)
	if err != nil {
		t.Fatalf("SynthesizeQuest: %v", err)
	}
	if !strings.HasPrefix(q.ID, "park-central-1748779200000-") {
		t.Errorf("id = %q", q.ID)
	}
	if q.XPReward != 100 || q.Completed {
		t.Errorf("reward=%d completed=%v", q.XPReward, q.Completed)
	}
	if !strings.HasSuffix(q.Description, "at The Whispering Grove of Serenity.") {
		t.Errorf("description = %q", q.Description)
	}
	if q.DistanceToTarget == nil || *q.DistanceToTarget < 2000 || *q.DistanceToTarget > 3000 {
		t.Errorf("distance = %v, want ~2.5 km", q.DistanceToTarget)
	}
	if q.Target != grove {
		t.Errorf("target = %v", q.Target)
	}

	noFrom, _ := svc.SynthesizeQuest("park-central", nil)
	if noFrom.DistanceToTarget != nil {
		t.Error("distance should be nil without a starting position")
	}
	if noFrom.ID == q.ID {
		t.Errorf("quests created in the same millisecond share id %q", q.ID)
	}

	if _, err := svc.SynthesizeQuest("missing", nil); !errors.Is(err, ErrUnknownLocation) {
		t.Errorf("err = %v, want ErrUnknownLocation", err)
	}
}

func TestCurrentPosition(t *testing.T) {
	fallback := &wellquest.Position{Latitude: 40.7829, Longitude: -73.9654}
	device := wellquest.Position{Latitude: 51.5, Longitude: -0.12, Accuracy: 8}

	tests := []struct {
		name            string
		source          gps.Source
		fallback        *wellquest.Position
		wantStatus      FixStatus
		wantSubstituted bool
		wantLat         float64
	}{
		{"device fix", gps.Static{Position: device}, fallback, FixOK, false, 51.5},
		{"permission denied with fallback", gps.Broken{Err: gps.ErrPermissionDenied}, fallback, FixDenied, true, 40.7829},
		{"permission denied without fallback", gps.Broken{Err: gps.ErrPermissionDenied}, nil, FixDenied, false, 0},
		{"no capability", gps.Unsupported, fallback, FixUnavailable, true, 40.7829},
		{"timeout", gps.Broken{Err: gps.ErrTimeout}, nil, FixTimeout, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newService(t, nil, tt.source, Options{Fallback: tt.fallback})

			fix, err := svc.CurrentPosition(context.Background())
			if err != nil {
				t.Fatalf("CurrentPosition returned error: %v", err)
			}
			if fix.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", fix.Status, tt.wantStatus)
			}
			if fix.Substituted != tt.wantSubstituted {
				t.Errorf("substituted = %v, want %v", fix.Substituted, tt.wantSubstituted)
			}
			if fix.Position.Latitude != tt.wantLat {
				t.Errorf("latitude = %v, want %v", fix.Position.Latitude, tt.wantLat)
			}
			if tt.wantStatus != FixOK && fix.Err == nil {
				t.Error("non-ok fix should carry the platform error")
			}
		})
	}
}

func TestCurrentPositionContextCanceled(t *testing.T) {
	svc := newService(t, nil, gps.NewFeed(time.Minute), Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := svc.CurrentPosition(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
