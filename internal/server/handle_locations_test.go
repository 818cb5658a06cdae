package server

import (
	"net/http"
	"testing"

	"github.com/wellquest/questmap/internal/wellquest"
)

func TestNearbyLocations(t *testing.T) {
	ts := newTestServer(t, testOptions{})

	t.Run("sorted within radius", func(t *testing.T) {
		var got []wellquest.NearbyLocation
		code := ts.do(t, http.MethodGet, "/api/locations?lat=40.7829&lon=-73.9654&radius=2000", nil, &got)
		if code != http.StatusOK {
			t.Fatalf("status = %d", code)
		}
		if len(got) == 0 || got[0].ID != "park-central" {
			t.Fatalf("locations = %+v", got)
		}
		for i, n := range got {
			if n.DistanceMeters > 2000 {
				t.Errorf("%s at %f m outside radius", n.ID, n.DistanceMeters)
			}
			if i > 0 && got[i-1].DistanceMeters > n.DistanceMeters {
				t.Errorf("not sorted at %d", i)
			}
		}
	})

	t.Run("default radius", func(t *testing.T) {
		var got []wellquest.NearbyLocation
		ts.do(t, http.MethodGet, "/api/locations?lat=40.7829&lon=-73.9654", nil, &got)
		if len(got) != 12 {
			t.Errorf("got %d locations within 25 km, want 12", len(got))
		}
	})

	t.Run("nothing nearby", func(t *testing.T) {
		var got []wellquest.NearbyLocation
		code := ts.do(t, http.MethodGet, "/api/locations?lat=0&lon=0&radius=1000", nil, &got)
		if code != http.StatusOK || got == nil || len(got) != 0 {
			t.Errorf("status = %d, locations = %v, want empty list", code, got)
		}
	})

	t.Run("whole catalog", func(t *testing.T) {
		var got []wellquest.MagicalLocation
		ts.do(t, http.MethodGet, "/api/locations", nil, &got)
		if len(got) != 12 {
			t.Errorf("got %d locations, want 12", len(got))
		}
	})

	bad := []string{
		"/api/locations?lat=91&lon=0",
		"/api/locations?lat=abc&lon=0",
		"/api/locations?lat=40",
		"/api/locations?lat=40&lon=-73&radius=-5",
	}
	for _, path := range bad {
		t.Run(path, func(t *testing.T) {
			var e ErrorResponse
			if code := ts.do(t, http.MethodGet, path, nil, &e); code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", code)
			}
			if e.Error == "" {
				t.Error("missing error message")
			}
		})
	}
}

func TestGetLocation(t *testing.T) {
	ts := newTestServer(t, testOptions{})

	var loc wellquest.MagicalLocation
	if code := ts.do(t, http.MethodGet, "/api/locations/library-main", nil, &loc); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if loc.QuestReward != 75 || loc.Discovered {
		t.Errorf("location = %+v", loc)
	}

	if code := ts.do(t, http.MethodGet, "/api/locations/nowhere", nil, nil); code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", code)
	}
}
