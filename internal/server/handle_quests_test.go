package server

import (
	"net/http"
	"testing"
	"time"

	"github.com/wellquest/questmap/internal/gps"
	"github.com/wellquest/questmap/internal/wellquest"
)

var groveReport = gps.Report{Latitude: 40.7829, Longitude: -73.9654, Accuracy: 5}

func TestQuestCompletesOnArrival(t *testing.T) {
	pub := &recordingPublisher{}
	ts := newTestServer(t, testOptions{publisher: pub})
	id := ts.createSession(t)
	base := "/api/sessions/" + id

	// Start about 2.6 km away so the quest snapshots a distance.
	ts.do(t, http.MethodPost, base+"/position", gps.Report{Latitude: 40.7614, Longitude: -73.9776, Accuracy: 5}, nil)
	waitFor(t, "first fix", func() bool {
		_, _, ok := ts.mustSession(t, id).Tracker.Position()
		return ok
	})

	var q wellquest.LocationQuest
	if code := ts.do(t, http.MethodPost, base+"/quests", CreateQuestRequest{LocationID: "park-central"}, &q); code != http.StatusCreated {
		t.Fatalf("create quest status = %d", code)
	}
	if q.LocationID != "park-central" || q.XPReward != 100 || q.Completed {
		t.Fatalf("quest = %+v", q)
	}
	if q.DistanceToTarget == nil || *q.DistanceToTarget < 2000 {
		t.Errorf("distance to target = %v", q.DistanceToTarget)
	}

	ts.do(t, http.MethodPost, base+"/position", groveReport, nil)

	var got CompletionsResponse
	waitFor(t, "completion", func() bool {
		ts.do(t, http.MethodGet, base+"/completions", nil, &got)
		return len(got.Completions) == 1
	})
	c := got.Completions[0]
	if c.QuestID != q.ID || c.MagicalName != "The Whispering Grove of Serenity" || got.TotalXP != 100 {
		t.Errorf("completions = %+v", got)
	}

	// More fixes at the target do not complete it again.
	ts.do(t, http.MethodPost, base+"/position", groveReport, nil)
	var after CompletionsResponse
	ts.do(t, http.MethodGet, base+"/completions", nil, &after)
	if len(after.Completions) != 1 {
		t.Errorf("completions after repeat = %d, want 1", len(after.Completions))
	}

	var quests []wellquest.LocationQuest
	ts.do(t, http.MethodGet, base+"/quests", nil, &quests)
	if len(quests) != 1 || !quests[0].Completed || quests[0].CompletedAt == nil {
		t.Errorf("stored quests = %+v", quests)
	}

	var loc wellquest.MagicalLocation
	ts.do(t, http.MethodGet, "/api/locations/park-central", nil, &loc)
	if loc.VisitCount != 1 || !loc.Discovered {
		t.Errorf("location = %+v", loc)
	}

	var e ErrorResponse
	if code := ts.do(t, http.MethodPost, base+"/quests/"+q.ID+"/complete", nil, &e); code != http.StatusConflict {
		t.Errorf("complete again status = %d, want 409", code)
	}

	ts.srv.completer.wait()
	if n := pub.count(); n != 1 {
		t.Errorf("published %d completions, want 1", n)
	}
}

func TestCompleteQuestManually(t *testing.T) {
	ts := newTestServer(t, testOptions{})
	id := ts.createSession(t)
	base := "/api/sessions/" + id

	var q wellquest.LocationQuest
	ts.do(t, http.MethodPost, base+"/quests", CreateQuestRequest{LocationID: "library-main"}, &q)
	complete := base + "/quests/" + q.ID + "/complete"

	if code := ts.do(t, http.MethodPost, complete, nil, nil); code != http.StatusConflict {
		t.Errorf("without fix status = %d, want 409", code)
	}

	ts.do(t, http.MethodPost, base+"/position", groveReport, nil)
	waitFor(t, "fix", func() bool {
		_, _, ok := ts.mustSession(t, id).Tracker.Position()
		return ok
	})
	if code := ts.do(t, http.MethodPost, complete, nil, nil); code != http.StatusUnprocessableEntity {
		t.Errorf("far away status = %d, want 422", code)
	}

	if code := ts.do(t, http.MethodPost, base+"/quests/ghost/complete", nil, nil); code != http.StatusNotFound {
		t.Errorf("unknown quest status = %d, want 404", code)
	}

	var got wellquest.LocationQuest
	if code := ts.do(t, http.MethodGet, base+"/quests/"+q.ID, nil, &got); code != http.StatusOK || got.ID != q.ID {
		t.Errorf("get quest status = %d, quest = %+v", code, got)
	}
}

func TestCreateQuestErrors(t *testing.T) {
	ts := newTestServer(t, testOptions{})
	base := "/api/sessions/" + ts.createSession(t)

	if code := ts.do(t, http.MethodPost, base+"/quests", CreateQuestRequest{LocationID: "atlantis"}, nil); code != http.StatusNotFound {
		t.Errorf("unknown location status = %d, want 404", code)
	}
	if code := ts.do(t, http.MethodPost, base+"/quests", map[string]string{}, nil); code != http.StatusBadRequest {
		t.Errorf("missing location status = %d, want 400", code)
	}
	if code := ts.do(t, http.MethodGet, base+"/quests/nope", nil, nil); code != http.StatusNotFound {
		t.Errorf("unknown quest status = %d, want 404", code)
	}
}

func TestCreateQuestExclusive(t *testing.T) {
	ts := newTestServer(t, testOptions{})
	id := ts.createSession(t)
	base := "/api/sessions/" + id

	var first, second wellquest.LocationQuest
	ts.do(t, http.MethodPost, base+"/quests", CreateQuestRequest{LocationID: "gym-yoga"}, &first)
	ts.do(t, http.MethodPost, base+"/quests", CreateQuestRequest{LocationID: "park-prospect", Exclusive: true}, &second)

	tracked := ts.mustSession(t, id).Tracker.Quests()
	if len(tracked) != 1 || tracked[0].ID != second.ID {
		t.Errorf("tracked = %+v, want only %s", tracked, second.ID)
	}

	// The replaced quest is still in the session history.
	var got wellquest.LocationQuest
	if code := ts.do(t, http.MethodGet, base+"/quests/"+first.ID, nil, &got); code != http.StatusOK {
		t.Errorf("replaced quest status = %d, want 200", code)
	}
}

func TestDistance(t *testing.T) {
	ts := newTestServer(t, testOptions{})
	id := ts.createSession(t)
	base := "/api/sessions/" + id

	ts.do(t, http.MethodPost, base+"/position", groveReport, nil)
	north := groveReport
	north.Latitude += 0.0002 // about 22 m
	ts.do(t, http.MethodPost, base+"/position", north, nil)

	var d DistanceResponse
	waitFor(t, "walked distance", func() bool {
		ts.do(t, http.MethodGet, base+"/distance", nil, &d)
		return d.Meters > 0
	})
	if d.Meters < 20 || d.Meters > 25 {
		t.Errorf("distance = %f, want about 22 m", d.Meters)
	}
}

func (ts *testServer) mustSession(t *testing.T, id string) *Session {
	t.Helper()
	s, err := ts.srv.sessions.Get(id)
	if err != nil {
		t.Fatalf("session %s: %v", id, err)
	}
	return s
}

func TestCreateQuestSameLocationSameInstant(t *testing.T) {
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	ts := newTestServer(t, testOptions{now: func() time.Time { return at }})
	a := "/api/sessions/" + ts.createSession(t)
	b := "/api/sessions/" + ts.createSession(t)

	seen := map[string]bool{}
	for _, base := range []string{a, b, a} {
		var q wellquest.LocationQuest
		if code := ts.do(t, http.MethodPost, base+"/quests", CreateQuestRequest{LocationID: "park-central"}, &q); code != http.StatusCreated {
			t.Fatalf("create quest for %s status = %d, want 201", base, code)
		}
		if seen[q.ID] {
			t.Fatalf("quest id %q issued twice", q.ID)
		}
		seen[q.ID] = true
	}

	var quests []wellquest.LocationQuest
	ts.do(t, http.MethodGet, b+"/quests", nil, &quests)
	if len(quests) != 1 {
		t.Fatalf("session b quests = %d, want 1", len(quests))
	}
	for id := range seen {
		if id == quests[0].ID {
			continue
		}
		if code := ts.do(t, http.MethodGet, b+"/quests/"+id, nil, nil); code != http.StatusNotFound {
			t.Errorf("other session's quest %s status = %d, want 404", id, code)
		}
	}
}
