package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/wellquest/questmap/internal/catalog"
	"github.com/wellquest/questmap/internal/database"
	"github.com/wellquest/questmap/internal/locator"
	"github.com/wellquest/questmap/internal/migrations"
	"github.com/wellquest/questmap/internal/questbank"
	"github.com/wellquest/questmap/internal/store"
	"github.com/wellquest/questmap/internal/wellquest"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type testOptions struct {
	fallback  *wellquest.Position
	publisher *recordingPublisher
	now       func() time.Time
}

type testServer struct {
	*httptest.Server
	srv   *Server
	store *store.SQLiteStore
}

type recordingPublisher struct {
	mu   sync.Mutex
	sent []wellquest.Completion
}

func (p *recordingPublisher) Publish(_ context.Context, _ string, c wellquest.Completion) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, c)
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sent)
}

func newTestServer(t *testing.T, opts testOptions) *testServer {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := migrations.Run(db); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	st := store.NewSQLiteStore(db)

	svc := locator.New(catalog.Default(), questbank.Default(rand.NewPCG(3, 4)), nil, discardLogger,
		locator.Options{Fallback: opts.fallback, Now: opts.now})

	deps := Deps{
		Locator:            svc,
		Store:              st,
		ProximityMeters:    50,
		SearchRadiusMeters: 25000,
		PositionTimeout:    50 * time.Millisecond,
	}
	if opts.publisher != nil {
		deps.Publisher = opts.publisher
	}

	srv := New(":0", discardLogger, deps, nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		srv.Shutdown(context.Background())
	})
	return &testServer{Server: ts, srv: srv, store: st}
}

// do sends a JSON request and decodes a JSON response into out when non-nil.
func (ts *testServer) do(t *testing.T, method, path string, body any, out any) int {
	t.Helper()

	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encoding body: %v", err)
		}
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, ts.URL+path, r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decoding %s %s: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func (ts *testServer) createSession(t *testing.T) string {
	t.Helper()
	var s SessionResponse
	if code := ts.do(t, http.MethodPost, "/api/sessions", nil, &s); code != http.StatusCreated {
		t.Fatalf("create session status = %d", code)
	}
	return s.ID
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
