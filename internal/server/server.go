package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wellquest/questmap/internal/locator"
	"github.com/wellquest/questmap/internal/notify"
)

// Deps are the components the HTTP layer serves.
type Deps struct {
	Locator   *locator.Service
	Store     Store
	Publisher notify.Publisher

	ProximityMeters    float64
	SearchRadiusMeters float64
	PositionTimeout    time.Duration
}

type Server struct {
	srv       *http.Server
	logger    *slog.Logger
	sessions  *Registry
	completer *completer
	stop      context.CancelFunc
}

// New builds the server. mount registers extra routes such as health checks.
func New(addr string, logger *slog.Logger, deps Deps, mount func(chi.Router)) *Server {
	if deps.Publisher == nil {
		deps.Publisher = notify.Nop{}
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(newStructuredLogger(logger))
	r.Use(middleware.Recoverer)

	broker := NewBroker()
	done := &completer{
		store:     deps.Store,
		broker:    broker,
		publisher: deps.Publisher,
		logger:    logger,
	}
	ctx, stop := context.WithCancel(context.Background())
	sessions := NewRegistry(ctx, sessionFactory(deps, broker, done, logger))

	addRoutes(r, logger, deps, sessions, broker)
	if mount != nil {
		mount(r)
	}

	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		logger:    logger,
		sessions:  sessions,
		completer: done,
		stop:      stop,
	}
}

func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

func (s *Server) Run(_ context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.srv.Addr, err)
	}

	err = s.srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains HTTP connections, stops every tracking session and waits
// for pending completion notifications.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	err := s.srv.Shutdown(ctx)
	s.sessions.Close()
	s.stop()
	s.completer.wait()
	return err
}

func newStructuredLogger(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				logger.Info("http request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration_ms", time.Since(start).Milliseconds(),
					"request_id", middleware.GetReqID(r.Context()),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
