package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/wellquest/questmap/internal/catalog"
	"github.com/wellquest/questmap/internal/config"
	"github.com/wellquest/questmap/internal/database"
	"github.com/wellquest/questmap/internal/handler/health"
	"github.com/wellquest/questmap/internal/locator"
	"github.com/wellquest/questmap/internal/migrations"
	"github.com/wellquest/questmap/internal/notify"
	"github.com/wellquest/questmap/internal/questbank"
	"github.com/wellquest/questmap/internal/server"
	"github.com/wellquest/questmap/internal/store"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	// --- SQLite ---
	db, err := database.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("connecting to sqlite: %w", err)
	}
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	logger.Info("connected to sqlite", "path", cfg.DBPath)

	st := store.NewSQLiteStore(db)
	visits, err := st.LoadVisits(ctx)
	if err != nil {
		return fmt.Errorf("loading visits: %w", err)
	}

	checks := map[string]health.Checker{"sqlite": dbChecker{db}}

	// --- Redis (optional) ---
	var publisher notify.Publisher = notify.Nop{}
	if cfg.RedisURL != "" {
		rdb, err := openRedis(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer rdb.Close()
		publisher = notify.NewRedisPublisher(rdb)
		checks["redis"] = redisChecker{rdb}
		logger.Info("connected to redis", "channel", notify.Channel)
	}

	// --- Location service ---
	var src rand.Source
	if cfg.QuestSeed != 0 {
		src = rand.NewPCG(cfg.QuestSeed, cfg.QuestSeed)
	}
	svc := locator.New(catalog.Default(), questbank.Default(src), nil, logger, locator.Options{
		InitialVisits: visits,
		Fallback:      cfg.Fallback(),
	})
	logger.Info("location service ready",
		"locations", len(svc.AllLocations()),
		"discovered", len(visits),
		"fallback", cfg.FallbackEnabled,
	)

	// --- HTTP Server ---
	srv := server.New(cfg.HTTPAddr, logger, server.Deps{
		Locator:            svc,
		Store:              st,
		Publisher:          publisher,
		ProximityMeters:    cfg.ProximityMeters,
		SearchRadiusMeters: cfg.SearchRadiusMeters,
		PositionTimeout:    cfg.PositionTimeout,
	}, func(r chi.Router) {
		r.Mount("/healthz", health.NewHandler(logger, checks).Routes())
	})

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	return g.Wait()
}

func openRedis(ctx context.Context, rawURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return rdb, nil
}

// dbChecker adapts *sql.DB to health.Checker.
type dbChecker struct{ db *sql.DB }

func (d dbChecker) Check(ctx context.Context) error { return d.db.PingContext(ctx) }

// redisChecker adapts *redis.Client to health.Checker.
type redisChecker struct{ client *redis.Client }

func (r redisChecker) Check(ctx context.Context) error { return r.client.Ping(ctx).Err() }
