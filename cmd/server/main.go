package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/geoglobe/worldquiz/internal/config"
	"github.com/geoglobe/worldquiz/internal/countries"
	"github.com/geoglobe/worldquiz/internal/database"
	"github.com/geoglobe/worldquiz/internal/migrations"
	"github.com/geoglobe/worldquiz/internal/server"
	"github.com/geoglobe/worldquiz/internal/session"
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

	// --- Country dataset ---
	facts, err := countries.LoadTravelFacts(cfg.TravelFactsPath)
	if err != nil {
		return fmt.Errorf("loading travel facts: %w", err)
	}
	upstream := countries.NewClient(cfg.CountriesURL, facts)

	var rdb *redis.Client
	var source server.CountrySource
	if cfg.RedisURL != "" {
		rdb, err = openRedis(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer rdb.Close()
		logger.Info("connected to redis, using shared country cache")
		source = countries.NewRedisSource(rdb, upstream.Fetch, cfg.CountriesTTL)
	} else {
		source = countries.NewCached(logger, upstream.Fetch, cfg.CountriesTTL)
	}

	// --- Domain services ---
	store := server.NewSQLiteStore(db)
	broker := server.NewBroker()
	sessions := server.NewSessions(logger, store, session.Config{
		ExploreDuration: cfg.ExploreDuration,
		QuizDuration:    cfg.QuizDuration,
		AnswerDelay:     cfg.AnswerDelay,
	}, broker)

	// --- HTTP Server ---
	srv := server.New(cfg.HTTPAddr, server.Deps{
		Logger:           logger,
		DB:               db,
		Redis:            rdb,
		Store:            store,
		Countries:        source,
		Leaderboard:      server.NewLeaderboard(logger, store),
		Sessions:         sessions,
		Broker:           broker,
		LeaderboardLimit: cfg.LeaderboardLimit,
		SPADir:           cfg.SPADir,
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
