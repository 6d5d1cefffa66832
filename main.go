package main

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"

	c "github.com/fongbrandon1928/Market-Dynamics/api"
	av "github.com/fongbrandon1928/Market-Dynamics/api/alpha_vantage"
	"github.com/fongbrandon1928/Market-Dynamics/api/yahoo"
	"github.com/fongbrandon1928/Market-Dynamics/config"
	"github.com/fongbrandon1928/Market-Dynamics/core"
	r "github.com/fongbrandon1928/Market-Dynamics/data/repos"
	sm "github.com/fongbrandon1928/Market-Dynamics/models"
)

// sourceFactory builds the configured price source, the returned func releases it
type sourceFactory func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (core.TimeSeriesSource, func(), error)

func main() {
	// interrupt and term cancel any fetch in flight
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, getTimeSeriesSource)

	stop()
	os.Exit(code)
}

// run writes exactly one JSON document to stdout and returns the exit code, logs go to stderr
func run(ctx context.Context, args []string, stdout, stderr io.Writer, newSource sourceFactory) int {
	if len(args) < 1 {
		return emitError(stdout, core.NewError(core.KindInvalidInput, core.ErrNoInputFile))
	}

	cfg, err := config.Load()
	if err != nil {
		return emitError(stdout, core.NewError(core.KindInvalidInput, err))
	}

	logger := setupLogger(cfg.Env, stderr).With(slog.String("run_id", uuid.NewString()))

	req, err := sm.LoadZScoreRequest(args[0])
	if err != nil {
		logger.Error("error loading request", "path", args[0], "error", err)
		return emitError(stdout, core.NewError(core.KindInvalidInput, err))
	}

	source, closeSource, err := newSource(ctx, cfg, logger)
	if err != nil {
		logger.Error("error creating price source", "provider", cfg.Provider, "error", err)
		return emitError(stdout, core.NewError(core.KindUpstreamDataUnavailable, err))
	}
	defer closeSource()

	sc := core.ServiceContext{
		Context: ctx,
		Logger:  logger.With(slog.String("component", "zscore")),
		Source:  source,
		Settings: core.Settings{
			RollingWindow:    cfg.RollingWindow,
			FetchConcurrency: cfg.Concurrency,
		},
	}

	res, err := sc.RunZScore(req)
	if err != nil {
		return emitError(stdout, err)
	}

	if err := sm.WriteZScoreResponse(stdout, res); err != nil {
		logger.Error("error writing response", "error", err)
		return 1
	}
	return 0
}

func emitError(stdout io.Writer, err error) int {
	if werr := sm.WriteError(stdout, err.Error()); werr != nil {
		return 1
	}
	return core.KindOf(err).ExitCode()
}

func getTimeSeriesSource(ctx context.Context, cfg *config.Config, logger *slog.Logger) (core.TimeSeriesSource, func(), error) {
	noop := func() {}
	logger = logger.With(slog.String("component", "source"), slog.String("provider", cfg.Provider))

	switch cfg.Provider {
	case config.ProviderYahoo:
		host := cmp.Or(cfg.Yahoo.Host, yahoo.HostDefault)
		client := c.ClientFactory(host, "", cfg.RequestTimeout, c.LimiterPerSecond(cfg.Yahoo.RequestsPerSecond))
		logger.Debug("using yahoo chart api", "host", host)
		return yahoo.GetClient(client), noop, nil

	case config.ProviderAlphaVantage:
		host := cmp.Or(cfg.AlphaVantage.Host, av.HostDefault)
		client := c.ClientFactory(host, cfg.AlphaVantage.ApiKey, cfg.RequestTimeout, c.LimiterPerMinute(cfg.AlphaVantage.RequestsPerMinute))
		logger.Debug("using alpha vantage", "host", host, "adjusted", cfg.AlphaVantage.Adjusted)
		return av.GetClient(client, cfg.AlphaVantage.Adjusted), noop, nil

	case config.ProviderPostgres:
		start := time.Now()
		pg, err := r.GetPostgresConnection(ctx, cfg.Db.Url, cfg.Db.MaxConns)
		if err != nil {
			return nil, noop, fmt.Errorf("error connecting to database: %w", err)
		}
		if err := pg.Ping(ctx); err != nil {
			pg.Close()
			return nil, noop, fmt.Errorf("error pinging database: %w", err)
		}
		logger.Debug("connected to database", "time", time.Since(start))
		return pg, pg.Close, nil

	default:
		return nil, noop, fmt.Errorf("unknown price provider %q", cfg.Provider)
	}
}

func setupLogger(env string, w io.Writer) *slog.Logger {
	var log *slog.Logger

	switch env {
	case config.EnvLocal:
		log = slog.New(
			slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case config.EnvDev:
		log = slog.New(
			slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}
