// Command hh-collector collects hh.ru vacancies for a list of search queries
// and writes them to a single CSV file.
//
// Configuration comes from an optional YAML file (HH_CONFIG) and environment
// variables; with neither set it runs the three default queries, ten pages
// each, and writes hh_vacancies_YYYYMMDD_HHMM.csv to the working directory.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/Sternrassler/hh-vacancy-collector/pkg/cache"
	"github.com/Sternrassler/hh-vacancy-collector/pkg/collector"
	"github.com/Sternrassler/hh-vacancy-collector/pkg/config"
	"github.com/Sternrassler/hh-vacancy-collector/pkg/export"
	"github.com/Sternrassler/hh-vacancy-collector/pkg/hh"
	"github.com/Sternrassler/hh-vacancy-collector/pkg/logging"
	"github.com/Sternrassler/hh-vacancy-collector/pkg/metrics"
	"github.com/Sternrassler/hh-vacancy-collector/pkg/storage"
	"github.com/Sternrassler/hh-vacancy-collector/pkg/throttle"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Version is reported in the startup banner.
const Version = "1.0.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := run(ctx, os.Getenv); err != nil {
		log.Fatal().Err(err).Msg("Collection failed")
	}
}

// run executes one collection and returns the path of the written file.
func run(ctx context.Context, getenv func(string) string) (string, error) {
	cfg, err := loadConfig(getenv)
	if err != nil {
		return "", err
	}

	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.Log.Level),
		Pretty: cfg.Log.Format == config.FormatConsole,
		Output: os.Stderr,
	})

	logger.Info().
		Str("version", Version).
		Str("go", runtime.Version()).
		Strs("queries", cfg.Queries).
		Int("max_pages", cfg.MaxPages).
		Int("area", cfg.Area).
		Str("output_dir", cfg.OutputDir).
		Bool("cache", cfg.Redis.Addr != "").
		Bool("postgres", cfg.Postgres.DSN != "").
		Msg("hh.ru vacancy collector starting")

	if cfg.MetricsAddr != "" {
		metricsCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go func() {
			if err := metrics.Serve(metricsCtx, cfg.MetricsAddr); err != nil {
				logger.Error().Err(err).Msg("Metrics server failed")
			}
		}()
	}

	clientCfg := cfg.Client()
	if cfg.Redis.Addr != "" {
		redisClient, err := connectRedis(ctx, cfg.Redis)
		if err != nil {
			logger.Warn().Err(err).Msg("Redis unavailable, continuing without cache")
		} else {
			defer redisClient.Close()
			clientCfg.Cache = cache.NewManager(redisClient, cfg.Redis.TTL)
		}
	}

	client, err := hh.New(clientCfg)
	if err != nil {
		return "", fmt.Errorf("create hh client: %w", err)
	}

	pacer := throttle.NewPacer(cfg.Throttle(), logging.NewLogger("throttle"))
	coll := collector.New(client, pacer, cfg.Collector())
	result := collector.NewDriver(coll, cfg.MaxPages).Run(ctx, cfg.Queries)

	path, err := export.NewCSVWriter(cfg.OutputDir).Write(result.Rows)
	if err != nil {
		return "", fmt.Errorf("write csv: %w", err)
	}

	for _, total := range result.Totals {
		logger.Info().Str("query", total.Query).Int("vacancies", total.Rows).Msg("Query total")
	}
	logger.Info().
		Str("run_id", result.ID.String()).
		Str("file", path).
		Int("rows", len(result.Rows)).
		Msg("Data saved")

	if ctx.Err() != nil {
		logger.Warn().Msg("Run interrupted, file contains the vacancies collected before the interrupt")
	}

	if cfg.Postgres.DSN != "" {
		storeRun(context.WithoutCancel(ctx), logger, cfg.Postgres.DSN, result)
	}

	return path, nil
}

func loadConfig(getenv func(string) string) (config.Config, error) {
	cfg, err := config.Load(getenv("HH_CONFIG"))
	if err != nil {
		return cfg, err
	}
	cfg.ApplyEnv(getenv)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// redisOptions accepts either a redis:// URL or a plain host:port address.
func redisOptions(cfg config.RedisConfig) (*redis.Options, error) {
	if strings.Contains(cfg.Addr, "://") {
		opts, err := redis.ParseURL(cfg.Addr)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		return opts, nil
	}
	return &redis.Options{Addr: cfg.Addr, DB: cfg.DB}, nil
}

func connectRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	opts, err := redisOptions(cfg)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", opts.Addr, err)
	}
	return client, nil
}

// storeRun copies the run into Postgres. Failures are logged; the CSV has
// already been written.
func storeRun(ctx context.Context, logger zerolog.Logger, dsn string, result *collector.Run) {
	writer, err := storage.NewPostgresWriter(ctx, dsn)
	if err != nil {
		logger.Error().Err(err).Msg("Postgres unavailable, run not stored")
		return
	}
	defer writer.Close()

	if err := writer.EnsureSchema(ctx); err != nil {
		logger.Error().Err(err).Msg("Postgres schema setup failed")
		return
	}
	if _, err := writer.WriteRun(ctx, result); err != nil {
		logger.Error().Err(err).Str("run_id", result.ID.String()).Msg("Failed to store run in Postgres")
	}
}
