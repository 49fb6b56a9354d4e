package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/api"
	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/config"
	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/querycache"
	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/storage"
	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/storage/cache"
	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/storage/memory"
	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/storage/postgres"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Set up zerolog to use pretty printing
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out: os.Stderr,
	})
	log.Info().Msg("starting up...")

	// Load the application configuration
	log.Info().Msg("loading configuration...")
	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("could not load the configuration")
	}
	if cfg.IsEnvProduction() {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Debug().Str("config", fmt.Sprintf("%+v", cfg)).Msg("")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Create the metrics registry shared by the query cache and the /metrics endpoint
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// Create the query cache
	log.Info().Str("backend", cfg.CacheBackend).Msg("initializing query cache...")
	backend, err := openCacheBackend(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("could not initialize the query cache backend")
	}
	queries := querycache.New(querycache.Options{
		Backend:    backend,
		StaleTime:  cfg.CacheStaleTime,
		Retry:      cfg.CacheRetry,
		Registerer: registry,
		Namespace:  "offers",
		Logger:     &log.Logger,
	})
	defer func() {
		if err := queries.Close(); err != nil {
			log.Error().Err(err).Msg("could not close the query cache")
		}
	}()

	// Initialize the storage driver
	log.Info().Str("driver", cfg.StorageDriver).Msg("initializing storage driver...")
	underlying := openStorageDriver(cfg)
	if err := underlying.Initialize(ctx); err != nil {
		log.Fatal().Err(err).Msg("could not initialize the storage driver")
	}
	defer underlying.Close()

	// Wrap the storage driver to cache single objects and invalidate listings on writes
	driver := cache.New(underlying, queries)
	if err := driver.Initialize(ctx); err != nil {
		log.Fatal().Err(err).Msg("could not initialize the caching storage driver")
	}
	defer driver.Close()

	// Start up the data API
	log.Info().Str("address", cfg.ListenAddress).Msg("starting up the data API...")
	apis := &api.Service{
		Config:   cfg,
		Storage:  driver,
		Queries:  queries,
		Gatherer: registry,
	}
	apiErrs := make(chan error, 1)
	apis.Startup(apiErrs)
	defer func() {
		log.Info().Msg("shutting down the data API...")
		apis.Shutdown()
	}()

	log.Info().Msg("done!")
	defer log.Info().Msg("shutting down...")

	// Wait for the application to be terminated or for the API to fail
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		select {
		case err := <-apiErrs:
			return err
		case <-groupCtx.Done():
			return nil
		}
	})
	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("the API service raised an unexpected error")
	}
}

func openStorageDriver(cfg *config.Config) storage.Driver {
	if cfg.StorageDriver == config.StorageDriverMemory {
		return memory.New()
	}
	return postgres.New(cfg.PostgresDSN)
}

func openCacheBackend(ctx context.Context, cfg *config.Config) (querycache.Backend, error) {
	if cfg.CacheBackend != config.CacheBackendRedis {
		return querycache.NewMemoryBackend(cfg.CacheGCTime), nil
	}
	rdb, err := querycache.DialRedis(ctx, querycache.RedisConfig{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		return nil, err
	}
	return querycache.NewRedisBackend(rdb, "offers:", cfg.CacheGCTime), nil
}
