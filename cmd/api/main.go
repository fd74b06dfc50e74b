package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"fx-rates-service/internal/application/services"
	"fx-rates-service/internal/domain/interfaces"
	"fx-rates-service/internal/infrastructure/config"
	"fx-rates-service/internal/infrastructure/exchange"
	"fx-rates-service/internal/infrastructure/exchange/nbp"
	"fx-rates-service/internal/infrastructure/logging"
	"fx-rates-service/internal/infrastructure/metrics"
	"fx-rates-service/internal/infrastructure/ratelimit"
	"fx-rates-service/internal/infrastructure/repositories/cache"
	"fx-rates-service/internal/infrastructure/timesource"
	"fx-rates-service/internal/infrastructure/web/handlers"
	"fx-rates-service/internal/infrastructure/web/server"
)

const version = "1.0.0"

// @title FX Rates Service API
// @version 1.0
// @description Exchange rates from NBP table C with tiered caching, date fallback and cache warming.
// @host localhost:8080
// @BasePath /
// @schemes http
func main() {
	environment := config.GetEnvironment()

	cfg, err := config.NewLoader().LoadForEnvironment(environment)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := config.NewValidator().Validate(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logConfig := logging.NewConfig("fx-rates-service", version, environment).
		WithLevel(logging.LogLevelFromString(cfg.Logging.Level)).
		WithFormat(logging.LogFormatFromString(cfg.Logging.Format))
	if cfg.Development.DebugMode {
		logConfig = logConfig.WithLevel(logging.LevelDebug).WithSource(true)
	}
	if err := logging.InitializeGlobalLoggers(logConfig); err != nil {
		log.Fatalf("Failed to initialize loggers: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info(ctx, "Starting FX Rates Service", logging.Fields{
		"version":     version,
		"environment": environment,
		"mock_mode":   cfg.Development.MockMode,
	})

	metrics.SetApplicationInfo(version, runtime.Version())

	store := cache.NewStore(cache.Config{
		Rates:      cache.TierConfig{Capacity: cfg.Cache.Rates.Capacity, DefaultTTL: cfg.Cache.Rates.TTL},
		Historical: cache.TierConfig{Capacity: cfg.Cache.Historical.Capacity, DefaultTTL: cfg.Cache.Historical.TTL},
		Metadata:   cache.TierConfig{Capacity: cfg.Cache.Metadata.Capacity, DefaultTTL: cfg.Cache.Metadata.TTL},
	})
	go store.RunJanitor(ctx, cfg.Cache.PruneInterval)

	provider := newProvider(ctx, cfg)
	clock := newTimeSource(ctx, cfg.Upstream.TimeAPI)

	ratesService := services.NewRatesService(provider, store, clock, services.RatesConfig{
		MaxLookbackDays: cfg.Resolver.MaxLookbackDays,
		MaxRangeDays:    cfg.Resolver.MaxRangeDays,
		MajorCurrencies: cfg.Resolver.MajorCurrencies,
		CurrencyListTTL: cfg.Warming.CurrencyListTTL,
	})

	warmingService := services.NewWarmingService(provider, store, clock, services.WarmingConfig{
		InitialDelay:    cfg.Warming.InitialDelay,
		Interval:        cfg.Warming.Interval,
		HistoricalDays:  cfg.Warming.HistoricalDays,
		CurrencyListTTL: cfg.Warming.CurrencyListTTL,
		CurrentRatesTTL: cfg.Warming.CurrentRatesTTL,
		HistoricalTTL:   cfg.Warming.HistoricalTTL,
		MajorCurrencies: cfg.Resolver.MajorCurrencies,
	})
	if cfg.Warming.Enabled {
		warmingService.Start(ctx)
	} else {
		logging.Info(ctx, "Cache warming disabled; caches fill on demand", nil)
	}

	var rateLimit func(http.Handler) http.Handler
	if cfg.RateLimit.Enabled {
		rateLimit = ratelimit.NewRateLimitMiddleware(cfg.RateLimit).Handler
	}

	router := server.NewRouter(server.Handlers{
		Rates:   handlers.NewRatesHandler(ratesService),
		Cache:   handlers.NewCacheHandler(store),
		Warming: handlers.NewWarmingHandler(warmingService),
		Health:  handlers.NewHealthHandler(store, warmingService),
	}, rateLimit)

	srv := server.NewServer(router, cfg.Server)

	go trackUptime(ctx, time.Now())

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logging.Info(context.Background(), "Shutdown signal received", nil)
	case err := <-serverErr:
		logging.ErrorWithError(context.Background(), "HTTP server failed", err, nil)
	}

	warmingService.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		logging.ErrorWithError(shutdownCtx, "Server forced to shutdown", err, nil)
		os.Exit(1)
	}

	logging.Info(shutdownCtx, "Server shutdown completed", nil)
}

// newProvider elige el proveedor upstream: mock en desarrollo, NBP en el resto
func newProvider(ctx context.Context, cfg *config.Config) interfaces.RatesProvider {
	if cfg.Development.MockMode {
		logging.Warn(ctx, "Mock mode enabled, serving generated rates", nil)
		return exchange.NewMockProvider()
	}

	nbpCfg := cfg.Upstream.NBP
	throttle := ratelimit.NewTokenBucket(nbpCfg.Burst, nbpCfg.RequestsPerSecond)

	logging.Info(ctx, "Using NBP upstream", logging.Fields{
		"base_url":            nbpCfg.BaseURL,
		"table":               nbpCfg.Table,
		"requests_per_second": nbpCfg.RequestsPerSecond,
	})
	return nbp.NewRestClient(nbpCfg, throttle)
}

func newTimeSource(ctx context.Context, cfg config.TimeAPIConfig) interfaces.TimeSource {
	if !cfg.Enabled {
		logging.Info(ctx, "External time API disabled, using local clock", logging.Fields{
			"timezone": cfg.Timezone,
		})
		return timesource.NewLocalClock(cfg.Timezone)
	}
	return timesource.NewHTTPTimeSource(cfg)
}

func trackUptime(ctx context.Context, started time.Time) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.UpdateUptime(time.Since(started).Seconds())
		}
	}
}
