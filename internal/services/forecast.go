package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bobby-s-dev/weather-advisor/internal/config"
	"github.com/bobby-s-dev/weather-advisor/internal/models"
	"github.com/bobby-s-dev/weather-advisor/pkg/client"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var ErrNoWeatherClients = errors.New("no weather clients initialized")

type WeatherClient interface {
	Name() string
	GetForecast(ctx context.Context, location string, days int) (*models.WeatherSnapshot, error)
}

// ForecastService fetches per-location forecasts, trying each client in
// order, and caches the resulting snapshots.
type ForecastService struct {
	clients       []WeatherClient
	cache         *WeatherCache
	logger        *zap.Logger
	days          int
	concurrency   int
	mu            sync.RWMutex
	lastFetchTime time.Time
	successCount  int
	failureCount  int
}

func NewForecastService(cfg *config.Config, logger *zap.Logger) (*ForecastService, error) {
	clientConfig := client.ClientConfig{
		Timeout:        10 * time.Second,
		MaxRetries:     cfg.Retry.MaxRetries,
		RetryDelay:     cfg.Retry.Delay,
		Multiplier:     cfg.Retry.Multiplier,
		Threshold:      cfg.CircuitBreaker.Threshold,
		BreakerTimeout: cfg.CircuitBreaker.Timeout,
	}

	var clients []WeatherClient

	// Open-Meteo needs no API key and serves hourly precipitation chance, so it goes first.
	openMeteoClient := client.NewOpenMeteoClient(
		cfg.WeatherAPI.OpenMeteoURL,
		cfg.WeatherAPI.GeocodingURL,
		clientConfig,
		logger,
	)
	clients = append(clients, openMeteoClient)
	logger.Info("Open-Meteo client initialized")

	if cfg.WeatherAPI.OpenWeatherAPIKey != "" {
		openWeatherClient := client.NewOpenWeatherClient(
			cfg.WeatherAPI.OpenWeatherAPIKey,
			cfg.WeatherAPI.OpenWeatherURL,
			clientConfig,
			logger,
		)
		clients = append(clients, openWeatherClient)
		logger.Info("OpenWeatherMap fallback client initialized")
	}

	cache := NewWeatherCache(cfg.Cache.Duration, cfg.Cache.MaxSize, logger)

	return newForecastService(clients, cache, cfg.WeatherAPI.ForecastDays, cfg.Scheduler.FetchConcurrency, logger)
}

func newForecastService(clients []WeatherClient, cache *WeatherCache, days, concurrency int, logger *zap.Logger) (*ForecastService, error) {
	if len(clients) == 0 {
		return nil, ErrNoWeatherClients
	}
	if concurrency <= 0 {
		concurrency = 4
	}
	return &ForecastService{
		clients:     clients,
		cache:       cache,
		logger:      logger,
		days:        days,
		concurrency: concurrency,
	}, nil
}

// GetSnapshot returns the cached snapshot for location or fetches a fresh one.
func (s *ForecastService) GetSnapshot(ctx context.Context, location string) (*models.WeatherSnapshot, error) {
	if cached, ok := s.cache.Get(location); ok {
		s.logger.Debug("Cache hit for forecast", zap.String("location", location))
		return cached, nil
	}

	s.logger.Debug("Cache miss for forecast, fetching fresh data", zap.String("location", location))
	return s.fetch(ctx, location)
}

// Refresh bypasses the cache and replaces the stored snapshot.
func (s *ForecastService) Refresh(ctx context.Context, location string) (*models.WeatherSnapshot, error) {
	return s.fetch(ctx, location)
}

func (s *ForecastService) fetch(ctx context.Context, location string) (*models.WeatherSnapshot, error) {
	var errs []error

	for _, c := range s.clients {
		snapshot, err := c.GetForecast(ctx, location, s.days)
		if err != nil {
			s.logger.Warn("Failed to fetch forecast from source",
				zap.String("source", c.Name()),
				zap.String("location", location),
				zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", c.Name(), err))
			if ctx.Err() != nil {
				break
			}
			continue
		}

		s.cache.Set(location, snapshot)
		s.record(true)
		return snapshot, nil
	}

	s.record(false)
	return nil, fmt.Errorf("all forecast sources failed for %s: %w", location, errors.Join(errs...))
}

// FetchAll fetches forecasts for every location concurrently. Locations that
// cannot be fetched are logged and left out of the result.
func (s *ForecastService) FetchAll(ctx context.Context, locations []string) map[string]*models.WeatherSnapshot {
	s.mu.Lock()
	s.lastFetchTime = time.Now()
	s.mu.Unlock()

	startTime := time.Now()
	results := make(map[string]*models.WeatherSnapshot, len(locations))
	var resultsMu sync.Mutex

	var g errgroup.Group
	g.SetLimit(s.concurrency)

	for _, location := range locations {
		location := location
		g.Go(func() error {
			snapshot, err := s.GetSnapshot(ctx, location)
			if err != nil {
				s.logger.Error("Failed to fetch weather for location",
					zap.String("location", location),
					zap.Error(err))
				return nil
			}

			resultsMu.Lock()
			results[location] = snapshot
			resultsMu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	s.logger.Info("Weather fetch completed",
		zap.Int("locations", len(locations)),
		zap.Int("available", len(results)),
		zap.Duration("duration", time.Since(startTime)))

	return results
}

func (s *ForecastService) record(success bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if success {
		s.successCount++
	} else {
		s.failureCount++
	}
}

func (s *ForecastService) GetLastFetchTime() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastFetchTime
}

func (s *ForecastService) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.clients))
	for _, c := range s.clients {
		names = append(names, c.Name())
	}

	return map[string]interface{}{
		"last_fetch_time": s.lastFetchTime,
		"success_count":   s.successCount,
		"failure_count":   s.failureCount,
		"forecast_days":   s.days,
		"active_clients":  names,
		"cache_stats":     s.cache.GetStats(),
	}
}

func (s *ForecastService) Close() {
	s.cache.Stop()
}
