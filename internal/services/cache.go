package services

import (
	"sync"
	"time"

	"github.com/bobby-s-dev/weather-advisor/internal/models"
	"go.uber.org/zap"
)

type CacheItem struct {
	Snapshot  *models.WeatherSnapshot
	ExpiresAt time.Time
}

type WeatherCache struct {
	mu              sync.RWMutex
	snapshots       map[string]CacheItem // location -> snapshot
	logger          *zap.Logger
	defaultDuration time.Duration
	maxSize         int
	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	stopOnce        sync.Once
	now             func() time.Time
	hits            int
	misses          int
}

func NewWeatherCache(defaultDuration time.Duration, maxSize int, logger *zap.Logger) *WeatherCache {
	cache := newWeatherCache(defaultDuration, maxSize, logger, time.Now)
	go cache.startCleanup()
	return cache
}

func newWeatherCache(defaultDuration time.Duration, maxSize int, logger *zap.Logger, now func() time.Time) *WeatherCache {
	if maxSize <= 0 {
		maxSize = 1
	}
	return &WeatherCache{
		snapshots:       make(map[string]CacheItem),
		logger:          logger,
		defaultDuration: defaultDuration,
		maxSize:         maxSize,
		cleanupInterval: time.Minute,
		stopCleanup:     make(chan struct{}),
		now:             now,
	}
}

func (c *WeatherCache) Set(location string, snapshot *models.WeatherSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.snapshots[location]; !exists && len(c.snapshots) >= c.maxSize {
		c.evictOldest()
	}

	expiresAt := c.now().Add(c.defaultDuration)
	c.snapshots[location] = CacheItem{
		Snapshot:  snapshot,
		ExpiresAt: expiresAt,
	}

	c.logger.Debug("Forecast cached",
		zap.String("location", location),
		zap.Time("expires_at", expiresAt))
}

func (c *WeatherCache) Get(location string) (*models.WeatherSnapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, exists := c.snapshots[location]
	if !exists {
		c.misses++
		return nil, false
	}

	if c.now().After(item.ExpiresAt) {
		delete(c.snapshots, location)
		c.misses++
		return nil, false
	}

	c.hits++
	return item.Snapshot, true
}

func (c *WeatherCache) evictOldest() {
	var oldestKey string
	var oldestTime time.Time

	for key, item := range c.snapshots {
		if oldestKey == "" || item.ExpiresAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = item.ExpiresAt
		}
	}

	if oldestKey != "" {
		delete(c.snapshots, oldestKey)
		c.logger.Debug("Evicted oldest forecast from cache",
			zap.String("location", oldestKey))
	}
}

func (c *WeatherCache) startCleanup() {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.stopCleanup:
			return
		}
	}
}

func (c *WeatherCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	expiredCount := 0

	for location, item := range c.snapshots {
		if now.After(item.ExpiresAt) {
			delete(c.snapshots, location)
			expiredCount++
		}
	}

	if expiredCount > 0 {
		c.logger.Debug("Cleaned expired cache items",
			zap.Int("count", expiredCount))
	}
}

func (c *WeatherCache) Stop() {
	c.stopOnce.Do(func() { close(c.stopCleanup) })
}

func (c *WeatherCache) GetStats() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return map[string]interface{}{
		"forecast_items":   len(c.snapshots),
		"hits":             c.hits,
		"misses":           c.misses,
		"max_size":         c.maxSize,
		"default_duration": c.defaultDuration.String(),
	}
}
