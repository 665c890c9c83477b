package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type Config struct {
	Server struct {
		Port         string
		ReadTimeout  time.Duration
		WriteTimeout time.Duration
		LogLevel     string
	}

	WeatherAPI struct {
		OpenWeatherAPIKey string
		OpenWeatherURL    string
		OpenMeteoURL      string
		GeocodingURL      string
		ForecastDays      int
	}

	Scheduler struct {
		RefreshSchedule  string
		DefaultLocations []string
		FetchConcurrency int
	}

	Cache struct {
		Duration time.Duration
		MaxSize  int
	}

	CircuitBreaker struct {
		Threshold int
		Timeout   time.Duration
	}

	Retry struct {
		MaxRetries int
		Delay      time.Duration
		Multiplier float64
	}

	Activities struct {
		SeedDefaults bool
	}

	Advisor struct {
		Timezone string
		Location *time.Location
	}
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if err := godotenv.Load(); err != nil {
		zap.L().Info("No .env file found, using environment variables")
	}

	cfg := &Config{}

	// Server configuration
	cfg.Server.Port = getEnv("FIBER_PORT", "8080")
	cfg.Server.ReadTimeout = parseDuration(getEnv("FIBER_READ_TIMEOUT", "10s"))
	cfg.Server.WriteTimeout = parseDuration(getEnv("FIBER_WRITE_TIMEOUT", "30s"))
	cfg.Server.LogLevel = getEnv("LOG_LEVEL", "info")

	// Weather API configuration
	cfg.WeatherAPI.OpenWeatherAPIKey = getEnv("OPENWEATHER_API_KEY", "")
	cfg.WeatherAPI.OpenWeatherURL = getEnv("OPENWEATHER_URL", "https://api.openweathermap.org/data/2.5")
	cfg.WeatherAPI.OpenMeteoURL = getEnv("OPENMETEO_URL", "https://api.open-meteo.com/v1")
	cfg.WeatherAPI.GeocodingURL = getEnv("GEOCODING_URL", "https://geocoding-api.open-meteo.com/v1")
	cfg.WeatherAPI.ForecastDays = parseInt(getEnv("FORECAST_DAYS", "5"))

	// Scheduler configuration
	cfg.Scheduler.RefreshSchedule = getEnv("REFRESH_SCHEDULE", "0 */15 * * * *")
	cfg.Scheduler.DefaultLocations = splitList(getEnv("DEFAULT_LOCATIONS", ""))
	cfg.Scheduler.FetchConcurrency = parseInt(getEnv("FETCH_CONCURRENCY", "4"))

	// Cache configuration
	cfg.Cache.Duration = parseDuration(getEnv("CACHE_DURATION", "10m"))
	cfg.Cache.MaxSize = parseInt(getEnv("MAX_CACHE_SIZE", "1000"))

	// Circuit breaker configuration
	cfg.CircuitBreaker.Threshold = parseInt(getEnv("CIRCUIT_BREAKER_THRESHOLD", "3"))
	cfg.CircuitBreaker.Timeout = parseDuration(getEnv("CIRCUIT_BREAKER_TIMEOUT", "30s"))

	// Retry configuration
	cfg.Retry.MaxRetries = parseInt(getEnv("MAX_RETRIES", "3"))
	cfg.Retry.Delay = parseDuration(getEnv("RETRY_DELAY", "1s"))
	cfg.Retry.Multiplier = parseFloat(getEnv("RETRY_MULTIPLIER", "2"))

	cfg.Activities.SeedDefaults = parseBool(getEnv("SEED_DEFAULT_ACTIVITIES", "true"))

	cfg.Advisor.Timezone = getEnv("ADVISOR_TIMEZONE", "Local")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects values the service cannot run with and resolves the
// advisor timezone.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("FIBER_PORT must not be empty")
	}
	if c.WeatherAPI.ForecastDays < 1 || c.WeatherAPI.ForecastDays > 16 {
		return fmt.Errorf("FORECAST_DAYS must be between 1 and 16, got %d", c.WeatherAPI.ForecastDays)
	}
	if c.Cache.MaxSize < 1 {
		return fmt.Errorf("MAX_CACHE_SIZE must be positive, got %d", c.Cache.MaxSize)
	}
	if c.Retry.MaxRetries < 0 {
		return fmt.Errorf("MAX_RETRIES must not be negative, got %d", c.Retry.MaxRetries)
	}

	if _, err := ScheduleParser().Parse(c.Scheduler.RefreshSchedule); err != nil {
		return fmt.Errorf("invalid REFRESH_SCHEDULE %q: %w", c.Scheduler.RefreshSchedule, err)
	}

	loc, err := time.LoadLocation(c.Advisor.Timezone)
	if err != nil {
		return fmt.Errorf("invalid ADVISOR_TIMEZONE %q: %w", c.Advisor.Timezone, err)
	}
	c.Advisor.Location = loc

	return nil
}

// ScheduleParser accepts cron specs with an optional leading seconds field
// and descriptors such as "@every 15m".
func ScheduleParser() cron.Parser {
	return cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func parseDuration(value string) time.Duration {
	duration, err := time.ParseDuration(value)
	if err != nil {
		zap.L().Warn("Failed to parse duration", zap.String("value", value), zap.Error(err))
		return 0
	}
	return duration
}

func parseInt(value string) int {
	intValue, err := strconv.Atoi(value)
	if err != nil {
		zap.L().Warn("Failed to parse int", zap.String("value", value), zap.Error(err))
		return 0
	}
	return intValue
}

func parseFloat(value string) float64 {
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		zap.L().Warn("Failed to parse float", zap.String("value", value), zap.Error(err))
		return 0
	}
	return floatValue
}

func parseBool(value string) bool {
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		zap.L().Warn("Failed to parse bool", zap.String("value", value), zap.Error(err))
		return false
	}
	return boolValue
}
