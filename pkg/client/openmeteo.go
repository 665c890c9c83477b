package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/bobby-s-dev/weather-advisor/internal/models"
	"go.uber.org/zap"
)

var ErrLocationNotFound = errors.New("location not found")

type OpenMeteoClient struct {
	*BaseClient
	baseURL      string
	geocodingURL string

	mu          sync.RWMutex
	coordinates map[string]Coordinates
}

type Coordinates struct {
	Latitude  float64
	Longitude float64
	Name      string
}

type OpenMeteoGeocodingResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Country   string  `json:"country"`
		Timezone  string  `json:"timezone"`
	} `json:"results"`
}

type OpenMeteoForecastResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timezone  string  `json:"timezone"`
	Hourly    struct {
		Time                     []string   `json:"time"`
		Temperature2M            []*float64 `json:"temperature_2m"`
		PrecipitationProbability []*float64 `json:"precipitation_probability"`
		WindSpeed10M             []*float64 `json:"wind_speed_10m"`
	} `json:"hourly"`
	Daily struct {
		Time                        []string   `json:"time"`
		Temperature2MMax            []*float64 `json:"temperature_2m_max"`
		Temperature2MMin            []*float64 `json:"temperature_2m_min"`
		PrecipitationProbabilityMax []*float64 `json:"precipitation_probability_max"`
		WindSpeed10MMax             []*float64 `json:"wind_speed_10m_max"`
		WeatherCode                 []*int     `json:"weather_code"`
	} `json:"daily"`
}

func NewOpenMeteoClient(baseURL, geocodingURL string, config ClientConfig, logger *zap.Logger) *OpenMeteoClient {
	baseClient := NewBaseClient("open-meteo", config, logger)
	return &OpenMeteoClient{
		BaseClient:   baseClient,
		baseURL:      strings.TrimRight(baseURL, "/"),
		geocodingURL: strings.TrimRight(geocodingURL, "/"),
		coordinates:  make(map[string]Coordinates),
	}
}

// Geocode resolves a free-text location name, remembering earlier answers.
func (c *OpenMeteoClient) Geocode(ctx context.Context, location string) (Coordinates, error) {
	key := strings.ToLower(strings.TrimSpace(location))

	c.mu.RLock()
	coords, ok := c.coordinates[key]
	c.mu.RUnlock()
	if ok {
		return coords, nil
	}

	params := url.Values{}
	params.Set("name", location)
	params.Set("count", "1")
	params.Set("language", "en")
	params.Set("format", "json")

	var response OpenMeteoGeocodingResponse
	if err := c.GetJSON(ctx, c.geocodingURL+"/search?"+params.Encode(), &response); err != nil {
		return Coordinates{}, fmt.Errorf("failed to geocode %q: %w", location, err)
	}
	if len(response.Results) == 0 {
		return Coordinates{}, fmt.Errorf("%w: %s", ErrLocationNotFound, location)
	}

	first := response.Results[0]
	coords = Coordinates{Latitude: first.Latitude, Longitude: first.Longitude, Name: first.Name}

	c.mu.Lock()
	c.coordinates[key] = coords
	c.mu.Unlock()

	c.logger.Debug("Location geocoded",
		zap.String("location", location),
		zap.Float64("latitude", coords.Latitude),
		zap.Float64("longitude", coords.Longitude))

	return coords, nil
}

func (c *OpenMeteoClient) GetForecast(ctx context.Context, location string, days int) (*models.WeatherSnapshot, error) {
	coords, err := c.Geocode(ctx, location)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("latitude", fmt.Sprintf("%.4f", coords.Latitude))
	params.Set("longitude", fmt.Sprintf("%.4f", coords.Longitude))
	params.Set("hourly", "temperature_2m,precipitation_probability,wind_speed_10m")
	params.Set("daily", "temperature_2m_max,temperature_2m_min,precipitation_probability_max,wind_speed_10m_max,weather_code")
	params.Set("wind_speed_unit", "kmh")
	params.Set("timezone", "auto")
	params.Set("forecast_days", fmt.Sprintf("%d", days))

	var response OpenMeteoForecastResponse
	if err := c.GetJSON(ctx, c.baseURL+"/forecast?"+params.Encode(), &response); err != nil {
		return nil, fmt.Errorf("failed to fetch forecast: %w", err)
	}

	forecastDays, err := c.buildDays(&response, days)
	if err != nil {
		return nil, fmt.Errorf("failed to parse forecast response: %w", err)
	}

	return &models.WeatherSnapshot{
		Location:  location,
		Days:      forecastDays,
		Source:    c.Name(),
		FetchedAt: time.Now(),
	}, nil
}

func (c *OpenMeteoClient) buildDays(response *OpenMeteoForecastResponse, days int) ([]models.ForecastDay, error) {
	hourlyByDate := make(map[string][]models.HourlySample)
	for i, stamp := range response.Hourly.Time {
		// Local ISO-8601 stamps, e.g. "2026-10-19T14:00".
		if len(stamp) < 16 {
			return nil, fmt.Errorf("unexpected hourly time %q", stamp)
		}
		temp := valueAt(response.Hourly.Temperature2M, i)
		wind := valueAt(response.Hourly.WindSpeed10M, i)
		if temp == nil || wind == nil {
			continue
		}
		at, err := models.ParseTimeOfDay(stamp[11:16])
		if err != nil {
			return nil, err
		}

		rain := 0
		if p := valueAt(response.Hourly.PrecipitationProbability, i); p != nil {
			rain = int(*p)
		}

		date := stamp[:10]
		hourlyByDate[date] = append(hourlyByDate[date], models.HourlySample{
			Time:        at,
			Temperature: *temp,
			RainChance:  rain,
			WindSpeed:   *wind,
		})
	}

	forecastDays := make([]models.ForecastDay, 0, days)
	for i := 0; i < days && i < len(response.Daily.Time); i++ {
		date, err := time.Parse("2006-01-02", response.Daily.Time[i])
		if err != nil {
			return nil, fmt.Errorf("unexpected daily time %q: %w", response.Daily.Time[i], err)
		}

		day := models.ForecastDay{
			Date:    date,
			Weekday: date.Weekday().String(),
			Hourly:  hourlyByDate[response.Daily.Time[i]],
		}
		if v := valueAt(response.Daily.Temperature2MMax, i); v != nil {
			day.High = *v
		}
		if v := valueAt(response.Daily.Temperature2MMin, i); v != nil {
			day.Low = *v
		}
		if v := valueAt(response.Daily.WindSpeed10MMax, i); v != nil {
			day.Wind = *v
		}
		if v := valueAt(response.Daily.PrecipitationProbabilityMax, i); v != nil {
			day.RainChance = int(*v)
		}
		if i < len(response.Daily.WeatherCode) && response.Daily.WeatherCode[i] != nil {
			day.Description = c.weatherCodeToDescription(*response.Daily.WeatherCode[i])
		}

		forecastDays = append(forecastDays, day)
	}

	return forecastDays, nil
}

func valueAt(values []*float64, i int) *float64 {
	if i >= len(values) {
		return nil
	}
	return values[i]
}

func (c *OpenMeteoClient) weatherCodeToDescription(code int) string {
	// WMO Weather interpretation codes
	weatherCodes := map[int]string{
		0:  "Clear sky",
		1:  "Mainly clear",
		2:  "Partly cloudy",
		3:  "Overcast",
		45: "Foggy",
		48: "Depositing rime fog",
		51: "Light drizzle",
		53: "Moderate drizzle",
		55: "Dense drizzle",
		56: "Light freezing drizzle",
		57: "Dense freezing drizzle",
		61: "Slight rain",
		63: "Moderate rain",
		65: "Heavy rain",
		66: "Light freezing rain",
		67: "Heavy freezing rain",
		71: "Slight snow fall",
		73: "Moderate snow fall",
		75: "Heavy snow fall",
		77: "Snow grains",
		80: "Slight rain showers",
		81: "Moderate rain showers",
		82: "Violent rain showers",
		85: "Slight snow showers",
		86: "Heavy snow showers",
		95: "Thunderstorm",
		96: "Thunderstorm with slight hail",
		99: "Thunderstorm with heavy hail",
	}

	if desc, ok := weatherCodes[code]; ok {
		return desc
	}
	return "Unknown"
}
