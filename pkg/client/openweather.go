package client

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/bobby-s-dev/weather-advisor/internal/models"
	"go.uber.org/zap"
)

// msToKmh converts OpenWeatherMap metric wind speed (m/s) to km/h.
const msToKmh = 3.6

type OpenWeatherClient struct {
	*BaseClient
	apiKey  string
	baseURL string
}

type OpenWeatherForecastItem struct {
	Dt   int64 `json:"dt"`
	Main struct {
		Temp    float64 `json:"temp"`
		TempMin float64 `json:"temp_min"`
		TempMax float64 `json:"temp_max"`
	} `json:"main"`
	Weather []struct {
		ID          int    `json:"id"`
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
		Gust  float64 `json:"gust"`
	} `json:"wind"`
	Pop float64 `json:"pop"`
}

type OpenWeatherForecastResponse struct {
	Cod  string                    `json:"cod"`
	Cnt  int                       `json:"cnt"`
	List []OpenWeatherForecastItem `json:"list"`
	City struct {
		Name     string `json:"name"`
		Country  string `json:"country"`
		Timezone int    `json:"timezone"`
	} `json:"city"`
}

func NewOpenWeatherClient(apiKey, baseURL string, config ClientConfig, logger *zap.Logger) *OpenWeatherClient {
	baseClient := NewBaseClient("openweathermap", config, logger)
	return &OpenWeatherClient{
		BaseClient: baseClient,
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// GetForecast returns the 5 day / 3 hour forecast grouped by local calendar day.
func (c *OpenWeatherClient) GetForecast(ctx context.Context, location string, days int) (*models.WeatherSnapshot, error) {
	params := url.Values{}
	params.Set("q", location)
	params.Set("appid", c.apiKey)
	params.Set("units", "metric")
	params.Set("cnt", fmt.Sprintf("%d", days*8))

	var response OpenWeatherForecastResponse
	if err := c.GetJSON(ctx, c.baseURL+"/forecast?"+params.Encode(), &response); err != nil {
		return nil, fmt.Errorf("failed to fetch forecast: %w", err)
	}

	if response.Cod != "200" {
		return nil, fmt.Errorf("API error: %s", response.Cod)
	}

	zone := time.FixedZone(response.City.Name, response.City.Timezone)

	// Items arrive in chronological order, so days are appended in order too.
	forecastDays := make([]models.ForecastDay, 0, days)
	index := make(map[string]int)

	for _, item := range response.List {
		local := time.Unix(item.Dt, 0).In(zone)
		key := local.Format("2006-01-02")

		i, ok := index[key]
		if !ok {
			if len(forecastDays) >= days {
				break
			}
			y, m, d := local.Date()
			date := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
			forecastDays = append(forecastDays, models.ForecastDay{
				Date:    date,
				Weekday: date.Weekday().String(),
				High:    math.Inf(-1),
				Low:     math.Inf(1),
			})
			i = len(forecastDays) - 1
			index[key] = i
		}

		day := &forecastDays[i]
		wind := item.Wind.Speed * msToKmh
		rain := int(math.Round(item.Pop * 100))

		day.High = math.Max(day.High, item.Main.TempMax)
		day.Low = math.Min(day.Low, item.Main.TempMin)
		day.Wind = math.Max(day.Wind, wind)
		if rain > day.RainChance {
			day.RainChance = rain
		}
		if day.Description == "" && len(item.Weather) > 0 {
			day.Description = item.Weather[0].Description
		}

		day.Hourly = append(day.Hourly, models.HourlySample{
			Time:        models.TimeOfDay(local.Hour()*60 + local.Minute()),
			Temperature: item.Main.Temp,
			RainChance:  rain,
			WindSpeed:   wind,
		})
	}

	return &models.WeatherSnapshot{
		Location:  location,
		Days:      forecastDays,
		Source:    c.Name(),
		FetchedAt: time.Now(),
	}, nil
}
