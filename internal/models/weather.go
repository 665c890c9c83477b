package models

import (
	"time"
)

type HourlySample struct {
	Time        TimeOfDay `json:"time"`
	Temperature float64   `json:"temperature"`
	RainChance  int       `json:"rain_chance"`
	WindSpeed   float64   `json:"wind_speed"`
}

type ForecastDay struct {
	Date        time.Time      `json:"date"`
	Weekday     string         `json:"weekday"`
	High        float64        `json:"high"`
	Low         float64        `json:"low"`
	Wind        float64        `json:"wind"`
	RainChance  int            `json:"rain_chance"`
	Description string         `json:"description"`
	Hourly      []HourlySample `json:"hourly"`
}

// SameDate reports whether the forecast day falls on the calendar day of t,
// each compared in its own location.
func (d ForecastDay) SameDate(t time.Time) bool {
	y1, m1, d1 := d.Date.Date()
	y2, m2, d2 := t.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

type WeatherSnapshot struct {
	Location  string        `json:"location"`
	Days      []ForecastDay `json:"days"`
	Source    string        `json:"source"`
	FetchedAt time.Time     `json:"fetched_at"`
}
