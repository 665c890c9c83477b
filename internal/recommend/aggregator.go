// Package recommend turns activity definitions and forecast snapshots into
// ranked suitability recommendations. Everything here is pure: no clock
// reads, no I/O, no shared state.
package recommend

import (
	"fmt"
	"sort"
	"time"

	"github.com/bobby-s-dev/weather-advisor/internal/models"
)

const (
	reasonAllFavorable = "all time slots favorable"
	reasonNoForecast   = "no forecast for today"
)

// Today identifies the day recommendations are produced for.
type Today struct {
	Weekday string
	Date    time.Time
}

// TodayAt derives the Today reference from t, in t's location.
func TodayAt(t time.Time) Today {
	return Today{Weekday: t.Weekday().String(), Date: t}
}

// Recommend builds one recommendation per activity and orders them best tier
// first. Activities with equal tiers keep their input order. Missing data is
// reported as NotRecommended, never as an error.
func Recommend(activities []models.Activity, weatherByLocation map[string]*models.WeatherSnapshot, today Today) []models.ActivityRecommendation {
	recommendations := make([]models.ActivityRecommendation, 0, len(activities))
	for _, activity := range activities {
		recommendations = append(recommendations, recommendActivity(activity.Clone(), weatherByLocation, today))
	}

	sort.SliceStable(recommendations, func(i, j int) bool {
		return recommendations[i].Suitability.Rank() > recommendations[j].Suitability.Rank()
	})

	return recommendations
}

func recommendActivity(activity models.Activity, weatherByLocation map[string]*models.WeatherSnapshot, today Today) models.ActivityRecommendation {
	snapshot, ok := weatherByLocation[activity.Location]
	if !ok || snapshot == nil {
		return notRecommended(activity, fmt.Sprintf("no weather data for location %s", activity.Location))
	}

	if !activity.IsActiveOn(today.Weekday) {
		return notRecommended(activity, fmt.Sprintf("not scheduled today (%s)", today.Weekday))
	}

	day, ok := forecastFor(snapshot, today)
	if !ok {
		return notRecommended(activity, reasonNoForecast)
	}

	verdicts := make([]models.TimeWindowVerdict, 0, len(activity.TimeWindows))
	var issues []string
	goodCount := 0
	for _, window := range activity.TimeWindows {
		verdict := EvaluateWindow(window, activity, day)
		verdicts = append(verdicts, verdict)
		if verdict.IsGood {
			goodCount++
		} else {
			issues = append(issues, verdict.Issues...)
		}
	}

	total := len(activity.TimeWindows)
	rec := models.ActivityRecommendation{
		Activity: activity,
		Verdicts: verdicts,
	}

	switch {
	case total > 0 && goodCount == total:
		rec.Suitability = models.Good
		rec.Reasons = []string{reasonAllFavorable}
	case goodCount > 0:
		rec.Suitability = models.Possible
		rec.Reasons = append([]string{fmt.Sprintf("%d of %d slots favorable", goodCount, total)}, dedupe(issues)...)
	default:
		rec.Suitability = models.NotRecommended
		rec.Reasons = dedupe(issues)
	}

	return rec
}

// forecastFor prefers the day matching today's date and falls back to the
// first available day.
func forecastFor(snapshot *models.WeatherSnapshot, today Today) (models.ForecastDay, bool) {
	if len(snapshot.Days) == 0 {
		return models.ForecastDay{}, false
	}
	for _, day := range snapshot.Days {
		if day.SameDate(today.Date) {
			return day, true
		}
	}
	return snapshot.Days[0], true
}

func notRecommended(activity models.Activity, reason string) models.ActivityRecommendation {
	return models.ActivityRecommendation{
		Activity:    activity,
		Suitability: models.NotRecommended,
		Reasons:     []string{reason},
		Verdicts:    []models.TimeWindowVerdict{},
	}
}

// dedupe keeps the first occurrence of every string, in order.
func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
