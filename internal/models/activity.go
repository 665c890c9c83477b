package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type TimeWindow struct {
	Start TimeOfDay `json:"start"`
	End   TimeOfDay `json:"end" validate:"gtefield=Start"`
}

// Contains reports whether t lies within the window, bounds included.
func (w TimeWindow) Contains(t TimeOfDay) bool {
	return t >= w.Start && t <= w.End
}

func (w TimeWindow) String() string {
	return w.Start.String() + "-" + w.End.String()
}

type Activity struct {
	ID          string       `json:"id"`
	Name        string       `json:"name" validate:"required"`
	Location    string       `json:"location" validate:"required"`
	MinTemp     int          `json:"min_temp"`
	MaxTemp     int          `json:"max_temp" validate:"gtfield=MinTemp"`
	MaxWind     int          `json:"max_wind" validate:"min=0"`
	MaxRain     int          `json:"max_rain" validate:"min=0,max=100"`
	TimeWindows []TimeWindow `json:"time_windows" validate:"required,min=1,dive"`
	ActiveDays  []string     `json:"active_days" validate:"required,min=1,dive,oneof=Monday Tuesday Wednesday Thursday Friday Saturday Sunday"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// IsActiveOn reports whether the activity may be scheduled on the named weekday.
func (a Activity) IsActiveOn(weekday string) bool {
	for _, d := range a.ActiveDays {
		if d == weekday {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no slices with a.
func (a Activity) Clone() Activity {
	c := a
	c.TimeWindows = append([]TimeWindow(nil), a.TimeWindows...)
	c.ActiveDays = append([]string(nil), a.ActiveDays...)
	return c
}

// UniqueLocations returns the distinct activity locations in first-seen order.
func UniqueLocations(activities []Activity) []string {
	seen := make(map[string]struct{}, len(activities))
	locations := make([]string, 0, len(activities))
	for _, a := range activities {
		if _, ok := seen[a.Location]; ok {
			continue
		}
		seen[a.Location] = struct{}{}
		locations = append(locations, a.Location)
	}
	return locations
}

// ValidationError lists every rule an activity definition breaks.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid activity: " + strings.Join(e.Problems, "; ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the rules an activity producer must enforce before an
// activity reaches evaluation.
func (a Activity) Validate() error {
	err := validate.Struct(a)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validating activity: %w", err)
	}

	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, describeFieldError(fe))
	}
	return &ValidationError{Problems: problems}
}

func describeFieldError(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Activity.")
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gtfield":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gtefield":
		return fmt.Sprintf("%s must not be before %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s has unknown weekday %v", field, fe.Value())
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}

func window(start, end string) TimeWindow {
	return TimeWindow{Start: MustParseTimeOfDay(start), End: MustParseTimeOfDay(end)}
}

// DefaultActivities returns the starter set offered to new users.
func DefaultActivities() []Activity {
	return []Activity{
		{
			Name:        "Morning Jog",
			Location:    "Central Park",
			MinTemp:     10,
			MaxTemp:     25,
			MaxWind:     15,
			MaxRain:     20,
			TimeWindows: []TimeWindow{window("06:00", "08:00")},
			ActiveDays:  []string{"Monday", "Wednesday", "Friday"},
		},
		{
			Name:        "Cycling",
			Location:    "Riverside Trail",
			MinTemp:     15,
			MaxTemp:     30,
			MaxWind:     20,
			MaxRain:     10,
			TimeWindows: []TimeWindow{window("16:00", "18:00")},
			ActiveDays:  []string{"Tuesday", "Thursday", "Saturday"},
		},
		{
			Name:        "Hiking",
			Location:    "Mountain Trail",
			MinTemp:     5,
			MaxTemp:     28,
			MaxWind:     25,
			MaxRain:     30,
			TimeWindows: []TimeWindow{window("08:00", "16:00")},
			ActiveDays:  []string{"Saturday", "Sunday"},
		},
		{
			Name:        "Tennis",
			Location:    "Local Tennis Court",
			MinTemp:     18,
			MaxTemp:     32,
			MaxWind:     10,
			MaxRain:     5,
			TimeWindows: []TimeWindow{window("09:00", "11:00"), window("17:00", "19:00")},
			ActiveDays:  []string{"Monday", "Wednesday", "Friday", "Sunday"},
		},
	}
}
