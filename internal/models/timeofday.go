package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrInvalidTimeOfDay = errors.New("invalid time of day")

// TimeOfDay is a same-day wall-clock time stored as minutes since midnight.
type TimeOfDay int

// ParseTimeOfDay parses a zero-padded 24h "HH:MM" value.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}

	digits := [4]byte{s[0], s[1], s[3], s[4]}
	for _, d := range digits {
		if d < '0' || d > '9' {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
		}
	}

	hour := int(s[0]-'0')*10 + int(s[1]-'0')
	minute := int(s[3]-'0')*10 + int(s[4]-'0')
	if hour > 23 || minute > 59 {
		return 0, fmt.Errorf("%w: %q out of range", ErrInvalidTimeOfDay, s)
	}

	return TimeOfDay(hour*60 + minute), nil
}

// MustParseTimeOfDay is ParseTimeOfDay for literals known to be valid.
func MustParseTimeOfDay(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

func (t TimeOfDay) Hour() int   { return int(t) / 60 }
func (t TimeOfDay) Minute() int { return int(t) % 60 }

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: expected \"HH:MM\" string", ErrInvalidTimeOfDay)
	}

	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
