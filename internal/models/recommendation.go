package models

import (
	"encoding/json"
	"fmt"
)

// Suitability is the overall verdict for an activity today.
type Suitability int

const (
	NotRecommended Suitability = iota + 1
	Possible
	Good
)

// Rank orders tiers best first: Good(3) > Possible(2) > NotRecommended(1).
func (s Suitability) Rank() int { return int(s) }

func (s Suitability) String() string {
	switch s {
	case Good:
		return "Good"
	case Possible:
		return "Possible"
	case NotRecommended:
		return "Not Recommended"
	default:
		return fmt.Sprintf("Suitability(%d)", int(s))
	}
}

func (s Suitability) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Suitability) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	switch name {
	case "Good":
		*s = Good
	case "Possible":
		*s = Possible
	case "Not Recommended":
		*s = NotRecommended
	default:
		return fmt.Errorf("unknown suitability %q", name)
	}
	return nil
}

type TimeWindowVerdict struct {
	Window TimeWindow `json:"window"`
	IsGood bool       `json:"is_good"`
	Issues []string   `json:"issues"`
}

type ActivityRecommendation struct {
	Activity    Activity            `json:"activity"`
	Suitability Suitability         `json:"suitability"`
	Reasons     []string            `json:"reasons"`
	Verdicts    []TimeWindowVerdict `json:"time_window_verdicts"`
}
