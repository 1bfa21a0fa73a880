package domain

import (
	"fmt"
	"strings"
	"time"
)

// Precision selects how many locator pairs are rendered.
type Precision int

const (
	PrecisionSquare Precision = iota + 1
	PrecisionSubsquare
	PrecisionExtsquare
)

// ParsePrecision validates precision names.
func ParsePrecision(v string) (Precision, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "square":
		return PrecisionSquare, nil
	case "subsquare":
		return PrecisionSubsquare, nil
	case "extsquare":
		return PrecisionExtsquare, nil
	default:
		return 0, fmt.Errorf("unsupported locator precision %q", v)
	}
}

func (p Precision) String() string {
	switch p {
	case PrecisionSquare:
		return "square"
	case PrecisionSubsquare:
		return "subsquare"
	case PrecisionExtsquare:
		return "extsquare"
	default:
		return fmt.Sprintf("Precision(%d)", int(p))
	}
}

// Leg is one hop of a flight plan.
type Leg struct {
	From         Point
	To           Point
	Distance     float64
	Bearing      float64
	FinalBearing float64
	Elapsed      time.Duration
}

// FlightPlan is the result of planning a route at a fixed speed.
type FlightPlan struct {
	Speed         float64
	Legs          []Leg
	TotalDistance float64
	TotalElapsed  time.Duration
}

// TimeOfDay is a wall-clock time with minute resolution.
type TimeOfDay time.Duration

// NewTimeOfDay builds a TimeOfDay, wrapping hours into 0..23.
func NewTimeOfDay(hour, minute int) TimeOfDay {
	total := (hour*60 + minute) % (24 * 60)
	if total < 0 {
		total += 24 * 60
	}
	return TimeOfDay(time.Duration(total) * time.Minute)
}

// Hour returns the hour component.
func (t TimeOfDay) Hour() int { return int(time.Duration(t) / time.Hour) }

// Minute returns the minute component.
func (t TimeOfDay) Minute() int { return int(time.Duration(t)%time.Hour) / int(time.Minute) }

// On anchors the time of day to a calendar date in the date's location.
func (t TimeOfDay) On(date time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, date.Location()).Add(time.Duration(t))
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// SunEvents holds a day's sunrise and sunset. NoSunrise and NoSunset are
// set on polar days and nights, where the matching time is meaningless.
type SunEvents struct {
	Sunrise   TimeOfDay
	Sunset    TimeOfDay
	NoSunrise bool
	NoSunset  bool
}

// NamedLocation is one alias from the location config file.
type NamedLocation struct {
	Alias   string
	Point   Point
	Locator string
}

// Config stores all named locations in file order, plus the sections
// that were ignored while loading.
type Config struct {
	Locations []NamedLocation
	Skipped   []SkippedSection
}

// SkippedSection is a config section that holds no usable position.
type SkippedSection struct {
	Name   string
	Reason string
}

func (s SkippedSection) String() string {
	return fmt.Sprintf("skipped location %q: %s", s.Name, s.Reason)
}

// Lookup finds an alias, case-insensitively.
func (c Config) Lookup(alias string) (NamedLocation, bool) {
	want := strings.TrimSpace(alias)
	for _, loc := range c.Locations {
		if strings.EqualFold(loc.Alias, want) {
			return loc, true
		}
	}
	return NamedLocation{}, false
}

// Aliases lists alias names in file order.
func (c Config) Aliases() []string {
	out := make([]string, 0, len(c.Locations))
	for _, loc := range c.Locations {
		out = append(out, loc.Alias)
	}
	return out
}
