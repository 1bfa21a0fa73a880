// Package solar computes sunrise and sunset times.
//
// The algorithm is the one published in the Almanac for Computers (1990,
// Nautical Almanac Office, United States Naval Observatory). Results are
// times of day with minute resolution, in UTC unless an offset is set.
package solar

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/upoints/edist/internal/domain"
)

// Zenith is the solar altitude, in degrees, that defines an event.
type Zenith float64

const (
	// Official sunrise/sunset, with the refraction adjusted horizon.
	Official     Zenith = -50.0 / 60.0
	Civil        Zenith = -6
	Nautical     Zenith = -12
	Astronomical Zenith = -18
)

// ParseZenith validates twilight mode names.
func ParseZenith(v string) (Zenith, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "official", "sunrise", "sunset":
		return Official, nil
	case "civil":
		return Civil, nil
	case "nautical":
		return Nautical, nil
	case "astronomical":
		return Astronomical, nil
	default:
		return 0, fmt.Errorf("unsupported twilight mode %q", v)
	}
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithZenith computes twilight boundaries instead of sunrise/sunset.
func WithZenith(z Zenith) Option {
	return func(c *Calculator) {
		c.zenith = z
	}
}

// WithOffset reports times shifted from UTC by minutes, e.g. 60 for
// UTC+01:00.
func WithOffset(minutes int) Option {
	return func(c *Calculator) {
		c.offset = minutes
	}
}

// Calculator computes solar events for a fixed zenith and UTC offset.
type Calculator struct {
	zenith Zenith
	offset int
}

// New creates a calculator for official sunrise and sunset by default.
func New(opts ...Option) *Calculator {
	c := &Calculator{zenith: Official}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Offset returns the configured offset from UTC in minutes.
func (c *Calculator) Offset() int { return c.offset }

// Sunrise returns the time the sun rises at p on date.
func (c *Calculator) Sunrise(p domain.Point, date time.Time) (domain.TimeOfDay, error) {
	return c.event(p, date, true)
}

// Sunset returns the time the sun sets at p on date.
func (c *Calculator) Sunset(p domain.Point, date time.Time) (domain.TimeOfDay, error) {
	return c.event(p, date, false)
}

// Events computes both sunrise and sunset, flagging the ones that do not
// happen instead of failing.
func (c *Calculator) Events(p domain.Point, date time.Time) domain.SunEvents {
	var events domain.SunEvents
	rise, err := c.Sunrise(p, date)
	if err != nil {
		events.NoSunrise = true
	} else {
		events.Sunrise = rise
	}
	set, err := c.Sunset(p, date)
	if err != nil {
		events.NoSunset = true
	} else {
		events.Sunset = set
	}
	return events
}

// Sunrise uses the official zenith.
func Sunrise(p domain.Point, date time.Time) (domain.TimeOfDay, error) {
	return New().Sunrise(p, date)
}

// Sunset uses the official zenith.
func Sunset(p domain.Point, date time.Time) (domain.TimeOfDay, error) {
	return New().Sunset(p, date)
}

func (c *Calculator) event(p domain.Point, date time.Time, rising bool) (domain.TimeOfDay, error) {
	n := float64(date.YearDay())
	lngHour := p.Longitude() / 15

	var t float64
	if rising {
		t = n + (6-lngHour)/24
	} else {
		t = n + (18-lngHour)/24
	}

	// Sun's mean anomaly and true longitude.
	m := 0.9856*t - 3.289
	l := wrap(m+1.916*sin(m)+0.020*sin(2*m)+282.634, 360)

	// Right ascension, in the same quadrant as l, converted to hours.
	ra := wrap(degrees(math.Atan(0.91764*tan(l))), 360)
	ra += math.Floor(l/90)*90 - math.Floor(ra/90)*90
	ra /= 15

	sinDec := 0.39782 * sin(l)
	cosDec := math.Cos(math.Asin(sinDec))

	cosH := (sin(float64(c.zenith)) - sinDec*sin(p.Latitude())) / (cosDec * cos(p.Latitude()))
	switch {
	case cosH > 1:
		// The sun stays below the zenith all day.
		if rising {
			return 0, fmt.Errorf("%w: sun stays below the horizon", domain.ErrNoSunrise)
		}
		return 0, fmt.Errorf("%w: sun stays below the horizon", domain.ErrNoSunset)
	case cosH < -1:
		if rising {
			return 0, fmt.Errorf("%w: sun stays above the horizon", domain.ErrNoSunrise)
		}
		return 0, fmt.Errorf("%w: sun stays above the horizon", domain.ErrNoSunset)
	}

	h := degrees(math.Acos(cosH))
	if rising {
		h = 360 - h
	}
	h /= 15

	localMean := h + ra - 0.06571*t - 6.622
	ut := wrap(localMean-lngHour, 24)
	minutes := int(math.Floor(ut*60 + 1e-9))
	return domain.NewTimeOfDay(0, minutes+c.offset), nil
}

func wrap(v, limit float64) float64 {
	w := math.Mod(v, limit)
	if w < 0 {
		w += limit
	}
	return w
}

func degrees(rad float64) float64 { return rad * 180 / math.Pi }

func sin(deg float64) float64 { return math.Sin(deg * math.Pi / 180) }

func cos(deg float64) float64 { return math.Cos(deg * math.Pi / 180) }

func tan(deg float64) float64 { return math.Tan(deg * math.Pi / 180) }
