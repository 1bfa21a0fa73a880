package output

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/upoints/edist/internal/domain"
	"github.com/upoints/edist/internal/geo"
	"github.com/upoints/edist/internal/location"
)

// PointFormat selects how points are written.
type PointFormat string

const (
	PointDMS     PointFormat = "dms"
	PointDM      PointFormat = "dm"
	PointDD      PointFormat = "dd"
	PointLocator PointFormat = "locator"
)

// ParsePointFormat validates point format values.
func ParsePointFormat(v string) (PointFormat, error) {
	switch PointFormat(strings.ToLower(strings.TrimSpace(v))) {
	case "", PointDMS:
		return PointDMS, nil
	case PointDM:
		return PointDM, nil
	case PointDD:
		return PointDD, nil
	case PointLocator:
		return PointLocator, nil
	default:
		return "", fmt.Errorf("unsupported location format %q", v)
	}
}

// Units is a distance unit.
type Units string

const (
	UnitsKilometres   Units = "km"
	UnitsStatuteMiles Units = "sm"
	UnitsNauticalMile Units = "nm"
)

const (
	statuteMile  = 1.609
	nauticalMile = 1.852
)

// ParseUnits validates distance unit values.
func ParseUnits(v string) (Units, error) {
	switch Units(strings.ToLower(strings.TrimSpace(v))) {
	case "", UnitsKilometres:
		return UnitsKilometres, nil
	case UnitsStatuteMiles:
		return UnitsStatuteMiles, nil
	case UnitsNauticalMile:
		return UnitsNauticalMile, nil
	default:
		return "", fmt.Errorf("unsupported units %q", v)
	}
}

func (u Units) factor() float64 {
	switch u {
	case UnitsStatuteMiles:
		return statuteMile
	case UnitsNauticalMile:
		return nauticalMile
	default:
		return 1
	}
}

// FromKilometres converts km into u.
func (u Units) FromKilometres(km float64) float64 { return km / u.factor() }

// ToKilometres converts a value in u into km.
func (u Units) ToKilometres(v float64) float64 { return v * u.factor() }

// TimeUnit is the unit used for elapsed times.
type TimeUnit string

const (
	TimeHours   TimeUnit = "h"
	TimeMinutes TimeUnit = "m"
	TimeSeconds TimeUnit = "s"
)

// ParseTimeUnit validates time unit values.
func ParseTimeUnit(v string) (TimeUnit, error) {
	switch TimeUnit(strings.ToLower(strings.TrimSpace(v))) {
	case "", TimeHours:
		return TimeHours, nil
	case TimeMinutes:
		return TimeMinutes, nil
	case TimeSeconds:
		return TimeSeconds, nil
	default:
		return "", fmt.Errorf("unsupported time unit %q", v)
	}
}

// Convert expresses d in u.
func (u TimeUnit) Convert(d time.Duration) float64 {
	switch u {
	case TimeMinutes:
		return d.Minutes()
	case TimeSeconds:
		return d.Seconds()
	default:
		return d.Hours()
	}
}

// Formatter renders domain values for table output.
type Formatter struct {
	Points       PointFormat
	Precision    domain.Precision
	Units        Units
	Time         TimeUnit
	NamedBearing bool
}

// DefaultFormatter returns the formatter used when no flags are given.
func DefaultFormatter() Formatter {
	return Formatter{
		Points:    PointDMS,
		Precision: domain.PrecisionSquare,
		Units:     UnitsKilometres,
		Time:      TimeHours,
	}
}

// Point renders p without its name.
func (f Formatter) Point(p domain.Point) string {
	return FormatPoint(p, f.Points, f.Precision)
}

// NamedPoint renders p prefixed by its name when it has one.
func (f Formatter) NamedPoint(p domain.Point) string {
	if p.Name() == "" {
		return f.Point(p)
	}
	return p.Name() + " (" + f.Point(p) + ")"
}

// Distance renders km in the configured unit.
func (f Formatter) Distance(km float64) string {
	units := f.Units
	if units == "" {
		units = UnitsKilometres
	}
	return strconv.FormatFloat(units.FromKilometres(km), 'f', 3, 64) + " " + string(units)
}

// Bearing renders whole degrees, truncated, or a compass point.
func (f Formatter) Bearing(degrees float64) string {
	if f.NamedBearing {
		return geo.Cardinal(degrees)
	}
	return strconv.Itoa(int(degrees)) + "°"
}

// Elapsed renders d in the configured time unit.
func (f Formatter) Elapsed(d time.Duration) string {
	unit := f.Time
	if unit == "" {
		unit = TimeHours
	}
	return strconv.FormatFloat(unit.Convert(d), 'f', 2, 64) + string(unit)
}

// FormatPoint renders p in the given notation.
func FormatPoint(p domain.Point, format PointFormat, precision domain.Precision) string {
	lat, lon := p.Latitude(), p.Longitude()
	latHemi, lonHemi := hemisphere(lat, 'N', 'S'), hemisphere(lon, 'E', 'W')
	switch format {
	case PointLocator:
		return location.FormatLocator(p, precision)
	case PointDD:
		return fmt.Sprintf("%c%06.3f°; %c%07.3f°", latHemi, math.Abs(lat), lonHemi, math.Abs(lon))
	case PointDM:
		latD, latM := toDM(lat)
		lonD, lonM := toDM(lon)
		return fmt.Sprintf("%02d°%05.2f'%c, %03d°%05.2f'%c", latD, latM, latHemi, lonD, lonM, lonHemi)
	default:
		latD, latM, latS := toDMS(lat)
		lonD, lonM, lonS := toDMS(lon)
		return fmt.Sprintf(`%02d°%02d'%02d"%c, %03d°%02d'%02d"%c`, latD, latM, latS, latHemi, lonD, lonM, lonS, lonHemi)
	}
}

func hemisphere(v float64, positive, negative byte) byte {
	if v < 0 {
		return negative
	}
	return positive
}

// toDMS truncates to whole seconds.
func toDMS(angle float64) (degrees, minutes, seconds int) {
	total := int(math.Floor(math.Abs(angle)*3600 + 1e-6))
	return total / 3600, total % 3600 / 60, total % 60
}

// toDM rounds minutes to two decimals, carrying into degrees.
func toDM(angle float64) (int, float64) {
	hundredths := int(math.Round(math.Abs(angle) * 6000))
	return hundredths / 6000, float64(hundredths%6000) / 100
}
