package domain

import (
	"fmt"
	"math"
	"strings"
)

// Epsilon is the coordinate tolerance, in degrees, used by Point.Equal.
const Epsilon = 1e-9

// Point identifies a location on earth in decimal degrees.
type Point struct {
	lat  float64
	lon  float64
	name string
}

// NewPoint validates latitude and wraps longitude into (-180, 180].
func NewPoint(latitude, longitude float64) (Point, error) {
	if math.IsNaN(latitude) || math.IsInf(latitude, 0) {
		return Point{}, &ValidationError{Field: "latitude", Value: latitude, Msg: "not a finite number"}
	}
	if math.IsNaN(longitude) || math.IsInf(longitude, 0) {
		return Point{}, &ValidationError{Field: "longitude", Value: longitude, Msg: "not a finite number"}
	}
	if math.Abs(latitude) > 90 {
		return Point{}, &ValidationError{Field: "latitude", Value: latitude, Msg: "must be within -90..90"}
	}
	return Point{lat: latitude, lon: NormalizeLongitude(longitude)}, nil
}

// MustPoint is NewPoint for literals known to be valid.
func MustPoint(latitude, longitude float64) Point {
	p, err := NewPoint(latitude, longitude)
	if err != nil {
		panic(err)
	}
	return p
}

// NormalizeLongitude wraps a longitude into (-180, 180].
func NormalizeLongitude(longitude float64) float64 {
	if longitude > -180 && longitude <= 180 {
		return longitude
	}
	wrapped := math.Mod(longitude+180, 360)
	if wrapped <= 0 {
		wrapped += 360
	}
	return wrapped - 180
}

// Latitude returns the latitude in degrees.
func (p Point) Latitude() float64 { return p.lat }

// Longitude returns the longitude in degrees.
func (p Point) Longitude() float64 { return p.lon }

// Name returns the display label, if any.
func (p Point) Name() string { return p.name }

// WithName returns a copy of p carrying a display label.
func (p Point) WithName(name string) Point {
	p.name = strings.TrimSpace(name)
	return p
}

// Equal compares coordinates within Epsilon. Names are ignored.
func (p Point) Equal(other Point) bool {
	if math.Abs(p.lat-other.lat) > Epsilon {
		return false
	}
	dlon := math.Abs(p.lon - other.lon)
	if dlon > 180 {
		dlon = 360 - dlon
	}
	return dlon <= Epsilon
}

func (p Point) String() string {
	text := fmt.Sprintf("%.6f;%.6f", p.lat, p.lon)
	if p.name != "" {
		return p.name + " (" + text + ")"
	}
	return text
}
