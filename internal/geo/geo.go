// Package geo implements great-circle calculations on a spherical earth.
package geo

import (
	"math"

	"github.com/upoints/edist/internal/domain"
)

// R is the mean earth radius in kilometres.
const R = 6371.009

func toRadians(v float64) float64 { return v * math.Pi / 180 }

func toDegrees(v float64) float64 { return v * 180 / math.Pi }

func wrap360(degrees float64) float64 {
	if degrees >= 0 && degrees < 360 {
		return degrees
	}
	w := math.Mod(degrees, 360)
	if w < 0 {
		w += 360
	}
	if w >= 360 {
		w = 0
	}
	return w
}

// Distance returns the haversine great-circle distance in kilometres.
func Distance(from, to domain.Point) float64 {
	φ1 := toRadians(from.Latitude())
	φ2 := toRadians(to.Latitude())
	Δφ := φ2 - φ1
	Δλ := toRadians(to.Longitude() - from.Longitude())

	a := math.Sin(Δφ/2)*math.Sin(Δφ/2) + math.Cos(φ1)*math.Cos(φ2)*math.Sin(Δλ/2)*math.Sin(Δλ/2)
	a = math.Min(1, a)
	δ := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return R * δ
}

// InitialBearing returns the bearing at from of the great circle towards
// to, in [0, 360). Coincident points have a bearing of 0.
func InitialBearing(from, to domain.Point) float64 {
	if from.Equal(to) {
		return 0
	}
	φ1 := toRadians(from.Latitude())
	φ2 := toRadians(to.Latitude())
	Δλ := toRadians(to.Longitude() - from.Longitude())

	x := math.Cos(φ1)*math.Sin(φ2) - math.Sin(φ1)*math.Cos(φ2)*math.Cos(Δλ)
	y := math.Sin(Δλ) * math.Cos(φ2)
	return wrap360(toDegrees(math.Atan2(y, x)))
}

// FinalBearing returns the bearing at which the path from from arrives at
// to. It differs from InitialBearing off the meridians and the equator.
func FinalBearing(from, to domain.Point) float64 {
	if from.Equal(to) {
		return 0
	}
	return wrap360(InitialBearing(to, from) + 180)
}

// Inverse returns the initial bearing and distance between two points.
func Inverse(from, to domain.Point) (bearing, distance float64) {
	return InitialBearing(from, to), Distance(from, to)
}

// Destination solves the direct problem: the point reached after
// travelling distance kilometres from origin on an initial bearing. The
// result is unnamed.
func Destination(origin domain.Point, distance, bearing float64) domain.Point {
	φ1 := toRadians(origin.Latitude())
	λ1 := toRadians(origin.Longitude())
	θ := toRadians(bearing)
	δ := distance / R

	sinφ2 := math.Sin(φ1)*math.Cos(δ) + math.Cos(φ1)*math.Sin(δ)*math.Cos(θ)
	φ2 := math.Asin(math.Max(-1, math.Min(1, sinφ2)))
	λ2 := λ1 + math.Atan2(math.Sin(θ)*math.Sin(δ)*math.Cos(φ1), math.Cos(δ)-math.Sin(φ1)*sinφ2)

	return pointFromRadians(φ2, λ2)
}

// InRange reports whether candidate lies within radius kilometres of center.
func InRange(center, candidate domain.Point, radius float64) bool {
	return Distance(center, candidate) <= radius
}

// Midpoint returns the half-way point along the great circle.
func Midpoint(from, to domain.Point) domain.Point {
	φ1 := toRadians(from.Latitude())
	λ1 := toRadians(from.Longitude())
	φ2 := toRadians(to.Latitude())
	Δλ := toRadians(to.Longitude() - from.Longitude())

	bx := math.Cos(φ2) * math.Cos(Δλ)
	by := math.Cos(φ2) * math.Sin(Δλ)
	φm := math.Atan2(math.Sin(φ1)+math.Sin(φ2), math.Sqrt((math.Cos(φ1)+bx)*(math.Cos(φ1)+bx)+by*by))
	λm := λ1 + math.Atan2(by, math.Cos(φ1)+bx)

	return pointFromRadians(φm, λm)
}

func pointFromRadians(φ, λ float64) domain.Point {
	lat := math.Max(-90, math.Min(90, toDegrees(φ)))
	return domain.MustPoint(lat, domain.NormalizeLongitude(toDegrees(λ)))
}
