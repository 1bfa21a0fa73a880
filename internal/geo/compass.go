package geo

import "math"

var compassPoints = [...]string{
	"North", "North-east", "East", "South-east",
	"South", "South-west", "West", "North-west",
}

// Cardinal names the nearest of the eight principal compass points.
func Cardinal(bearing float64) string {
	segment := 360.0 / float64(len(compassPoints))
	idx := int(math.Round(wrap360(bearing)/segment)) % len(compassPoints)
	return compassPoints[idx]
}
