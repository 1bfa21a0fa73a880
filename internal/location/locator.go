package location

import (
	"fmt"
	"math"
	"strings"

	"github.com/upoints/edist/internal/domain"
)

// Cell sizes in degrees, longitude then latitude, for each locator pair.
var locatorCells = [4][2]float64{
	{20, 10},
	{2, 1},
	{2.0 / 24, 1.0 / 24},
	{2.0 / 240, 1.0 / 240},
}

// Number of divisions per pair: fields A-R, squares 0-9, subsquares A-X,
// extended squares 0-9.
var locatorBase = [4]int{18, 10, 24, 10}

// CellSize returns the width and height, in degrees, of a locator cell
// with the given number of character pairs.
func CellSize(pairs int) (lonSize, latSize float64) {
	if pairs < 1 || pairs > len(locatorCells) {
		return 0, 0
	}
	cell := locatorCells[pairs-1]
	return cell[0], cell[1]
}

func parseLocator(text string) (domain.Point, error) {
	if !looksLikeLocator(text) {
		return domain.Point{}, errNoMatch
	}
	if n := len(text); n%2 != 0 || n > 2*len(locatorBase) {
		return domain.Point{}, &domain.ParseError{Input: text, Msg: fmt.Sprintf("locator length must be 2, 4, 6 or 8, got %d", n)}
	}

	upper := strings.ToUpper(text)
	var lon, lat float64
	pairs := len(upper) / 2
	for pair := 0; pair < pairs; pair++ {
		lonIdx, err := locatorIndex(text, upper[2*pair], pair)
		if err != nil {
			return domain.Point{}, err
		}
		latIdx, err := locatorIndex(text, upper[2*pair+1], pair)
		if err != nil {
			return domain.Point{}, err
		}
		lon += float64(lonIdx) * locatorCells[pair][0]
		lat += float64(latIdx) * locatorCells[pair][1]
	}
	lonSize, latSize := CellSize(pairs)
	return domain.NewPoint(lat+latSize/2-90, lon+lonSize/2-180)
}

func looksLikeLocator(text string) bool {
	if len(text) < 2 {
		return false
	}
	for i := 0; i < len(text); i++ {
		c := text[i]
		isLetter := (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
		if i < 2 && !isLetter {
			return false
		}
		if !isLetter && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}

func locatorIndex(text string, c byte, pair int) (int, error) {
	var idx int
	if pair%2 == 0 {
		if c < 'A' || c > 'Z' {
			return 0, &domain.ParseError{Input: text, Msg: fmt.Sprintf("expected a letter at pair %d, got %q", pair+1, c)}
		}
		idx = int(c - 'A')
	} else {
		if c < '0' || c > '9' {
			return 0, &domain.ParseError{Input: text, Msg: fmt.Sprintf("expected a digit at pair %d, got %q", pair+1, c)}
		}
		idx = int(c - '0')
	}
	if idx >= locatorBase[pair] {
		return 0, &domain.ParseError{Input: text, Msg: fmt.Sprintf("character %q out of range at pair %d", c, pair+1)}
	}
	return idx, nil
}

// PrecisionPairs maps a precision to the number of locator pairs emitted.
func PrecisionPairs(precision domain.Precision) int {
	switch precision {
	case domain.PrecisionSubsquare:
		return 3
	case domain.PrecisionExtsquare:
		return 4
	default:
		return 2
	}
}

// FormatLocator renders p as a Maidenhead locator. Fields are upper case
// and subsquares lower case, e.g. IO92va33. Longitude 180 is the same
// meridian as -180 and encodes to field A; latitude 90 stays in the top
// row.
func FormatLocator(p domain.Point, precision domain.Precision) string {
	// Whole extended-square units.
	const units = 18 * 10 * 24 * 10
	lonUnits := wrapUnits(math.Floor((p.Longitude()+180)*120), units)
	latUnits := clampUnits(math.Floor((p.Latitude()+90)*240), units)

	pairs := PrecisionPairs(precision)
	var b strings.Builder
	divisor := 10 * 24 * 10
	for pair := 0; pair < pairs; pair++ {
		base := locatorBase[pair]
		lonIdx := (lonUnits / divisor) % base
		latIdx := (latUnits / divisor) % base
		switch pair {
		case 0:
			b.WriteByte(byte('A' + lonIdx))
			b.WriteByte(byte('A' + latIdx))
		case 2:
			b.WriteByte(byte('a' + lonIdx))
			b.WriteByte(byte('a' + latIdx))
		default:
			b.WriteByte(byte('0' + lonIdx))
			b.WriteByte(byte('0' + latIdx))
		}
		if pair+1 < len(locatorBase) {
			divisor /= locatorBase[pair+1]
		}
	}
	return b.String()
}

func wrapUnits(v float64, limit int) int {
	u := int(math.Mod(v, float64(limit)))
	if u < 0 {
		u += limit
	}
	return u
}

func clampUnits(v float64, limit int) int {
	if v < 0 {
		return 0
	}
	if v >= float64(limit) {
		return limit - 1
	}
	return int(v)
}
