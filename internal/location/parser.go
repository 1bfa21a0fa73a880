// Package location converts human-friendly point notations into domain points.
package location

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/upoints/edist/internal/domain"
)

// errNoMatch marks input that does not have the shape of a grammar at all,
// so the next grammar in the chain gets a chance.
var errNoMatch = errors.New("no match")

type grammar struct {
	name  string
	parse func(string) (domain.Point, error)
}

// Grammars are tried in this order and the first success wins.
var grammars = []grammar{
	{name: "decimal", parse: parseDecimal},
	{name: "dms", parse: parseDMS},
	{name: "locator", parse: parseLocator},
}

var (
	numberPattern = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)
	pairSeparator = regexp.MustCompile(`[\s,]+`)
)

// Parse converts text in any supported notation into a Point.
func Parse(text string) (domain.Point, error) {
	input := strings.TrimSpace(text)
	if input == "" {
		return domain.Point{}, &domain.ParseError{Input: text, Msg: "empty location"}
	}
	for _, g := range grammars {
		point, err := g.parse(input)
		if err == nil {
			return point, nil
		}
		if !errors.Is(err, errNoMatch) {
			return domain.Point{}, err
		}
	}
	return domain.Point{}, &domain.ParseError{
		Input: text,
		Msg:   "expected a decimal pair, a DMS pair or a Maidenhead locator",
	}
}

// ParseDecimal parses "lat;lon" pairs.
func ParseDecimal(text string) (domain.Point, error) {
	return strict(text, parseDecimal, "expected \"<lat>;<lon>\"")
}

// ParseDMS parses "52d0m54s N 000d13m15s W" style pairs.
func ParseDMS(text string) (domain.Point, error) {
	return strict(text, parseDMS, "expected \"<deg>d<min>m<sec>s <N|S> <deg>d<min>m<sec>s <E|W>\"")
}

// ParseLocator decodes a Maidenhead locator to the centre of its cell.
func ParseLocator(text string) (domain.Point, error) {
	return strict(text, parseLocator, "expected a 2, 4, 6 or 8 character locator")
}

func strict(text string, parse func(string) (domain.Point, error), hint string) (domain.Point, error) {
	point, err := parse(strings.TrimSpace(text))
	if errors.Is(err, errNoMatch) {
		return domain.Point{}, &domain.ParseError{Input: text, Msg: hint}
	}
	return point, err
}

func parseDecimal(text string) (domain.Point, error) {
	var tokens []string
	if strings.Contains(text, ";") {
		tokens = strings.Split(text, ";")
	} else {
		tokens = pairSeparator.Split(text, -1)
	}
	if len(tokens) != 2 {
		if strings.Contains(text, ";") {
			return domain.Point{}, &domain.ParseError{Input: text, Msg: "expected exactly two ';' separated values"}
		}
		return domain.Point{}, errNoMatch
	}
	values := make([]float64, 2)
	for i, token := range tokens {
		token = strings.TrimSpace(token)
		if !numberPattern.MatchString(token) {
			if strings.Contains(text, ";") {
				return domain.Point{}, &domain.ParseError{Input: text, Msg: "non-numeric value " + strconv.Quote(token)}
			}
			return domain.Point{}, errNoMatch
		}
		v, err := strconv.ParseFloat(token, 64)
		if err != nil {
			return domain.Point{}, &domain.ParseError{Input: text, Msg: err.Error()}
		}
		values[i] = v
	}
	return domain.NewPoint(values[0], values[1])
}
