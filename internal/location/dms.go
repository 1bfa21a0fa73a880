package location

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/upoints/edist/internal/domain"
)

var (
	dmsShape    = regexp.MustCompile(`(?i)^[+-]?\d+(\.\d+)?d`)
	dmsAngle    = regexp.MustCompile(`(?i)^([+-])?(\d+(?:\.\d+)?)d(?:(\d+(?:\.\d+)?)m)?(?:(\d+(?:\.\d+)?)s)?([NSEW])?$`)
	hemispheres = regexp.MustCompile(`(?i)^[NSEW]$`)
)

type dmsComponent struct {
	value      float64
	hemisphere byte
	signed     bool
}

func parseDMS(text string) (domain.Point, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 || !dmsShape.MatchString(fields[0]) {
		return domain.Point{}, errNoMatch
	}

	components := make([]dmsComponent, 0, 2)
	for i := 0; i < len(fields); i++ {
		match := dmsAngle.FindStringSubmatch(fields[i])
		if match == nil {
			return domain.Point{}, &domain.ParseError{Input: text, Msg: fmt.Sprintf("malformed angle %q", fields[i])}
		}
		component, err := dmsValue(text, match)
		if err != nil {
			return domain.Point{}, err
		}
		if component.hemisphere == 0 && i+1 < len(fields) && hemispheres.MatchString(fields[i+1]) {
			component.hemisphere = strings.ToUpper(fields[i+1])[0]
			i++
		}
		components = append(components, component)
	}
	if len(components) != 2 {
		return domain.Point{}, &domain.ParseError{Input: text, Msg: "expected a latitude and a longitude"}
	}

	lat, err := applyHemisphere(text, components[0], 'N', 'S')
	if err != nil {
		return domain.Point{}, err
	}
	lon, err := applyHemisphere(text, components[1], 'E', 'W')
	if err != nil {
		return domain.Point{}, err
	}
	return domain.NewPoint(lat, lon)
}

func dmsValue(text string, match []string) (dmsComponent, error) {
	degrees, _ := strconv.ParseFloat(match[2], 64)
	var minutes, seconds float64
	if match[3] != "" {
		minutes, _ = strconv.ParseFloat(match[3], 64)
	}
	if match[4] != "" {
		seconds, _ = strconv.ParseFloat(match[4], 64)
	}
	if minutes >= 60 || seconds >= 60 {
		return dmsComponent{}, &domain.ParseError{Input: text, Msg: "minutes and seconds must be below 60"}
	}
	c := dmsComponent{value: degrees + minutes/60 + seconds/3600}
	if match[1] == "-" {
		c.value = -c.value
	}
	c.signed = match[1] != ""
	if match[5] != "" {
		c.hemisphere = strings.ToUpper(match[5])[0]
	}
	return c, nil
}

func applyHemisphere(text string, c dmsComponent, positive, negative byte) (float64, error) {
	switch c.hemisphere {
	case 0:
		return c.value, nil
	case positive, negative:
		if c.signed {
			return 0, &domain.ParseError{Input: text, Msg: "use either a sign or a hemisphere letter, not both"}
		}
		if c.hemisphere == negative {
			return -c.value, nil
		}
		return c.value, nil
	default:
		return 0, &domain.ParseError{
			Input: text,
			Msg:   fmt.Sprintf("hemisphere %c is not valid here, expected %c or %c", c.hemisphere, positive, negative),
		}
	}
}
