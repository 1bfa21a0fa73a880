package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/upoints/edist/internal/domain"
	"github.com/upoints/edist/internal/service/output"
	"github.com/upoints/edist/internal/service/solar"
)

const (
	dateLayout = "2006-01-02"
	// UTC-12:00 through UTC+14:00.
	minOffsetMinutes = -12 * 60
	maxOffsetMinutes = 14 * 60
)

type sunFlags struct {
	date     string
	zenith   string
	timezone int
}

func (f *sunFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.date, "date", "", "Date as YYYY-MM-DD (default today, UTC).")
	cmd.Flags().StringVar(&f.zenith, "zenith", "official", "Event definition: official, civil, nautical, or astronomical.")
	cmd.Flags().IntVar(&f.timezone, "timezone", 0, "Report times offset from UTC by this many minutes, e.g. 60 for UTC+01:00.")
}

// calculator validates the flags and returns the date, anchored in the
// requested offset, with a matching calculator.
func (f *sunFlags) calculator(deps Dependencies) (time.Time, *solar.Calculator, error) {
	date, err := parseDate(f.date, deps.now())
	if err != nil {
		return time.Time{}, nil, err
	}
	zenith, err := solar.ParseZenith(f.zenith)
	if err != nil {
		return time.Time{}, nil, &domain.ValidationError{Field: "zenith", Value: f.zenith, Msg: err.Error()}
	}
	if f.timezone < minOffsetMinutes || f.timezone > maxOffsetMinutes {
		return time.Time{}, nil, &domain.ValidationError{Field: "timezone", Value: f.timezone, Msg: "must be between -720 and 840 minutes"}
	}
	y, m, d := date.Date()
	local := time.Date(y, m, d, 0, 0, 0, 0, time.FixedZone(zoneLabel(f.timezone), f.timezone*60))
	return local, solar.New(solar.WithZenith(zenith), solar.WithOffset(f.timezone)), nil
}

func newSunCommand(deps Dependencies, rising bool) *cobra.Command {
	var flags globalFlags
	var sun sunFlags

	use, short := "sunrise", "Calculate the sunrise time at locations."
	if !rising {
		use, short = "sunset", "Calculate the sunset time at locations."
	}

	cmd := &cobra.Command{
		Use:   use + " <location>...",
		Short: short,
		Args:  minimumArgs(1, "location"),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, deps, flags)
			if err != nil {
				return err
			}
			defer s.close()

			date, calc, err := sun.calculator(deps)
			if err != nil {
				return s.fail(cmd, err)
			}
			event := calc.Sunrise
			if !rising {
				event = calc.Sunset
			}

			points, failure := s.locations.FindAll(cmd.Context(), args)
			items := make([]map[string]any, 0, len(points))
			rows := make([][]string, 0, len(points))
			for _, p := range points {
				at, err := event(p, date)
				if err != nil {
					failure = fmt.Errorf("%s: %w", s.formatter.NamedPoint(p), err)
					break
				}
				item := pointData(p, s.formatter)
				item["time"] = at.String()
				item["timestamp"] = at.On(date).Format(time.RFC3339)
				items = append(items, item)
				rows = append(rows, []string{s.formatter.NamedPoint(p), at.String()})
			}
			table := ""
			if len(rows) > 0 {
				header := fmt.Sprintf("%s (%s)", strings.ToUpper(use), zoneLabel(calc.Offset()))
				table = output.RenderTable("", []string{"LOCATION", header}, rows)
			}
			return s.finish(cmd, sunData(date, sun, items), table, nil, failure)
		},
	}
	addGlobalFlags(cmd, &flags)
	sun.register(cmd)
	return cmd
}

func newSunEventsCommand(deps Dependencies) *cobra.Command {
	var flags globalFlags
	var sun sunFlags

	cmd := &cobra.Command{
		Use:   "sun <location>...",
		Short: "Calculate sunrise and sunset together, noting days without them.",
		Args:  minimumArgs(1, "location"),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, deps, flags)
			if err != nil {
				return err
			}
			defer s.close()

			date, calc, err := sun.calculator(deps)
			if err != nil {
				return s.fail(cmd, err)
			}

			points, failure := s.locations.FindAll(cmd.Context(), args)
			items := make([]map[string]any, 0, len(points))
			rows := make([][]string, 0, len(points))
			var warnings []string
			for _, p := range points {
				events := calc.Events(p, date)
				item := pointData(p, s.formatter)
				rise, set := "none", "none"
				if events.NoSunrise {
					warnings = append(warnings, "no sunrise at "+s.formatter.NamedPoint(p))
				} else {
					rise = events.Sunrise.String()
					item["sunrise"] = events.Sunrise.On(date).Format(time.RFC3339)
				}
				if events.NoSunset {
					warnings = append(warnings, "no sunset at "+s.formatter.NamedPoint(p))
				} else {
					set = events.Sunset.String()
					item["sunset"] = events.Sunset.On(date).Format(time.RFC3339)
				}
				items = append(items, item)
				rows = append(rows, []string{s.formatter.NamedPoint(p), rise, set})
			}
			table := ""
			if len(rows) > 0 {
				zone := zoneLabel(calc.Offset())
				table = output.RenderTable("", []string{"LOCATION", "SUNRISE (" + zone + ")", "SUNSET (" + zone + ")"}, rows)
			}
			return s.finish(cmd, sunData(date, sun, items), table, warnings, failure)
		},
	}
	addGlobalFlags(cmd, &flags)
	sun.register(cmd)
	return cmd
}

func sunData(date time.Time, sun sunFlags, events []map[string]any) map[string]any {
	zenith, _ := solar.ParseZenith(sun.zenith)
	return map[string]any{
		"date":       date.Format(dateLayout),
		"zenith":     float64(zenith),
		"utc_offset": sun.timezone,
		"events":     events,
	}
}

// zoneLabel names an offset in minutes as UTC, UTC+01:00 or UTC-05:30.
func zoneLabel(minutes int) string {
	if minutes == 0 {
		return "UTC"
	}
	sign := '+'
	if minutes < 0 {
		sign, minutes = '-', -minutes
	}
	return fmt.Sprintf("UTC%c%02d:%02d", sign, minutes/60, minutes%60)
}

func parseDate(value string, now time.Time) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		now = now.UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	date, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, &domain.ValidationError{Field: "date", Value: value, Msg: "expected YYYY-MM-DD"}
	}
	return date, nil
}
