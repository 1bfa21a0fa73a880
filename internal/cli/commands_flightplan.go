package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/upoints/edist/internal/domain"
	"github.com/upoints/edist/internal/routefile"
	"github.com/upoints/edist/internal/service/flightplan"
	"github.com/upoints/edist/internal/service/output"
)

func newFlightPlanCommand(deps Dependencies) *cobra.Command {
	var flags globalFlags
	var speed float64
	var timeValue string
	var routePath string

	cmd := &cobra.Command{
		Use:   "flight-plan [location...]",
		Short: "Time a multi-leg route flown at a constant speed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && strings.TrimSpace(routePath) == "" {
				return usageErrorf("flight-plan needs locations or --file")
			}
			s, err := newSession(cmd, deps, flags)
			if err != nil {
				return err
			}
			defer s.close()

			f := s.formatter
			if f.Time, err = output.ParseTimeUnit(timeValue); err != nil {
				return usageErrorf("--time: %v", err)
			}

			entries := make([]routefile.Entry, 0, len(args))
			if routePath != "" {
				fromFile, err := readRoute(cmd, routePath)
				if err != nil {
					return s.fail(cmd, err)
				}
				s.logger.Debug("route file read", slog.String("path", routePath), slog.Int("entries", len(fromFile)))
				entries = append(entries, fromFile...)
			}
			for _, arg := range args {
				entries = append(entries, routefile.Entry{Location: arg})
			}

			route, failure := resolveRoute(cmd.Context(), s.locations, entries)
			planner := flightplan.NewPlanner(flightplan.WithLogger(s.logger.Logger))
			plan, err := planner.Plan(cmd.Context(), route, f.Units.ToKilometres(speed))
			if err != nil {
				return s.fail(cmd, err)
			}

			legs := make([]map[string]any, 0, len(plan.Legs))
			rows := make([][]string, 0, len(plan.Legs)+1)
			for _, leg := range plan.Legs {
				legs = append(legs, map[string]any{
					"from":          pointData(leg.From, f),
					"to":            pointData(leg.To, f),
					"distance":      f.Units.FromKilometres(leg.Distance),
					"bearing":       leg.Bearing,
					"final_bearing": leg.FinalBearing,
					"elapsed":       f.Time.Convert(leg.Elapsed),
				})
				rows = append(rows, []string{
					f.NamedPoint(leg.From),
					f.NamedPoint(leg.To),
					f.Distance(leg.Distance),
					f.Bearing(leg.Bearing),
					f.Elapsed(leg.Elapsed),
				})
			}
			table := ""
			if len(rows) > 0 {
				rows = append(rows, []string{"total", "", f.Distance(plan.TotalDistance), "", f.Elapsed(plan.TotalElapsed)})
				title := fmt.Sprintf("Flight plan at %g %s/h", speed, f.Units)
				table = output.RenderTable(title, []string{"FROM", "TO", "DISTANCE", "BEARING", "ELAPSED"}, rows)
			}
			data := map[string]any{
				"units":          string(f.Units),
				"time_units":     string(f.Time),
				"speed":          speed,
				"legs":           legs,
				"total_distance": f.Units.FromKilometres(plan.TotalDistance),
				"total_elapsed":  f.Time.Convert(plan.TotalElapsed),
			}
			return s.finish(cmd, data, table, nil, failure)
		},
	}
	addGlobalFlags(cmd, &flags)
	cmd.Flags().Float64Var(&speed, "speed", 0, "Ground speed, in --units per hour.")
	cmd.Flags().StringVarP(&timeValue, "time", "t", "h", "Elapsed time units: h, m, or s.")
	cmd.Flags().StringVarP(&routePath, "file", "f", "", "Route file read before any location arguments; - reads stdin.")
	_ = cmd.MarkFlagRequired("speed")
	return cmd
}

func readRoute(cmd *cobra.Command, path string) ([]routefile.Entry, error) {
	if path == "-" {
		return routefile.Read(cmd.InOrStdin())
	}
	return routefile.ReadFile(path)
}

// resolveRoute keeps the points resolved before the first failure.
func resolveRoute(ctx context.Context, locs LocationService, entries []routefile.Entry) ([]domain.Point, error) {
	route := make([]domain.Point, 0, len(entries))
	for _, entry := range entries {
		p, err := locs.Find(ctx, entry.Location)
		if err != nil {
			return route, fmt.Errorf("resolve %q: %w", entry.Location, err)
		}
		if entry.Name != "" {
			p = p.WithName(entry.Name)
		}
		route = append(route, p)
	}
	return route, nil
}
