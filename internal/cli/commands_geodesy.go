package cli

import (
	"math"

	"github.com/spf13/cobra"
	"github.com/upoints/edist/internal/domain"
	"github.com/upoints/edist/internal/geo"
	"github.com/upoints/edist/internal/service/output"
)

func newDistanceCommand(deps Dependencies) *cobra.Command {
	var flags globalFlags

	cmd := &cobra.Command{
		Use:   "distance <location> <location>...",
		Short: "Calculate the distance between consecutive locations.",
		Args:  minimumArgs(2, "locations"),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, deps, flags)
			if err != nil {
				return err
			}
			defer s.close()

			points, failure := s.locations.FindAll(cmd.Context(), args)
			f := s.formatter
			legs := make([]map[string]any, 0, len(points))
			rows := make([][]string, 0, len(points))
			var total float64
			for i := 1; i < len(points); i++ {
				from, to := points[i-1], points[i]
				km := geo.Distance(from, to)
				total += km
				legs = append(legs, map[string]any{
					"from":     pointData(from, f),
					"to":       pointData(to, f),
					"distance": f.Units.FromKilometres(km),
				})
				rows = append(rows, []string{f.NamedPoint(from), f.NamedPoint(to), f.Distance(km)})
			}
			if len(rows) > 1 {
				rows = append(rows, []string{"total", "", f.Distance(total)})
			}
			table := ""
			if len(rows) > 0 {
				table = output.RenderTable("", []string{"FROM", "TO", "DISTANCE"}, rows)
			}
			data := map[string]any{
				"units": string(f.Units),
				"legs":  legs,
				"total": f.Units.FromKilometres(total),
			}
			return s.finish(cmd, data, table, nil, failure)
		},
	}
	addGlobalFlags(cmd, &flags)
	return cmd
}

func newBearingCommand(deps Dependencies, final bool) *cobra.Command {
	var flags globalFlags
	var named bool

	use, short := "bearing", "Calculate the initial bearing between consecutive locations."
	if final {
		use, short = "final-bearing", "Calculate the final bearing between consecutive locations."
	}

	cmd := &cobra.Command{
		Use:   use + " <location> <location>...",
		Short: short,
		Args:  minimumArgs(2, "locations"),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, deps, flags)
			if err != nil {
				return err
			}
			defer s.close()

			points, failure := s.locations.FindAll(cmd.Context(), args)
			f := s.formatter
			f.NamedBearing = named
			legs := make([]map[string]any, 0, len(points))
			rows := make([][]string, 0, len(points))
			for i := 1; i < len(points); i++ {
				from, to := points[i-1], points[i]
				bearing := geo.InitialBearing(from, to)
				if final {
					bearing = geo.FinalBearing(from, to)
				}
				legs = append(legs, map[string]any{
					"from":    pointData(from, f),
					"to":      pointData(to, f),
					"bearing": bearing,
					"compass": geo.Cardinal(bearing),
				})
				rows = append(rows, []string{f.NamedPoint(from), f.NamedPoint(to), f.Bearing(bearing)})
			}
			table := ""
			if len(rows) > 0 {
				table = output.RenderTable("", []string{"FROM", "TO", "BEARING"}, rows)
			}
			return s.finish(cmd, map[string]any{"legs": legs}, table, nil, failure)
		},
	}
	addGlobalFlags(cmd, &flags)
	cmd.Flags().BoolVarP(&named, "string", "s", false, "Show bearings as compass points.")
	return cmd
}

func newMidpointCommand(deps Dependencies) *cobra.Command {
	var flags globalFlags

	cmd := &cobra.Command{
		Use:   "midpoint <location> <location>...",
		Short: "Find the great-circle midpoint between consecutive locations.",
		Args:  minimumArgs(2, "locations"),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, deps, flags)
			if err != nil {
				return err
			}
			defer s.close()

			points, failure := s.locations.FindAll(cmd.Context(), args)
			f := s.formatter
			legs := make([]map[string]any, 0, len(points))
			rows := make([][]string, 0, len(points))
			for i := 1; i < len(points); i++ {
				from, to := points[i-1], points[i]
				mid := geo.Midpoint(from, to)
				legs = append(legs, map[string]any{
					"from":     pointData(from, f),
					"to":       pointData(to, f),
					"midpoint": pointData(mid, f),
				})
				rows = append(rows, []string{f.NamedPoint(from), f.NamedPoint(to), f.Point(mid)})
			}
			table := ""
			if len(rows) > 0 {
				table = output.RenderTable("", []string{"FROM", "TO", "MIDPOINT"}, rows)
			}
			return s.finish(cmd, map[string]any{"legs": legs}, table, nil, failure)
		},
	}
	addGlobalFlags(cmd, &flags)
	return cmd
}

func newDestinationCommand(deps Dependencies) *cobra.Command {
	var flags globalFlags
	var distance float64
	var bearing float64

	cmd := &cobra.Command{
		Use:   "destination <location>...",
		Short: "Find the point reached by travelling a distance along a bearing.",
		Args:  minimumArgs(1, "location"),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, deps, flags)
			if err != nil {
				return err
			}
			defer s.close()

			if distance < 0 || math.IsNaN(distance) || math.IsInf(distance, 0) {
				return s.fail(cmd, &domain.ValidationError{Field: "distance", Value: distance, Msg: "must be a finite, non-negative number"})
			}
			if math.IsNaN(bearing) || math.IsInf(bearing, 0) {
				return s.fail(cmd, &domain.ValidationError{Field: "bearing", Value: bearing, Msg: "must be a finite number"})
			}
			f := s.formatter
			km := f.Units.ToKilometres(distance)

			points, failure := s.locations.FindAll(cmd.Context(), args)
			items := make([]map[string]any, 0, len(points))
			rows := make([][]string, 0, len(points))
			for _, origin := range points {
				dest := geo.Destination(origin, km, bearing)
				items = append(items, map[string]any{
					"origin":      pointData(origin, f),
					"destination": pointData(dest, f),
				})
				rows = append(rows, []string{f.NamedPoint(origin), f.Point(dest)})
			}
			table := ""
			if len(rows) > 0 {
				table = output.RenderTable("", []string{"ORIGIN", "DESTINATION"}, rows)
			}
			data := map[string]any{
				"units":        string(f.Units),
				"distance":     distance,
				"bearing":      bearing,
				"destinations": items,
			}
			return s.finish(cmd, data, table, nil, failure)
		},
	}
	addGlobalFlags(cmd, &flags)
	cmd.Flags().Float64VarP(&distance, "distance", "d", 0, "Distance to travel, in --units.")
	cmd.Flags().Float64VarP(&bearing, "bearing", "b", 0, "Initial bearing in degrees.")
	_ = cmd.MarkFlagRequired("distance")
	_ = cmd.MarkFlagRequired("bearing")
	return cmd
}

func newRangeCommand(deps Dependencies) *cobra.Command {
	var flags globalFlags
	var radius float64

	cmd := &cobra.Command{
		Use:   "range <centre> <location>...",
		Short: "Check whether locations are within a distance of the first location.",
		Args:  minimumArgs(2, "locations"),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, deps, flags)
			if err != nil {
				return err
			}
			defer s.close()

			if radius < 0 || math.IsNaN(radius) {
				return s.fail(cmd, &domain.ValidationError{Field: "distance", Value: radius, Msg: "must not be negative"})
			}
			f := s.formatter
			km := f.Units.ToKilometres(radius)

			points, failure := s.locations.FindAll(cmd.Context(), args)
			if len(points) == 0 {
				return s.finish(cmd, map[string]any{"locations": []map[string]any{}}, "", nil, failure)
			}
			centre := points[0]
			items := make([]map[string]any, 0, len(points))
			rows := make([][]string, 0, len(points))
			for _, candidate := range points[1:] {
				d := geo.Distance(centre, candidate)
				within := geo.InRange(centre, candidate, km)
				item := pointData(candidate, f)
				item["distance"] = f.Units.FromKilometres(d)
				item["within"] = within
				items = append(items, item)
				rows = append(rows, []string{f.NamedPoint(candidate), f.Distance(d), yesNo(within)})
			}
			title := "Within " + f.Distance(km) + " of " + f.NamedPoint(centre)
			table := output.RenderTable(title, []string{"LOCATION", "DISTANCE", "IN RANGE"}, rows)
			data := map[string]any{
				"centre":    pointData(centre, f),
				"units":     string(f.Units),
				"distance":  radius,
				"locations": items,
			}
			return s.finish(cmd, data, table, nil, failure)
		},
	}
	addGlobalFlags(cmd, &flags)
	cmd.Flags().Float64VarP(&radius, "distance", "d", 0, "Range radius, in --units.")
	_ = cmd.MarkFlagRequired("distance")
	return cmd
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
