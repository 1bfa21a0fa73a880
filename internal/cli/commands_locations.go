package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/upoints/edist/internal/domain"
	"github.com/upoints/edist/internal/location"
	"github.com/upoints/edist/internal/service/output"
)

func newDisplayCommand(deps Dependencies) *cobra.Command {
	var flags globalFlags

	cmd := &cobra.Command{
		Use:   "display [location...]",
		Short: "Pretty print locations, or every configured location when none are given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, deps, flags)
			if err != nil {
				return err
			}
			defer s.close()

			var points []domain.Point
			var failure error
			if len(args) == 0 {
				named, err := s.locations.List(cmd.Context())
				if err != nil {
					return s.fail(cmd, err)
				}
				for _, loc := range named {
					points = append(points, loc.Point)
				}
			} else {
				points, failure = s.locations.FindAll(cmd.Context(), args)
			}

			items := make([]map[string]any, 0, len(points))
			rows := make([][]string, 0, len(points))
			for _, p := range points {
				items = append(items, pointData(p, s.formatter))
				rows = append(rows, []string{displayName(p), s.formatter.Point(p)})
			}
			table := ""
			if len(rows) > 0 {
				table = output.RenderTable("", []string{"NAME", "LOCATION"}, rows)
			}
			warnings := []string{}
			if len(args) == 0 && len(points) == 0 {
				warnings = append(warnings, "no locations configured")
			}
			return s.finish(cmd, map[string]any{"locations": items}, table, warnings, failure)
		},
	}
	addGlobalFlags(cmd, &flags)
	return cmd
}

func newLocatorCommand(deps Dependencies) *cobra.Command {
	var flags globalFlags

	cmd := &cobra.Command{
		Use:   "locator <location>...",
		Short: "Convert locations to Maidenhead locators.",
		Args:  minimumArgs(1, "location"),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, deps, flags)
			if err != nil {
				return err
			}
			defer s.close()

			points, failure := s.locations.FindAll(cmd.Context(), args)
			items := make([]map[string]any, 0, len(points))
			rows := make([][]string, 0, len(points))
			for _, p := range points {
				locator := location.FormatLocator(p, s.formatter.Precision)
				item := pointData(p, s.formatter)
				item["locator"] = locator
				items = append(items, item)
				rows = append(rows, []string{displayName(p), s.formatter.Point(p), locator})
			}
			table := ""
			if len(rows) > 0 {
				table = output.RenderTable("", []string{"NAME", "LOCATION", "LOCATOR"}, rows)
			}
			data := map[string]any{
				"precision": s.formatter.Precision.String(),
				"locators":  items,
			}
			return s.finish(cmd, data, table, nil, failure)
		},
	}
	addGlobalFlags(cmd, &flags)
	return cmd
}

func newAddCommand(deps Dependencies) *cobra.Command {
	var flags globalFlags

	cmd := &cobra.Command{
		Use:   "add <name> <location>",
		Short: "Save a named location to the config file.",
		Args:  exactArgs(2, "arguments"),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, deps, flags)
			if err != nil {
				return err
			}
			defer s.close()

			entry, err := s.locations.Add(cmd.Context(), args[0], args[1])
			if err != nil {
				return s.fail(cmd, err)
			}
			item := pointData(entry.Point, s.formatter)
			if entry.Locator != "" {
				item["locator"] = entry.Locator
			}
			table := fmt.Sprintf("Saved %s (%s)", entry.Alias, s.formatter.Point(entry.Point))
			return s.finish(cmd, map[string]any{"location": item}, table, nil, nil)
		},
	}
	addGlobalFlags(cmd, &flags)
	return cmd
}

func displayName(p domain.Point) string {
	if p.Name() == "" {
		return "-"
	}
	return p.Name()
}
