package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"time"

	"github.com/upoints/edist/internal/config"
	"github.com/upoints/edist/internal/domain"
	"github.com/upoints/edist/internal/service/locations"
)

var (
	unknownCommandPattern = regexp.MustCompile(`unknown command "([^"]+)"`)
	requiredFlagPattern   = regexp.MustCompile(`required flag\(s\) (.+) not set`)
)

// LocationService resolves user arguments and manages named locations.
type LocationService interface {
	Find(ctx context.Context, text string) (domain.Point, error)
	FindAll(ctx context.Context, texts []string) ([]domain.Point, error)
	List(ctx context.Context) ([]domain.NamedLocation, error)
	Add(ctx context.Context, alias, text string) (domain.NamedLocation, error)
	Warnings(ctx context.Context) []string
}

// LocationOpener builds a LocationService for a config path. An empty
// path selects the default location.
type LocationOpener func(configPath string, logger *slog.Logger) (LocationService, error)

// Dependencies wires runtime services.
type Dependencies struct {
	Locations LocationOpener
	Stdin     io.Reader
	Now       func() time.Time
	Version   string
}

// OpenFileLocations opens the INI location store.
func OpenFileLocations(configPath string, logger *slog.Logger) (LocationService, error) {
	return locations.NewFileResolver(config.WithPath(configPath), config.WithLogger(logger))
}

func (d Dependencies) openLocations(configPath string, logger *slog.Logger) (LocationService, error) {
	if d.Locations == nil {
		return OpenFileLocations(configPath, logger)
	}
	return d.Locations(configPath, logger)
}

func (d Dependencies) now() time.Time {
	if d.Now == nil {
		return time.Now()
	}
	return d.Now()
}

var errVersionShown = fmt.Errorf("version shown")

// Execute runs the CLI with injected dependencies.
func Execute(ctx context.Context, args []string, deps Dependencies, stdout io.Writer, stderr io.Writer) int {
	cmd := NewRootCommand(deps)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if deps.Stdin != nil {
		cmd.SetIn(deps.Stdin)
	}
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err == nil || err == errVersionShown {
		return 0
	}
	var controlled *exitError
	if errors.As(err, &controlled) {
		return controlled.code
	}

	if matches := unknownCommandPattern.FindStringSubmatch(err.Error()); len(matches) > 1 {
		_, _ = fmt.Fprintf(stderr, "No such command '%s'\n", matches[1])
		return exitUsage
	}
	var usage *usageError
	if errors.As(err, &usage) || requiredFlagPattern.MatchString(err.Error()) {
		_, _ = fmt.Fprintf(stderr, "Error: %s\nRun 'edist --help' for usage.\n", err)
		return exitUsage
	}

	if msg := err.Error(); msg != "" {
		_, _ = fmt.Fprintln(stderr, msg)
	}
	return exitFailure
}
