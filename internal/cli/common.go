package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/upoints/edist/internal/config"
	"github.com/upoints/edist/internal/domain"
	"github.com/upoints/edist/internal/logging"
	"github.com/upoints/edist/internal/service/output"
)

const (
	exitFailure    = 1
	exitUsage      = 2
	exitValidation = 3
	exitParse      = 4
	exitDomain     = 5
	exitConfig     = 6
)

const (
	codeValidation = "EDIST_VALIDATION_ERROR"
	codeParse      = "EDIST_PARSE_ERROR"
	codeDomain     = "EDIST_DOMAIN_ERROR"
	codeConfig     = "EDIST_CONFIG_ERROR"
	codeInternal   = "EDIST_ERROR"
)

const (
	envFormat = "EDIST_FORMAT"
	envUnits  = "EDIST_UNITS"
)

type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return ""
}

// usageError marks bad invocations: missing arguments or invalid flags.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }

func (e *usageError) Unwrap() error { return e.err }

func usageErrorf(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

func minimumArgs(n int, what string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < n {
			return usageErrorf("%s needs at least %d %s, got %d", cmd.Name(), n, what, len(args))
		}
		return nil
	}
}

func exactArgs(n int, what string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return usageErrorf("%s needs exactly %d %s, got %d", cmd.Name(), n, what, len(args))
		}
		return nil
	}
}

type globalFlags struct {
	Config           string
	Format           string
	Units            string
	LocationFormat   string
	LocatorPrecision string
	Output           string
	Verbose          bool
	LogFile          string
}

const sharedGlobalFlagAnnotation = "edist_shared_global"

func addGlobalFlags(cmd *cobra.Command, flags *globalFlags) {
	addSharedGlobalFlag(cmd, "config", func() {
		cmd.Flags().StringVar(&flags.Config, "config", "", "Location config file (default $EDIST_CONFIG_PATH or the user config dir).")
	})
	addSharedGlobalFlag(cmd, "format", func() {
		cmd.Flags().StringVar(&flags.Format, "format", envDefault(envFormat, "table"), "Output format: table, json, or yaml.")
	})
	addSharedGlobalFlag(cmd, "units", func() {
		cmd.Flags().StringVarP(&flags.Units, "units", "u", envDefault(envUnits, "km"), "Distance units: km, sm (statute miles), or nm (nautical miles).")
	})
	addSharedGlobalFlag(cmd, "location-format", func() {
		cmd.Flags().StringVarP(&flags.LocationFormat, "location-format", "l", "dms", "Location notation in output: dms, dm, dd, or locator.")
	})
	addSharedGlobalFlag(cmd, "locator-precision", func() {
		cmd.Flags().StringVar(&flags.LocatorPrecision, "locator-precision", "square", "Locator precision: square, subsquare, or extsquare.")
	})
	addSharedGlobalFlag(cmd, "output", func() {
		cmd.Flags().StringVar(&flags.Output, "output", "", "Also write output to this file.")
	})
	addSharedGlobalFlag(cmd, "verbose", func() {
		cmd.Flags().BoolVar(&flags.Verbose, "verbose", false, "Log debug details to stderr.")
	})
	addSharedGlobalFlag(cmd, "log-file", func() {
		cmd.Flags().StringVar(&flags.LogFile, "log-file", "", "Write JSON logs to this rotated file (default $"+logging.EnvLogFile+").")
	})
}

func addSharedGlobalFlag(cmd *cobra.Command, name string, register func()) {
	if cmd.Flags().Lookup(name) != nil {
		return
	}
	register()
	flag := cmd.Flags().Lookup(name)
	if flag == nil {
		return
	}
	if flag.Annotations == nil {
		flag.Annotations = map[string][]string{}
	}
	flag.Annotations[sharedGlobalFlagAnnotation] = []string{"true"}
}

func envDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// session holds what a single command invocation needs once its flags
// are parsed.
type session struct {
	command   string
	format    output.Format
	formatter output.Formatter
	output    string
	logger    *logging.Logger
	locations LocationService
}

func newSession(cmd *cobra.Command, deps Dependencies, flags globalFlags) (*session, error) {
	format, err := output.ParseFormat(flags.Format)
	if err != nil {
		return nil, usageErrorf("--format: %v", err)
	}
	formatter := output.DefaultFormatter()
	if formatter.Units, err = output.ParseUnits(flags.Units); err != nil {
		return nil, usageErrorf("--units: %v", err)
	}
	if formatter.Points, err = output.ParsePointFormat(flags.LocationFormat); err != nil {
		return nil, usageErrorf("--location-format: %v", err)
	}
	if formatter.Precision, err = domain.ParsePrecision(flags.LocatorPrecision); err != nil {
		return nil, usageErrorf("--locator-precision: %v", err)
	}

	logger := logging.New(logging.Options{
		Stderr:  cmd.ErrOrStderr(),
		Verbose: flags.Verbose,
		File:    flags.LogFile,
	})
	s := &session{
		command:   cmd.Name(),
		format:    format,
		formatter: formatter,
		output:    flags.Output,
		logger:    logger,
	}
	locs, err := deps.openLocations(flags.Config, logger.With(slog.String("component", "config")))
	if err != nil {
		_ = logger.Close()
		return nil, emitError(cmd, format, s.command, flags.Output, codeConfig, err.Error(), exitConfig)
	}
	s.locations = locs
	logger.Debug("command started", slog.String("command", s.command), slog.String("format", string(format)))
	return s, nil
}

func (s *session) close() {
	_ = s.logger.Close()
}

// finish writes data and, when failure is set, the error that stopped
// the command. Earlier results are kept in both table and machine output.
func (s *session) finish(cmd *cobra.Command, data any, table string, warnings []string, failure error) error {
	warnings = append(s.configWarnings(cmd), warnings...)
	if s.format == output.FormatTable {
		if table != "" {
			if err := writeTable(cmd, table, s.output); err != nil {
				return err
			}
		}
		for _, warning := range warnings {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "warning: "+warning)
		}
		if failure != nil {
			code, status := classifyError(failure)
			s.logger.Debug("command failed", slog.String("code", code), slog.Any("error", failure))
			return emitError(cmd, s.format, s.command, s.output, code, failure.Error(), status)
		}
		return nil
	}

	var errPayload map[string]any
	exit := 0
	if failure != nil {
		code, status := classifyError(failure)
		s.logger.Debug("command failed", slog.String("code", code), slog.Any("error", failure))
		errPayload = map[string]any{"code": code, "message": failure.Error()}
		exit = status
	}
	env := output.BuildEnvelope(s.command, data, warnings, errPayload)
	if err := writeMachinePayload(cmd, env, s.format, s.output); err != nil {
		return err
	}
	if exit != 0 {
		return &exitError{code: exit}
	}
	return nil
}

func (s *session) fail(cmd *cobra.Command, err error) error {
	return s.finish(cmd, nil, "", nil, err)
}

// configWarnings lists config sections skipped while loading locations.
func (s *session) configWarnings(cmd *cobra.Command) []string {
	if s.locations == nil {
		return nil
	}
	return s.locations.Warnings(cmd.Context())
}

func classifyError(err error) (string, int) {
	switch {
	case errors.Is(err, config.ErrInvalidConfig), errors.Is(err, config.ErrConfigNotFound):
		return codeConfig, exitConfig
	case domain.IsValidation(err):
		return codeValidation, exitValidation
	case domain.IsParse(err):
		return codeParse, exitParse
	case domain.IsDomain(err):
		return codeDomain, exitDomain
	default:
		return codeInternal, exitFailure
	}
}

func writeTable(cmd *cobra.Command, text string, outputPath string) error {
	if err := output.WriteOutput(cmd.OutOrStdout(), text, outputPath); err != nil {
		return err
	}
	return nil
}

func writeMachinePayload(cmd *cobra.Command, env output.Envelope, format output.Format, outputPath string) error {
	rendered, err := output.RenderPayload(env, format)
	if err != nil {
		return err
	}
	if err := output.WriteOutput(cmd.OutOrStdout(), rendered, outputPath); err != nil {
		return err
	}
	return nil
}

func emitError(
	cmd *cobra.Command,
	format output.Format,
	command string,
	outputPath string,
	code string,
	message string,
	status int,
) error {
	if format == output.FormatTable {
		if _, err := fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", code, message); err != nil {
			return err
		}
		return &exitError{code: status}
	}
	env := output.BuildEnvelope(command, nil, []string{}, map[string]any{
		"code":    code,
		"message": message,
	})
	if err := writeMachinePayload(cmd, env, format, outputPath); err != nil {
		return err
	}
	return &exitError{code: status}
}

func pointData(p domain.Point, f output.Formatter) map[string]any {
	data := map[string]any{
		"latitude":  p.Latitude(),
		"longitude": p.Longitude(),
		"text":      f.Point(p),
	}
	if p.Name() != "" {
		data["name"] = p.Name()
	}
	return data
}
