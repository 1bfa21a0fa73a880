package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/upoints/edist/internal/config"
	"github.com/upoints/edist/internal/domain"
	"github.com/upoints/edist/internal/service/output"
)

func TestCommandOptionsHideSharedGlobals(t *testing.T) {
	root := NewRootCommand(Dependencies{Version: "test"})

	bearing, found := findCommand(root, "bearing")
	if !found {
		t.Fatal("bearing command not found")
	}
	hasString := false
	for _, option := range commandOptions(bearing) {
		if option.name == "format" || option.name == "units" || option.name == "config" {
			t.Fatalf("shared option leaked into command-specific options: %s", option.name)
		}
		if option.name == "string" {
			hasString = true
		}
	}
	if !hasString {
		t.Fatal("expected bearing to document --string")
	}

	rangeCmd, found := findCommand(root, "range")
	if !found {
		t.Fatal("range command not found")
	}
	for _, option := range commandOptions(rangeCmd) {
		if option.name == "distance" && !option.required {
			t.Fatal("expected range --distance to be required")
		}
	}
}

func TestRenderRootHelpIncludesGlobalSection(t *testing.T) {
	root := NewRootCommand(Dependencies{Version: "test"})
	buf := &bytes.Buffer{}
	renderRootHelp(buf, root)
	out := buf.String()
	if !strings.Contains(out, "global options") {
		t.Fatalf("expected global options in help output:\n%s", out)
	}
	for _, want := range []string{"--location-format/-l", "--units/-u", "flight-plan", "final-bearing"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in help output:\n%s", want, out)
		}
	}
}

func TestClassifyError(t *testing.T) {
	cases := []struct {
		err  error
		code string
		exit int
	}{
		{&domain.ValidationError{Field: "speed", Value: 0.0, Msg: "must be a positive number"}, codeValidation, exitValidation},
		{fmt.Errorf("resolve: %w", &domain.ParseError{Input: "x", Msg: "bad"}), codeParse, exitParse},
		{fmt.Errorf("home: %w", domain.ErrNoSunrise), codeDomain, exitDomain},
		{fmt.Errorf("%w: [Pole]: %w", config.ErrInvalidConfig, &domain.ValidationError{Field: "latitude"}), codeConfig, exitConfig},
		{errors.New("disk on fire"), codeInternal, exitFailure},
	}
	for _, tc := range cases {
		code, exit := classifyError(tc.err)
		if code != tc.code || exit != tc.exit {
			t.Fatalf("%v: expected %s/%d, got %s/%d", tc.err, tc.code, tc.exit, code, exit)
		}
	}
}

func TestEmitErrorFormatting(t *testing.T) {
	cmd := &cobra.Command{}
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := emitError(cmd, output.FormatTable, "distance", "", codeParse, "bad location", exitParse)
	var exitErr *exitError
	if !errors.As(err, &exitErr) || exitErr.code != exitParse {
		t.Fatalf("expected controlled exit error, got %v", err)
	}
	if got := stderr.String(); got != "EDIST_PARSE_ERROR: bad location\n" {
		t.Fatalf("unexpected table error output %q", got)
	}

	err = emitError(cmd, output.FormatJSON, "distance", "", codeParse, "bad location", exitParse)
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected controlled exit error, got %v", err)
	}
	var env output.Envelope
	if err := json.Unmarshal(stdout.Bytes(), &env); err != nil {
		t.Fatalf("expected json envelope, got %q: %v", stdout.String(), err)
	}
	if env.Error["code"] != codeParse || env.Meta["command"] != "distance" {
		t.Fatalf("unexpected envelope %+v", env)
	}
}

func TestSessionFinishKeepsPartialResults(t *testing.T) {
	cmd := &cobra.Command{Use: "distance"}
	stdout := &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(&bytes.Buffer{})
	s := &session{command: "distance", format: output.FormatJSON, formatter: output.DefaultFormatter(), logger: testLogger()}

	failure := fmt.Errorf("resolve %q: %w", "nowhere", &domain.ParseError{Input: "nowhere", Msg: "bad"})
	err := s.finish(cmd, map[string]any{"legs": []int{1}}, "", nil, failure)
	var exitErr *exitError
	if !errors.As(err, &exitErr) || exitErr.code != exitParse {
		t.Fatalf("expected parse exit, got %v", err)
	}
	out := stdout.String()
	if !strings.Contains(out, `"legs"`) || !strings.Contains(out, codeParse) {
		t.Fatalf("expected data and error in envelope, got %s", out)
	}
}

func TestSessionFinishReportsSkippedSections(t *testing.T) {
	cmd := &cobra.Command{Use: "display"}
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	locs := &testLocations{warnings: []string{`skipped location "Nowhere": no position data`}}
	s := &session{command: "display", format: output.FormatJSON, formatter: output.DefaultFormatter(), logger: testLogger(), locations: locs}

	if err := s.finish(cmd, map[string]any{}, "", []string{"no locations configured"}, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var env output.Envelope
	if err := json.Unmarshal(stdout.Bytes(), &env); err != nil {
		t.Fatalf("expected json envelope, got %q: %v", stdout.String(), err)
	}
	if len(env.Warnings) != 2 || !strings.Contains(env.Warnings[0], "Nowhere") {
		t.Fatalf("expected config warning first, got %v", env.Warnings)
	}
	if stderr.Len() != 0 {
		t.Fatalf("expected nothing on stderr, got %q", stderr.String())
	}

	stdout.Reset()
	s.format = output.FormatTable
	if err := s.finish(cmd, nil, "NAME  LOCATION", nil, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stderr.String(), `warning: skipped location "Nowhere"`) {
		t.Fatalf("expected table warning on stderr, got %q", stderr.String())
	}
}

func TestParseDate(t *testing.T) {
	now := time.Date(2024, 6, 21, 23, 30, 0, 0, time.FixedZone("NZST", 12*3600))
	got, err := parseDate("", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Format(dateLayout) != "2024-06-21" || got.Location() != time.UTC {
		t.Fatalf("expected UTC date of now, got %v", got)
	}
	got, err = parseDate("2007-06-15", now)
	if err != nil || got.Format(dateLayout) != "2007-06-15" {
		t.Fatalf("unexpected parsed date %v %v", got, err)
	}
	if _, err := parseDate("15/06/2007", now); !domain.IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestArgValidatorsReturnUsageErrors(t *testing.T) {
	cmd := &cobra.Command{Use: "distance"}
	var usage *usageError
	if err := minimumArgs(2, "locations")(cmd, []string{"home"}); !errors.As(err, &usage) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if err := exactArgs(2, "arguments")(cmd, []string{"a", "b", "c"}); !errors.As(err, &usage) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if err := minimumArgs(2, "locations")(cmd, []string{"a", "b"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestExecuteExitCodes(t *testing.T) {
	cases := []struct {
		args []string
		exit int
	}{
		{[]string{"distance", "home", "telford"}, 0},
		{[]string{"distance", "home"}, exitUsage},
		{[]string{"distance", "--bogus", "home", "telford"}, exitUsage},
		{[]string{"range", "home", "telford"}, exitUsage},
		{[]string{"teleport"}, exitUsage},
		{[]string{"distance", "home", "91;0"}, exitValidation},
		{[]string{"distance", "home", "nowhere"}, exitParse},
		{[]string{"sunrise", "--date", "2024-12-21", "69.65;18.96"}, exitDomain},
		{[]string{"flight-plan", "--speed", "0", "home", "telford"}, exitValidation},
	}
	for _, tc := range cases {
		stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
		got := Execute(context.Background(), tc.args, testDeps(homeLocations()), stdout, stderr)
		if got != tc.exit {
			t.Fatalf("%v: expected exit %d, got %d (stdout %q, stderr %q)", tc.args, tc.exit, got, stdout.String(), stderr.String())
		}
	}
}

func TestFlagHelpers(t *testing.T) {
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flagSet.StringP("distance", "d", "", "Distance.")
	flag := flagSet.Lookup("distance")
	if flag == nil {
		t.Fatal("distance flag not found")
	}
	flag.Annotations = map[string][]string{cobra.BashCompOneRequiredFlag: {"true"}}

	token := flagToken(flag)
	if token != "--distance/-d" {
		t.Fatalf("unexpected flag token: %q", token)
	}
	if !isFlagRequired(flag) {
		t.Fatal("expected required flag")
	}
	label := optionLabels(optionDoc{required: true, inherited: true})
	if label != " [required, global]" {
		t.Fatalf("unexpected option labels: %q", label)
	}
}

func findCommand(root *cobra.Command, path ...string) (*cobra.Command, bool) {
	current := root
	for _, segment := range path {
		next := current.Commands()
		found := false
		for _, cmd := range next {
			if cmd.Name() == segment {
				current = cmd
				found = true
				break
			}
		}
		if !found {
			return nil, false
		}
	}
	return current, true
}
