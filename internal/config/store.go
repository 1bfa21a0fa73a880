package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/upoints/edist/internal/domain"
	"github.com/upoints/edist/internal/location"
	"gopkg.in/ini.v1"
)

const (
	defaultDirName  = "edist"
	defaultFileName = "locations"
	envConfigPath   = "EDIST_CONFIG_PATH"
)

var (
	// ErrConfigNotFound is returned when config file does not exist.
	ErrConfigNotFound = errors.New("config file not found")
	// ErrInvalidConfig is returned when config payload is malformed.
	ErrInvalidConfig = errors.New("config file is invalid")
)

// Option configures a Store.
type Option func(*Store)

// WithPath overrides the config file location.
func WithPath(path string) Option {
	return func(s *Store) {
		if strings.TrimSpace(path) != "" {
			s.path = path
		}
	}
}

// WithLogger sets the logger used for skipped sections.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Store loads and writes named locations from an INI file. Each section
// is an alias holding either latitude and longitude keys or a locator key.
type Store struct {
	path   string
	logger *slog.Logger
}

// NewStore creates a store using options, env overrides or defaults.
func NewStore(opts ...Option) (*Store, error) {
	s := &Store{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(s)
	}
	if s.path != "" {
		return s, nil
	}
	if cfg := os.Getenv(envConfigPath); cfg != "" {
		s.path = cfg
		return s, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("resolve config directory: %w", err)
	}
	s.path = filepath.Join(dir, defaultDirName, defaultFileName)
	return s, nil
}

// Path returns current config path.
func (s *Store) Path() string {
	return s.path
}

// Load reads and validates the named locations.
func (s *Store) Load(_ context.Context) (domain.Config, error) {
	if _, err := os.Stat(s.path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.Config{}, ErrConfigNotFound
		}
		return domain.Config{}, fmt.Errorf("read config: %w", err)
	}

	file, err := ini.LoadSources(ini.LoadOptions{InsensitiveKeys: true}, s.path)
	if err != nil {
		return domain.Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	var cfg domain.Config
	for _, section := range file.Sections() {
		if section.Name() == ini.DefaultSection {
			continue
		}
		loc, skip, err := sectionLocation(section)
		if err != nil {
			return domain.Config{}, fmt.Errorf("%w: [%s]: %w", ErrInvalidConfig, section.Name(), err)
		}
		if skip != "" {
			s.log().Debug("skipping location", slog.String("section", section.Name()), slog.String("reason", skip))
			cfg.Skipped = append(cfg.Skipped, domain.SkippedSection{Name: section.Name(), Reason: skip})
			continue
		}
		cfg.Locations = append(cfg.Locations, loc)
	}
	s.log().Debug("locations loaded", slog.String("path", s.path), slog.Int("count", len(cfg.Locations)))
	return cfg, nil
}

func (s *Store) log() *slog.Logger {
	if s.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.logger
}

// sectionLocation reads one section. A section that cannot be used as a
// location returns a skip reason; malformed coordinates return an error.
func sectionLocation(section *ini.Section) (domain.NamedLocation, string, error) {
	alias := section.Name()
	if section.HasKey("latitude") || section.HasKey("longitude") {
		lat, err := section.Key("latitude").Float64()
		if err != nil {
			return domain.NamedLocation{}, "", fmt.Errorf("latitude: %w", err)
		}
		lon, err := section.Key("longitude").Float64()
		if err != nil {
			return domain.NamedLocation{}, "", fmt.Errorf("longitude: %w", err)
		}
		point, err := domain.NewPoint(lat, lon)
		if err != nil {
			return domain.NamedLocation{}, "", err
		}
		return domain.NamedLocation{Alias: alias, Point: point.WithName(alias)}, "", nil
	}

	locator := strings.TrimSpace(section.Key("locator").String())
	if locator == "" {
		return domain.NamedLocation{}, "no position data", nil
	}
	point, err := location.ParseLocator(locator)
	if err != nil {
		return domain.NamedLocation{}, fmt.Sprintf("invalid locator %q", locator), nil
	}
	return domain.NamedLocation{Alias: alias, Point: point.WithName(alias), Locator: locator}, "", nil
}

// Save writes the named locations. Sections of an existing file keep
// their other keys. Sections Load would skip are left alone, and usable
// sections missing from cfg are removed.
func (s *Store) Save(_ context.Context, cfg domain.Config) error {
	if len(cfg.Locations) == 0 {
		return fmt.Errorf("%w: no locations", ErrInvalidConfig)
	}
	file, err := s.loadForUpdate()
	if err != nil {
		return err
	}

	keep := make(map[string]struct{}, len(cfg.Locations))
	for _, loc := range cfg.Locations {
		alias := strings.TrimSpace(loc.Alias)
		if alias == "" {
			return fmt.Errorf("%w: empty location name", ErrInvalidConfig)
		}
		section := findSection(file, alias)
		if section == nil {
			if section, err = file.NewSection(alias); err != nil {
				return fmt.Errorf("create section %q: %w", alias, err)
			}
		}
		keep[section.Name()] = struct{}{}
		if loc.Locator != "" {
			section.DeleteKey("latitude")
			section.DeleteKey("longitude")
			section.Key("locator").SetValue(loc.Locator)
			continue
		}
		section.DeleteKey("locator")
		section.Key("latitude").SetValue(formatFloat(loc.Point.Latitude()))
		section.Key("longitude").SetValue(formatFloat(loc.Point.Longitude()))
	}
	for _, section := range file.Sections() {
		name := section.Name()
		if name == ini.DefaultSection {
			continue
		}
		if _, ok := keep[name]; ok || !loadable(section) {
			continue
		}
		file.DeleteSection(name)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := file.SaveTo(s.path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (s *Store) loadForUpdate() (*ini.File, error) {
	file, err := ini.LoadSources(ini.LoadOptions{InsensitiveKeys: true}, s.path)
	if err == nil {
		return file, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return ini.Empty(), nil
	}
	return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
}

func findSection(file *ini.File, alias string) *ini.Section {
	for _, section := range file.Sections() {
		if strings.EqualFold(section.Name(), alias) {
			return section
		}
	}
	return nil
}

func loadable(section *ini.Section) bool {
	_, skip, err := sectionLocation(section)
	return err == nil && skip == ""
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
