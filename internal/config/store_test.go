package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/upoints/edist/internal/domain"
)

const sampleLocations = `
[Home]
latitude = 52.015
longitude = -0.221

[Cambridge]
latitude=52.200
longitude=0.183

[GB3BUX]
frequency=50.000
locator=IO93BF

[Abeche, Chad]
Latitude=14.460000
Longitude=20.680000
height=0.000000

[Nowhere]
height=12
`

func writeConfig(t *testing.T, body string) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "locations")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	store, err := NewStore(WithPath(path))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store
}

func TestNewStoreUsesEnvConfigPath(t *testing.T) {
	t.Setenv(envConfigPath, "/tmp/custom-edist-locations")
	store, err := NewStore()
	if err != nil {
		t.Fatalf("unexpected error creating store: %v", err)
	}
	if store.Path() != "/tmp/custom-edist-locations" {
		t.Fatalf("expected env path, got %q", store.Path())
	}
}

func TestNewStorePathOptionWins(t *testing.T) {
	t.Setenv(envConfigPath, "/tmp/from-env")
	store, err := NewStore(WithPath("/tmp/from-flag"))
	if err != nil {
		t.Fatalf("unexpected error creating store: %v", err)
	}
	if store.Path() != "/tmp/from-flag" {
		t.Fatalf("expected flag path, got %q", store.Path())
	}
}

func TestStoreLoadSections(t *testing.T) {
	store := writeConfig(t, sampleLocations)
	cfg, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	aliases := cfg.Aliases()
	want := []string{"Home", "Cambridge", "GB3BUX", "Abeche, Chad"}
	if len(aliases) != len(want) {
		t.Fatalf("expected aliases %v, got %v", want, aliases)
	}
	for i := range want {
		if aliases[i] != want[i] {
			t.Fatalf("expected aliases %v, got %v", want, aliases)
		}
	}

	home, _ := cfg.Lookup("home")
	if !home.Point.Equal(domain.MustPoint(52.015, -0.221)) || home.Point.Name() != "Home" {
		t.Fatalf("unexpected home location %+v", home)
	}
	if len(cfg.Skipped) != 1 || cfg.Skipped[0].Name != "Nowhere" || cfg.Skipped[0].Reason != "no position data" {
		t.Fatalf("expected Nowhere to be reported as skipped, got %+v", cfg.Skipped)
	}
	bux, _ := cfg.Lookup("GB3BUX")
	if bux.Locator != "IO93BF" {
		t.Fatalf("expected locator to be kept, got %q", bux.Locator)
	}
	if bux.Point.Latitude() < 53.2 || bux.Point.Latitude() > 53.25 {
		t.Fatalf("unexpected locator latitude %f", bux.Point.Latitude())
	}
}

func TestStoreSaveAndLoadRoundTrip(t *testing.T) {
	store := &Store{path: filepath.Join(t.TempDir(), "nested", "locations")}
	input := domain.Config{Locations: []domain.NamedLocation{
		{Alias: "Home", Point: domain.MustPoint(52.015, -0.221)},
		{Alias: "Shack", Point: domain.MustPoint(53.2291666, -1.875), Locator: "IO93bf"},
	}}
	if err := store.Save(context.Background(), input); err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}
	output, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if len(output.Locations) != 2 || output.Locations[0].Alias != "Home" {
		t.Fatalf("unexpected roundtrip config: %+v", output)
	}
	if !output.Locations[0].Point.Equal(input.Locations[0].Point) {
		t.Fatalf("home drifted: %v", output.Locations[0].Point)
	}
	if output.Locations[1].Locator != "IO93bf" {
		t.Fatalf("expected locator entry, got %+v", output.Locations[1])
	}
}

func TestStoreLoadMissingConfig(t *testing.T) {
	store := &Store{path: filepath.Join(t.TempDir(), "missing")}
	_, err := store.Load(context.Background())
	if !errors.Is(err, ErrConfigNotFound) {
		t.Fatalf("expected ErrConfigNotFound, got %v", err)
	}
}

func TestStoreLoadInvalidConfig(t *testing.T) {
	cases := map[string]string{
		"bad float":    "[Home]\nlatitude=north\nlongitude=0\n",
		"out of range": "[Pole]\nlatitude=91\nlongitude=0\n",
		"missing lon":  "[Half]\nlatitude=10\n",
	}
	for name, body := range cases {
		store := writeConfig(t, body)
		_, err := store.Load(context.Background())
		if !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("%s: expected ErrInvalidConfig, got %v", name, err)
		}
	}
	store := writeConfig(t, "[Pole]\nlatitude=91\nlongitude=0\n")
	_, err := store.Load(context.Background())
	if !domain.IsValidation(err) {
		t.Fatalf("expected wrapped ValidationError, got %v", err)
	}
}

func TestStoreSaveRejectsEmptyLocations(t *testing.T) {
	store := &Store{path: filepath.Join(t.TempDir(), "locations")}
	err := store.Save(context.Background(), domain.Config{})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestStoreSaveKeepsUnrelatedSectionsAndKeys(t *testing.T) {
	store := writeConfig(t, sampleLocations)
	cfg, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	kept := cfg.Locations[:0]
	for _, loc := range cfg.Locations {
		if loc.Alias != "Cambridge" {
			kept = append(kept, loc)
		}
	}
	cfg.Locations = append(kept, domain.NamedLocation{Alias: "Shack", Point: domain.MustPoint(53.2291666, -1.875), Locator: "IO93bf"})
	if err := store.Save(context.Background(), cfg); err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}

	data, err := os.ReadFile(store.Path())
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	text := string(data)
	for _, want := range []string{"[Nowhere]", "frequency", "[Shack]", "IO93bf"} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in saved config:\n%s", want, text)
		}
	}
	if strings.Contains(text, "[Cambridge]") {
		t.Fatalf("expected Cambridge to be removed:\n%s", text)
	}
}

func TestZeroValueStoreLoads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locations")
	if err := os.WriteFile(path, []byte("[Nowhere]\nheight=12\n\n[Shack]\nlocator=IO9\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	store := &Store{path: path}
	cfg, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if len(cfg.Locations) != 0 || len(cfg.Skipped) != 2 {
		t.Fatalf("expected two skipped sections, got %+v", cfg)
	}
	if cfg.Skipped[1].Reason != `invalid locator "IO9"` {
		t.Fatalf("unexpected skip reason %q", cfg.Skipped[1].Reason)
	}
}

func TestStoreSaveKeepsSectionsWithInvalidLocator(t *testing.T) {
	store := writeConfig(t, "[Home]\nlatitude=52.015\nlongitude=-0.221\n\n[Shack]\nlocator=IO9\nnote=fix me later\n")
	cfg, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	cfg.Locations = append(cfg.Locations, domain.NamedLocation{Alias: "Cambridge", Point: domain.MustPoint(52.2, 0.183)})
	if err := store.Save(context.Background(), cfg); err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}

	data, err := os.ReadFile(store.Path())
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	text := string(data)
	for _, want := range []string{"[Home]", "[Cambridge]", "[Shack]", "IO9", "fix me later"} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in saved config:\n%s", want, text)
		}
	}
}
