package locations_test

import (
	"context"
	"errors"
	"testing"

	"github.com/upoints/edist/internal/config"
	"github.com/upoints/edist/internal/domain"
	"github.com/upoints/edist/internal/service/locations"
)

type stubStore struct {
	cfg   domain.Config
	err   error
	loads int
	saved []domain.Config
}

func (s *stubStore) Load(context.Context) (domain.Config, error) {
	s.loads++
	if s.err != nil {
		return domain.Config{}, s.err
	}
	return s.cfg, nil
}

func (s *stubStore) Save(_ context.Context, cfg domain.Config) error {
	s.saved = append(s.saved, cfg)
	s.cfg = cfg
	return nil
}

func homeConfig() domain.Config {
	return domain.Config{Locations: []domain.NamedLocation{
		{Alias: "Home", Point: domain.MustPoint(52.015, -0.221).WithName("Home")},
	}}
}

func TestResolverFindAlias(t *testing.T) {
	resolver := locations.NewResolver(&stubStore{cfg: homeConfig()})
	point, err := resolver.Find(context.Background(), "HOME")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if point.Name() != "Home" || !point.Equal(domain.MustPoint(52.015, -0.221)) {
		t.Fatalf("expected home alias, got %v", point)
	}
}

func TestResolverFindNotation(t *testing.T) {
	resolver := locations.NewResolver(&stubStore{cfg: homeConfig()})
	point, err := resolver.Find(context.Background(), "52.6333;-2.5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !point.Equal(domain.MustPoint(52.6333, -2.5)) {
		t.Fatalf("expected parsed point, got %v", point)
	}
}

func TestResolverMissingConfigIsNotAnError(t *testing.T) {
	resolver := locations.NewResolver(&stubStore{err: config.ErrConfigNotFound})
	if _, err := resolver.Find(context.Background(), "IO92"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := resolver.Find(context.Background(), "Home")
	if !domain.IsParse(err) {
		t.Fatalf("expected ParseError for unknown alias, got %v", err)
	}
}

func TestResolverPropagatesInvalidConfig(t *testing.T) {
	resolver := locations.NewResolver(&stubStore{err: config.ErrInvalidConfig})
	_, err := resolver.Find(context.Background(), "IO92")
	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestResolverLoadsConfigOnce(t *testing.T) {
	store := &stubStore{cfg: homeConfig()}
	resolver := locations.NewResolver(store)
	if _, err := resolver.FindAll(context.Background(), []string{"home", "IO92", "home"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.loads != 1 {
		t.Fatalf("expected a single config load, got %d", store.loads)
	}
}

func TestResolverFindAllKeepsEarlierPoints(t *testing.T) {
	resolver := locations.NewResolver(&stubStore{cfg: homeConfig()})
	points, err := resolver.FindAll(context.Background(), []string{"home", "IO92", "nowhere", "IO93"})
	if !domain.IsParse(err) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("expected 2 resolved points before failure, got %d", len(points))
	}
}

func TestResolverFindEmpty(t *testing.T) {
	resolver := locations.NewResolver(&stubStore{})
	if _, err := resolver.Find(context.Background(), "   "); !domain.IsParse(err) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestResolverAdd(t *testing.T) {
	store := &stubStore{cfg: homeConfig()}
	resolver := locations.NewResolver(store)

	entry, err := resolver.Add(context.Background(), "Shack", "IO93bf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Locator != "IO93bf" {
		t.Fatalf("expected locator to be kept, got %+v", entry)
	}
	if _, err := resolver.Add(context.Background(), "home", "52.2;0.183"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.saved) != 2 {
		t.Fatalf("expected 2 saves, got %d", len(store.saved))
	}
	last := store.saved[1]
	if len(last.Locations) != 2 || last.Locations[0].Alias != "home" || last.Locations[1].Alias != "Shack" {
		t.Fatalf("unexpected saved config: %+v", last.Locations)
	}

	point, err := resolver.Find(context.Background(), "HOME")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !point.Equal(domain.MustPoint(52.2, 0.183)) {
		t.Fatalf("expected replaced home, got %v", point)
	}
}

func TestResolverAddRejectsBadInput(t *testing.T) {
	resolver := locations.NewResolver(&stubStore{})
	if _, err := resolver.Add(context.Background(), " ", "IO92"); !domain.IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, err := resolver.Add(context.Background(), "x", "nowhere"); !domain.IsParse(err) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestResolverWarningsListSkippedSections(t *testing.T) {
	cfg := homeConfig()
	cfg.Skipped = []domain.SkippedSection{{Name: "Nowhere", Reason: "no position data"}}
	resolver := locations.NewResolver(&stubStore{cfg: cfg})
	warnings := resolver.Warnings(context.Background())
	if len(warnings) != 1 || warnings[0] != `skipped location "Nowhere": no position data` {
		t.Fatalf("unexpected warnings %v", warnings)
	}

	broken := locations.NewResolver(&stubStore{err: config.ErrInvalidConfig})
	if warnings := broken.Warnings(context.Background()); warnings != nil {
		t.Fatalf("expected no warnings for a broken config, got %v", warnings)
	}
}
