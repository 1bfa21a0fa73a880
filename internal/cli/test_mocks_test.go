package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/upoints/edist/internal/domain"
	"github.com/upoints/edist/internal/location"
	"github.com/upoints/edist/internal/logging"
)

type testLocations struct {
	named    []domain.NamedLocation
	listErr  error
	added    []domain.NamedLocation
	warnings []string
}

func (m *testLocations) Find(_ context.Context, text string) (domain.Point, error) {
	for _, loc := range m.named {
		if strings.EqualFold(loc.Alias, text) {
			return loc.Point, nil
		}
	}
	return location.Parse(text)
}

func (m *testLocations) FindAll(ctx context.Context, texts []string) ([]domain.Point, error) {
	points := make([]domain.Point, 0, len(texts))
	for _, text := range texts {
		p, err := m.Find(ctx, text)
		if err != nil {
			return points, fmt.Errorf("resolve %q: %w", text, err)
		}
		points = append(points, p)
	}
	return points, nil
}

func (m *testLocations) List(context.Context) ([]domain.NamedLocation, error) {
	return m.named, m.listErr
}

func (m *testLocations) Add(_ context.Context, alias, text string) (domain.NamedLocation, error) {
	p, err := location.Parse(text)
	if err != nil {
		return domain.NamedLocation{}, err
	}
	entry := domain.NamedLocation{Alias: alias, Point: p.WithName(alias)}
	m.added = append(m.added, entry)
	return entry, nil
}

func (m *testLocations) Warnings(context.Context) []string {
	return m.warnings
}

func testDeps(locs *testLocations) Dependencies {
	return Dependencies{
		Locations: func(string, *slog.Logger) (LocationService, error) {
			return locs, nil
		},
		Version: "test",
	}
}

func homeLocations() *testLocations {
	return &testLocations{named: []domain.NamedLocation{
		{Alias: "Home", Point: domain.MustPoint(52.015, -0.221).WithName("Home")},
		{Alias: "Telford", Point: domain.MustPoint(52.6333, -2.5).WithName("Telford")},
	}}
}

func testLogger() *logging.Logger {
	return logging.Discard()
}
