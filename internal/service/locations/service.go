package locations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/upoints/edist/internal/config"
	"github.com/upoints/edist/internal/domain"
	"github.com/upoints/edist/internal/location"
)

// ErrEmptyLocation indicates a blank location argument.
var ErrEmptyLocation = errors.New("location is empty")

// Loader provides config payloads.
type Loader interface {
	Load(ctx context.Context) (domain.Config, error)
}

// Store loads and persists config payloads.
type Store interface {
	Loader
	Save(ctx context.Context, cfg domain.Config) error
}

// Resolver turns user arguments into points, trying configured aliases
// before the location notations.
type Resolver struct {
	loader Loader
	load   func() (domain.Config, error)
	mu     sync.Mutex
}

// NewResolver creates a location resolver.
func NewResolver(loader Loader) *Resolver {
	r := &Resolver{loader: loader}
	r.reset()
	return r
}

func (r *Resolver) reset() {
	r.load = sync.OnceValues(func() (domain.Config, error) {
		if r.loader == nil {
			return domain.Config{}, nil
		}
		cfg, err := r.loader.Load(context.Background())
		if errors.Is(err, config.ErrConfigNotFound) {
			return domain.Config{}, nil
		}
		return cfg, err
	})
}

func (r *Resolver) config() (domain.Config, error) {
	r.mu.Lock()
	load := r.load
	r.mu.Unlock()
	return load()
}

// Find resolves an alias or a location notation.
func (r *Resolver) Find(ctx context.Context, text string) (domain.Point, error) {
	if err := ctx.Err(); err != nil {
		return domain.Point{}, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Point{}, &domain.ParseError{Input: text, Msg: ErrEmptyLocation.Error()}
	}
	cfg, err := r.config()
	if err != nil {
		return domain.Point{}, err
	}
	if loc, ok := cfg.Lookup(text); ok {
		return loc.Point, nil
	}
	return location.Parse(text)
}

// FindAll resolves every argument in order. Points resolved before a
// failure are returned alongside the error.
func (r *Resolver) FindAll(ctx context.Context, texts []string) ([]domain.Point, error) {
	points := make([]domain.Point, 0, len(texts))
	for _, text := range texts {
		point, err := r.Find(ctx, text)
		if err != nil {
			return points, fmt.Errorf("resolve %q: %w", text, err)
		}
		points = append(points, point)
	}
	return points, nil
}

// List returns configured locations in file order.
func (r *Resolver) List(_ context.Context) ([]domain.NamedLocation, error) {
	cfg, err := r.config()
	if err != nil {
		return nil, err
	}
	return cfg.Locations, nil
}

// Warnings describes config sections that were skipped while loading.
// Load failures are reported by the lookups, not here.
func (r *Resolver) Warnings(_ context.Context) []string {
	cfg, err := r.config()
	if err != nil || len(cfg.Skipped) == 0 {
		return nil
	}
	out := make([]string, 0, len(cfg.Skipped))
	for _, skipped := range cfg.Skipped {
		out = append(out, skipped.String())
	}
	return out
}

// Add stores a named location, replacing an existing alias of the same
// name. Locator notations are kept as locators in the file.
func (r *Resolver) Add(ctx context.Context, alias, text string) (domain.NamedLocation, error) {
	store, ok := r.loader.(Store)
	if !ok {
		return domain.NamedLocation{}, errors.New("location store is read-only")
	}
	alias = strings.TrimSpace(alias)
	if alias == "" {
		return domain.NamedLocation{}, &domain.ValidationError{Field: "name", Value: alias, Msg: "must not be empty"}
	}
	point, err := location.Parse(text)
	if err != nil {
		return domain.NamedLocation{}, err
	}
	entry := domain.NamedLocation{Alias: alias, Point: point.WithName(alias)}
	if _, err := location.ParseLocator(text); err == nil {
		entry.Locator = strings.TrimSpace(text)
	}

	cfg, err := r.config()
	if err != nil {
		return domain.NamedLocation{}, err
	}
	locations := make([]domain.NamedLocation, 0, len(cfg.Locations)+1)
	replaced := false
	for _, loc := range cfg.Locations {
		if strings.EqualFold(loc.Alias, alias) {
			locations = append(locations, entry)
			replaced = true
			continue
		}
		locations = append(locations, loc)
	}
	if !replaced {
		locations = append(locations, entry)
	}
	if err := store.Save(ctx, domain.Config{Locations: locations}); err != nil {
		return domain.NamedLocation{}, err
	}

	r.mu.Lock()
	r.reset()
	r.mu.Unlock()
	return entry, nil
}

// NewFileResolver constructs a resolver from the local config file.
func NewFileResolver(opts ...config.Option) (*Resolver, error) {
	store, err := config.NewStore(opts...)
	if err != nil {
		return nil, err
	}
	return NewResolver(store), nil
}
