package flightplan

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"time"

	"github.com/upoints/edist/internal/domain"
	"github.com/upoints/edist/internal/geo"
	"golang.org/x/sync/errgroup"
)

// maxElapsedHours is the longest time a time.Duration can hold.
var maxElapsedHours = float64(math.MaxInt64) / float64(time.Hour)

// Option configures a Planner.
type Option func(*Planner)

// WithLogger sets the planner's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Planner) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithConcurrency bounds how many legs are computed at once.
func WithConcurrency(n int) Option {
	return func(p *Planner) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// Planner turns routes into timed legs.
type Planner struct {
	logger      *slog.Logger
	concurrency int
}

// NewPlanner creates a planner using one worker per CPU by default.
func NewPlanner(opts ...Option) *Planner {
	p := &Planner{
		logger:      slog.New(slog.DiscardHandler),
		concurrency: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Plan computes one leg per consecutive pair of points at speed km/h.
// Routes with fewer than two points produce an empty plan.
func (p *Planner) Plan(ctx context.Context, route []domain.Point, speed float64) (domain.FlightPlan, error) {
	if speed <= 0 || math.IsNaN(speed) || math.IsInf(speed, 0) {
		return domain.FlightPlan{}, &domain.ValidationError{Field: "speed", Value: speed, Msg: "must be a positive number"}
	}
	plan := domain.FlightPlan{Speed: speed}
	if len(route) < 2 {
		return plan, nil
	}

	legs := make([]domain.Leg, len(route)-1)
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(p.concurrency)
	for i := range legs {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			l, err := leg(route[i], route[i+1], speed)
			if err != nil {
				return err
			}
			legs[i] = l
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return domain.FlightPlan{}, err
	}

	plan.Legs = legs
	for _, l := range legs {
		plan.TotalDistance += l.Distance
	}
	if plan.TotalDistance/speed >= maxElapsedHours {
		return domain.FlightPlan{}, tooSlow(speed)
	}
	for _, l := range legs {
		plan.TotalElapsed += l.Elapsed
	}
	p.logger.Debug("flight plan computed",
		slog.Int("legs", len(legs)),
		slog.Float64("distance_km", plan.TotalDistance),
		slog.Duration("elapsed", plan.TotalElapsed))
	return plan, nil
}

// Plan uses a default planner.
func Plan(ctx context.Context, route []domain.Point, speed float64) (domain.FlightPlan, error) {
	return NewPlanner().Plan(ctx, route, speed)
}

func leg(from, to domain.Point, speed float64) (domain.Leg, error) {
	bearing, distance := geo.Inverse(from, to)
	hours := distance / speed
	if hours >= maxElapsedHours {
		return domain.Leg{}, tooSlow(speed)
	}
	return domain.Leg{
		From:         from,
		To:           to,
		Distance:     distance,
		Bearing:      bearing,
		FinalBearing: geo.FinalBearing(from, to),
		Elapsed:      time.Duration(hours * float64(time.Hour)),
	}, nil
}

func tooSlow(speed float64) error {
	return &domain.ValidationError{
		Field: "speed",
		Value: speed,
		Msg:   fmt.Sprintf("too slow: elapsed time exceeds %.0f hours", maxElapsedHours),
	}
}
