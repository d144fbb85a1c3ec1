// Package trip orchestrates the adapters into one travel plan.
package trip

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/prasadnitish/StrollerScout-sub001/geocode"
	"github.com/prasadnitish/StrollerScout-sub001/planner"
	"github.com/prasadnitish/StrollerScout-sub001/safety"
	"github.com/prasadnitish/StrollerScout-sub001/weather"
)

// Request describes one trip to plan.
type Request struct {
	Destination string
	Days        int
	KidAges     []int
}

// Plan is the assembled result. Ratings may be empty when the safety
// integration is disabled or unavailable.
type Plan struct {
	Location  geocode.Location
	Forecast  *weather.Forecast
	Ratings   []safety.Rating
	Itinerary *planner.Itinerary
	Packing   *planner.PackingList
}

// Service wires the adapters together.
type Service struct {
	geocoder  Geocoder
	forecasts ForecastProvider
	safety    SafetyProvider
	planner   Planner
	logger    zerolog.Logger
}

// NewService creates the orchestrator. safetyProvider may be nil when the
// integration is disabled.
func NewService(geocoder Geocoder, forecasts ForecastProvider, safetyProvider SafetyProvider, tripPlanner Planner, logger zerolog.Logger) *Service {
	return &Service{
		geocoder:  geocoder,
		forecasts: forecasts,
		safety:    safetyProvider,
		planner:   tripPlanner,
		logger:    logger,
	}
}

// BuildPlan geocodes the destination, gathers forecast and safety data
// concurrently, then generates the itinerary and packing list. Safety data
// never blocks the plan; weather and planning failures do.
func (s *Service) BuildPlan(ctx context.Context, req Request) (*Plan, error) {
	loc, err := s.geocoder.Lookup(ctx, req.Destination)
	if err != nil {
		return nil, fmt.Errorf("resolving destination: %w", err)
	}

	if req.Days <= 0 {
		req.Days = weather.DefaultDays
	}

	plan := &Plan{Location: *loc}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		fc, err := s.forecasts.Forecast(gctx, loc.Latitude, loc.Longitude, req.Days)
		if err != nil {
			return fmt.Errorf("fetching forecast for %q: %w", loc.Name, err)
		}
		plan.Forecast = fc
		return nil
	})
	if s.safety != nil {
		g.Go(func() error {
			plan.Ratings = s.safety.Ratings(gctx, loc.Latitude, loc.Longitude)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	trip := planner.Trip{
		Destination:   loc.Label(),
		Days:          req.Days,
		KidAges:       req.KidAges,
		WeatherDigest: weatherDigest(plan.Forecast),
		SafetyDigest:  safetyDigest(plan.Ratings),
	}

	g, gctx = errgroup.WithContext(ctx)
	g.Go(func() error {
		itinerary, err := s.planner.Itinerary(gctx, trip)
		if err != nil {
			return err
		}
		plan.Itinerary = itinerary
		return nil
	})
	g.Go(func() error {
		packing, err := s.planner.PackingList(gctx, trip)
		if err != nil {
			return err
		}
		plan.Packing = packing
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("destination", loc.Name).
		Int("days", req.Days).
		Int("ratings", len(plan.Ratings)).
		Msg("trip plan assembled")

	return plan, nil
}

func weatherDigest(fc *weather.Forecast) string {
	if fc == nil || len(fc.Days) == 0 {
		return ""
	}
	lines := make([]string, len(fc.Days))
	for i, day := range fc.Days {
		lines[i] = "- " + day.Summary()
	}
	return strings.Join(lines, "\n")
}

func safetyDigest(ratings []safety.Rating) string {
	if len(ratings) == 0 {
		return ""
	}
	lines := make([]string, len(ratings))
	for i, r := range ratings {
		lines[i] = fmt.Sprintf("- %s: overall %d/100 (lower is safer)", r.Name, r.Overall)
	}
	return strings.Join(lines, "\n")
}
