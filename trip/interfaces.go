package trip

import (
	"context"

	"github.com/prasadnitish/StrollerScout-sub001/geocode"
	"github.com/prasadnitish/StrollerScout-sub001/planner"
	"github.com/prasadnitish/StrollerScout-sub001/safety"
	"github.com/prasadnitish/StrollerScout-sub001/weather"
)

// Geocoder resolves place names to locations.
type Geocoder interface {
	Lookup(ctx context.Context, place string) (*geocode.Location, error)
}

// ForecastProvider fetches daily forecasts.
type ForecastProvider interface {
	Forecast(ctx context.Context, lat, lon float64, days int) (*weather.Forecast, error)
}

// SafetyProvider fetches neighborhood safety ratings. Implementations
// degrade to an empty slice instead of failing.
type SafetyProvider interface {
	Ratings(ctx context.Context, lat, lon float64) []safety.Rating
}

// Planner generates itineraries and packing lists.
type Planner interface {
	Itinerary(ctx context.Context, trip planner.Trip) (*planner.Itinerary, error)
	PackingList(ctx context.Context, trip planner.Trip) (*planner.PackingList, error)
}
