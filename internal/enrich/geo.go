package enrich

import (
	"context"
	"errors"

	"kukacrm/internal/logging"
	"kukacrm/internal/types"
)

// ErrLocationUnavailable is returned when no position can be read.
var ErrLocationUnavailable = errors.New("localização indisponível")

// Coordinates is one position reading.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// LocationProvider supplies the device position once per form session.
type LocationProvider interface {
	Locate(ctx context.Context) (Coordinates, error)
}

// StaticLocation always returns the same reading, e.g. from command-line flags.
type StaticLocation Coordinates

func (s StaticLocation) Locate(context.Context) (Coordinates, error) {
	return Coordinates(s), nil
}

// NoLocation never has a reading.
type NoLocation struct{}

func (NoLocation) Locate(context.Context) (Coordinates, error) {
	return Coordinates{}, ErrLocationUnavailable
}

// ApplyLocation fills the input coordinates from provider. A failed reading
// leaves them nil and is only logged.
func ApplyLocation(ctx context.Context, provider LocationProvider, in *types.ClientInput) {
	if provider == nil {
		return
	}
	c, err := provider.Locate(ctx)
	if err != nil {
		logging.EnrichWarn("Location unavailable: %v", err)
		in.Latitude, in.Longitude = nil, nil
		return
	}
	lat, lng := c.Latitude, c.Longitude
	in.Latitude, in.Longitude = &lat, &lng
}
