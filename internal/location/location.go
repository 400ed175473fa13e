package location

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrMalformed reports a location string that does not parse as "LAT:LON".
var ErrMalformed = errors.New("malformed location")

// Location is a geographic position in degrees. Immutable after construction.
type Location struct {
	Lat float64
	Lon float64
}

// New validates the coordinate ranges and returns a Location.
func New(lat, lon float64) (Location, error) {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return Location{}, fmt.Errorf("latitude %v out of range [-90, 90]", lat)
	}
	if math.IsNaN(lon) || lon < -180 || lon > 180 {
		return Location{}, fmt.Errorf("longitude %v out of range [-180, 180]", lon)
	}
	return Location{Lat: lat, Lon: lon}, nil
}

// Parse reads a location in "LAT:LON" form, e.g. "60.1695:24.9354".
func Parse(s string) (Location, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return Location{}, fmt.Errorf("%w %q (want LAT:LON)", ErrMalformed, s)
	}
	lat, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return Location{}, fmt.Errorf("%w: bad latitude %q (of %q)", ErrMalformed, parts[0], s)
	}
	lon, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return Location{}, fmt.Errorf("%w: bad longitude %q (of %q)", ErrMalformed, parts[1], s)
	}
	return New(lat, lon)
}

// String renders the location with hemisphere suffixes, e.g. "60.17 N, 24.94 E".
func (l Location) String() string {
	ns := "N"
	if l.Lat < 0 {
		ns = "S"
	}
	ew := "E"
	if l.Lon < 0 {
		ew = "W"
	}
	return fmt.Sprintf("%.2f %s, %.2f %s", math.Abs(l.Lat), ns, math.Abs(l.Lon), ew)
}

// Provider resolves the location once at startup. Implementations may block
// on external services and must honor the context deadline.
type Provider interface {
	Get(ctx context.Context) (Location, error)
}

// Static is a Provider that always returns a fixed location.
type Static struct {
	Loc Location
}

func (s Static) Get(ctx context.Context) (Location, error) {
	return s.Loc, nil
}
