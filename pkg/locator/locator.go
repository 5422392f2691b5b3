// Package locator finds the gyms closest to a member's zip code.
package locator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"github.com/codeGROOVE-dev/gymassist/pkg/apperrors"
	"github.com/codeGROOVE-dev/gymassist/pkg/googlemaps"
	"github.com/codeGROOVE-dev/gymassist/pkg/model"
)

// MaxResults is the number of gyms listed.
const MaxResults = 5

// PrefixLen is how many leading zip characters select a reference point.
const PrefixLen = 3

// Registry provides gyms and zip-prefix coordinates.
type Registry interface {
	Locations(ctx context.Context) ([]model.Location, error)
	Zipcode(ctx context.Context, prefix string) (*model.Zipcode, error)
}

// Geocoder resolves postal codes missing from the registry.
type Geocoder interface {
	GeocodePostalCode(ctx context.Context, postalCode string) (*googlemaps.Location, error)
}

// Nearby is a gym and its distance from the member.
type Nearby struct {
	model.Location
	DistanceKm float64
}

// Result lists the closest gyms.
type Result struct {
	Gyms []Nearby
	// AmenityMatch is false when no gym offered a requested amenity and
	// Gyms holds the closest gyms regardless of amenities.
	AmenityMatch bool
}

// Locator ranks gyms by distance.
type Locator struct {
	registry Registry
	geocoder Geocoder
	logger   *slog.Logger
}

// New creates a Locator. geocoder may be nil.
func New(registry Registry, geocoder Geocoder, logger *slog.Logger) *Locator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Locator{registry: registry, geocoder: geocoder, logger: logger}
}

// Prefix returns the upper-cased leading characters of a zip code.
func Prefix(zipcode string) string {
	z := strings.ToUpper(strings.TrimSpace(zipcode))
	if len(z) > PrefixLen {
		z = z[:PrefixLen]
	}
	return z
}

// ParseAmenities splits a comma-separated amenity list into lower-case names.
func ParseAmenities(s string) []string {
	var out []string
	for _, a := range strings.Split(s, ",") {
		if a = strings.ToLower(strings.TrimSpace(a)); a != "" {
			out = append(out, a)
		}
	}
	return out
}

// DistanceKm returns the haversine distance between two points.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	return geo.DistanceHaversine(orb.Point{lon1, lat1}, orb.Point{lon2, lat2}) / 1000
}

// Nearest returns up to MaxResults gyms closest to zipcode that offer any of
// the requested amenities. An empty amenity list matches every gym.
func (l *Locator) Nearest(ctx context.Context, zipcode, amenities string) (*Result, error) {
	lat, lon, err := l.origin(ctx, zipcode)
	if err != nil {
		return nil, err
	}

	locs, err := l.registry.Locations(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading locations: %w", err)
	}

	all := make([]Nearby, len(locs))
	for i, loc := range locs {
		all[i] = Nearby{Location: loc, DistanceKm: DistanceKm(lat, lon, loc.Latitude, loc.Longitude)}
	}
	slices.SortStableFunc(all, func(a, b Nearby) int {
		switch {
		case a.DistanceKm < b.DistanceKm:
			return -1
		case a.DistanceKm > b.DistanceKm:
			return 1
		}
		return 0
	})

	want := ParseAmenities(amenities)
	var matched []Nearby
	for _, n := range all {
		if len(want) == 0 || hasAny(ParseAmenities(n.Amenities), want) {
			matched = append(matched, n)
		}
	}

	res := &Result{Gyms: matched, AmenityMatch: len(matched) > 0}
	if !res.AmenityMatch {
		res.Gyms = all
	}
	if len(res.Gyms) > MaxResults {
		res.Gyms = res.Gyms[:MaxResults]
	}
	l.logger.Debug("nearest gyms", "prefix", Prefix(zipcode), "amenities", want,
		"matched", len(matched), "returned", len(res.Gyms))
	return res, nil
}

func (l *Locator) origin(ctx context.Context, zipcode string) (lat, lon float64, err error) {
	prefix := Prefix(zipcode)
	z, err := l.registry.Zipcode(ctx, prefix)
	if err == nil {
		return z.Latitude, z.Longitude, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return 0, 0, fmt.Errorf("looking up zip prefix %s: %w", prefix, err)
	}

	notServed := apperrors.NotFound("locator.Nearest",
		"we are not available in your location yet. We are constantly working to expand our network and will be available in your location soon!")
	if l.geocoder == nil {
		return 0, 0, notServed
	}
	loc, gerr := l.geocoder.GeocodePostalCode(ctx, zipcode)
	if gerr != nil {
		l.logger.Info("geocoding fallback failed", "zipcode", zipcode, "error", gerr)
		return 0, 0, notServed
	}
	return loc.Latitude, loc.Longitude, nil
}

func hasAny(have, want []string) bool {
	for _, w := range want {
		if slices.Contains(have, w) {
			return true
		}
	}
	return false
}
