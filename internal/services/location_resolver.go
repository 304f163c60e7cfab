package services

import (
	"context"
	"errors"
	"strings"

	"github.com/Sasmit28/CivicApp/domain"
	"go.uber.org/zap"
)

// UnknownLocation is the address used when reverse geocoding yields nothing
const UnknownLocation = "Unknown location"

// LocationResolver turns a device fix into a ResolvedLocation
type LocationResolver struct {
	geocoder domain.ReverseGeocoder
	logger   *zap.Logger
}

// NewLocationResolver creates a resolver; geocoder may be nil
func NewLocationResolver(geocoder domain.ReverseGeocoder, logger *zap.Logger) *LocationResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocationResolver{geocoder: geocoder, logger: logger}
}

// ResolveCurrentLocation asks the device for permission and a fix, then
// reverse-geocodes it. Geocoding problems only degrade the address.
func (r *LocationResolver) ResolveCurrentLocation(ctx context.Context, device domain.Geolocator) (*domain.ResolvedLocation, error) {
	granted, err := device.RequestPermission(ctx)
	if err != nil {
		return nil, &domain.LocationError{Err: domain.ErrLocationUnavailable, Cause: err}
	}
	if !granted {
		return nil, &domain.LocationError{Err: domain.ErrLocationPermissionDenied}
	}

	fix, err := device.CurrentFix(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrLocationPermissionDenied) {
			return nil, &domain.LocationError{Err: domain.ErrLocationPermissionDenied, Cause: err}
		}
		return nil, &domain.LocationError{Err: domain.ErrLocationUnavailable, Cause: err}
	}

	loc := &domain.ResolvedLocation{
		Coordinates: fix.Rounded(),
		Address:     UnknownLocation,
	}
	if r.geocoder == nil {
		return loc, nil
	}

	places, err := r.geocoder.Resolve(ctx, fix)
	if err != nil {
		r.logger.Warn("reverse geocoding failed",
			zap.Float64("latitude", fix.Latitude),
			zap.Float64("longitude", fix.Longitude),
			zap.Error(err))
		return loc, nil
	}
	if len(places) > 0 {
		if addr := ComposeAddress(places[0]); addr != "" {
			loc.Address = addr
		}
	}
	return loc, nil
}

// ComposeAddress renders "name street, city, region", dropping empty parts
func ComposeAddress(p domain.Placemark) string {
	head := strings.TrimSpace(strings.Join(nonEmpty(p.Name, p.Street), " "))
	return strings.Join(nonEmpty(head, strings.TrimSpace(p.City), strings.TrimSpace(p.Region)), ", ")
}

func nonEmpty(parts ...string) []string {
	out := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
