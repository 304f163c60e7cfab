package geo

import (
	"context"

	"github.com/Sasmit28/CivicApp/domain"
)

// ClientFix implements domain.Geolocator from a fix the client already took
type ClientFix struct {
	Granted bool
	Fix     *domain.Coordinates
}

// RequestPermission implements domain.Geolocator
func (c ClientFix) RequestPermission(ctx context.Context) (bool, error) {
	return c.Granted, nil
}

// CurrentFix implements domain.Geolocator
func (c ClientFix) CurrentFix(ctx context.Context) (domain.Coordinates, error) {
	if c.Fix == nil {
		return domain.Coordinates{}, domain.ErrLocationUnavailable
	}
	if !c.Fix.InRange() {
		return domain.Coordinates{}, domain.ErrLocationUnavailable
	}
	return *c.Fix, nil
}

var _ domain.Geolocator = ClientFix{}
