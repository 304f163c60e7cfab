package mocks

import (
	"context"
	"io"

	"github.com/Sasmit28/CivicApp/domain"
)

// MockGeolocator implements domain.Geolocator interface for testing
type MockGeolocator struct {
	RequestPermissionFunc func(ctx context.Context) (bool, error)
	CurrentFixFunc        func(ctx context.Context) (domain.Coordinates, error)
}

// RequestPermission grants access by default
func (m *MockGeolocator) RequestPermission(ctx context.Context) (bool, error) {
	if m.RequestPermissionFunc != nil {
		return m.RequestPermissionFunc(ctx)
	}
	return true, nil
}

// CurrentFix returns a fix in Bengaluru by default
func (m *MockGeolocator) CurrentFix(ctx context.Context) (domain.Coordinates, error) {
	if m.CurrentFixFunc != nil {
		return m.CurrentFixFunc(ctx)
	}
	return domain.Coordinates{Latitude: 12.9715987, Longitude: 77.5945627}, nil
}

// MockReverseGeocoder implements domain.ReverseGeocoder interface for testing
type MockReverseGeocoder struct {
	ResolveFunc func(ctx context.Context, at domain.Coordinates) ([]domain.Placemark, error)
}

// Resolve returns no placemarks by default
func (m *MockReverseGeocoder) Resolve(ctx context.Context, at domain.Coordinates) ([]domain.Placemark, error) {
	if m.ResolveFunc != nil {
		return m.ResolveFunc(ctx, at)
	}
	return nil, nil
}

// MockCamera implements domain.Camera interface for testing
type MockCamera struct {
	RequestPermissionFunc func(ctx context.Context) (bool, error)
	CaptureFunc           func(ctx context.Context) (string, error)
}

// RequestPermission grants access by default
func (m *MockCamera) RequestPermission(ctx context.Context) (bool, error) {
	if m.RequestPermissionFunc != nil {
		return m.RequestPermissionFunc(ctx)
	}
	return true, nil
}

// Capture returns a fixed reference by default
func (m *MockCamera) Capture(ctx context.Context) (string, error) {
	if m.CaptureFunc != nil {
		return m.CaptureFunc(ctx)
	}
	return "photo-ref", nil
}

// MockPhotoStore implements domain.PhotoStore interface for testing
type MockPhotoStore struct {
	UploadFunc func(ctx context.Context, name string, r io.Reader) (string, error)
}

// Upload drains the reader and returns "civic/<name>" by default
func (m *MockPhotoStore) Upload(ctx context.Context, name string, r io.Reader) (string, error) {
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, name, r)
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	return "civic/" + name, nil
}

// Compile-time interface compliance verification
var (
	_ domain.Geolocator      = (*MockGeolocator)(nil)
	_ domain.ReverseGeocoder = (*MockReverseGeocoder)(nil)
	_ domain.Camera          = (*MockCamera)(nil)
	_ domain.PhotoStore      = (*MockPhotoStore)(nil)
)
