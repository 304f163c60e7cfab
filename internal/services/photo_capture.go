package services

import (
	"context"
	"fmt"

	"github.com/Sasmit28/CivicApp/domain"
)

// CapturePhoto requests camera permission and captures an image. A cancelled
// capture returns an empty reference and no error.
func CapturePhoto(ctx context.Context, camera domain.Camera) (string, error) {
	granted, err := camera.RequestPermission(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to request camera permission: %w", err)
	}
	if !granted {
		return "", domain.ErrCameraPermissionDenied
	}

	ref, err := camera.Capture(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to capture photo: %w", err)
	}
	return ref, nil
}
