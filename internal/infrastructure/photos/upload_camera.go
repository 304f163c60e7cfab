package photos

import (
	"context"
	"io"

	"github.com/Sasmit28/CivicApp/domain"
	"github.com/google/uuid"
)

// UploadCamera adapts a client-side capture to domain.Camera. The client
// reports whether it was granted camera access and sends the image it took,
// or nothing when the user backed out.
type UploadCamera struct {
	store   domain.PhotoStore
	granted bool
	image   io.Reader
}

// NewUploadCamera wraps one capture attempt; image is nil on cancel
func NewUploadCamera(store domain.PhotoStore, granted bool, image io.Reader) *UploadCamera {
	return &UploadCamera{store: store, granted: granted, image: image}
}

// RequestPermission implements domain.Camera
func (c *UploadCamera) RequestPermission(ctx context.Context) (bool, error) {
	return c.granted, nil
}

// Capture implements domain.Camera
func (c *UploadCamera) Capture(ctx context.Context) (string, error) {
	if c.image == nil {
		return "", nil
	}
	return c.store.Upload(ctx, uuid.NewString(), c.image)
}

var _ domain.Camera = (*UploadCamera)(nil)
