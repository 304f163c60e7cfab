package photos

import (
	"context"
	"fmt"
	"io"

	"github.com/Sasmit28/CivicApp/domain"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryStore implements domain.PhotoStore on Cloudinary
type CloudinaryStore struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinaryStore creates a store uploading into folder
func NewCloudinaryStore(cloudName, apiKey, apiSecret, folder string) (*CloudinaryStore, error) {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, fmt.Errorf("cloudinary credentials not set in configuration")
	}
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}
	return &CloudinaryStore{cld: cld, folder: folder}, nil
}

// Upload implements domain.PhotoStore and returns the asset's public id
func (s *CloudinaryStore) Upload(ctx context.Context, name string, r io.Reader) (string, error) {
	params := uploader.UploadParams{
		Folder:   s.folder,
		PublicID: name,
	}
	result, err := s.cld.Upload.Upload(ctx, r, params)
	if err != nil {
		return "", fmt.Errorf("failed to upload photo: %w", err)
	}
	if result.PublicID == "" {
		return "", fmt.Errorf("no public ID returned")
	}
	return result.PublicID, nil
}

var _ domain.PhotoStore = (*CloudinaryStore)(nil)
