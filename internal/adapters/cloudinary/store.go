// Package cloudinary implements domain.ImageStore on top of the Cloudinary
// upload API.
package cloudinary

import (
	"bytes"
	"context"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"eventflow/internal/domain"
)

// Config holds Cloudinary credentials.
type Config struct {
	CloudName string
	APIKey    string
	APISecret string
}

type imageStore struct {
	client *cloudinary.Cloudinary
}

// NewImageStore creates an ImageStore backed by Cloudinary.
func NewImageStore(cfg Config) (domain.ImageStore, error) {
	client, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary init: %w", err)
	}
	return &imageStore{client: client}, nil
}

func (s *imageStore) Upload(ctx context.Context, data []byte, folder string) (string, error) {
	resp, err := s.client.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		Folder:       folder,
		ResourceType: "image",
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload: %s", resp.Error.Message)
	}
	return resp.SecureURL, nil
}
