// Package media stores product images with the hosted image service.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/ahmedharby13/Evouqe-Project/internal/domain"
	"github.com/ahmedharby13/Evouqe-Project/pkg/circuitbreaker"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

var ErrNotConfigured = errors.New("image store is not configured")

const folder = "products"

// uploadAPI is the part of the Cloudinary upload API used here.
type uploadAPI interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
	Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error)
}

type CloudinaryStore struct {
	api     uploadAPI
	breaker *circuitbreaker.Breaker
}

func NewCloudinaryStore(cloudName, apiKey, apiSecret string, breaker *circuitbreaker.Breaker) (*CloudinaryStore, error) {
	s := &CloudinaryStore{breaker: breaker}
	if cloudName == "" {
		return s, nil
	}

	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to init cloudinary: %w", err)
	}
	s.api = &cld.Upload
	return s, nil
}

func (s *CloudinaryStore) Upload(ctx context.Context, name string, r io.Reader) (domain.Image, error) {
	if s.api == nil {
		return domain.Image{}, ErrNotConfigured
	}

	return circuitbreaker.Execute(s.breaker, func() (domain.Image, error) {
		res, err := s.api.Upload(ctx, r, uploader.UploadParams{
			Folder:       folder,
			ResourceType: "image",
		})
		if err != nil {
			return domain.Image{}, fmt.Errorf("upload %s: %w", name, err)
		}
		if res.Error.Message != "" {
			return domain.Image{}, fmt.Errorf("upload %s: %s", name, res.Error.Message)
		}
		return domain.Image{URL: res.SecureURL, PublicID: res.PublicID}, nil
	})
}

func (s *CloudinaryStore) Delete(ctx context.Context, publicID string) error {
	if s.api == nil {
		return ErrNotConfigured
	}

	return circuitbreaker.Do(s.breaker, func() error {
		res, err := s.api.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
		if err != nil {
			return fmt.Errorf("destroy %s: %w", publicID, err)
		}
		if res.Error.Message != "" {
			return fmt.Errorf("destroy %s: %s", publicID, res.Error.Message)
		}
		return nil
	})
}
