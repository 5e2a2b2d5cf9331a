package cloudinary

import (
	"context"
	"fmt"
	"mime/multipart"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/giveme-app/giveme-api/internal/config"
)

// CloudinaryService uploads and removes item photos
type CloudinaryService struct {
	cld          *cloudinary.Cloudinary
	uploadFolder string
}

// NewCloudinaryService creates a new CloudinaryService instance
func NewCloudinaryService(cfg *config.Config) (*CloudinaryService, error) {
	cld, err := cloudinary.NewFromParams(
		cfg.CloudinaryConfig.CloudName,
		cfg.CloudinaryConfig.APIKey,
		cfg.CloudinaryConfig.APISecret,
	)
	if err != nil {
		return nil, fmt.Errorf("initializing cloudinary: %w", err)
	}

	return &CloudinaryService{
		cld:          cld,
		uploadFolder: cfg.CloudinaryConfig.UploadFolder,
	}, nil
}

// UploadPhoto stores one multipart photo and returns its URL and public ID
func (s *CloudinaryService) UploadPhoto(ctx context.Context, fileHeader *multipart.FileHeader) (string, string, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return "", "", fmt.Errorf("opening uploaded file: %w", err)
	}
	defer file.Close()

	resp, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder: s.uploadFolder,
	})
	if err != nil {
		return "", "", fmt.Errorf("uploading photo: %w", err)
	}

	return resp.SecureURL, resp.PublicID, nil
}

// DeletePhoto removes a stored photo by its public ID
func (s *CloudinaryService) DeletePhoto(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}

	_, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("destroying photo %s: %w", publicID, err)
	}

	return nil
}
