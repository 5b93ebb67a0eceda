package cloudinary

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	apperrors "github.com/openlore/lorebase/pkg/errors"
)

// Service handles attachment storage on Cloudinary
type Service struct {
	cld          *cloudinary.Cloudinary
	uploadFolder string
}

// UploadResult contains the result of a successful upload
type UploadResult struct {
	URL      string
	PublicID string
	FileSize int64
	Format   string
}

// Attachment validation constants
var (
	AllowedAttachmentTypes = []string{".txt", ".md", ".json", ".html", ".pdf", ".png", ".jpg", ".jpeg"}

	MaxAttachmentSize = int64(25 * 1024 * 1024) // 25MB
)

// NewService creates a new Cloudinary service instance
func NewService(cloudName, apiKey, apiSecret, uploadFolder string) (*Service, error) {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, errors.New("cloudinary credentials are required")
	}

	cloudinaryURL := fmt.Sprintf("cloudinary://%s:%s@%s", apiKey, apiSecret, cloudName)

	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary client: %w", err)
	}

	if uploadFolder == "" {
		uploadFolder = "lorebase"
	}

	return &Service{
		cld:          cld,
		uploadFolder: uploadFolder,
	}, nil
}

// ValidateAttachment checks extension and size before uploading
func ValidateAttachment(header *multipart.FileHeader) error {
	ext := strings.ToLower(filepath.Ext(header.Filename))

	allowed := false
	for _, t := range AllowedAttachmentTypes {
		if ext == t {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("%w: file type %s is not allowed", apperrors.ErrValidation, ext)
	}

	if header.Size > MaxAttachmentSize {
		return fmt.Errorf("%w: file exceeds the %dMB limit", apperrors.ErrValidation, MaxAttachmentSize/(1024*1024))
	}

	return nil
}

// Upload stores an attachment and returns its public URL
func (s *Service) Upload(ctx context.Context, file multipart.File, filename string) (*UploadResult, error) {
	result, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:           s.uploadFolder,
		ResourceType:     "raw",
		FilenameOverride: filename,
	})
	if err != nil {
		return nil, fmt.Errorf("upload failed: %w", err)
	}

	return &UploadResult{
		URL:      result.SecureURL,
		PublicID: result.PublicID,
		FileSize: int64(result.Bytes),
		Format:   result.Format,
	}, nil
}

// Delete removes an attachment from storage
func (s *Service) Delete(ctx context.Context, publicID string) error {
	_, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: "raw",
	})
	return err
}
