package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// UploadService stores milestone attachment files in Cloudinary and returns
// the opaque descriptor the ledger keeps. Retrieval of bytes is not this
// service's concern.
type UploadService struct {
	cld *cloudinary.Cloudinary
}

func NewUploadService(cloudName, apiKey, apiSecret string) (*UploadService, error) {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, fmt.Errorf("cloudinary credentials are not configured")
	}

	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}
	return &UploadService{cld: cld}, nil
}

type UploadResult struct {
	FileName  string `json:"file_name"`
	SecureURL string `json:"secure_url"`
	PublicID  string `json:"public_id"`
	Bytes     int    `json:"bytes"`
}

// UploadAttachment pushes one delivered file into the contract's folder.
func (s *UploadService) UploadAttachment(ctx context.Context, file *multipart.FileHeader, contractID uint) (*UploadResult, error) {
	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer src.Close()

	ext := filepath.Ext(file.Filename)
	publicID := fmt.Sprintf("%d_%s", time.Now().Unix(), strings.TrimSuffix(file.Filename, ext))

	result, err := s.cld.Upload.Upload(ctx, src, uploader.UploadParams{
		Folder:       fmt.Sprintf("contracts/%d", contractID),
		PublicID:     publicID,
		ResourceType: "auto",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to cloudinary: %w", err)
	}

	return &UploadResult{
		FileName:  file.Filename,
		SecureURL: result.SecureURL,
		PublicID:  result.PublicID,
		Bytes:     result.Bytes,
	}, nil
}

// DeleteAttachment removes an uploaded file, used when a submission is
// rejected by validation after its files were already uploaded.
func (s *UploadService) DeleteAttachment(ctx context.Context, publicID string) error {
	_, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("failed to delete file from cloudinary: %w", err)
	}
	return nil
}
