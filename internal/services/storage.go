package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/google/uuid"

	"github.com/chachabrian/mooveit-parcels/internal/apperr"
	"github.com/chachabrian/mooveit-parcels/internal/config"
)

const maxImageBytes = 5 << 20

// imageExtensions maps the sniffed content types accepted for parcel images
// to the extension the stored object gets.
var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Storage saves parcel images to S3 when AWS credentials are configured and
// to the local upload directory otherwise.
type Storage struct {
	cfg      config.StorageConfig
	uploader *s3manager.Uploader
}

// NewStorage initializes either S3 or local storage based on configuration.
func NewStorage(cfg config.StorageConfig, log *slog.Logger) (*Storage, error) {
	if cfg.S3Enabled() {
		sess, err := session.NewSession(&aws.Config{
			Region: aws.String(cfg.AWSRegion),
			Credentials: credentials.NewStaticCredentials(
				cfg.AWSAccessKey,
				cfg.AWSSecretKey,
				"",
			),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create AWS session: %w", err)
		}
		log.Info("image storage: s3", "bucket", cfg.Bucket, "region", cfg.AWSRegion)
		return &Storage{cfg: cfg, uploader: s3manager.NewUploader(sess)}, nil
	}

	if err := os.MkdirAll(filepath.Join(cfg.UploadDir, "parcels"), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	log.Warn("AWS S3 not configured, using local file storage", "dir", cfg.UploadDir)
	return &Storage{cfg: cfg}, nil
}

// UsingS3 reports whether uploads go to S3.
func (s *Storage) UsingS3() bool { return s.uploader != nil }

// UploadImage stores file under folder and returns its public URL. The type
// is sniffed from the content and decides the stored extension; the client's
// filename and declared Content-Type are ignored.
func (s *Storage) UploadImage(ctx context.Context, file *multipart.FileHeader, folder string) (string, error) {
	if file.Size > maxImageBytes {
		return "", apperr.BadRequest("image must be at most %d MB", maxImageBytes>>20)
	}
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxImageBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	if len(data) > maxImageBytes {
		return "", apperr.BadRequest("image must be at most %d MB", maxImageBytes>>20)
	}
	contentType := http.DetectContentType(data)
	ext, ok := imageExtensions[contentType]
	if !ok {
		return "", apperr.BadRequest("image must be a JPEG, PNG, GIF or WebP file, got %s", contentType)
	}
	key := fmt.Sprintf("%s/%s%s", folder, uuid.NewString(), ext)

	if s.UsingS3() {
		return s.uploadToS3(ctx, key, contentType, data)
	}
	return s.uploadLocally(key, data)
}

func (s *Storage) uploadToS3(ctx context.Context, key, contentType string, data []byte) (string, error) {
	_, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.Bucket, s.cfg.AWSRegion, key), nil
}

func (s *Storage) uploadLocally(key string, data []byte) (string, error) {
	path := filepath.Join(s.cfg.UploadDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create folder directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	return fmt.Sprintf("%s/uploads/%s", s.cfg.BaseURL, key), nil
}
