package s3

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/vaibhavvatsbhartiya/storefront/internal/app/config"
	"github.com/vaibhavvatsbhartiya/storefront/internal/platform/logger"
)

const objectPrefix = "products"

type S3Storage struct {
	client    *minio.Client
	bucket    string
	publicURL string
	log       logger.Logger
}

func NewS3Storage(ctx context.Context, cfg config.StorageConfig, log logger.Logger) (*S3Storage, error) {
	log.Infof("Initializing S3 storage endpoint=%s bucket=%s ssl=%t", cfg.Endpoint, cfg.Bucket, cfg.UseSSL)

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client for endpoint %s: %w", cfg.Endpoint, err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to make bucket %s: %w", cfg.Bucket, err)
		}
		log.Infof("S3 bucket %s created", cfg.Bucket)
	}

	publicURL := strings.TrimRight(cfg.PublicURL, "/")
	if publicURL == "" {
		publicURL = client.EndpointURL().String()
	}

	return &S3Storage{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: publicURL,
		log:       log,
	}, nil
}

// Upload stores data under a fresh key that keeps the original extension and
// returns the object's URL.
func (s *S3Storage) Upload(ctx context.Context, originalFileName string, data []byte) (string, error) {
	objectKey := fmt.Sprintf("%s/%s%s", objectPrefix, uuid.NewString(), strings.ToLower(filepath.Ext(originalFileName)))

	info, err := s.client.PutObject(ctx, s.bucket, objectKey, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:  http.DetectContentType(data),
		UserMetadata: map[string]string{"original-filename": filepath.Base(originalFileName)},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object %s to bucket %s: %w", objectKey, s.bucket, err)
	}

	s.log.Infof("S3 upload done bucket=%s key=%s size=%d", info.Bucket, info.Key, info.Size)
	return fmt.Sprintf("%s/%s/%s", s.publicURL, s.bucket, objectKey), nil
}
