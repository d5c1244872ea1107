package blobstore

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/assetvault/internal/server/config"
)

// BucketStore is a Store that can provision its bucket.
type BucketStore interface {
	Store
	EnsureBucket(ctx context.Context) error
}

// New builds the blob store selected by cfg.BlobDriver. The bucket is not
// touched; call EnsureBucket when the process owns provisioning.
func New(ctx context.Context, cfg *config.Config) (BucketStore, error) {
	switch cfg.BlobDriver {
	case config.DriverS3:
		s, err := NewS3Store(ctx, S3Options{
			AccessKey:     cfg.S3RootUser,
			SecretKey:     cfg.S3RootPassword,
			Region:        cfg.S3Region,
			BaseEndpoint:  cfg.S3BaseEndpoint,
			Bucket:        cfg.S3Bucket,
			PublicBaseURL: cfg.BlobPublicBaseURL,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverMinio:
		s, err := NewMinioStore(MinioOptions{
			Endpoint:      cfg.S3BaseEndpoint,
			AccessKey:     cfg.S3RootUser,
			SecretKey:     cfg.S3RootPassword,
			UseSSL:        cfg.S3UseSSL,
			Region:        cfg.S3Region,
			Bucket:        cfg.S3Bucket,
			PublicBaseURL: cfg.BlobPublicBaseURL,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown blob driver %q", cfg.BlobDriver)
	}
}
