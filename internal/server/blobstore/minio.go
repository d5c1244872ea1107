package blobstore

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/dmitrijs2005/assetvault/internal/server/models"
)

// minioAPI is the subset of *minio.Client used by MinioStore.
type minioAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
}

// MinioOptions configures NewMinioStore. Endpoint is host:port without scheme.
type MinioOptions struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	UseSSL        bool
	Region        string
	Bucket        string
	PublicBaseURL string
}

// MinioStore keeps blobs in one MinIO bucket.
type MinioStore struct {
	client  minioAPI
	bucket  string
	region  string
	baseURL string
}

// NewMinioStore creates a MinIO client. A scheme in Endpoint is stripped and
// decides UseSSL when present.
func NewMinioStore(o MinioOptions) (*MinioStore, error) {
	endpoint, secure := splitEndpoint(o.Endpoint, o.UseSSL)
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(o.AccessKey, o.SecretKey, ""),
		Secure: secure,
		Region: o.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio: %w", err)
	}
	if o.PublicBaseURL == "" {
		scheme := "http"
		if secure {
			scheme = "https"
		}
		o.PublicBaseURL = scheme + "://" + endpoint + "/" + o.Bucket
	}
	return newMinioStore(client, o), nil
}

func newMinioStore(client minioAPI, o MinioOptions) *MinioStore {
	return &MinioStore{client: client, bucket: o.Bucket, region: o.Region, baseURL: o.PublicBaseURL}
}

func splitEndpoint(endpoint string, useSSL bool) (string, bool) {
	endpoint = strings.TrimSuffix(endpoint, "/")
	switch {
	case strings.HasPrefix(endpoint, "https://"):
		return strings.TrimPrefix(endpoint, "https://"), true
	case strings.HasPrefix(endpoint, "http://"):
		return strings.TrimPrefix(endpoint, "http://"), false
	default:
		return endpoint, useSSL
	}
}

// EnsureBucket makes sure the bucket exists before use.
func (s *MinioStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
			return fmt.Errorf("make bucket %s: %w", s.bucket, err)
		}
	}
	return nil
}

func (s *MinioStore) Upload(ctx context.Context, localPath, folder string) (*models.StoredFile, error) {
	f, size, contentType, err := openUpload(localPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	key := newPublicID(folder, localPath)
	opts := minio.PutObjectOptions{ContentType: contentType, CacheControl: cacheControl}
	if _, err := s.client.PutObject(ctx, s.bucket, key, f, size, opts); err != nil {
		return nil, fmt.Errorf("put object %s: %w", key, err)
	}

	return &models.StoredFile{
		PublicID:     key,
		URL:          publicURL(s.baseURL, key),
		ResourceType: ResourceKind(contentType),
	}, nil
}

func (s *MinioStore) Delete(ctx context.Context, publicID string) (*DeleteResult, error) {
	if publicID == "" {
		return nil, ErrEmptyPublicID
	}
	if _, err := s.client.StatObject(ctx, s.bucket, publicID, minio.StatObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return &DeleteResult{OK: false, Result: ResultNotFound}, nil
		}
		return nil, fmt.Errorf("stat object %s: %w", publicID, err)
	}
	if err := s.client.RemoveObject(ctx, s.bucket, publicID, minio.RemoveObjectOptions{}); err != nil {
		return nil, fmt.Errorf("remove object %s: %w", publicID, err)
	}
	return &DeleteResult{OK: true, Result: ResultOK}, nil
}

func (s *MinioStore) DeleteFolder(ctx context.Context, folder string) error {
	prefix := folderPrefix(folder)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return fmt.Errorf("list folder %s: %w", folder, obj.Err)
		}
		if obj.Key != prefix {
			return fmt.Errorf("delete folder %s: %w", folder, ErrFolderNotEmpty)
		}
	}

	if err := s.client.RemoveObject(ctx, s.bucket, prefix, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete folder %s: %w", folder, err)
	}
	return nil
}
