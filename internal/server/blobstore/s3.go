package blobstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/dmitrijs2005/assetvault/internal/server/models"
)

// s3API is the subset of *s3.Client used by S3Store.
type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, in *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
}

var loadDefaultAWSConfig = config.LoadDefaultConfig

// S3Options configures NewS3Store.
type S3Options struct {
	AccessKey     string
	SecretKey     string
	Region        string
	BaseEndpoint  string
	Bucket        string
	PublicBaseURL string
}

// S3Store keeps blobs in one S3-compatible bucket.
type S3Store struct {
	client  s3API
	bucket  string
	baseURL string
}

// NewS3Store builds an S3 client from static credentials. Path-style
// addressing is used so MinIO endpoints work unchanged.
func NewS3Store(ctx context.Context, o S3Options) (*S3Store, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(o.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(o.AccessKey, o.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(so *s3.Options) {
		if o.BaseEndpoint != "" {
			so.BaseEndpoint = aws.String(o.BaseEndpoint)
		}
		so.UsePathStyle = true
	})

	return newS3Store(client, o), nil
}

func newS3Store(client s3API, o S3Options) *S3Store {
	base := o.PublicBaseURL
	if base == "" {
		base = strings.TrimSuffix(o.BaseEndpoint, "/") + "/" + o.Bucket
	}
	return &S3Store{client: client, bucket: o.Bucket, baseURL: base}
}

// EnsureBucket creates the bucket when it does not exist yet.
func (s *S3Store) EnsureBucket(ctx context.Context) error {
	if _, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)}); err == nil {
		return nil
	}
	if _, err := s.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(s.bucket)}); err != nil {
		return fmt.Errorf("create bucket %s: %w", s.bucket, err)
	}
	return nil
}

func (s *S3Store) Upload(ctx context.Context, localPath, folder string) (*models.StoredFile, error) {
	f, size, contentType, err := openUpload(localPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	key := newPublicID(folder, localPath)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
		CacheControl:  aws.String(cacheControl),
	})
	if err != nil {
		return nil, fmt.Errorf("put object %s: %w", key, err)
	}

	return &models.StoredFile{
		PublicID:     key,
		URL:          publicURL(s.baseURL, key),
		ResourceType: ResourceKind(contentType),
	}, nil
}

// Delete checks the object exists before removing it, because S3 reports
// success for deletes of missing keys.
func (s *S3Store) Delete(ctx context.Context, publicID string) (*DeleteResult, error) {
	if publicID == "" {
		return nil, ErrEmptyPublicID
	}
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(publicID),
	})
	if err != nil {
		if isS3NotFound(err) {
			return &DeleteResult{OK: false, Result: ResultNotFound}, nil
		}
		return nil, fmt.Errorf("head object %s: %w", publicID, err)
	}

	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(publicID),
	}); err != nil {
		return nil, fmt.Errorf("delete object %s: %w", publicID, err)
	}
	return &DeleteResult{OK: true, Result: ResultOK}, nil
}

// DeleteFolder removes the folder marker once no objects remain under it.
func (s *S3Store) DeleteFolder(ctx context.Context, folder string) error {
	prefix := folderPrefix(folder)
	out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(s.bucket),
		Prefix:  aws.String(prefix),
		MaxKeys: aws.Int32(2),
	})
	if err != nil {
		return fmt.Errorf("list folder %s: %w", folder, err)
	}
	for _, obj := range out.Contents {
		if aws.ToString(obj.Key) != prefix {
			return fmt.Errorf("delete folder %s: %w", folder, ErrFolderNotEmpty)
		}
	}

	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(prefix),
	}); err != nil {
		return fmt.Errorf("delete folder %s: %w", folder, err)
	}
	return nil
}

func isS3NotFound(err error) bool {
	var nf *types.NotFound
	var nsk *types.NoSuchKey
	return errors.As(err, &nf) || errors.As(err, &nsk)
}
