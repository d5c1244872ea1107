package blobstore

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/assetvault/internal/server/models"
)

type fakeS3 struct {
	s3API

	objects map[string][]byte
	puts    []*s3.PutObjectInput

	putErr    error
	headErr   error
	deleteErr error
	listErr   error
	bucketErr error
	created   bool
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}}
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.puts = append(f.puts, in)
	f.objects[aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) HeadObject(ctx context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if f.headErr != nil {
		return nil, f.headErr
	}
	if _, ok := f.objects[aws.ToString(in.Key)]; !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := &s3.ListObjectsV2Output{}
	for k := range f.objects {
		if strings.HasPrefix(k, aws.ToString(in.Prefix)) {
			out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
		}
	}
	return out, nil
}

func (f *fakeS3) HeadBucket(ctx context.Context, in *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	if f.bucketErr != nil {
		return nil, f.bucketErr
	}
	return &s3.HeadBucketOutput{}, nil
}

func (f *fakeS3) CreateBucket(ctx context.Context, in *s3.CreateBucketInput, _ ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	f.created = true
	return &s3.CreateBucketOutput{}, nil
}

func newTestS3Store(client s3API) *S3Store {
	return newS3Store(client, S3Options{Bucket: "assets", BaseEndpoint: "http://127.0.0.1:9000/"})
}

func TestNewS3Store_LoadConfigError(t *testing.T) {
	orig := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = orig })

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*config.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("boom")
	}

	_, err := NewS3Store(context.Background(), S3Options{Bucket: "assets"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load aws config")
}

func TestNewS3Store_PublicBaseURL(t *testing.T) {
	s := newS3Store(newFakeS3(), S3Options{Bucket: "assets", BaseEndpoint: "http://minio:9000"})
	assert.Equal(t, "http://minio:9000/assets", s.baseURL)

	s = newS3Store(newFakeS3(), S3Options{Bucket: "assets", PublicBaseURL: "https://cdn.example.com"})
	assert.Equal(t, "https://cdn.example.com", s.baseURL)
}

func TestS3Store_Upload(t *testing.T) {
	fake := newFakeS3()
	s := newTestS3Store(fake)
	p := writeTemp(t, "photo.png", pngHeader)

	got, err := s.Upload(context.Background(), p, Folder("a@b.c"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(got.PublicID, "users/a@b.c/"))
	assert.Equal(t, ".png", filepath.Ext(got.PublicID))
	assert.Equal(t, models.ResourceImage, got.ResourceType)
	assert.Equal(t, "http://127.0.0.1:9000/assets/"+got.PublicID, got.URL)
	assert.Equal(t, pngHeader, fake.objects[got.PublicID])

	require.Len(t, fake.puts, 1)
	assert.Equal(t, "no-cache", aws.ToString(fake.puts[0].CacheControl))
	assert.Equal(t, "image/png", aws.ToString(fake.puts[0].ContentType))
	assert.Equal(t, int64(len(pngHeader)), aws.ToInt64(fake.puts[0].ContentLength))
}

func TestS3Store_Upload_PutError(t *testing.T) {
	fake := newFakeS3()
	fake.putErr = errors.New("network down")
	s := newTestS3Store(fake)

	_, err := s.Upload(context.Background(), writeTemp(t, "a.txt", []byte("hello")), "users/x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "network down")
}

func TestS3Store_Upload_MissingFile(t *testing.T) {
	s := newTestS3Store(newFakeS3())
	_, err := s.Upload(context.Background(), filepath.Join(t.TempDir(), "gone"), "users/x")
	require.Error(t, err)
}

func TestS3Store_Delete(t *testing.T) {
	fake := newFakeS3()
	fake.objects["users/x/1.png"] = []byte("x")
	s := newTestS3Store(fake)

	res, err := s.Delete(context.Background(), "users/x/1.png")
	require.NoError(t, err)
	assert.Equal(t, &DeleteResult{OK: true, Result: ResultOK}, res)
	assert.NotContains(t, fake.objects, "users/x/1.png")

	res, err = s.Delete(context.Background(), "users/x/1.png")
	require.NoError(t, err)
	assert.Equal(t, &DeleteResult{OK: false, Result: ResultNotFound}, res)
}

func TestS3Store_Delete_Errors(t *testing.T) {
	s := newTestS3Store(newFakeS3())
	_, err := s.Delete(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyPublicID)

	fake := newFakeS3()
	fake.headErr = errors.New("timeout")
	_, err = newTestS3Store(fake).Delete(context.Background(), "k")
	assert.ErrorContains(t, err, "timeout")

	fake = newFakeS3()
	fake.objects["k"] = nil
	fake.deleteErr = errors.New("denied")
	_, err = newTestS3Store(fake).Delete(context.Background(), "k")
	assert.ErrorContains(t, err, "denied")
}

func TestS3Store_DeleteFolder(t *testing.T) {
	fake := newFakeS3()
	fake.objects["users/x/"] = nil
	s := newTestS3Store(fake)

	require.NoError(t, s.DeleteFolder(context.Background(), "users/x"))
	assert.Empty(t, fake.objects)
}

func TestS3Store_DeleteFolder_NotEmpty(t *testing.T) {
	fake := newFakeS3()
	fake.objects["users/x/1.png"] = nil
	s := newTestS3Store(fake)

	err := s.DeleteFolder(context.Background(), "users/x")
	assert.ErrorIs(t, err, ErrFolderNotEmpty)
	assert.Contains(t, fake.objects, "users/x/1.png")
}

func TestS3Store_DeleteFolder_ListError(t *testing.T) {
	fake := newFakeS3()
	fake.listErr = errors.New("list failed")
	err := newTestS3Store(fake).DeleteFolder(context.Background(), "users/x")
	assert.ErrorContains(t, err, "list failed")
}

func TestS3Store_EnsureBucket(t *testing.T) {
	fake := newFakeS3()
	require.NoError(t, newTestS3Store(fake).EnsureBucket(context.Background()))
	assert.False(t, fake.created)

	fake.bucketErr = &types.NotFound{}
	require.NoError(t, newTestS3Store(fake).EnsureBucket(context.Background()))
	assert.True(t, fake.created)
}
