package blobstore

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/assetvault/internal/server/config"
)

func TestNew_Drivers(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()

	s, err := New(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &S3Store{}, s)

	cfg.BlobDriver = config.DriverMinio
	s, err = New(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &MinioStore{}, s)
}

func TestNew_UnknownDriver(t *testing.T) {
	_, err := New(context.Background(), &config.Config{BlobDriver: "gcs"})
	assert.ErrorContains(t, err, `unknown blob driver "gcs"`)
}

func TestNew_ConstructorErrorReturnsNilInterface(t *testing.T) {
	orig := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = orig })
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("boom")
	}

	cfg := &config.Config{}
	cfg.LoadDefaults()
	s, err := New(context.Background(), cfg)
	require.Error(t, err)
	assert.True(t, s == nil, "store must be a nil interface, got %#v", s)

	cfg.BlobDriver = config.DriverMinio
	cfg.S3BaseEndpoint = "minio:9000/not-a-host"
	s, err = New(context.Background(), cfg)
	require.Error(t, err)
	assert.True(t, s == nil, "store must be a nil interface, got %#v", s)
}
