package exportstore_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/trafficmon/pkg/exportstore"
)

type mockS3Client struct {
	mock.Mock
}

func (m *mockS3Client) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.PutObjectOutput), args.Error(1)
}

func (m *mockS3Client) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.GetObjectOutput), args.Error(1)
}

func (m *mockS3Client) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.ListObjectsV2Output), args.Error(1)
}

func (m *mockS3Client) DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.DeleteObjectsOutput), args.Error(1)
}

func newS3(t *testing.T, client *mockS3Client, cfg exportstore.S3Config) *exportstore.S3 {
	t.Helper()
	if cfg.Bucket == "" {
		cfg.Bucket = "logs"
	}
	if cfg.Region == "" {
		cfg.Region = "eu-west-1"
	}
	store, err := exportstore.NewS3(context.Background(), cfg, exportstore.WithS3Client(client))
	require.NoError(t, err)
	return store
}

func TestS3Put(t *testing.T) {
	t.Parallel()

	client := new(mockS3Client)
	client.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		return aws.ToString(in.Bucket) == "logs" &&
			aws.ToString(in.Key) == "exports/traffic-log-a.csv" &&
			aws.ToString(in.ContentType) == "text/csv"
	})).Return(&s3.PutObjectOutput{}, nil)

	store := newS3(t, client, exportstore.S3Config{Prefix: "/exports"})
	url, err := store.Put(context.Background(), "traffic-log-a.csv", strings.NewReader("id\n"))
	require.NoError(t, err)
	assert.Equal(t, "https://logs.s3.eu-west-1.amazonaws.com/exports/traffic-log-a.csv", url)
	client.AssertExpectations(t)
}

func TestS3URLWithEndpoint(t *testing.T) {
	t.Parallel()

	store := newS3(t, new(mockS3Client), exportstore.S3Config{Endpoint: "http://minio:9000/", ForcePathStyle: true})
	assert.Equal(t, "http://minio:9000/logs/a.csv", store.URL("a.csv"))

	store = newS3(t, new(mockS3Client), exportstore.S3Config{BaseURL: "https://cdn.example.com", Prefix: "x/"})
	assert.Equal(t, "https://cdn.example.com/x/a.csv", store.URL("a.csv"))
}

func TestS3OpenClassifiesErrors(t *testing.T) {
	t.Parallel()

	client := new(mockS3Client)
	client.On("GetObject", mock.Anything, mock.MatchedBy(func(in *s3.GetObjectInput) bool {
		return aws.ToString(in.Key) == "missing.csv"
	})).Return(nil, &types.NoSuchKey{})
	client.On("GetObject", mock.Anything, mock.MatchedBy(func(in *s3.GetObjectInput) bool {
		return aws.ToString(in.Key) == "denied.csv"
	})).Return(nil, &smithy.GenericAPIError{Code: "AccessDenied"})
	client.On("GetObject", mock.Anything, mock.MatchedBy(func(in *s3.GetObjectInput) bool {
		return aws.ToString(in.Key) == "ok.csv"
	})).Return(&s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader("id\n"))}, nil)

	store := newS3(t, client, exportstore.S3Config{})
	ctx := context.Background()

	_, err := store.Open(ctx, "missing.csv")
	require.ErrorIs(t, err, exportstore.ErrNotFound)

	_, err = store.Open(ctx, "denied.csv")
	require.ErrorIs(t, err, exportstore.ErrAccessDenied)
	require.ErrorIs(t, err, exportstore.ErrRead)

	rc, err := store.Open(ctx, "ok.csv")
	require.NoError(t, err)
	body, _ := io.ReadAll(rc)
	assert.Equal(t, "id\n", string(body))
}

func TestS3DeletePrefix(t *testing.T) {
	t.Parallel()

	client := new(mockS3Client)
	client.On("ListObjectsV2", mock.Anything, mock.MatchedBy(func(in *s3.ListObjectsV2Input) bool {
		return in.ContinuationToken == nil && aws.ToString(in.Prefix) == "exports/traffic-log-"
	})).Return(&s3.ListObjectsV2Output{
		Contents:              []types.Object{{Key: aws.String("exports/traffic-log-a.csv")}},
		IsTruncated:           aws.Bool(true),
		NextContinuationToken: aws.String("next"),
	}, nil)
	client.On("ListObjectsV2", mock.Anything, mock.MatchedBy(func(in *s3.ListObjectsV2Input) bool {
		return aws.ToString(in.ContinuationToken) == "next"
	})).Return(&s3.ListObjectsV2Output{
		Contents:    []types.Object{{Key: aws.String("exports/traffic-log-b.csv")}},
		IsTruncated: aws.Bool(false),
	}, nil)
	client.On("DeleteObjects", mock.Anything, mock.MatchedBy(func(in *s3.DeleteObjectsInput) bool {
		return len(in.Delete.Objects) == 2
	})).Return(&s3.DeleteObjectsOutput{}, nil)

	store := newS3(t, client, exportstore.S3Config{Prefix: "exports"})
	n, err := store.DeletePrefix(context.Background(), "traffic-log-")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	client.AssertExpectations(t)
}

func TestS3DeletePrefixListFailure(t *testing.T) {
	t.Parallel()

	client := new(mockS3Client)
	client.On("ListObjectsV2", mock.Anything, mock.Anything).
		Return(nil, &smithy.GenericAPIError{Code: "SlowDown"})

	store := newS3(t, client, exportstore.S3Config{})
	_, err := store.DeletePrefix(context.Background(), "traffic-log-")
	require.ErrorIs(t, err, exportstore.ErrDelete)
	require.ErrorIs(t, err, exportstore.ErrServiceUnavailable)
	assert.False(t, errors.Is(err, exportstore.ErrNotFound))
}
