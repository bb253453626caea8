package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rpupo63/builders-showcase-backend/config"
	"github.com/rs/zerolog/log"
)

// BlobStore keeps uploaded files and hands back a public URL for them.
type BlobStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
}

// ObjectPutter is the part of the S3 API the blob store needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3BlobStore struct {
	client        ObjectPutter
	bucket        string
	publicBaseURL string
}

// NewS3BlobStore builds a store from S3_BUCKET, S3_REGION, S3_ENDPOINT
// (optional, for S3 compatible providers) and S3_PUBLIC_BASE_URL.
func NewS3BlobStore(ctx context.Context, cfg map[string]string) (*S3BlobStore, error) {
	bucket := config.GetString(cfg, "S3_BUCKET", "")
	if bucket == "" {
		return nil, fmt.Errorf("S3_BUCKET is required")
	}
	region := config.GetString(cfg, "S3_REGION", "us-east-1")
	endpoint := config.GetString(cfg, "S3_ENDPOINT", "")

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	publicBaseURL := config.GetString(cfg, "S3_PUBLIC_BASE_URL", "")
	if publicBaseURL == "" {
		publicBaseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}

	return NewS3BlobStoreWithClient(client, bucket, publicBaseURL), nil
}

func NewS3BlobStoreWithClient(client ObjectPutter, bucket, publicBaseURL string) *S3BlobStore {
	return &S3BlobStore{
		client:        client,
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

func (s *S3BlobStore) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	}
	if size > 0 {
		input.ContentLength = aws.Int64(size)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}

	log.Debug().Str("bucket", s.bucket).Str("key", key).Int64("size", size).Msg("Stored object")
	return s.publicBaseURL + "/" + key, nil
}

// ObjectKey builds a collision free key under folder that keeps the
// original file extension.
func ObjectKey(folder, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return path.Join(folder, uuid.NewString()+ext)
}
