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
)

// S3ImageStore uploads post images to an S3 bucket and hands back public URLs.
type S3ImageStore struct {
	client        *s3.Client
	bucket        string
	region        string
	publicBaseURL string
}

// NewS3ImageStore builds an uploader for the given bucket. endpoint is
// optional and only set for S3-compatible stores (MinIO, localstack);
// publicBaseURL overrides the default bucket URL when objects are served
// through a CDN.
func NewS3ImageStore(ctx context.Context, region, bucket, endpoint, publicBaseURL string) (*S3ImageStore, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3ImageStore{
		client:        client,
		bucket:        bucket,
		region:        region,
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
	}, nil
}

// Upload stores the image under a generated key (unique suffix plus the
// original extension) and returns its public URL.
func (s *S3ImageStore) Upload(ctx context.Context, filename string, reader io.Reader, contentType string) (string, error) {
	key := fmt.Sprintf("uploads/%s%s", uuid.New().String(), path.Ext(filename))

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        reader,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("s3 put object: %w", err)
	}

	if s.publicBaseURL != "" {
		return fmt.Sprintf("%s/%s", s.publicBaseURL, key), nil
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key), nil
}
