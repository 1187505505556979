package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Store stores media files in an S3 bucket, one key prefix per usage
// area. A custom endpoint enables S3-compatible providers.
type S3Store struct {
	client   *s3.Client
	bucket   string
	region   string
	endpoint string
}

// NewS3Store creates an S3-backed file store
func NewS3Store(ctx context.Context, region, bucket, accessKey, secretKey, endpoint string) (*S3Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Store{
		client:   client,
		bucket:   bucket,
		region:   region,
		endpoint: endpoint,
	}, nil
}

// Save uploads a file to the bucket
func (s *S3Store) Save(ctx context.Context, folder, filename string, r io.Reader) error {
	contentType := mime.TypeByExtension(filepath.Ext(filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(folder + "/" + filename),
		Body:        r,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload media file: %w", err)
	}
	return nil
}

// Remove deletes a file from the bucket
func (s *S3Store) Remove(ctx context.Context, folder, filename string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(folder + "/" + filename),
	})
	if err != nil {
		return fmt.Errorf("failed to delete media file: %w", err)
	}
	return nil
}

// URL returns the public object URL
func (s *S3Store) URL(folder, filename string) string {
	if s.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s/%s", s.endpoint, s.bucket, folder, filename)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s/%s", s.bucket, s.region, folder, filename)
}
