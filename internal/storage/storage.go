// Package storage pushes the built dashboard tree to an S3-compatible bucket
// so it can be fronted by a static host or CDN.
package storage

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type Service struct {
	client     *s3.Client
	bucketName string
}

// NewService builds an S3 client from the environment: S3_SERVICE_URL (for
// MinIO-style endpoints), S3_ACCESS_KEY, S3_SECRET_KEY and S3_BUCKET_NAME.
func NewService(ctx context.Context) (*Service, error) {
	serviceURL := os.Getenv("S3_SERVICE_URL")
	accessKey := os.Getenv("S3_ACCESS_KEY")
	secretKey := os.Getenv("S3_SECRET_KEY")
	bucketName := os.Getenv("S3_BUCKET_NAME")
	if bucketName == "" {
		bucketName = "perfmon-dashboard"
	}

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(aws.CredentialsProviderFunc(func(ctx context.Context) (aws.Credentials, error) {
			return aws.Credentials{
				AccessKeyID:     accessKey,
				SecretAccessKey: secretKey,
			}, nil
		})),
		config.WithRegion("us-east-1"), // Region is usually required but often ignored with custom endpoints
		config.WithEndpointResolverWithOptions(aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			if serviceURL != "" {
				return aws.Endpoint{
					URL:           serviceURL,
					SigningRegion: "us-east-1",
				}, nil
			}
			return aws.Endpoint{}, &aws.EndpointNotFoundError{}
		})),
	)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})

	return &Service{
		client:     client,
		bucketName: bucketName,
	}, nil
}

// UploadFile uploads one local file under the given key.
func (s *Service) UploadFile(ctx context.Context, key, filePath string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	contentType := mime.TypeByExtension(filepath.Ext(filePath))
	return s.UploadStream(ctx, key, file, contentType)
}

// UploadStream uploads arbitrary content under the given key.
func (s *Service) UploadStream(ctx context.Context, key string, stream io.Reader, contentType string) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
		Body:   stream,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	_, err := s.client.PutObject(ctx, input)
	return err
}

// UploadDir walks dir and uploads every regular file, keyed by its path
// relative to dir under prefix. Returns the number of files uploaded.
func (s *Service) UploadDir(ctx context.Context, prefix, dir string) (int, error) {
	uploaded := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if err := s.UploadFile(ctx, prefix+filepath.ToSlash(rel), path); err != nil {
			return fmt.Errorf("upload %s: %w", rel, err)
		}
		uploaded++
		return nil
	})
	return uploaded, err
}
