// Package storage provides S3-compatible object storage for photo originals
// and thumbnails. Works with AWS S3, MinIO, and other S3-compatible services.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/framehaus/framehaus/internal/config"
)

// UploadURLExpiry is how long a presigned upload URL stays valid.
const UploadURLExpiry = 15 * time.Minute

// Client wraps an S3 client scoped to the platform bucket.
type Client struct {
	s3       *s3.Client
	presign  *s3.PresignClient
	bucket   string
	logger   zerolog.Logger
}

// New creates a storage client from the given configuration.
func New(ctx context.Context, cfg config.S3Config, logger zerolog.Logger) (*Client, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	clientOpts := []func(*s3.Options){}
	if cfg.Endpoint != "" {
		// Custom endpoint (MinIO, Wasabi, etc.)
		scheme := "https"
		if !cfg.UseSSL {
			scheme = "http"
		}
		endpoint := fmt.Sprintf("%s://%s", scheme, cfg.Endpoint)
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		})
	}

	client := s3.NewFromConfig(awsCfg, clientOpts...)

	c := &Client{
		s3:      client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
		logger:  logger.With().Str("component", "storage").Logger(),
	}

	c.logger.Info().Str("bucket", cfg.Bucket).Str("endpoint", cfg.Endpoint).Msg("object storage client initialized")
	return c, nil
}

// PhotoKey builds the object key for a photo original.
func PhotoKey(brandID, photoID uuid.UUID, ext string) string {
	return fmt.Sprintf("brands/%s/photos/%s%s", brandID, photoID, ext)
}

// ThumbKey builds the object key for a photo thumbnail.
func ThumbKey(brandID, photoID uuid.UUID) string {
	return fmt.Sprintf("brands/%s/thumbs/%s.jpg", brandID, photoID)
}

// PresignUpload returns a presigned PUT URL for a direct browser upload.
func (c *Client) PresignUpload(ctx context.Context, key, contentType string) (string, error) {
	req, err := c.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(UploadURLExpiry))
	if err != nil {
		return "", fmt.Errorf("presign upload for %s: %w", key, err)
	}
	return req.URL, nil
}

// Download fetches an object's contents.
func (c *Client) Download(ctx context.Context, key string) ([]byte, error) {
	out, err := c.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get object %s: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read object %s: %w", key, err)
	}
	return data, nil
}

// Upload writes an object.
func (c *Client) Upload(ctx context.Context, key, contentType string, data []byte) error {
	_, err := c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}
	return nil
}

// Delete removes an object. Missing objects are not an error.
func (c *Client) Delete(ctx context.Context, key string) error {
	_, err := c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}
