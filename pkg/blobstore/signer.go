// Package blobstore turns stored media keys into time-limited viewable URLs.
package blobstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Signer resolves a stored asset key to a URL a browser can load
type Signer interface {
	SignedURL(ctx context.Context, key string) (string, error)
}

// IsAbsoluteURL reports whether ref is already a full http(s) URL
func IsAbsoluteURL(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// S3Signer presigns GET requests against one bucket
type S3Signer struct {
	bucket  string
	ttl     time.Duration
	presign *s3.PresignClient
}

// NewS3Signer builds a signer from the default AWS credential chain. A non-empty
// endpoint targets an S3-compatible store with path-style addressing.
func NewS3Signer(ctx context.Context, bucket, region, endpoint string, ttl time.Duration) (*S3Signer, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Signer{
		bucket:  bucket,
		ttl:     ttl,
		presign: s3.NewPresignClient(client),
	}, nil
}

// SignedURL presigns key; absolute URLs are returned unchanged
func (s *S3Signer) SignedURL(ctx context.Context, key string) (string, error) {
	if key == "" || IsAbsoluteURL(key) {
		return key, nil
	}
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(strings.TrimPrefix(key, "/")),
	}, s3.WithPresignExpires(s.ttl))
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}
	return req.URL, nil
}

// Passthrough is used when no bucket is configured; keys are returned as-is
type Passthrough struct{}

// SignedURL returns key unchanged
func (Passthrough) SignedURL(_ context.Context, key string) (string, error) {
	return key, nil
}
