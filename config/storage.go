package config

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config holds S3 client and bucket info. A positive PresignTTL means the
// bucket is private and objects are read through presigned URLs.
type S3Config struct {
	Client     *s3.Client
	BucketName string
	PresignTTL time.Duration
}

// NewS3Config initializes the S3 client for the configured bucket and region
func NewS3Config(ctx context.Context, cfg *Config) (*S3Config, error) {
	// Load AWS config from environment or shared config
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.S3Region),
	)
	if err != nil {
		return nil, err
	}

	return &S3Config{
		Client:     s3.NewFromConfig(awsCfg),
		BucketName: cfg.S3Bucket,
		PresignTTL: cfg.S3PresignTTL,
	}, nil
}

// PublicURL returns the unsigned object URL for a key.
func (s *S3Config) PublicURL(objectKey string) string {
	return "https://" + s.BucketName + ".s3.amazonaws.com/" + objectKey
}

// PresignedURL returns a GET URL for objectKey valid for PresignTTL.
func (s *S3Config) PresignedURL(ctx context.Context, objectKey string) (string, error) {
	presignClient := s3.NewPresignClient(s.Client)
	presigned, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.BucketName),
		Key:    aws.String(objectKey),
	}, s3.WithPresignExpires(s.PresignTTL))
	if err != nil {
		return "", err
	}
	return presigned.URL, nil
}
