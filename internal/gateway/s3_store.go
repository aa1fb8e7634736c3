package gateway

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	appconfig "cricket-hub/internal/config"
	"cricket-hub/pkg/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// objectPutter is the subset of *s3.Client used for uploads
type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3FileStore uploads through Supabase Storage's S3-compatible endpoint
// (or any other S3 API) and returns the bucket's public URL.
type S3FileStore struct {
	client        objectPutter
	publicBaseURL string
	logger        *logger.Logger
}

// NewS3FileStore builds an S3 client from the storage settings
func NewS3FileStore(ctx context.Context, cfg *appconfig.Config, logger *logger.Logger) (*S3FileStore, error) {
	endpoint := cfg.StorageS3Endpoint
	if endpoint == "" {
		endpoint = cfg.SupabaseURL + "/storage/v1/s3"
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.StorageS3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.StorageS3AccessKey, cfg.StorageS3SecretKey, "",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load storage config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	publicBase := cfg.StoragePublicURL
	if publicBase == "" {
		publicBase = cfg.SupabaseURL
	}

	logger.WithField("endpoint", endpoint).Info("S3 storage client initialized")
	return newS3FileStore(client, publicBase, logger), nil
}

func newS3FileStore(client objectPutter, publicBaseURL string, logger *logger.Logger) *S3FileStore {
	return &S3FileStore{
		client:        client,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		logger:        logger,
	}
}

// UploadFile implements FileStore
func (s *S3FileStore) UploadFile(ctx context.Context, bucket, path, contentType string, data []byte) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	key := strings.TrimLeft(path, "/")

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s/%s: %w", bucket, key, err)
	}

	s.logger.WithFields(map[string]interface{}{
		"bucket": bucket,
		"key":    key,
		"bytes":  len(data),
	}).Debug("Uploaded object")

	return PublicObjectURL(s.publicBaseURL, bucket, key), nil
}
