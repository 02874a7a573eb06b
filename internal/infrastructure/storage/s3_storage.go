package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"lms-backend/internal/config"
	"lms-backend/internal/domain/user"
	"lms-backend/internal/logger"
)

var (
	ErrUnsupportedMedia = errors.New("unsupported media type")
	ErrNotConfigured    = errors.New("object storage is not configured")
)

type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Storage keeps lecture videos and avatars in an S3 compatible bucket.
type S3Storage struct {
	client  objectAPI
	bucket  string
	folder  string
	baseURL string
}

func NewS3Storage(ctx context.Context, cfg config.StorageConfig) (*S3Storage, error) {
	if cfg.Bucket == "" {
		return nil, ErrNotConfigured
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newS3Storage(client, cfg), nil
}

func newS3Storage(client objectAPI, cfg config.StorageConfig) *S3Storage {
	baseURL := cfg.PublicBaseURL
	if baseURL == "" && cfg.Endpoint != "" {
		baseURL = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	}
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}

	return &S3Storage{
		client:  client,
		bucket:  cfg.Bucket,
		folder:  cfg.Folder,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Upload sniffs the content, rejects anything that is not of the wanted kind and
// stores it under a fresh key in the configured folder.
func (s *S3Storage) Upload(ctx context.Context, kind user.MediaKind, file io.ReadSeeker) (user.Media, error) {
	mtype, err := mimetype.DetectReader(file)
	if err != nil {
		return user.Media{}, fmt.Errorf("failed to detect content type: %w", err)
	}
	if !strings.HasPrefix(mtype.String(), string(kind)+"/") {
		return user.Media{}, fmt.Errorf("%w: %s", ErrUnsupportedMedia, mtype.String())
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return user.Media{}, fmt.Errorf("failed to rewind upload: %w", err)
	}

	key := path.Join(s.folder, uuid.NewString()+mtype.Extension())
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(mtype.String()),
	})
	if err != nil {
		return user.Media{}, fmt.Errorf("failed to upload object: %w", err)
	}

	logger.Debug("Object uploaded",
		zap.String("key", key),
		zap.String("content_type", mtype.String()),
	)

	return user.Media{PublicID: key, SecureURL: s.baseURL + "/" + key}, nil
}

func (s *S3Storage) Delete(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(publicID),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// Disabled stands in for S3Storage when no bucket is configured. Every upload
// fails, so media endpoints report the file as not uploaded.
type Disabled struct{}

func (Disabled) Upload(context.Context, user.MediaKind, io.ReadSeeker) (user.Media, error) {
	return user.Media{}, ErrNotConfigured
}

func (Disabled) Delete(context.Context, string) error {
	return ErrNotConfigured
}
