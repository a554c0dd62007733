package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	aws_config "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/m-zohaibk/AQUABILL/internal/config"
	"github.com/m-zohaibk/AQUABILL/internal/utils"
)

// IArchiveStorage defines the interface for archiving exported documents.
type IArchiveStorage interface {
	UploadStatement(ctx context.Context, customerID utils.SixID, pdf []byte) (string, error)
}

// s3Storage implements IArchiveStorage against an S3 bucket.
type s3Storage struct {
	cfg      *config.Config
	s3Client *s3.Client
}

// NewS3Storage creates a new S3 archive storage service.
func NewS3Storage(cfg *config.Config) (IArchiveStorage, error) {
	awsCfg, err := aws_config.LoadDefaultConfig(context.TODO(),
		aws_config.WithRegion(cfg.AwsRegion),
		// Static credentials from config for simplicity; prefer IAM roles in
		// production deployments.
		aws_config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AwsAccessKeyID,
			cfg.AwsSecretAccessKey,
			"", // session token
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &s3Storage{
		cfg:      cfg,
		s3Client: s3.NewFromConfig(awsCfg),
	}, nil
}

// UploadStatement stores a rendered statement PDF and returns its object key.
func (s *s3Storage) UploadStatement(ctx context.Context, customerID utils.SixID, pdf []byte) (string, error) {
	objectKey := fmt.Sprintf("statements/%s/%s_%s.pdf",
		customerID.String(),
		time.Now().UTC().Format("2006-01-02"),
		uuid.NewString(),
	)

	_, err := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.AwsS3Bucket),
		Key:         aws.String(objectKey),
		Body:        bytes.NewReader(pdf),
		ContentType: aws.String("application/pdf"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload statement %s: %w", objectKey, err)
	}

	return objectKey, nil
}
