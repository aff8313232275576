package utils

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/gmfsales/liffbackend/config"
)

// Archiver stores a plain-text transcript of a submission.
type Archiver interface {
	Archive(ctx context.Context, key, body string) error
}

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// R2Archiver wraps the S3 client + bucket name.
type R2Archiver struct {
	S3     objectPutter
	Bucket string
}

// NewArchiver builds an archiver for an S3 compatible endpoint such as
// https://<account-id>.r2.cloudflarestorage.com.
func NewArchiver(ctx context.Context, cfg config.ArchiveConfig) (*R2Archiver, error) {
	if cfg.Bucket == "" || cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" || cfg.Endpoint == "" {
		return nil, fmt.Errorf("missing archive settings (ARCHIVE_BUCKET, ARCHIVE_ACCESS_KEY_ID, ARCHIVE_SECRET_ACCESS_KEY, ARCHIVE_ENDPOINT)")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("archive config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true // required for R2
	})

	return &R2Archiver{S3: client, Bucket: cfg.Bucket}, nil
}

func (a *R2Archiver) Archive(ctx context.Context, key, body string) error {
	_, err := a.S3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(a.Bucket),
		Key:          aws.String(key),
		Body:         strings.NewReader(body),
		ContentType:  aws.String("text/plain; charset=utf-8"),
		CacheControl: aws.String("no-cache"),
	})
	if err != nil {
		return fmt.Errorf("archive %s: %w", key, err)
	}
	return nil
}

// ArchiveKey is inquiries/<yyyy>/<mm>/<id>.txt, partitioned by the UTC
// submission month.
func ArchiveKey(submittedAt time.Time, id string) string {
	t := submittedAt.UTC()
	return fmt.Sprintf("inquiries/%04d/%02d/%s.txt", t.Year(), int(t.Month()), id)
}
