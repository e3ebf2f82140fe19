// Package publish uploads run artifacts to S3 or an S3-compatible store.
package publish

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// Sentinel errors for publishing.
var (
	ErrNoBucket = errors.New("s3 bucket is required")
	ErrUpload   = errors.New("upload failed")
)

// Content types of the uploaded artifacts.
const (
	ContentTypePDF = "application/pdf"
	ContentTypePNG = "image/png"
)

// Config locates the destination bucket. Empty credentials fall back to the
// default AWS chain (environment, shared config, instance role).
type Config struct {
	Bucket          string
	Prefix          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
}

// objectPutter is the subset of *s3.Client the publisher needs.
type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

var _ objectPutter = (*s3.Client)(nil)

// Publisher uploads files under a key prefix.
type Publisher struct {
	client objectPutter
	bucket string
	prefix string
	logger *zap.Logger
}

// New builds an S3 client from cfg.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (*Publisher, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, ErrNoBucket
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return newPublisher(client, cfg.Bucket, cfg.Prefix, logger), nil
}

func newPublisher(client objectPutter, bucket, prefix string, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{
		client: client,
		bucket: strings.TrimSpace(bucket),
		prefix: strings.Trim(strings.TrimSpace(prefix), "/"),
		logger: logger,
	}
}

// Key returns the object key for a local file: prefix/basename.
func (p *Publisher) Key(localPath string) string {
	name := filepath.Base(localPath)
	if p.prefix == "" {
		return name
	}
	return path.Join(p.prefix, name)
}

// Upload streams the file at localPath to its Key and returns the key.
func (p *Publisher) Upload(ctx context.Context, localPath, contentType string) (string, error) {
	f, err := os.Open(localPath) // #nosec G304 -- artifact produced by this run
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpload, err)
	}
	defer f.Close()

	key := p.Key(localPath)
	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("%w: s3://%s/%s: %v", ErrUpload, p.bucket, key, err)
	}

	p.logger.Info("uploaded", zap.String("file", localPath), zap.String("key", key), zap.String("bucket", p.bucket))
	return key, nil
}

// PublishRun uploads the PDF, then each existing screenshot. Screenshots
// missing on disk (exhausted captures) are skipped. The first failure stops
// the upload.
func (p *Publisher) PublishRun(ctx context.Context, pdfPath string, screenshots []string) ([]string, error) {
	keys := make([]string, 0, 1+len(screenshots))

	key, err := p.Upload(ctx, pdfPath, ContentTypePDF)
	if err != nil {
		return keys, err
	}
	keys = append(keys, key)

	for _, s := range screenshots {
		if _, err := os.Stat(s); err != nil {
			p.logger.Debug("screenshot not uploaded", zap.String("file", s), zap.Error(err))
			continue
		}
		key, err := p.Upload(ctx, s, ContentTypePNG)
		if err != nil {
			return keys, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}
