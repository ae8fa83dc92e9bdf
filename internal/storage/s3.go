package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Conceptual-Machines/sfx-api/internal/config"
	"github.com/Conceptual-Machines/sfx-api/internal/logger"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const downloadTimeout = 60 * time.Second

// putObjectAPI is the subset of the S3 client we call
type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Archiver copies generated audio into an S3-compatible bucket
type Archiver struct {
	s3Client   putObjectAPI
	httpClient *http.Client
	bucket     string
	publicURL  string
}

// NewArchiver creates an archiver from the ARCHIVE_* settings. Static
// credentials are used when an access key is configured, otherwise the
// default AWS chain applies.
func NewArchiver(ctx context.Context, cfg *config.Config) (*Archiver, error) {
	configOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.ArchiveRegion),
	}
	if cfg.ArchiveAccessKey != "" {
		configOpts = append(configOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.ArchiveAccessKey, cfg.ArchiveSecretKey, ""),
		))
	}
	// MinIO, R2 and LocalStack
	if cfg.ArchiveEndpoint != "" {
		configOpts = append(configOpts, awsconfig.WithBaseEndpoint(cfg.ArchiveEndpoint))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, configOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
	})

	logger.Info("Audio archive enabled", logger.Fields{
		"endpoint": cfg.ArchiveEndpoint,
		"bucket":   cfg.ArchiveBucket,
	})

	return newArchiver(client, nil, cfg.ArchiveBucket, cfg.ArchivePublicURL), nil
}

func newArchiver(client putObjectAPI, httpClient *http.Client, bucket, publicURL string) *Archiver {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: downloadTimeout}
	}
	return &Archiver{
		s3Client:   client,
		httpClient: httpClient,
		bucket:     bucket,
		publicURL:  publicURL,
	}
}

// Key builds the object key for a generated clip
func Key(requestID, assetName, format string) string {
	return fmt.Sprintf("sfx/%s/%s.%s", requestID, assetName, format)
}

// URL returns the public URL for key, or an s3:// URI when no public base
// URL is configured.
func (a *Archiver) URL(key string) string {
	if a.publicURL == "" {
		return fmt.Sprintf("s3://%s/%s", a.bucket, key)
	}
	return strings.TrimRight(a.publicURL, "/") + "/" + key
}

// Archive downloads sourceURL and uploads it under key
func (a *Archiver) Archive(ctx context.Context, sourceURL, key, contentType string) (string, error) {
	data, err := a.download(ctx, sourceURL)
	if err != nil {
		return "", err
	}
	if err := a.Upload(ctx, key, bytes.NewReader(data), contentType, int64(len(data))); err != nil {
		return "", err
	}
	return a.URL(key), nil
}

// Upload stores data in the bucket. S3-compatible backends such as R2
// require an explicit content length.
func (a *Archiver) Upload(ctx context.Context, key string, data io.Reader, contentType string, contentLength int64) error {
	_, err := a.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          data,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(contentLength),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}

	logger.Info("Audio archived", logger.Fields{
		"bucket": a.bucket,
		"key":    key,
		"bytes":  contentLength,
	})
	return nil
}

func (a *Archiver) download(ctx context.Context, sourceURL string) ([]byte, error) {
	if sourceURL == "" {
		return nil, fmt.Errorf("no audio URL to archive")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create download request: %w", err)
	}
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download audio: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download audio: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("downloaded audio is empty")
	}
	return data, nil
}
