package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// ErrStorageDisabled is returned when no bucket is configured.
var ErrStorageDisabled = errors.New("report storage is not configured")

// DefaultDownloadExpiry is how long a report download link stays valid.
const DefaultDownloadExpiry = 15 * time.Minute

// ObjectAPI is the subset of the S3 client the storage service calls.
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ObjectPresigner signs download links.
type ObjectPresigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// StorageService stores exported reports and archived statements in S3.
type StorageService struct {
	client    ObjectAPI
	presigner ObjectPresigner
	bucket    string
	region    string
	now       func() time.Time
}

// NewStorageService creates the S3 client. A non-empty endpoint selects a
// LocalStack-style setup with static credentials and path-style addressing.
func NewStorageService(ctx context.Context, bucket, region, endpoint string) (*StorageService, error) {
	if bucket == "" {
		return nil, fmt.Errorf("bucket cannot be empty")
	}
	if region == "" {
		return nil, fmt.Errorf("region cannot be empty")
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if endpoint != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider("test", "test", ""),
		))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return newStorageService(client, s3.NewPresignClient(client), bucket, region), nil
}

func newStorageService(client ObjectAPI, presigner ObjectPresigner, bucket, region string) *StorageService {
	return &StorageService{
		client:    client,
		presigner: presigner,
		bucket:    bucket,
		region:    region,
		now:       time.Now,
	}
}

// GenerateReportKey builds a unique key for a report.
// Format: reports/{kind}/{YYYY-MM-DD}/{unix}-{id}-{name}.xlsx
func (s *StorageService) GenerateReportKey(kind, name string) (string, error) {
	if kind == "" {
		return "", fmt.Errorf("kind cannot be empty")
	}
	if name == "" {
		return "", fmt.Errorf("name cannot be empty")
	}
	now := s.now().UTC()
	return fmt.Sprintf("reports/%s/%s/%d-%s-%s.xlsx",
		kind, now.Format("2006-01-02"), now.Unix(), uuid.New().String()[:8], sanitizeName(name)), nil
}

// GenerateStatementKey builds the archive key of an imported statement.
func (s *StorageService) GenerateStatementKey(bank, filename string) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("filename cannot be empty")
	}
	if bank == "" {
		bank = "unknown"
	}
	ext := strings.ToLower(filepath.Ext(filename))
	base := sanitizeName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	return fmt.Sprintf("statements/%s/%d-%s-%s%s",
		strings.ToLower(bank), s.now().UTC().Unix(), uuid.New().String()[:8], base, ext), nil
}

// sanitizeName keeps letters, digits, '-' and '_'.
func sanitizeName(name string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, name)
}

// Upload writes data under key.
func (s *StorageService) Upload(ctx context.Context, key, contentType string, data []byte) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}
	if s.client == nil {
		return fmt.Errorf("s3 client is not initialized")
	}

	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return nil
}

// PresignedDownloadURL returns a temporary GET link for key.
func (s *StorageService) PresignedDownloadURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if key == "" {
		return "", fmt.Errorf("key cannot be empty")
	}
	if expiry <= 0 {
		return "", fmt.Errorf("expiry must be greater than 0")
	}
	if s.presigner == nil {
		return "", fmt.Errorf("s3 presigner is not initialized")
	}

	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return req.URL, nil
}
