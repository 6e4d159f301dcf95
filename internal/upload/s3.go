package upload

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"

	"trxr/internal/config"
	"trxr/internal/domain"
)

// DefaultPrefix is used when no key prefix is configured
const DefaultPrefix = "trx-results"

// putObjectAPI is the subset of the S3 client the uploader needs
type putObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// s3Uploader implements Uploader for S3-compatible storage.
type s3Uploader struct {
	log    logrus.FieldLogger
	cfg    config.S3Config
	client putObjectAPI
}

// Ensure interface compliance.
var _ Uploader = (*s3Uploader)(nil)

// NewS3Uploader creates a new S3 uploader from the given configuration.
func NewS3Uploader(log logrus.FieldLogger, cfg config.S3Config) Uploader {
	client := s3.New(s3.Options{}, func(o *s3.Options) {
		o.Region = cfg.Region
		if o.Region == "" {
			o.Region = config.DefaultS3Region
		}

		if cfg.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.EndpointURL)
		}

		if cfg.ForcePathStyle {
			o.UsePathStyle = true
		}

		if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
			o.Credentials = credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID, cfg.SecretAccessKey, "",
			)
		}
	})

	return newS3Uploader(log, cfg, client)
}

func newS3Uploader(log logrus.FieldLogger, cfg config.S3Config, client putObjectAPI) *s3Uploader {
	return &s3Uploader{
		log:    log.WithField("component", "s3-uploader"),
		cfg:    cfg,
		client: client,
	}
}

// Preflight verifies S3 connectivity by writing a small test object.
func (u *s3Uploader) Preflight(ctx context.Context) error {
	content := fmt.Sprintf("trxr write test: %s", time.Now().UTC().Format(time.RFC3339))

	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.cfg.Bucket),
		Key:         aws.String(u.prefix() + "/.trxr-write-test"),
		Body:        strings.NewReader(content),
		ContentType: aws.String("text/plain"),
	})
	if err != nil {
		return fmt.Errorf("writing test object to s3://%s: %w", u.cfg.Bucket, err)
	}

	return nil
}

// Publish uploads the report and the artifacts referenced by entries. Keys
// mirror the layout below the output directory, under prefix/executionId.
func (u *s3Uploader) Publish(ctx context.Context, summary *domain.RunSummary, entries []domain.ReportEntry) error {
	if summary.ReportPath == "" {
		return fmt.Errorf("no report to upload")
	}

	outputDir := filepath.Dir(summary.ReportPath)
	runPrefix := u.resolvePrefix(summary.Run.ExecutionID)

	files := []string{summary.ReportPath}
	for _, e := range entries {
		for _, name := range e.ResultFiles {
			files = append(files, filepath.Join(summary.ArtifactDir, name))
		}
	}

	for _, path := range files {
		relPath, err := filepath.Rel(outputDir, path)
		if err != nil {
			return fmt.Errorf("computing relative path: %w", err)
		}

		key := runPrefix + "/" + filepath.ToSlash(relPath)
		if err := u.uploadFile(ctx, path, key); err != nil {
			return fmt.Errorf("uploading %s: %w", relPath, err)
		}
	}

	u.log.WithFields(logrus.Fields{
		"files":  len(files),
		"bucket": u.cfg.Bucket,
		"prefix": runPrefix,
	}).Info("Upload completed")

	return nil
}

// uploadFile uploads a single file to S3.
func (u *s3Uploader) uploadFile(ctx context.Context, localPath, key string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("opening file: %w", err)
	}
	defer func() { _ = f.Close() }()

	u.log.WithFields(logrus.Fields{
		"key":    key,
		"bucket": u.cfg.Bucket,
	}).Debug("Uploading file")

	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.cfg.Bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(detectContentType(localPath)),
	})
	if err != nil {
		return fmt.Errorf("PutObject: %w", err)
	}

	return nil
}

func (u *s3Uploader) prefix() string {
	prefix := strings.TrimRight(u.cfg.Prefix, "/")
	if prefix == "" {
		return DefaultPrefix
	}
	return prefix
}

// resolvePrefix builds the S3 key prefix for an execution.
func (u *s3Uploader) resolvePrefix(executionID string) string {
	return u.prefix() + "/" + executionID
}

// detectContentType returns a MIME type based on file extension.
func detectContentType(path string) string {
	ext := filepath.Ext(path)
	if ext == ".trx" {
		return "application/xml"
	}

	ct := mime.TypeByExtension(ext)
	if ct == "" {
		return "application/octet-stream"
	}

	return ct
}
