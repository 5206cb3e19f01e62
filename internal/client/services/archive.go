package services

import (
	"context"
	"fmt"
	"os"
	"path"
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

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) error {
		_, err := c.PutObject(ctx, in)
		return err
	}
	presignGetObject = func(c *s3.Client, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return s3.NewPresignClient(c).PresignGetObject(ctx, in, optFns...)
	}
)

// ArchivedLinkTTL is how long the link to an archived export stays valid.
const ArchivedLinkTTL = 15 * time.Minute

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// S3Settings point the archiver at an S3-compatible bucket.
type S3Settings struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	Prefix    string
}

// Enabled reports whether a bucket is configured.
func (s S3Settings) Enabled() bool {
	return s.Bucket != ""
}

// Archiver stores a downloaded export somewhere durable.
type Archiver interface {
	Archive(ctx context.Context, file string) (*ArchivedExport, error)
}

type ArchivedExport struct {
	URI string
	URL string
}

// ExportArchiver uploads exports to S3 and hands back a presigned link.
type ExportArchiver struct {
	settings S3Settings
}

func NewExportArchiver(s S3Settings) *ExportArchiver {
	return &ExportArchiver{settings: s}
}

func (a *ExportArchiver) client(ctx context.Context) (*s3.Client, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(a.settings.Region)}
	if a.settings.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			a.settings.AccessKey,
			a.settings.SecretKey,
			"",
		)))
	}
	cfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if a.settings.Endpoint != "" {
			o.BaseEndpoint = aws.String(a.settings.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// objectKey files exports by day: <prefix>/2006/1/2/<uuid>-<name>.
func (a *ExportArchiver) objectKey(file string, now time.Time) string {
	name := fmt.Sprintf("%s-%s", uuid.New(), filepath.Base(file))
	day := fmt.Sprintf("%d/%d/%d", now.Year(), now.Month(), now.Day())
	return path.Join(strings.Trim(a.settings.Prefix, "/"), day, name)
}

func (a *ExportArchiver) Archive(ctx context.Context, file string) (*ArchivedExport, error) {
	c, err := a.client(ctx)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	key := a.objectKey(file, time.Now())
	err = putObject(c, ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.settings.Bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(xlsxContentType),
	})
	if err != nil {
		return nil, fmt.Errorf("put %s: %w", key, err)
	}

	out := &ArchivedExport{URI: fmt.Sprintf("s3://%s/%s", a.settings.Bucket, key)}
	req, err := presignGetObject(c, ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.settings.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ArchivedLinkTTL))
	if err != nil {
		return nil, fmt.Errorf("presign %s: %w", key, err)
	}
	out.URL = req.URL
	return out, nil
}
