// Package archive copies export files to S3-compatible object storage.
package archive

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/fortuna/gridiron/internal/league"
	"github.com/rs/zerolog"
)

// Config selects the bucket and credentials. Endpoint is set for R2 or
// MinIO and switches to path-style addressing.
type Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	Prefix          string
	AccessKeyID     string
	SecretAccessKey string
}

// Enabled reports whether a bucket is configured.
func (c Config) Enabled() bool {
	return strings.TrimSpace(c.Bucket) != ""
}

type uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// S3Archiver uploads export files.
type S3Archiver struct {
	up     uploader
	bucket string
	prefix string
	log    zerolog.Logger
}

// NewS3Archiver builds an S3 client from cfg. Static credentials are used
// when both keys are set; otherwise the default AWS credential chain applies.
func NewS3Archiver(ctx context.Context, cfg Config, log zerolog.Logger) (*S3Archiver, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("%w: archive bucket is not configured", league.ErrConfig)
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: loading aws config: %v", league.ErrConfig, err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newS3Archiver(manager.NewUploader(client), cfg, log), nil
}

func newS3Archiver(up uploader, cfg Config, log zerolog.Logger) *S3Archiver {
	return &S3Archiver{
		up:     up,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
		log:    log.With().Str("component", "archive").Str("bucket", cfg.Bucket).Logger(),
	}
}

// Key returns the object key for a file: {prefix}/{league}/{season}/{name}.
func (a *S3Archiver) Key(file string, leagueID int64, season int) string {
	parts := []string{strconv.FormatInt(leagueID, 10), strconv.Itoa(season), filepath.Base(file)}
	if a.prefix != "" {
		parts = append([]string{a.prefix}, parts...)
	}
	return path.Join(parts...)
}

// Upload copies the file at filePath and returns its object key.
func (a *S3Archiver) Upload(ctx context.Context, filePath string, leagueID int64, season int) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("%w: opening %s: %v", league.ErrIO, filePath, err)
	}
	defer f.Close()

	key := a.Key(filePath, leagueID, season)
	_, err = a.up.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("uploading s3://%s/%s: %w", a.bucket, key, err)
	}

	a.log.Info().Str("key", key).Msg("export archived")
	return key, nil
}
