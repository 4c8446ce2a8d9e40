package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/consultorio-api/internal/config"
	"github.com/BruksfildServices01/consultorio-api/internal/logging"
)

// S3API is the subset of the S3 client used by Backup.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// NewS3Client builds a client from the backup settings. A custom endpoint
// switches to path-style addressing for MinIO and LocalStack.
func NewS3Client(cfg *config.Config) *s3.Client {
	opts := s3.Options{
		Region: cfg.BackupRegion,
	}
	if cfg.AWSAccessKeyID != "" && cfg.AWSSecretAccessKey != "" {
		opts.Credentials = credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, "")
	}
	if cfg.BackupEndpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.BackupEndpoint)
		opts.UsePathStyle = true
	}
	return s3.New(opts)
}

type Backup struct {
	db     *gorm.DB
	client S3API
	bucket string
	logger *logging.Logger
	now    func() time.Time
}

func NewBackup(gdb *gorm.DB, client S3API, bucket string, logger *logging.Logger) *Backup {
	if logger == nil {
		logger = logging.Default()
	}
	return &Backup{db: gdb, client: client, bucket: bucket, logger: logger, now: time.Now}
}

// Run snapshots the database and uploads it, returning the object key.
func (b *Backup) Run(ctx context.Context) (string, error) {
	dir, err := os.MkdirTemp("", "consultorio-backup-*")
	if err != nil {
		return "", fmt.Errorf("backup: temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "consultorio.db")
	if err := Snapshot(ctx, b.db, path); err != nil {
		return "", fmt.Errorf("backup: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("backup: open snapshot: %w", err)
	}
	defer f.Close()

	now := b.now().UTC()
	key := fmt.Sprintf("backups/%d/%02d/consultorio-%s.db", now.Year(), now.Month(), now.Format("20060102T150405Z"))

	_, err = b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String("application/vnd.sqlite3"),
	})
	if err != nil {
		return "", fmt.Errorf("backup: s3 put %s: %w", key, err)
	}

	b.logger.Info("database backup uploaded", "bucket", b.bucket, "s3_key", key)
	return key, nil
}
