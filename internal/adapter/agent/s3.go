package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	s3manager "github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	appconfig "github.com/semmidev/kustos/internal/config"
	"github.com/semmidev/kustos/internal/domain"
)

// S3Agent keeps each backup as two objects under a prefix: the content at
// <prefix>/<id>.tar and the record at <prefix>/<id>.metadata.json.
type S3Agent struct {
	client   *s3.Client
	uploader *s3manager.Uploader
	bucket   string
	prefix   string
	name     string
}

func NewS3(cfg *appconfig.AgentTarget) (*S3Agent, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg)
	name := cfg.Name
	if name == "" {
		name = cfg.Bucket
	}

	return &S3Agent{
		client:   client,
		uploader: s3manager.NewUploader(client),
		bucket:   cfg.Bucket,
		prefix:   cfg.Prefix,
		name:     name,
	}, nil
}

func (a *S3Agent) Domain() string   { return "s3" }
func (a *S3Agent) UniqueID() string { return a.name }
func (a *S3Agent) Name() string     { return a.name }

func (a *S3Agent) List(ctx context.Context) ([]domain.Backup, error) {
	resp, err := a.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: &a.bucket,
		Prefix: &a.prefix,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list S3 objects: %w", err)
	}

	var backups []domain.Backup
	for _, obj := range resp.Contents {
		if !strings.HasSuffix(*obj.Key, ".metadata.json") {
			continue
		}

		backup, err := a.fetchRecord(ctx, *obj.Key)
		if err != nil {
			return nil, err
		}
		backups = append(backups, *backup)
	}

	return backups, nil
}

func (a *S3Agent) Get(ctx context.Context, backupID string) (*domain.Backup, error) {
	backup, err := a.fetchRecord(ctx, a.sidecarKey(backupID))
	if err != nil {
		if isNoSuchKey(err) {
			return nil, nil
		}
		return nil, err
	}
	return backup, nil
}

func (a *S3Agent) Upload(ctx context.Context, open domain.OpenStream, backup domain.Backup) error {
	stream, err := open(ctx)
	if err != nil {
		return fmt.Errorf("failed to open backup stream: %w", err)
	}
	defer stream.Close()

	contentKey := a.contentKey(backup.ID)
	if _, err := a.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: &a.bucket,
		Key:    &contentKey,
		Body:   stream,
	}); err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}

	record, err := json.Marshal(backup)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}

	sidecarKey := a.sidecarKey(backup.ID)
	if _, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: &a.bucket,
		Key:    &sidecarKey,
		Body:   strings.NewReader(string(record)),
	}); err != nil {
		return fmt.Errorf("failed to upload record to S3: %w", err)
	}

	return nil
}

func (a *S3Agent) Download(ctx context.Context, backupID string) (io.ReadCloser, error) {
	contentKey := a.contentKey(backupID)
	resp, err := a.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &a.bucket,
		Key:    &contentKey,
	})
	if err != nil {
		if isNoSuchKey(err) {
			return nil, domain.ErrBackupNotFound
		}
		return nil, fmt.Errorf("failed to download from S3: %w", err)
	}
	return resp.Body, nil
}

func (a *S3Agent) Delete(ctx context.Context, backupID string) error {
	for _, key := range []string{a.contentKey(backupID), a.sidecarKey(backupID)} {
		if _, err := a.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: &a.bucket,
			Key:    &key,
		}); err != nil {
			return fmt.Errorf("failed to delete from S3: %w", err)
		}
	}
	return nil
}

func (a *S3Agent) fetchRecord(ctx context.Context, key string) (*domain.Backup, error) {
	resp, err := a.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &a.bucket,
		Key:    &key,
	})
	if err != nil {
		if isNoSuchKey(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to fetch record %s: %w", key, err)
	}
	defer resp.Body.Close()

	var backup domain.Backup
	if err := json.NewDecoder(resp.Body).Decode(&backup); err != nil {
		return nil, fmt.Errorf("failed to parse record %s: %w", key, err)
	}
	return &backup, nil
}

func (a *S3Agent) contentKey(backupID string) string {
	return path.Join(a.prefix, backupID+".tar")
}

func (a *S3Agent) sidecarKey(backupID string) string {
	return path.Join(a.prefix, backupID+".metadata.json")
}

func isNoSuchKey(err error) bool {
	var noSuchKey *types.NoSuchKey
	return errors.As(err, &noSuchKey)
}
