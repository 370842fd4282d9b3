package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectPutter は S3 互換ストレージへのアップロードに必要な部分だけを表します。
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Snapshotter はバックアップ対象の文書を返します。
type Snapshotter interface {
	Snapshot() (map[string][]byte, error)
}

type BackupConfig struct {
	Bucket          string
	Endpoint        string // R2 などを使う場合に設定
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Prefix          string
}

// Backup は文書のスナップショットを日時付きのキーでアップロードします。
type Backup struct {
	client ObjectPutter
	bucket string
	prefix string
	source Snapshotter
	now    func() time.Time
}

func NewBackup(client ObjectPutter, bucket, prefix string, source Snapshotter) *Backup {
	return &Backup{client: client, bucket: bucket, prefix: prefix, source: source, now: time.Now}
}

// NewS3Backup は静的な認証情報で S3 クライアントを作成します。
func NewS3Backup(ctx context.Context, cfg BackupConfig, source Snapshotter) (*Backup, error) {
	if cfg.Bucket == "" || cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		return nil, errors.New("backup: bucket and credentials are required")
	}
	region := cfg.Region
	if region == "" {
		region = "auto"
	}
	sdkCfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
		config.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config: %w", err)
	}
	client := s3.NewFromConfig(sdkCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewBackup(client, cfg.Bucket, cfg.Prefix, source), nil
}

// Run は現在の文書をすべてアップロードし、書き込んだキーを返します。
func (b *Backup) Run(ctx context.Context) ([]string, error) {
	snap, err := b.source.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	names := make([]string, 0, len(snap))
	for name := range snap {
		names = append(names, name)
	}
	sort.Strings(names)

	stamp := b.now().UTC().Format("20060102T150405Z")
	keys := make([]string, 0, len(names))
	for _, name := range names {
		key := path.Join(b.prefix, stamp, name)
		_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(b.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(snap[name]),
			ContentType: aws.String("application/json"),
		})
		if err != nil {
			return keys, fmt.Errorf("failed to upload backup (key: %s): %w", key, err)
		}
		keys = append(keys, key)
	}
	return keys, nil
}
