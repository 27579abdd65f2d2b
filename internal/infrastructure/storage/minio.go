package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/meetingledger/ledger/pkg/config"
)

// TranscriptArchive keeps an immutable raw copy of every uploaded transcript
// in object storage. The database holds the normalized working copy; the
// archive is the audit trail.
type TranscriptArchive struct {
	client *minio.Client
	bucket string
}

// NewTranscriptArchive creates the archive client and ensures the bucket.
func NewTranscriptArchive(cfg *config.StorageConfig) (*TranscriptArchive, error) {
	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	archive := &TranscriptArchive{
		client: minioClient,
		bucket: cfg.BucketName,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := archive.ensureBucket(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize bucket: %w", err)
	}
	return archive, nil
}

func (a *TranscriptArchive) ensureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}
	return nil
}

func objectKey(meetingID, transcriptID uuid.UUID) string {
	return fmt.Sprintf("transcripts/%s/%s.txt", meetingID, transcriptID)
}

// Put archives the raw transcript content.
func (a *TranscriptArchive) Put(ctx context.Context, meetingID, transcriptID uuid.UUID, content string) error {
	reader := bytes.NewReader([]byte(content))
	_, err := a.client.PutObject(ctx, a.bucket, objectKey(meetingID, transcriptID), reader, int64(len(content)), minio.PutObjectOptions{
		ContentType: "text/plain",
	})
	if err != nil {
		return fmt.Errorf("failed to archive transcript: %w", err)
	}
	return nil
}

// Get retrieves an archived transcript copy.
func (a *TranscriptArchive) Get(ctx context.Context, meetingID, transcriptID uuid.UUID) (string, error) {
	obj, err := a.client.GetObject(ctx, a.bucket, objectKey(meetingID, transcriptID), minio.GetObjectOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to fetch archived transcript: %w", err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return "", fmt.Errorf("failed to read archived transcript: %w", err)
	}
	return string(data), nil
}
