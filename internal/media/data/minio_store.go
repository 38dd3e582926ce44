package data

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/codeskytz/date-api/internal/media/biz"
	"github.com/codeskytz/date-api/internal/pkg/minio"
)

// minioStore implements biz.ObjectStore on a single bucket of an
// S3-compatible store.
type minioStore struct {
	client     *minio.Client
	bucket     string
	publicBase string
}

// NewObjectStore wires the shared MinIO client into the media layer.
func NewObjectStore(client *minio.Client, bucket, publicBaseURL string) biz.ObjectStore {
	return &minioStore{
		client:     client,
		bucket:     bucket,
		publicBase: strings.TrimSuffix(publicBaseURL, "/"),
	}
}

func (s *minioStore) Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

func (s *minioStore) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucket, key)
	if err != nil {
		if minio.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *minioStore) Delete(ctx context.Context, key string) error {
	return s.client.RemoveObject(ctx, s.bucket, key)
}

func (s *minioStore) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	return s.client.RemovePrefix(ctx, s.bucket, prefix)
}

func (s *minioStore) PublicURL(key string) string {
	return s.publicBase + "/" + key
}

func (s *minioStore) PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, expiry)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}
