package storage

import (
	"context"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"

	"github.com/oksasatya/communet/internal/application"
	"github.com/oksasatya/communet/pkg/helpers"
)

type openWriter func(ctx context.Context, objectPath, contentType string) io.WriteCloser

// GCSAvatarStorage uploads avatars to a Google Cloud Storage bucket and
// hands back their public URL.
type GCSAvatarStorage struct {
	bucket string
	open   openWriter
}

func NewGCSAvatarStorage(client *gcs.Client, bucket string) *GCSAvatarStorage {
	return &GCSAvatarStorage{
		bucket: bucket,
		open: func(ctx context.Context, objectPath, contentType string) io.WriteCloser {
			wc := client.Bucket(bucket).Object(objectPath).NewWriter(ctx)
			wc.ContentType = contentType
			wc.ChunkSize = 0 // avatars are small; upload in one request
			return wc
		},
	}
}

func (s *GCSAvatarStorage) Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error) {
	wc := s.open(ctx, objectPath, contentType)
	if _, err := io.Copy(wc, r); err != nil {
		_ = wc.Close()
		return "", fmt.Errorf("upload %s: %w", objectPath, err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("upload %s: %w", objectPath, err)
	}
	return helpers.PublicURL(s.bucket, objectPath), nil
}

var _ application.AvatarStorage = (*GCSAvatarStorage)(nil)
