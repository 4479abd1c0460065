package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/kurin/blazer/b2"
)

// B2Storage keeps images in a Backblaze B2 bucket.
type B2Storage struct {
	Client *b2.Client
	Bucket *b2.Bucket
}

func NewB2Storage(ctx context.Context, accountID, appKey, bucketName string) (*B2Storage, error) {
	client, err := b2.NewClient(ctx, accountID, appKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create b2 client: %w", err)
	}

	bucket, err := client.Bucket(ctx, bucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to get bucket: %w", err)
	}

	return &B2Storage{Client: client, Bucket: bucket}, nil
}

func (s *B2Storage) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	key, err := ObjectKey(filename)
	if err != nil {
		return "", err
	}

	obj := s.Bucket.Object(key)
	w := obj.NewWriter(ctx)
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return "", fmt.Errorf("failed to write object: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to close writer: %w", err)
	}

	return obj.URL(), nil
}

func (s *B2Storage) Delete(ctx context.Context, url string) error {
	key, ok := b2KeyFromURL(url, s.Bucket.Name())
	if !ok {
		return ErrForeignURL
	}
	if err := s.Bucket.Object(key).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// b2KeyFromURL extracts the object key from a friendly download URL of the
// form <download-host>/file/<bucket>/<key>.
func b2KeyFromURL(url, bucket string) (string, bool) {
	marker := "/file/" + bucket + "/"
	i := strings.Index(url, marker)
	if i < 0 {
		return "", false
	}
	key := url[i+len(marker):]
	return key, key != ""
}
