// Package storage keeps profile images outside the database. Upload returns
// the public URL that is stored on the user; Delete takes that URL back.
package storage

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrUnsupportedType = errors.New("unsupported image type")
	ErrForeignURL      = errors.New("url does not belong to this store")
)

type ImageStore interface {
	Upload(ctx context.Context, filename string, r io.Reader) (string, error)
	Delete(ctx context.Context, url string) error
}

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// ObjectKey derives a collision-free key for an uploaded file, keeping its
// extension.
func ObjectKey(filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !imageExtensions[ext] {
		return "", ErrUnsupportedType
	}
	return "profiles/" + uuid.NewString() + ext, nil
}
