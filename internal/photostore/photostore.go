package photostore

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
)

// ErrNotFound is returned by Get and Delete when no photo exists under the key.
var ErrNotFound = errors.New("photo not found")

// PhotoStore archives scanned meal photos. Keys are opaque to callers.
type PhotoStore interface {
	Save(ctx context.Context, prefix, mimeType string, r io.Reader) (storageKey string, err error)
	Get(ctx context.Context, storageKey string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, storageKey string) error
}

// ExtForMIME returns the file extension used when storing a photo of the given type.
func ExtForMIME(mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}

// MIMEForKey maps a storage key back to the image type it was saved with.
func MIMEForKey(storageKey string) string {
	switch strings.ToLower(path.Ext(storageKey)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

// SafePrefix reduces an arbitrary user id to characters safe in a file name
// or object key.
func SafePrefix(prefix string) string {
	if prefix == "" {
		return "anon"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, prefix)
}
