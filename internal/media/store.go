package media

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// BlobStore saves and removes binary objects addressed by a relative key.
type BlobStore interface {
	Save(ctx context.Context, key string, data []byte, contentType string) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// Store decodes image inputs and writes them to a BlobStore under generated names.
type Store struct {
	blobs BlobStore
}

// NewStore wraps a blob backend.
func NewStore(blobs BlobStore) *Store {
	return &Store{blobs: blobs}
}

// Prepare decodes an input and picks its storage key without writing anything.
func (s *Store) Prepare(prefix string, in ImageInput) (string, *DecodedImage, error) {
	img, err := Decode(in)
	if err != nil {
		return "", nil, err
	}
	key := path.Join(prefix, uuid.NewString()+"."+img.Ext)
	return key, img, nil
}

// Put decodes and saves an image, returning its key.
func (s *Store) Put(ctx context.Context, prefix string, in ImageInput) (string, error) {
	key, img, err := s.Prepare(prefix, in)
	if err != nil {
		return "", err
	}
	if err := s.blobs.Save(ctx, key, img.Data, img.MimeType); err != nil {
		return "", fmt.Errorf("failed to save image: %w", err)
	}
	zerolog.Ctx(ctx).Debug().Str("key", key).Int("bytes", len(img.Data)).Msg("image stored")
	return key, nil
}

// Remove deletes a stored image. Empty keys are ignored; failures are logged
// and returned so callers may decide whether they matter.
func (s *Store) Remove(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	if err := s.blobs.Delete(ctx, key); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("failed to delete image")
		return err
	}
	return nil
}

// URL returns the public reference for a key, or "" for no image.
func (s *Store) URL(key string) string {
	if key == "" {
		return ""
	}
	return s.blobs.URL(key)
}

// LocalStore keeps blobs on the filesystem below Root and serves them under BaseURL.
type LocalStore struct {
	Root    string
	BaseURL string
}

// NewLocalStore creates the root directory if needed.
func NewLocalStore(root, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media root: %w", err)
	}
	return &LocalStore{Root: root, BaseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (l *LocalStore) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid media key %q", key)
	}
	return filepath.Join(l.Root, clean), nil
}

func (l *LocalStore) Save(_ context.Context, key string, data []byte, _ string) error {
	p, err := l.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	return os.WriteFile(p, data, 0o644)
}

func (l *LocalStore) Delete(_ context.Context, key string) error {
	p, err := l.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (l *LocalStore) URL(key string) string {
	return l.BaseURL + "/" + key
}
