package fs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tendant/simple-classroom/pkg/classroom"
)

// ErrObjectNotFound is returned for missing keys.
var ErrObjectNotFound = errors.New("object not found")

// Backend is a filesystem implementation of classroom.BlobStore
type Backend struct {
	baseDir   string
	urlPrefix string
}

// Config options for the filesystem backend
type Config struct {
	BaseDir   string // Base directory for storing files
	URLPrefix string // Optional URL prefix the base directory is served under
}

// New creates a new filesystem storage backend
func New(config Config) (*Backend, error) {
	if config.BaseDir == "" {
		return nil, errors.New("base directory is required")
	}
	if err := os.MkdirAll(config.BaseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	abs, err := filepath.Abs(config.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}
	return &Backend{
		baseDir:   abs,
		urlPrefix: strings.TrimRight(config.URLPrefix, "/"),
	}, nil
}

var (
	_ classroom.BlobStore  = (*Backend)(nil)
	_ classroom.BlobLister = (*Backend)(nil)
)

// path maps a key to a file below baseDir, rejecting keys that escape it
func (b *Backend) path(key string) (string, error) {
	p := filepath.Join(b.baseDir, filepath.FromSlash(key))
	if p != b.baseDir && !strings.HasPrefix(p, b.baseDir+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return p, nil
}

func (b *Backend) url(key string) string {
	if b.urlPrefix == "" {
		return (&url.URL{Scheme: "file", Path: filepath.ToSlash(filepath.Join(b.baseDir, key))}).String()
	}
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return b.urlPrefix + "/" + strings.Join(segments, "/")
}

// Put writes data to a temporary file and renames it into place, so readers
// never observe a partial blob. The content type is not stored.
func (b *Backend) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	filePath, err := b.path(key)
	if err != nil {
		return "", err
	}
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Rename(tmp.Name(), filePath); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to move file into place: %w", err)
	}
	return b.url(key), nil
}

// URL returns the URL of an existing blob
func (b *Backend) URL(ctx context.Context, key string) (string, error) {
	filePath, err := b.path(key)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(filePath); errors.Is(err, os.ErrNotExist) {
		return "", ErrObjectNotFound
	} else if err != nil {
		return "", fmt.Errorf("failed to get file info: %w", err)
	}
	return b.url(key), nil
}

// Delete deletes content from the filesystem
func (b *Backend) Delete(ctx context.Context, key string) error {
	filePath, err := b.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(filePath); errors.Is(err, os.ErrNotExist) {
		return ErrObjectNotFound
	} else if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// List walks baseDir and returns the blobs whose key starts with prefix.
// Temporary upload files are skipped.
func (b *Backend) List(ctx context.Context, prefix string) ([]classroom.BlobInfo, error) {
	var out []classroom.BlobInfo
	err := filepath.WalkDir(b.baseDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".upload-") {
			return nil
		}
		rel, err := filepath.Rel(b.baseDir, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		out = append(out, classroom.BlobInfo{Key: key, Size: info.Size(), UpdatedAt: info.ModTime()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", prefix, err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}
