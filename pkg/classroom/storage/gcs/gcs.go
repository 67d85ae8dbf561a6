package gcs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/tendant/simple-classroom/pkg/classroom"
)

// ErrObjectNotFound is returned when a key does not exist in the bucket.
var ErrObjectNotFound = errors.New("object not found")

const (
	writeTimeout = 2 * time.Minute
	opTimeout    = 30 * time.Second
)

// Config options for the Cloud Storage backend
type Config struct {
	Bucket string
	// CDNDomain serves objects as https://{CDNDomain}/{key} when set
	CDNDomain string
	// PublicBaseURL serves objects as {PublicBaseURL}/{bucket}/{key} when set
	PublicBaseURL string
	// CredentialsJSON is either inline service-account JSON or a path to it
	CredentialsJSON string
	// EmulatorHost points the client at a fake-gcs-server style emulator
	EmulatorHost string
}

// Backend is a Google Cloud Storage implementation of classroom.BlobStore
type Backend struct {
	client *storage.Client
	config Config
}

var (
	_ classroom.BlobStore  = (*Backend)(nil)
	_ classroom.BlobLister = (*Backend)(nil)
)

// New creates a Cloud Storage backend.
func New(ctx context.Context, config Config) (*Backend, error) {
	if config.Bucket == "" {
		return nil, errors.New("bucket name is required")
	}

	var opts []option.ClientOption
	switch {
	case config.EmulatorHost != "":
		_ = os.Setenv("STORAGE_EMULATOR_HOST", strings.TrimRight(config.EmulatorHost, "/"))
		opts = append(opts, option.WithoutAuthentication())
	case strings.HasPrefix(strings.TrimSpace(config.CredentialsJSON), "{"):
		opts = append(opts, option.WithCredentialsJSON([]byte(config.CredentialsJSON)))
	case config.CredentialsJSON != "":
		opts = append(opts, option.WithCredentialsFile(config.CredentialsJSON))
	}
	if config.EmulatorHost == "" {
		opts = append(opts, option.WithScopes(storage.ScopeReadWrite))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &Backend{client: client, config: config}, nil
}

// Close releases the underlying client
func (b *Backend) Close() error {
	return b.client.Close()
}

func (b *Backend) object(key string) *storage.ObjectHandle {
	return b.client.Bucket(b.config.Bucket).Object(key)
}

// Put streams data into a new object
func (b *Backend) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	w := b.object(key).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to close GCS writer: %w", err)
	}
	return PublicURL(b.config, key), nil
}

// URL checks the object exists and returns its public URL
func (b *Backend) URL(ctx context.Context, key string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if _, err := b.object(key).Attrs(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return "", ErrObjectNotFound
		}
		return "", fmt.Errorf("failed to read GCS object attrs: %w", err)
	}
	return PublicURL(b.config, key), nil
}

// Delete removes an object
func (b *Backend) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if err := b.object(key).Delete(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return ErrObjectNotFound
		}
		return fmt.Errorf("failed to delete GCS object %q in bucket %q: %w", key, b.config.Bucket, err)
	}
	return nil
}

// List iterates the objects under prefix
func (b *Backend) List(ctx context.Context, prefix string) ([]classroom.BlobInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	it := b.client.Bucket(b.config.Bucket).Objects(ctx, &storage.Query{Prefix: prefix})
	var out []classroom.BlobInfo
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", prefix, err)
		}
		out = append(out, classroom.BlobInfo{Key: attrs.Name, Size: attrs.Size, UpdatedAt: attrs.Updated})
	}
	return out, nil
}

// PublicURL returns the URL an object is served from: the CDN domain, then an
// explicit public base, then the storage.googleapis.com default.
func PublicURL(cfg Config, key string) string {
	key = escapeKey(strings.TrimLeft(strings.TrimSpace(key), "/"))
	if cfg.CDNDomain != "" {
		return fmt.Sprintf("https://%s/%s", cfg.CDNDomain, key)
	}
	if base := strings.TrimRight(cfg.PublicBaseURL, "/"); base != "" {
		return fmt.Sprintf("%s/%s/%s", base, cfg.Bucket, key)
	}
	if host := strings.TrimRight(cfg.EmulatorHost, "/"); host != "" {
		return fmt.Sprintf("%s/%s/%s", host, cfg.Bucket, key)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", cfg.Bucket, key)
}

func escapeKey(key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
