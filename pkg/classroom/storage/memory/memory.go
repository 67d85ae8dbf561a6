package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/tendant/simple-classroom/pkg/classroom"
)

// ErrObjectNotFound is returned for keys that were never written or were deleted.
var ErrObjectNotFound = errors.New("object not found")

type object struct {
	data        []byte
	contentType string
	updatedAt   time.Time
}

// Backend is an in-memory implementation of classroom.BlobStore
type Backend struct {
	mu      sync.RWMutex
	objects map[string]object
	now     func() time.Time
}

// New creates a new in-memory storage backend
func New() *Backend {
	return NewWithClock(time.Now)
}

// NewWithClock stamps objects with times from now.
func NewWithClock(now func() time.Time) *Backend {
	return &Backend{
		objects: make(map[string]object),
		now:     now,
	}
}

var (
	_ classroom.BlobStore  = (*Backend)(nil)
	_ classroom.BlobLister = (*Backend)(nil)
)

// Put stores a copy of data under key
func (b *Backend) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	buf := make([]byte, len(data))
	copy(buf, data)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = object{data: buf, contentType: contentType, updatedAt: b.now()}
	return "memory://" + key, nil
}

// URL returns a pseudo URL; in-memory blobs are not served over HTTP
func (b *Backend) URL(ctx context.Context, key string) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if _, exists := b.objects[key]; !exists {
		return "", ErrObjectNotFound
	}
	return "memory://" + key, nil
}

// Get returns a copy of the stored bytes and their content type
func (b *Backend) Get(ctx context.Context, key string) ([]byte, string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	obj, exists := b.objects[key]
	if !exists {
		return nil, "", ErrObjectNotFound
	}
	data := make([]byte, len(obj.data))
	copy(data, obj.data)
	return data, obj.contentType, nil
}

// Delete deletes content
func (b *Backend) Delete(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.objects[key]; !exists {
		return ErrObjectNotFound
	}
	delete(b.objects, key)
	return nil
}

// List returns every object whose key starts with prefix, sorted by key
func (b *Backend) List(ctx context.Context, prefix string) ([]classroom.BlobInfo, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var out []classroom.BlobInfo
	for key, obj := range b.objects {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		out = append(out, classroom.BlobInfo{Key: key, Size: int64(len(obj.data)), UpdatedAt: obj.updatedAt})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Len reports the number of stored objects
func (b *Backend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.objects)
}
