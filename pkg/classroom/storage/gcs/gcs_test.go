package gcs

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicURL(t *testing.T) {
	key := "attachments/l1/1700000000000-notes.pdf"
	tests := []struct {
		name     string
		cfg      Config
		expected string
	}{
		{
			name:     "default",
			cfg:      Config{Bucket: "class-files"},
			expected: "https://storage.googleapis.com/class-files/" + key,
		},
		{
			name:     "cdn",
			cfg:      Config{Bucket: "class-files", CDNDomain: "cdn.example.com"},
			expected: "https://cdn.example.com/" + key,
		},
		{
			name:     "public base",
			cfg:      Config{Bucket: "class-files", PublicBaseURL: "http://localhost:4443/"},
			expected: "http://localhost:4443/class-files/" + key,
		},
		{
			name:     "emulator",
			cfg:      Config{Bucket: "class-files", EmulatorHost: "http://localhost:4443"},
			expected: "http://localhost:4443/class-files/" + key,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, PublicURL(tt.cfg, key))
		})
	}
}

func TestPublicURL_EscapesKeySegments(t *testing.T) {
	key := "attachments/L/5000-week 1 #notes?.pdf"
	escaped := "attachments/L/5000-week%201%20%23notes%3F.pdf"
	tests := []struct {
		name     string
		cfg      Config
		expected string
	}{
		{"default", Config{Bucket: "b"}, "https://storage.googleapis.com/b/" + escaped},
		{"cdn", Config{Bucket: "b", CDNDomain: "cdn.example.com"}, "https://cdn.example.com/" + escaped},
		{"public base", Config{Bucket: "b", PublicBaseURL: "http://localhost:4443"}, "http://localhost:4443/b/" + escaped},
		{"emulator", Config{Bucket: "b", EmulatorHost: "http://localhost:4443"}, "http://localhost:4443/b/" + escaped},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PublicURL(tt.cfg, key)
			assert.Equal(t, tt.expected, got)

			u, err := url.Parse(got)
			require.NoError(t, err)
			assert.Empty(t, u.Fragment)
			assert.Empty(t, u.RawQuery)
			assert.True(t, strings.HasSuffix(u.Path, "/"+key), u.Path)
		})
	}
}

func TestNew_RequiresBucket(t *testing.T) {
	_, err := New(context.Background(), Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket name is required")
}

// TestBackend_Integration requires a Cloud Storage emulator
func TestBackend_Integration(t *testing.T) {
	host := os.Getenv("TEST_GCS_EMULATOR_HOST")
	bucket := os.Getenv("TEST_GCS_BUCKET")
	if host == "" || bucket == "" {
		t.Skip("TEST_GCS_EMULATOR_HOST / TEST_GCS_BUCKET not set")
	}

	ctx := context.Background()
	backend, err := New(ctx, Config{Bucket: bucket, EmulatorHost: host})
	require.NoError(t, err)
	defer backend.Close()

	prefix := fmt.Sprintf("attachments/it-%d/", time.Now().UnixNano())
	key := prefix + "1-a.txt"
	_, err = backend.Put(ctx, key, []byte("hello"), "text/plain")
	require.NoError(t, err)

	infos, err := backend.List(ctx, prefix)
	require.NoError(t, err)
	require.Len(t, infos, 1)

	require.NoError(t, backend.Delete(ctx, key))
	_, err = backend.URL(ctx, key)
	assert.ErrorIs(t, err, ErrObjectNotFound)
}
