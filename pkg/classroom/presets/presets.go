// Package presets builds ready-to-use classroom services for common setups.
package presets

import (
	"context"
	"fmt"
	"os"
	"testing"

	"go.uber.org/zap"

	"github.com/tendant/simple-classroom/pkg/classroom"
	memoryrepo "github.com/tendant/simple-classroom/pkg/classroom/repo/memory"
	fsstorage "github.com/tendant/simple-classroom/pkg/classroom/storage/fs"
	memorystorage "github.com/tendant/simple-classroom/pkg/classroom/storage/memory"
)

// NewDevelopment creates a service for local development: lessons and
// comments live in memory, attachment blobs are written below ./dev-data.
//
// The returned cleanup removes the storage directory.
//
//	svc, cleanup, err := presets.NewDevelopment()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer cleanup()
func NewDevelopment(opts ...DevelopmentOption) (classroom.Service, func(), error) {
	cfg := &devConfig{
		storageDir: "./dev-data",
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	fsBackend, err := fsstorage.New(fsstorage.Config{
		BaseDir:   cfg.storageDir,
		URLPrefix: cfg.urlPrefix,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create filesystem storage: %w", err)
	}

	svc, err := classroom.New(
		classroom.WithStore(memoryrepo.New()),
		classroom.WithBlobStore(fsBackend),
		classroom.WithLogger(cfg.log),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create service: %w", err)
	}

	cleanup := func() {
		os.RemoveAll(cfg.storageDir)
	}
	return svc, cleanup, nil
}

// Testing bundles a test service with the in-memory backends behind it so
// tests can inspect stored blobs and records directly.
type Testing struct {
	classroom.Service
	Store *memoryrepo.Repository
	Blobs *memorystorage.Backend
}

// NewTesting creates an isolated in-memory service for a test. Extra
// classroom options are applied after the backends.
//
//	func TestUpload(t *testing.T) {
//	    env := presets.NewTesting(t, presets.WithServiceOptions(classroom.WithMaxFileSize(16)))
//	    ...
//	}
func NewTesting(t testing.TB, opts ...TestingOption) *Testing {
	t.Helper()
	cfg := &testConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	env := &Testing{
		Store: memoryrepo.New(),
		Blobs: memorystorage.New(),
	}
	svc, err := classroom.New(append([]classroom.Option{
		classroom.WithStore(env.Store),
		classroom.WithBlobStore(env.Blobs),
	}, cfg.service...)...)
	if err != nil {
		t.Fatalf("failed to create test service: %v", err)
	}
	env.Service = svc

	if cfg.fixtures {
		for _, req := range FixtureLessons() {
			if _, err := svc.CreateLesson(context.Background(), req); err != nil {
				t.Fatalf("failed to seed lesson %q: %v", req.Title, err)
			}
		}
	}
	return env
}

// FixtureLessons is the sample data seeded by WithTestFixtures.
func FixtureLessons() []classroom.CreateLessonRequest {
	return []classroom.CreateLessonRequest{
		{
			Title:       "The Water Cycle",
			Description: "Evaporation, condensation and precipitation",
			VideoURL:    "https://www.youtube.com/watch?v=al-do-HGuIk",
		},
		{
			Title:       "Long Division",
			Description: "Dividing multi-digit numbers step by step",
			VideoURL:    "https://youtu.be/LGqBQw2U6Jk",
		},
	}
}

type devConfig struct {
	storageDir string
	urlPrefix  string
	log        *zap.Logger
}

type testConfig struct {
	fixtures bool
	service  []classroom.Option
}

// DevelopmentOption is a functional option for NewDevelopment
type DevelopmentOption func(*devConfig)

// WithDevStorage sets the development storage directory
func WithDevStorage(dir string) DevelopmentOption {
	return func(cfg *devConfig) {
		cfg.storageDir = dir
	}
}

// WithDevURLPrefix sets the URL prefix the storage directory is served under
func WithDevURLPrefix(prefix string) DevelopmentOption {
	return func(cfg *devConfig) {
		cfg.urlPrefix = prefix
	}
}

func WithDevLogger(log *zap.Logger) DevelopmentOption {
	return func(cfg *devConfig) {
		cfg.log = log
	}
}

// TestingOption is a functional option for NewTesting
type TestingOption func(*testConfig)

// WithTestFixtures seeds FixtureLessons
func WithTestFixtures() TestingOption {
	return func(cfg *testConfig) {
		cfg.fixtures = true
	}
}

// WithServiceOptions passes extra options to classroom.New
func WithServiceOptions(opts ...classroom.Option) TestingOption {
	return func(cfg *testConfig) {
		cfg.service = append(cfg.service, opts...)
	}
}
