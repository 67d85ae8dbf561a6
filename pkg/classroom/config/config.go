package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/tendant/simple-classroom/pkg/classroom"
	repomemory "github.com/tendant/simple-classroom/pkg/classroom/repo/memory"
	repomongo "github.com/tendant/simple-classroom/pkg/classroom/repo/mongo"
	repopg "github.com/tendant/simple-classroom/pkg/classroom/repo/postgres"
	fsstorage "github.com/tendant/simple-classroom/pkg/classroom/storage/fs"
	gcsstorage "github.com/tendant/simple-classroom/pkg/classroom/storage/gcs"
	memorystorage "github.com/tendant/simple-classroom/pkg/classroom/storage/memory"
	s3storage "github.com/tendant/simple-classroom/pkg/classroom/storage/s3"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:          "8080",
		Environment:   "development",
		LogLevel:      "info",
		DatabaseType:  "memory",
		DBSchema:      "classroom",
		MongoDatabase: "classroom",
		AutoMigrate:   true,
		Storage: StorageConfig{
			Type: "memory",
		},
		MaxFileSize:       classroom.DefaultMaxFileSize,
		DefaultAuthor:     classroom.DefaultAuthor,
		OrphanGracePeriod: classroom.DefaultOrphanGracePeriod,
	}
}

// ServerConfig represents configuration for the classroom server and CLI
type ServerConfig struct {
	Port        string
	Environment string // development, production, testing
	LogLevel    string

	// Database configuration
	DatabaseURL   string
	DatabaseType  string // "memory", "postgres", "mongo"
	DBSchema      string // Postgres schema to use (default: classroom)
	MongoDatabase string
	AutoMigrate   bool

	Storage StorageConfig

	// Upload pipeline
	MaxFileSize          int64
	MaxConcurrentUploads int // 0 means unbounded

	DefaultAuthor     string
	JWTSecret         string
	OrphanGracePeriod time.Duration
}

// StorageConfig selects and configures the blob store.
type StorageConfig struct {
	Type string // "memory", "fs", "s3", "gcs"

	// fs
	BaseDir   string
	URLPrefix string

	// s3 and gcs
	Bucket        string
	PublicBaseURL string

	// s3
	Region          string
	Endpoint        string
	UsePathStyle    bool
	AccessKeyID     string
	SecretAccessKey string
	PresignDuration int
	CreateBucket    bool

	// gcs
	CDNDomain       string
	CredentialsJSON string
	EmulatorHost    string
}

// Validate checks that the configuration is usable.
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port cannot be empty")
	}

	switch c.DatabaseType {
	case "memory":
	case "postgres", "mongo":
		if c.DatabaseURL == "" {
			return fmt.Errorf("database_url is required for %s", c.DatabaseType)
		}
	default:
		return fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}

	switch c.Storage.Type {
	case "memory":
	case "fs":
		if c.Storage.BaseDir == "" {
			return fmt.Errorf("filesystem storage requires a base directory")
		}
	case "s3", "gcs":
		if c.Storage.Bucket == "" {
			return fmt.Errorf("%s storage requires a bucket", c.Storage.Type)
		}
	default:
		return fmt.Errorf("unsupported storage type: %s", c.Storage.Type)
	}

	if c.MaxFileSize <= 0 {
		return fmt.Errorf("max file size must be positive, got: %d", c.MaxFileSize)
	}
	if c.MaxConcurrentUploads < 0 {
		return fmt.Errorf("max concurrent uploads cannot be negative, got: %d", c.MaxConcurrentUploads)
	}
	if c.OrphanGracePeriod < 0 {
		return fmt.Errorf("orphan grace period cannot be negative, got: %s", c.OrphanGracePeriod)
	}
	if c.Environment == "production" && c.JWTSecret == "" {
		return errors.New("jwt secret is required in production")
	}
	return nil
}

// Backends holds the opened record store and blob store. Close releases
// any connections they hold.
type Backends struct {
	Store   classroom.Store
	Blobs   classroom.BlobStore
	closers []func()
}

// Close releases the backends in reverse order of opening.
func (b *Backends) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
	b.closers = nil
}

// Open connects the configured record store and blob store.
func (c *ServerConfig) Open(ctx context.Context, log *zap.Logger) (*Backends, error) {
	if log == nil {
		log = zap.NewNop()
	}
	b := &Backends{}

	store, closeStore, err := c.buildStore(ctx)
	if err != nil {
		return nil, err
	}
	b.Store = store
	if closeStore != nil {
		b.closers = append(b.closers, closeStore)
	}

	blobs, closeBlobs, err := c.buildBlobStore(ctx)
	if err != nil {
		b.Close()
		return nil, err
	}
	b.Blobs = blobs
	if closeBlobs != nil {
		b.closers = append(b.closers, closeBlobs)
	}

	log.Info("backends opened",
		zap.String("database", c.DatabaseType),
		zap.String("storage", c.Storage.Type))
	return b, nil
}

// BuildService wires a classroom.Service on top of opened backends.
func (c *ServerConfig) BuildService(b *Backends, log *zap.Logger) (classroom.Service, error) {
	return classroom.New(
		classroom.WithStore(b.Store),
		classroom.WithBlobStore(b.Blobs),
		classroom.WithLogger(log),
		classroom.WithMaxFileSize(c.MaxFileSize),
		classroom.WithMaxConcurrentUploads(c.MaxConcurrentUploads),
		classroom.WithDefaultAuthor(c.DefaultAuthor),
	)
}

// BuildSweeper wires the orphan blob sweeper on top of opened backends.
func (c *ServerConfig) BuildSweeper(b *Backends, log *zap.Logger) (*classroom.OrphanSweeper, error) {
	return classroom.NewOrphanSweeper(b.Blobs, b.Store, classroom.SweeperConfig{
		GracePeriod: c.OrphanGracePeriod,
		Log:         log,
	})
}

func (c *ServerConfig) buildStore(ctx context.Context) (classroom.Store, func(), error) {
	switch c.DatabaseType {
	case "memory":
		return repomemory.New(), nil, nil
	case "postgres":
		pool, err := c.connectPostgres(ctx)
		if err != nil {
			return nil, nil, err
		}
		if c.AutoMigrate {
			if c.DBSchema != "" {
				if _, err := pool.Exec(ctx, "CREATE SCHEMA IF NOT EXISTS "+pgx.Identifier{c.DBSchema}.Sanitize()); err != nil {
					pool.Close()
					return nil, nil, fmt.Errorf("failed to create schema: %w", err)
				}
			}
			if err := repopg.Migrate(ctx, pool); err != nil {
				pool.Close()
				return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
			}
		}
		return repopg.NewWithPool(pool), pool.Close, nil
	case "mongo":
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(c.DatabaseURL))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to mongo: %w", err)
		}
		disconnect := func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(ctx)
		}
		if err := client.Ping(ctx, nil); err != nil {
			disconnect()
			return nil, nil, fmt.Errorf("failed to ping mongo: %w", err)
		}
		repo := repomongo.New(client.Database(c.MongoDatabase))
		if c.AutoMigrate {
			if err := repo.EnsureIndexes(ctx); err != nil {
				disconnect()
				return nil, nil, fmt.Errorf("failed to create indexes: %w", err)
			}
		}
		return repo, disconnect, nil
	default:
		return nil, nil, fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
}

func (c *ServerConfig) connectPostgres(ctx context.Context) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(c.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}
	if c.DBSchema != "" {
		schema := c.DBSchema
		poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			_, err := conn.Exec(ctx, "SET search_path TO "+pgx.Identifier{schema}.Sanitize())
			return err
		}
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

func (c *ServerConfig) buildBlobStore(ctx context.Context) (classroom.BlobStore, func(), error) {
	s := c.Storage
	switch s.Type {
	case "memory":
		return memorystorage.New(), nil, nil
	case "fs":
		b, err := fsstorage.New(fsstorage.Config{BaseDir: s.BaseDir, URLPrefix: s.URLPrefix})
		if err != nil {
			return nil, nil, err
		}
		return b, nil, nil
	case "s3":
		b, err := s3storage.New(s3storage.Config{
			Region:                 s.Region,
			Bucket:                 s.Bucket,
			AccessKeyID:            s.AccessKeyID,
			SecretAccessKey:        s.SecretAccessKey,
			Endpoint:               s.Endpoint,
			UsePathStyle:           s.UsePathStyle,
			PresignDuration:        s.PresignDuration,
			PublicBaseURL:          s.PublicBaseURL,
			CreateBucketIfNotExist: s.CreateBucket,
		})
		if err != nil {
			return nil, nil, err
		}
		return b, nil, nil
	case "gcs":
		b, err := gcsstorage.New(ctx, gcsstorage.Config{
			Bucket:          s.Bucket,
			CDNDomain:       s.CDNDomain,
			PublicBaseURL:   s.PublicBaseURL,
			CredentialsJSON: s.CredentialsJSON,
			EmulatorHost:    s.EmulatorHost,
		})
		if err != nil {
			return nil, nil, err
		}
		return b, func() { _ = b.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unsupported storage type: %s", s.Type)
	}
}
