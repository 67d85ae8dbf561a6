package config

import (
	"fmt"
	"time"
)

// WithPort sets the server port
func WithPort(port string) Option {
	return func(c *ServerConfig) error {
		if port == "" {
			return fmt.Errorf("port cannot be empty")
		}
		c.Port = port
		return nil
	}
}

// WithEnvironment sets the environment name (development, production, testing)
func WithEnvironment(env string) Option {
	return func(c *ServerConfig) error {
		if env == "" {
			return fmt.Errorf("environment cannot be empty")
		}
		c.Environment = env
		return nil
	}
}

// WithLogLevel sets the minimum log level
func WithLogLevel(level string) Option {
	return func(c *ServerConfig) error {
		c.LogLevel = level
		return nil
	}
}

// WithDatabase configures the record store. dbType is "memory", "postgres"
// or "mongo".
func WithDatabase(dbType, url string) Option {
	return func(c *ServerConfig) error {
		switch dbType {
		case "memory", "postgres", "mongo":
		default:
			return fmt.Errorf("unsupported database type: %s", dbType)
		}
		c.DatabaseType = dbType
		c.DatabaseURL = url
		return nil
	}
}

// WithDatabaseSchema sets the Postgres schema
func WithDatabaseSchema(schema string) Option {
	return func(c *ServerConfig) error {
		c.DBSchema = schema
		return nil
	}
}

// WithMongoDatabase sets the Mongo database name
func WithMongoDatabase(name string) Option {
	return func(c *ServerConfig) error {
		if name == "" {
			return fmt.Errorf("mongo database name cannot be empty")
		}
		c.MongoDatabase = name
		return nil
	}
}

// WithAutoMigrate toggles schema migration and index creation on open
func WithAutoMigrate(enabled bool) Option {
	return func(c *ServerConfig) error {
		c.AutoMigrate = enabled
		return nil
	}
}

// WithMemoryStorage keeps blobs in process memory
func WithMemoryStorage() Option {
	return func(c *ServerConfig) error {
		c.Storage = StorageConfig{Type: "memory"}
		return nil
	}
}

// WithFilesystemStorage stores blobs below baseDir
func WithFilesystemStorage(baseDir, urlPrefix string) Option {
	return func(c *ServerConfig) error {
		if baseDir == "" {
			return fmt.Errorf("filesystem storage requires a base directory")
		}
		c.Storage = StorageConfig{Type: "fs", BaseDir: baseDir, URLPrefix: urlPrefix}
		return nil
	}
}

// WithS3Storage stores blobs in an S3 bucket
func WithS3Storage(bucket, region string) Option {
	return func(c *ServerConfig) error {
		if bucket == "" {
			return fmt.Errorf("S3 bucket cannot be empty")
		}
		if region == "" {
			region = "us-east-1"
		}
		c.Storage = StorageConfig{Type: "s3", Bucket: bucket, Region: region}
		return nil
	}
}

// WithS3Credentials sets static credentials for the S3 backend
func WithS3Credentials(accessKeyID, secretAccessKey string) Option {
	return func(c *ServerConfig) error {
		if c.Storage.Type != "s3" {
			return fmt.Errorf("S3 credentials require s3 storage, have %q", c.Storage.Type)
		}
		c.Storage.AccessKeyID = accessKeyID
		c.Storage.SecretAccessKey = secretAccessKey
		return nil
	}
}

// WithS3Endpoint points the S3 backend at an S3-compatible service such as MinIO
func WithS3Endpoint(endpoint string, usePathStyle bool) Option {
	return func(c *ServerConfig) error {
		if c.Storage.Type != "s3" {
			return fmt.Errorf("S3 endpoint requires s3 storage, have %q", c.Storage.Type)
		}
		c.Storage.Endpoint = endpoint
		c.Storage.UsePathStyle = usePathStyle
		return nil
	}
}

// WithGCSStorage stores blobs in a Cloud Storage bucket
func WithGCSStorage(bucket, credentialsJSON string) Option {
	return func(c *ServerConfig) error {
		if bucket == "" {
			return fmt.Errorf("GCS bucket cannot be empty")
		}
		c.Storage = StorageConfig{Type: "gcs", Bucket: bucket, CredentialsJSON: credentialsJSON}
		return nil
	}
}

// WithPublicBaseURL serves s3 or gcs objects from a permanent public URL
func WithPublicBaseURL(base string) Option {
	return func(c *ServerConfig) error {
		c.Storage.PublicBaseURL = base
		return nil
	}
}

// WithMaxFileSize sets the per-file upload cap in bytes
func WithMaxFileSize(n int64) Option {
	return func(c *ServerConfig) error {
		if n <= 0 {
			return fmt.Errorf("max file size must be positive, got: %d", n)
		}
		c.MaxFileSize = n
		return nil
	}
}

// WithMaxConcurrentUploads bounds the files of one batch in flight at once
func WithMaxConcurrentUploads(n int) Option {
	return func(c *ServerConfig) error {
		if n < 0 {
			return fmt.Errorf("max concurrent uploads cannot be negative, got: %d", n)
		}
		c.MaxConcurrentUploads = n
		return nil
	}
}

func WithDefaultAuthor(name string) Option {
	return func(c *ServerConfig) error {
		c.DefaultAuthor = name
		return nil
	}
}

// WithJWTSecret sets the HS256 secret bearer tokens are verified with
func WithJWTSecret(secret string) Option {
	return func(c *ServerConfig) error {
		c.JWTSecret = secret
		return nil
	}
}

// WithOrphanGracePeriod sets how old an unreferenced blob must be before the
// sweeper removes it
func WithOrphanGracePeriod(d time.Duration) Option {
	return func(c *ServerConfig) error {
		if d < 0 {
			return fmt.Errorf("orphan grace period cannot be negative, got: %s", d)
		}
		c.OrphanGracePeriod = d
		return nil
	}
}
