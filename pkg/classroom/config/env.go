package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// envConfig lists the environment variables WithEnv understands. Unset
// variables leave the current value alone.
type envConfig struct {
	Port        string `env:"PORT"`
	Environment string `env:"ENVIRONMENT"`
	LogLevel    string `env:"LOG_LEVEL"`

	DatabaseURL   string `env:"DATABASE_URL"`
	DBSchema      string `env:"DB_SCHEMA"`
	MongoDatabase string `env:"MONGO_DATABASE"`
	AutoMigrate   string `env:"AUTO_MIGRATE"`

	StorageURL         string `env:"STORAGE_URL"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	AWSRegion          string `env:"AWS_REGION"`
	GCSCredentials     string `env:"GOOGLE_APPLICATION_CREDENTIALS"`
	GCSEmulatorHost    string `env:"STORAGE_EMULATOR_HOST"`

	MaxFileSize          string `env:"MAX_FILE_SIZE"`
	MaxConcurrentUploads string `env:"MAX_CONCURRENT_UPLOADS"`
	DefaultAuthor        string `env:"DEFAULT_AUTHOR"`
	JWTSecret            string `env:"JWT_SECRET"`
	OrphanGracePeriod    string `env:"ORPHAN_GRACE_PERIOD"`
}

// WithDotEnv loads the given .env files (default ".env") into the process
// environment. Missing files are ignored and existing variables win.
func WithDotEnv(files ...string) Option {
	return func(c *ServerConfig) error {
		if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load env file: %w", err)
		}
		return nil
	}
}

// WithEnv applies configuration from environment variables.
//
// DATABASE_URL selects the record store: "memory", postgres:// or
// postgresql:// URLs, and mongodb:// or mongodb+srv:// URLs.
//
// STORAGE_URL selects the blob store:
//
//	memory://
//	file:///var/lib/classroom?url_prefix=https://files.example.com
//	s3://bucket?region=us-east-1&endpoint=http://localhost:9000&path_style=true
//	gs://bucket?cdn=cdn.example.com
func WithEnv() Option {
	return func(c *ServerConfig) error {
		var env envConfig
		if err := cleanenv.ReadEnv(&env); err != nil {
			return fmt.Errorf("failed to read environment: %w", err)
		}

		setString(&c.Port, env.Port)
		setString(&c.Environment, env.Environment)
		setString(&c.LogLevel, env.LogLevel)
		setString(&c.DBSchema, env.DBSchema)
		setString(&c.MongoDatabase, env.MongoDatabase)
		setString(&c.DefaultAuthor, env.DefaultAuthor)
		setString(&c.JWTSecret, env.JWTSecret)

		if err := applyDatabaseURL(env.DatabaseURL, c); err != nil {
			return err
		}
		if err := applyStorageURL(env.StorageURL, c); err != nil {
			return err
		}

		switch c.Storage.Type {
		case "s3":
			setString(&c.Storage.AccessKeyID, env.AWSAccessKeyID)
			setString(&c.Storage.SecretAccessKey, env.AWSSecretAccessKey)
			if c.Storage.Region == "" {
				c.Storage.Region = env.AWSRegion
			}
		case "gcs":
			setString(&c.Storage.CredentialsJSON, env.GCSCredentials)
			if c.Storage.EmulatorHost == "" {
				c.Storage.EmulatorHost = env.GCSEmulatorHost
			}
		}

		if env.AutoMigrate != "" {
			v, err := strconv.ParseBool(env.AutoMigrate)
			if err != nil {
				return fmt.Errorf("invalid boolean for AUTO_MIGRATE: %w", err)
			}
			c.AutoMigrate = v
		}
		if env.MaxFileSize != "" {
			v, err := strconv.ParseInt(env.MaxFileSize, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer for MAX_FILE_SIZE: %w", err)
			}
			c.MaxFileSize = v
		}
		if env.MaxConcurrentUploads != "" {
			v, err := strconv.Atoi(env.MaxConcurrentUploads)
			if err != nil {
				return fmt.Errorf("invalid integer for MAX_CONCURRENT_UPLOADS: %w", err)
			}
			c.MaxConcurrentUploads = v
		}
		if env.OrphanGracePeriod != "" {
			v, err := time.ParseDuration(env.OrphanGracePeriod)
			if err != nil {
				return fmt.Errorf("invalid duration for ORPHAN_GRACE_PERIOD: %w", err)
			}
			c.OrphanGracePeriod = v
		}
		return nil
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func applyDatabaseURL(raw string, c *ServerConfig) error {
	switch {
	case raw == "":
		return nil
	case raw == "memory":
		c.DatabaseType = "memory"
		c.DatabaseURL = ""
	case strings.HasPrefix(raw, "postgres://"), strings.HasPrefix(raw, "postgresql://"):
		c.DatabaseType = "postgres"
		c.DatabaseURL = raw
	case strings.HasPrefix(raw, "mongodb://"), strings.HasPrefix(raw, "mongodb+srv://"):
		c.DatabaseType = "mongo"
		c.DatabaseURL = raw
		if u, err := url.Parse(raw); err == nil {
			if name := strings.Trim(u.Path, "/"); name != "" {
				c.MongoDatabase = name
			}
		}
	default:
		return fmt.Errorf("unsupported DATABASE_URL: %s", raw)
	}
	return nil
}

func applyStorageURL(raw string, c *ServerConfig) error {
	switch {
	case raw == "":
		return nil
	case raw == "memory", raw == "memory://":
		c.Storage = StorageConfig{Type: "memory"}
		return nil
	case strings.HasPrefix(raw, "file://"):
		path, query, _ := strings.Cut(strings.TrimPrefix(raw, "file://"), "?")
		if path == "" {
			return fmt.Errorf("STORAGE_URL file:// requires a path")
		}
		q, err := url.ParseQuery(query)
		if err != nil {
			return fmt.Errorf("invalid STORAGE_URL query: %w", err)
		}
		c.Storage = StorageConfig{Type: "fs", BaseDir: path, URLPrefix: q.Get("url_prefix")}
		return nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid STORAGE_URL: %w", err)
	}
	if u.Host == "" {
		return fmt.Errorf("STORAGE_URL %s requires a bucket", raw)
	}
	q := u.Query()

	switch u.Scheme {
	case "s3":
		s := StorageConfig{
			Type:          "s3",
			Bucket:        u.Host,
			Region:        q.Get("region"),
			Endpoint:      q.Get("endpoint"),
			PublicBaseURL: q.Get("public_base_url"),
		}
		if s.UsePathStyle, err = queryBool(q, "path_style"); err != nil {
			return err
		}
		if s.CreateBucket, err = queryBool(q, "create_bucket"); err != nil {
			return err
		}
		if v := q.Get("presign"); v != "" {
			if s.PresignDuration, err = strconv.Atoi(v); err != nil {
				return fmt.Errorf("invalid integer for presign: %w", err)
			}
		}
		c.Storage = s
	case "gs", "gcs":
		c.Storage = StorageConfig{
			Type:          "gcs",
			Bucket:        u.Host,
			CDNDomain:     q.Get("cdn"),
			PublicBaseURL: q.Get("public_base_url"),
			EmulatorHost:  q.Get("emulator"),
		}
	default:
		return fmt.Errorf("unsupported STORAGE_URL: %s", raw)
	}
	return nil
}

func queryBool(q url.Values, key string) (bool, error) {
	v := q.Get(key)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid boolean for %s: %w", key, err)
	}
	return b, nil
}
