// Package config reads clubsheet settings from the environment.
package config

import (
	"os"
	"strings"

	"go.alis.build/alog"
)

// Storage selects and locates the workbook backend.
type Storage struct {
	Driver      string
	SQLitePath  string
	PostgresDSN string
}

// Blob selects and locates the archive store.
type Blob struct {
	Driver      string
	FSRoot      string
	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3PathStyle bool
}

// SendGrid enables receipt emails when both fields are set.
type SendGrid struct {
	APIKey string
	From   string
}

// Enabled reports whether receipts can be sent through SendGrid.
func (s SendGrid) Enabled() bool { return s.APIKey != "" && s.From != "" }

// Config is the full process configuration.
type Config struct {
	Storage     Storage
	Blob        Blob
	SendGrid    SendGrid
	LogLevel    string
	MetricsFile string
}

const (
	defaultStorageDriver = "sqlite"
	defaultSQLitePath    = "clubsheet.db"
	defaultPostgresDSN   = "postgres://localhost:5432/clubsheet?sslmode=disable"
	defaultBlobDriver    = "fs"
	defaultBlobRoot      = "./archives"
	defaultLogLevel      = "info"
)

// FromEnv reads every CLUBSHEET_* variable, applying defaults for unset ones.
func FromEnv() Config {
	return Config{
		Storage: Storage{
			Driver:      env("CLUBSHEET_STORAGE_DRIVER", defaultStorageDriver),
			SQLitePath:  env("CLUBSHEET_SQLITE_PATH", defaultSQLitePath),
			PostgresDSN: env("CLUBSHEET_POSTGRES_DSN", defaultPostgresDSN),
		},
		Blob: Blob{
			Driver:      env("CLUBSHEET_BLOB_DRIVER", defaultBlobDriver),
			FSRoot:      env("CLUBSHEET_BLOB_FS_ROOT", defaultBlobRoot),
			S3Bucket:    os.Getenv("CLUBSHEET_BLOB_S3_BUCKET"),
			S3Region:    os.Getenv("CLUBSHEET_BLOB_S3_REGION"),
			S3Endpoint:  os.Getenv("CLUBSHEET_BLOB_S3_ENDPOINT"),
			S3PathStyle: strings.EqualFold(os.Getenv("CLUBSHEET_BLOB_S3_PATH_STYLE"), "true"),
		},
		SendGrid: SendGrid{
			APIKey: os.Getenv("CLUBSHEET_SENDGRID_API_KEY"),
			From:   os.Getenv("CLUBSHEET_SENDGRID_FROM"),
		},
		LogLevel:    env("CLUBSHEET_LOG_LEVEL", defaultLogLevel),
		MetricsFile: os.Getenv("CLUBSHEET_METRICS_FILE"),
	}
}

func env(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// Level maps the configured level name onto an alog level. Unknown names
// fall back to info.
func (c Config) Level() alog.LogLevel {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return alog.LevelDebug
	case "notice":
		return alog.LevelNotice
	case "warn", "warning":
		return alog.LevelWarning
	case "error":
		return alog.LevelError
	default:
		return alog.LevelInfo
	}
}
