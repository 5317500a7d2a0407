package config

import (
	"testing"

	"go.alis.build/alog"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"CLUBSHEET_STORAGE_DRIVER", "CLUBSHEET_SQLITE_PATH", "CLUBSHEET_BLOB_DRIVER", "CLUBSHEET_LOG_LEVEL", "CLUBSHEET_SENDGRID_API_KEY", "CLUBSHEET_SENDGRID_FROM"} {
		t.Setenv(k, "")
	}
	cfg := FromEnv()
	if cfg.Storage.Driver != "sqlite" || cfg.Storage.SQLitePath != "clubsheet.db" {
		t.Fatalf("unexpected storage defaults %+v", cfg.Storage)
	}
	if cfg.Blob.Driver != "fs" || cfg.Blob.FSRoot != "./archives" {
		t.Fatalf("unexpected blob defaults %+v", cfg.Blob)
	}
	if cfg.SendGrid.Enabled() {
		t.Fatalf("expected sendgrid disabled without credentials")
	}
	if cfg.Level() != alog.LevelInfo {
		t.Fatalf("expected info level, got %v", cfg.Level())
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("CLUBSHEET_STORAGE_DRIVER", "postgres")
	t.Setenv("CLUBSHEET_POSTGRES_DSN", "postgres://db/club")
	t.Setenv("CLUBSHEET_BLOB_DRIVER", "s3")
	t.Setenv("CLUBSHEET_BLOB_S3_BUCKET", "club-archives")
	t.Setenv("CLUBSHEET_BLOB_S3_PATH_STYLE", "TRUE")
	t.Setenv("CLUBSHEET_LOG_LEVEL", "debug")
	t.Setenv("CLUBSHEET_SENDGRID_API_KEY", "key")
	t.Setenv("CLUBSHEET_SENDGRID_FROM", "treasurer@example.org")
	cfg := FromEnv()
	if cfg.Storage.Driver != "postgres" || cfg.Storage.PostgresDSN != "postgres://db/club" {
		t.Fatalf("unexpected storage %+v", cfg.Storage)
	}
	if cfg.Blob.S3Bucket != "club-archives" || !cfg.Blob.S3PathStyle {
		t.Fatalf("unexpected blob %+v", cfg.Blob)
	}
	if cfg.Level() != alog.LevelDebug || !cfg.SendGrid.Enabled() {
		t.Fatalf("expected debug level and sendgrid enabled")
	}
}
