// Package storage opens the configured workbook and archive backends.
package storage

import (
	"context"
	"fmt"

	"clubsheet/internal/blob"
	blobfs "clubsheet/internal/infra/blob/fs"
	blobmemory "clubsheet/internal/infra/blob/memory"
	blobs3 "clubsheet/internal/infra/blob/s3"
	"clubsheet/internal/config"
	"clubsheet/internal/infra/sheet/memory"
	"clubsheet/internal/infra/sheet/postgres"
	"clubsheet/internal/infra/sheet/sqlite"
	"clubsheet/internal/sheet"
)

// OpenWorkbook selects a workbook backend by driver name: memory, sqlite
// (default) or postgres.
func OpenWorkbook(ctx context.Context, cfg config.Storage) (sheet.Workbook, error) {
	driver := sheet.Driver(cfg.Driver)
	if driver == "" {
		driver = sheet.DriverSQLite
	}
	switch driver {
	case sheet.DriverMemory:
		return memory.New(), nil
	case sheet.DriverSQLite:
		wb, err := sqlite.NewWorkbook(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return wb, nil
	case sheet.DriverPostgres:
		wb, err := postgres.NewWorkbook(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		return wb, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// OpenBlobStore selects an archive store by driver name: fs (default), s3 or
// memory.
func OpenBlobStore(ctx context.Context, cfg config.Blob) (blob.Store, error) {
	driver := blob.Driver(cfg.Driver)
	if driver == "" {
		driver = blob.DriverFilesystem
	}
	switch driver {
	case blob.DriverFilesystem:
		s, err := blobfs.New(cfg.FSRoot)
		if err != nil {
			return nil, err
		}
		return s, nil
	case blob.DriverMemory:
		return blobmemory.New(), nil
	case blob.DriverS3:
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("CLUBSHEET_BLOB_S3_BUCKET required for s3 driver")
		}
		s, err := blobs3.New(ctx, blobs3.Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			PathStyle: cfg.S3PathStyle,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown blob driver %q", cfg.Driver)
	}
}
