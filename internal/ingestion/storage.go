// Package ingestion orchestrates a districtscope run: input storage,
// pipeline execution, and result storage.
package ingestion

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned by Get when a run or one of its documents does
// not exist.
var ErrNotFound = errors.New("not found")

// Kind names a document stored for a run.
type Kind string

const (
	KindHistory     Kind = "history"
	KindFilings     Kind = "filings"
	KindOpportunity Kind = "opportunity"
)

// StorageClient abstracts blob storage for run documents.
type StorageClient interface {
	Put(ctx context.Context, runID string, kind Kind, data []byte) error
	Get(ctx context.Context, runID string, kind Kind) ([]byte, error)
}

// StorageConfig selects and configures a storage backend.
type StorageConfig struct {
	Backend   string // local, gcs, s3
	Path      string
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// NewStorage creates the StorageClient selected by cfg.Backend.
func NewStorage(ctx context.Context, cfg StorageConfig) (StorageClient, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", "local":
		if cfg.Path == "" {
			return nil, errors.New("local storage requires a path")
		}
		return NewLocalStorage(cfg.Path), nil
	case "gcs":
		if cfg.Bucket == "" {
			return nil, errors.New("gcs storage requires a bucket")
		}
		return NewGCSStorage(ctx, cfg.Bucket)
	case "s3":
		if cfg.Bucket == "" {
			return nil, errors.New("s3 storage requires a bucket")
		}
		return NewS3Storage(ctx, S3Config{
			Bucket:    cfg.Bucket,
			Region:    cfg.Region,
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
		})
	default:
		return nil, fmt.Errorf("unknown storage backend %q (want local, gcs or s3)", cfg.Backend)
	}
}

// objectKey returns the backend-neutral key of a run document.
func objectKey(runID string, kind Kind) (string, error) {
	if runID == "" || strings.ContainsAny(runID, `/\`) || strings.Contains(runID, "..") {
		return "", fmt.Errorf("invalid run id %q", runID)
	}
	return "runs/" + runID + "/" + string(kind) + ".json", nil
}

// LocalStorage implements StorageClient using the local filesystem.
// Useful for development and testing.
type LocalStorage struct {
	BaseDir string
}

// NewLocalStorage creates a LocalStorage rooted at the given directory.
func NewLocalStorage(baseDir string) *LocalStorage {
	return &LocalStorage{BaseDir: baseDir}
}

func (s *LocalStorage) path(runID string, kind Kind) (string, error) {
	key, err := objectKey(runID, kind)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.BaseDir, filepath.FromSlash(key)), nil
}

// Put stores a run document.
func (s *LocalStorage) Put(ctx context.Context, runID string, kind Kind, data []byte) error {
	path, err := s.path(runID, kind)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Get retrieves a run document.
func (s *LocalStorage) Get(ctx context.Context, runID string, kind Kind) ([]byte, error) {
	path, err := s.path(runID, kind)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s for run %s: %w", kind, runID, ErrNotFound)
	}
	return data, err
}
