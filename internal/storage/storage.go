package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Storage defines the interface for file storage operations
type Storage interface {
	// Save stores a file at the given path
	Save(ctx context.Context, path string, reader io.Reader, contentType string) error

	// Get retrieves a file from the given path
	Get(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes a file at the given path
	Delete(ctx context.Context, path string) error

	// Exists checks if a file exists at the given path
	Exists(ctx context.Context, path string) (bool, error)

	// GetURL returns a public URL for the file
	GetURL(ctx context.Context, path string) (string, error)

	// GetSignedURL returns a temporary signed URL for private files
	GetSignedURL(ctx context.Context, path string, expiry time.Duration) (string, error)
}

// Config holds storage configuration
type Config struct {
	Type       string // local, s3, cloudflare_r2
	BasePath   string // For local storage
	BaseURL    string // Public URL base
	Bucket     string // For S3/R2
	Region     string // For S3
	AccessKey  string // For S3/R2
	SecretKey  string // For S3/R2
	Endpoint   string // For R2 or custom S3
	PublicRead bool   // Make files public by default
}

// NewStorage creates a new storage instance based on configuration
func NewStorage(cfg Config) (Storage, error) {
	switch cfg.Type {
	case "local":
		return NewLocalStorage(cfg)
	case "s3", "cloudflare_r2":
		return NewCloudflareR2Storage(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

// StoredObject describes a stored file: an opaque key plus a public URL
type StoredObject struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// StoreInput accepts either an in-memory payload or a file reference.
// The distinction is resolved here, before the backend call.
type StoreInput struct {
	Bytes       []byte
	FilePath    string
	FileName    string
	ContentType string
}

// Store resolves the input shape, generates a unique key inside the
// logical folder and saves the file, returning its descriptor.
func Store(ctx context.Context, s Storage, in StoreInput, folder string) (*StoredObject, error) {
	var reader io.Reader

	switch {
	case in.Bytes != nil:
		reader = bytes.NewReader(in.Bytes)
	case in.FilePath != "":
		f, err := os.Open(in.FilePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open source file: %w", err)
		}
		defer f.Close()
		reader = f
		if in.FileName == "" {
			in.FileName = filepath.Base(in.FilePath)
		}
	default:
		return nil, fmt.Errorf("store input must carry bytes or a file path")
	}

	key := fmt.Sprintf("%s/%s%s", folder, uuid.NewString(), filepath.Ext(in.FileName))

	if err := s.Save(ctx, key, reader, in.ContentType); err != nil {
		return nil, err
	}

	url, err := s.GetURL(ctx, key)
	if err != nil {
		return nil, err
	}

	return &StoredObject{Key: key, URL: url}, nil
}

// KeyFromURL maps a public URL back to its storage key by stripping
// the configured base URL prefix. Returns false for foreign URLs.
func KeyFromURL(baseURL, fileURL string) (string, bool) {
	prefix := strings.TrimRight(baseURL, "/") + "/"
	if !strings.HasPrefix(fileURL, prefix) {
		return "", false
	}
	return strings.TrimPrefix(fileURL, prefix), true
}
