package storage

import (
	"context"
	"io"
	"time"
)

// OriginStore defines operations against the durable blob store that holds
// source videos and receives produced artifacts (clips, composed videos).
type OriginStore interface {
	// GetMetadata returns file metadata for an origin file ID
	GetMetadata(ctx context.Context, fileID string) (FileMetadata, error)
	// ReadStream opens the file content for reading; the caller closes it
	ReadStream(ctx context.Context, fileID string) (io.ReadCloser, error)
	// Write stores content under the given name inside a parent folder
	Write(ctx context.Context, r io.Reader, name, parentFolderID string) (WriteResult, error)
	// EnsureFolder creates the folder if missing and returns its ID
	EnsureFolder(ctx context.Context, name, parentFolderID string) (string, error)
}

// CacheStore defines operations against the fast expiring blob cache that
// fronts the origin store during processing.
type CacheStore interface {
	// Put stores content under a new cache key with the store-owned TTL
	Put(ctx context.Context, r io.Reader, name string) (CacheEntry, error)
	// Exists reports whether a non-expired entry is present for the key
	Exists(ctx context.Context, key string) (bool, error)
	// ReadStream opens the cached content for reading; the caller closes it
	ReadStream(ctx context.Context, key string) (io.ReadCloser, error)
	// SignedURL returns a time-boxed URL granting read access to the entry
	SignedURL(key string, ttl time.Duration) (string, error)
}

// FileMetadata describes one origin file
type FileMetadata struct {
	ID        string
	Name      string
	SizeBytes int64
}

// WriteResult identifies a stored origin file
type WriteResult struct {
	ID         string
	PublicLink string
}

// CacheEntry identifies a cached blob and its expiry
type CacheEntry struct {
	Key       string
	ExpiresAt time.Time
}
