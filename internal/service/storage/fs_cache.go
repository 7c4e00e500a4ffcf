package storage

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/team-mirai-volunteer/video-processor-sub003/internal/errors"
	"github.com/google/uuid"
)

const (
	defaultCacheTTL     = 24 * time.Hour
	defaultSignedURLTTL = 60 * time.Minute
)

// FSCacheStore implements CacheStore on a local directory. Entries expire
// after the store-owned TTL; expiry is derived from the file's modification
// time so no sidecar index is needed. Read URLs carry an HMAC-signed
// expiring token that a fronting file server can verify.
type FSCacheStore struct {
	basePath      string
	ttl           time.Duration
	signingSecret []byte
	publicBaseURL string
}

// NewFSCacheStore initializes an FSCacheStore rooted at basePath
func NewFSCacheStore(basePath string, ttl time.Duration, signingSecret, publicBaseURL string) (*FSCacheStore, error) {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "cache store base path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to ensure cache store base path")
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	publicBaseURL = strings.TrimRight(strings.TrimSpace(publicBaseURL), "/")
	if publicBaseURL == "" {
		publicBaseURL = "http://localhost:8080"
	}
	return &FSCacheStore{
		basePath:      basePath,
		ttl:           ttl,
		signingSecret: []byte(signingSecret),
		publicBaseURL: publicBaseURL,
	}, nil
}

// TTL returns the store-owned entry lifetime
func (s *FSCacheStore) TTL() time.Duration {
	return s.ttl
}

// Put stores content under a new cache key with the store-owned TTL
func (s *FSCacheStore) Put(ctx context.Context, r io.Reader, name string) (CacheEntry, error) {
	if err := ctx.Err(); err != nil {
		return CacheEntry{}, err
	}

	base := path.Base(strings.TrimSpace(name))
	if base == "" || base == "." || base == "/" {
		base = "blob"
	}
	base = strings.ReplaceAll(base, " ", "_")
	key := uuid.NewString() + "_" + base

	fullPath := filepath.Join(s.basePath, key)
	f, err := os.Create(fullPath)
	if err != nil {
		return CacheEntry{}, apperrors.Wrap(err, apperrors.CodeInternal, "failed to create cache entry")
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(fullPath)
		return CacheEntry{}, apperrors.Wrap(err, apperrors.CodeInternal, "failed to write cache entry")
	}
	if err := f.Close(); err != nil {
		return CacheEntry{}, apperrors.Wrap(err, apperrors.CodeInternal, "failed to close cache entry")
	}

	return CacheEntry{Key: key, ExpiresAt: time.Now().Add(s.ttl)}, nil
}

// Exists reports whether a non-expired entry is present for the key.
// Expired entries are removed on sight.
func (s *FSCacheStore) Exists(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return false, err
	}

	fullPath := filepath.Join(s.basePath, filepath.FromSlash(cleanKey))
	info, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, apperrors.Wrap(err, apperrors.CodeInternal, "failed to stat cache entry")
	}
	if s.expired(info.ModTime()) {
		os.Remove(fullPath)
		return false, nil
	}
	return true, nil
}

// ReadStream opens the cached content for reading; the caller closes it
func (s *FSCacheStore) ReadStream(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return nil, err
	}

	fullPath := filepath.Join(s.basePath, filepath.FromSlash(cleanKey))
	info, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.Newf(apperrors.CodeNotFound, "cache entry not found: %s", cleanKey)
		}
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to stat cache entry")
	}
	if s.expired(info.ModTime()) {
		os.Remove(fullPath)
		return nil, apperrors.Newf(apperrors.CodeNotFound, "cache entry expired: %s", cleanKey)
	}

	f, err := os.Open(fullPath)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to open cache entry")
	}
	return f, nil
}

// SignedURL returns a time-boxed URL granting read access to the entry
func (s *FSCacheStore) SignedURL(key string, ttl time.Duration) (string, error) {
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	if len(s.signingSecret) == 0 {
		return "", apperrors.New(apperrors.CodeValidation, "cache store signing secret is not configured")
	}
	if ttl <= 0 {
		ttl = defaultSignedURLTTL
	}

	expires := time.Now().Add(ttl).Unix()
	sig := s.sign(cleanKey, expires)
	return fmt.Sprintf("%s/cache/%s?expires=%d&sig=%s", s.publicBaseURL, url.PathEscape(cleanKey), expires, sig), nil
}

// Verify checks a signed-URL token: the signature must match and the expiry
// must be in the future. The serving side calls this before streaming.
func (s *FSCacheStore) Verify(key string, expiresUnix int64, signature string) error {
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return err
	}
	if len(s.signingSecret) == 0 {
		return apperrors.New(apperrors.CodeValidation, "cache store signing secret is not configured")
	}
	if time.Now().Unix() > expiresUnix {
		return apperrors.New(apperrors.CodeValidation, "signed URL has expired")
	}

	want := s.sign(cleanKey, expiresUnix)
	if !hmac.Equal([]byte(want), []byte(signature)) {
		return apperrors.New(apperrors.CodeValidation, "signed URL signature mismatch")
	}
	return nil
}

func (s *FSCacheStore) sign(key string, expiresUnix int64) string {
	mac := hmac.New(sha256.New, s.signingSecret)
	mac.Write([]byte(key))
	mac.Write([]byte("\n"))
	mac.Write([]byte(strconv.FormatInt(expiresUnix, 10)))
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *FSCacheStore) expired(modTime time.Time) bool {
	return time.Now().After(modTime.Add(s.ttl))
}
