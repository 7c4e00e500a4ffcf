package storage

import (
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	apperrors "github.com/team-mirai-volunteer/video-processor-sub003/internal/errors"
)

// FSOriginStore implements OriginStore on a local directory tree. File IDs
// are sanitized paths relative to the root, so a mounted share can serve as
// the origin in deployments without an object storage service.
type FSOriginStore struct {
	basePath string
}

// NewFSOriginStore initializes an FSOriginStore rooted at basePath
func NewFSOriginStore(basePath string) (*FSOriginStore, error) {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "origin store base path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to ensure origin store base path")
	}
	return &FSOriginStore{basePath: basePath}, nil
}

// BasePath returns the configured root directory
func (s *FSOriginStore) BasePath() string {
	return s.basePath
}

// GetMetadata returns file metadata for an origin file ID
func (s *FSOriginStore) GetMetadata(ctx context.Context, fileID string) (FileMetadata, error) {
	if err := ctx.Err(); err != nil {
		return FileMetadata{}, err
	}
	cleanID, err := sanitizeKey(fileID)
	if err != nil {
		return FileMetadata{}, err
	}

	info, err := os.Stat(s.fullPath(cleanID))
	if err != nil {
		if os.IsNotExist(err) {
			return FileMetadata{}, apperrors.Newf(apperrors.CodeNotFound, "origin file not found: %s", cleanID)
		}
		return FileMetadata{}, apperrors.Wrap(err, apperrors.CodeInternal, "failed to stat origin file")
	}
	if info.IsDir() {
		return FileMetadata{}, apperrors.Newf(apperrors.CodeValidation, "origin ID refers to a folder, not a file: %s", cleanID)
	}

	return FileMetadata{
		ID:        cleanID,
		Name:      path.Base(cleanID),
		SizeBytes: info.Size(),
	}, nil
}

// ReadStream opens the file content for reading; the caller closes it
func (s *FSOriginStore) ReadStream(ctx context.Context, fileID string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cleanID, err := sanitizeKey(fileID)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(s.fullPath(cleanID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.Newf(apperrors.CodeNotFound, "origin file not found: %s", cleanID)
		}
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to open origin file")
	}
	return f, nil
}

// Write stores content under the given name inside a parent folder. The
// returned ID is the file's path relative to the store root.
func (s *FSOriginStore) Write(ctx context.Context, r io.Reader, name, parentFolderID string) (WriteResult, error) {
	if err := ctx.Err(); err != nil {
		return WriteResult{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return WriteResult{}, apperrors.New(apperrors.CodeValidation, "file name is required")
	}

	relPath := path.Base(name)
	if parentFolderID != "" {
		cleanParent, err := sanitizeKey(parentFolderID)
		if err != nil {
			return WriteResult{}, err
		}
		relPath = path.Join(cleanParent, relPath)
	}

	fullPath := s.fullPath(relPath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return WriteResult{}, apperrors.Wrap(err, apperrors.CodeInternal, "failed to ensure origin directory")
	}

	f, err := os.Create(fullPath)
	if err != nil {
		return WriteResult{}, apperrors.Wrap(err, apperrors.CodeInternal, "failed to create origin file")
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(fullPath)
		return WriteResult{}, apperrors.Wrap(err, apperrors.CodeInternal, "failed to write origin file")
	}
	if err := f.Close(); err != nil {
		return WriteResult{}, apperrors.Wrap(err, apperrors.CodeInternal, "failed to close origin file")
	}

	abs, err := filepath.Abs(fullPath)
	if err != nil {
		abs = fullPath
	}
	return WriteResult{ID: relPath, PublicLink: "file://" + abs}, nil
}

// EnsureFolder creates the folder if missing and returns its ID
func (s *FSOriginStore) EnsureFolder(ctx context.Context, name, parentFolderID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperrors.New(apperrors.CodeValidation, "folder name is required")
	}

	relPath := path.Base(name)
	if parentFolderID != "" {
		cleanParent, err := sanitizeKey(parentFolderID)
		if err != nil {
			return "", err
		}
		relPath = path.Join(cleanParent, relPath)
	}

	if err := os.MkdirAll(s.fullPath(relPath), 0o755); err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeInternal, "failed to ensure folder")
	}
	return relPath, nil
}

func (s *FSOriginStore) fullPath(cleanID string) string {
	return filepath.Join(s.basePath, filepath.FromSlash(cleanID))
}

// sanitizeKey normalizes a key and prevents escaping the store root
func sanitizeKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", apperrors.New(apperrors.CodeValidation, "storage key is required")
	}
	key = strings.ReplaceAll(key, "\\", "/")
	key = strings.TrimPrefix(key, "./")
	key = strings.TrimLeft(key, "/")
	cleaned := filepath.Clean(key)
	cleaned = strings.ReplaceAll(cleaned, "\\", "/")
	if cleaned == "." || strings.HasPrefix(cleaned, "../") {
		return "", apperrors.Newf(apperrors.CodeValidation, "invalid storage key: %s", key)
	}
	return cleaned, nil
}
