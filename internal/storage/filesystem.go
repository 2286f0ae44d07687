package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"server/internal/domain"
)

// FileStore serves the PDF bucket from the local filesystem. It is
// intended for development and test environments where an object storage
// service is not available.
type FileStore struct {
	basePath string
	baseURL  string
}

// NewFileStore initializes a FileStore rooted at basePath. baseURL is the
// prefix under which the directory is served publicly.
func NewFileStore(basePath, baseURL string) (*FileStore, error) {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		return nil, errors.New("storage: base path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: ensure base path: %w", err)
	}
	return &FileStore{basePath: basePath, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Write persists the provided bytes at the given relative key. Keys are
// cleaned to prevent directory traversal. Used to seed development
// buckets and tests.
func (s *FileStore) Write(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return err
	}
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(cleanKey))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return fmt.Errorf("storage: ensure directory: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return fmt.Errorf("storage: write file: %w", err)
	}
	return nil
}

// List returns the files directly under prefix plus the immediate
// sub-directory names, mirroring a delimiter-based bucket listing.
func (s *FileStore) List(ctx context.Context, prefix string) ([]domain.StorageObject, []string, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	dir := s.basePath
	if prefix != "" {
		cleanPrefix, err := sanitizeKey(prefix)
		if err != nil {
			return nil, nil, err
		}
		dir = filepath.Join(s.basePath, filepath.FromSlash(cleanPrefix))
	}

	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("storage: list %q: %w", prefix, err)
	}

	var objects []domain.StorageObject
	var folders []string
	for _, entry := range dirEntries {
		if entry.IsDir() {
			folders = append(folders, entry.Name())
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, nil, fmt.Errorf("storage: stat %q: %w", entry.Name(), err)
		}
		objects = append(objects, domain.StorageObject{
			Name:      entry.Name(),
			Size:      info.Size(),
			CreatedAt: info.ModTime(),
		})
	}
	return objects, folders, nil
}

// PublicURL resolves the serving URL for an object path.
func (s *FileStore) PublicURL(path string) string {
	return s.baseURL + "/" + path
}

// Handler serves the stored files under the store's base URL, so every
// URL PublicURL hands out actually resolves when no bucket endpoint or
// CDN sits in front. Directories and keys escaping the root answer 404.
func (s *FileStore) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimPrefix(r.URL.Path, s.baseURL)
		cleanKey, err := sanitizeKey(key)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		fullPath := filepath.Join(s.basePath, filepath.FromSlash(cleanKey))
		info, err := os.Stat(fullPath)
		if err != nil || info.IsDir() {
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, fullPath)
	})
}

// sanitizeKey normalizes a key and prevents escaping the storage root.
func sanitizeKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New("storage: key is required")
	}
	key = strings.ReplaceAll(key, "\\", "/")
	key = strings.TrimPrefix(key, "./")
	key = strings.TrimLeft(key, "/")
	cleaned := filepath.Clean(key)
	cleaned = strings.ReplaceAll(cleaned, "\\", "/")
	if cleaned == "." || strings.HasPrefix(cleaned, "../") {
		return "", errors.New("storage: invalid key")
	}
	return cleaned, nil
}

var _ domain.ObjectStore = (*FileStore)(nil)
