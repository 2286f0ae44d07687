// Package catalog derives the PDF listing from the object store. Entries
// are recomputed on every call; nothing is cached or persisted.
package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"server/internal/domain"
)

type Service struct {
	store  domain.ObjectStore
	logger zerolog.Logger
}

func NewService(store domain.ObjectStore, logger zerolog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// List materializes the full catalog: PDF leaves at the bucket root plus
// the PDF leaves of each immediate folder. Folder recursion is exactly
// one level deep; nested sub-folders are a documented boundary, not
// traversed. Any listing error aborts the whole fetch so callers never
// see partial results.
func (s *Service) List(ctx context.Context) ([]domain.PDFEntry, error) {
	objects, folders, err := s.store.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list bucket root: %w", err)
	}

	entries := make([]domain.PDFEntry, 0, len(objects))
	for _, obj := range objects {
		if !isPDF(obj.Name) {
			continue
		}
		entries = append(entries, newEntry(obj, obj.Name))
	}

	for _, folder := range folders {
		folderObjects, _, err := s.store.List(ctx, folder)
		if err != nil {
			return nil, fmt.Errorf("list folder %q: %w", folder, err)
		}
		for _, obj := range folderObjects {
			if !isPDF(obj.Name) {
				continue
			}
			entries = append(entries, newEntry(obj, folder+"/"+obj.Name))
		}
	}

	for i := range entries {
		entries[i].URL = s.store.PublicURL(entries[i].Path)
	}

	s.logger.Debug().Int("count", len(entries)).Msg("catalog listed")
	return entries, nil
}

func newEntry(obj domain.StorageObject, path string) domain.PDFEntry {
	return domain.PDFEntry{
		Name:      obj.Name,
		Path:      path,
		Size:      obj.Size,
		CreatedAt: obj.CreatedAt,
	}
}

func isPDF(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".pdf")
}
