package domain

import (
	"context"
	"time"
)

// ProfileRepository persists user profiles and their credentials.
type ProfileRepository interface {
	Create(ctx context.Context, profile *UserProfile, passwordHash string) error
	GetByID(ctx context.Context, id string) (*UserProfile, error)
	// GetByEmail returns the profile together with its password hash.
	GetByEmail(ctx context.Context, email string) (*UserProfile, string, error)
	List(ctx context.Context) ([]UserProfile, error)
	SetApproval(ctx context.Context, id string, approved bool) error
	Delete(ctx context.Context, id string) error
}

// GenerationRepository stores the append-only generation log.
type GenerationRepository interface {
	Insert(ctx context.Context, rec *GenerationRecord) error
	CountSince(ctx context.Context, userID string, since time.Time) (int, error)
	// OldestSince returns the timestamp of the oldest in-window record,
	// or ErrNotFound when the window is empty.
	OldestSince(ctx context.Context, userID string, since time.Time) (time.Time, error)
	ListSince(ctx context.Context, userID string, since time.Time) ([]GenerationRecord, error)
}

// ChunkRepository reads stored document chunks.
type ChunkRepository interface {
	// ListByFile returns every chunk whose metadata names fileName,
	// ordered by chunk index ascending.
	ListByFile(ctx context.Context, fileName string) ([]DocumentChunk, error)
}

// StorageObject is one object as reported by a bucket listing.
type StorageObject struct {
	Name      string
	Size      int64
	CreatedAt time.Time
}

// ObjectStore abstracts the PDF bucket. List is non-recursive: it
// returns the leaf objects directly under prefix plus the names of the
// immediate sub-folders.
type ObjectStore interface {
	List(ctx context.Context, prefix string) (objects []StorageObject, folders []string, err error)
	// PublicURL resolves a durable public URL for the object at path.
	PublicURL(path string) string
}
