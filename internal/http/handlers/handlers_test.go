package handlers

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"server/internal/auth"
	"server/internal/catalog"
	"server/internal/domain"
	"server/internal/generation"
)

// memProfiles is an in-memory domain.ProfileRepository.
type memProfiles struct {
	mu       sync.Mutex
	profiles map[string]domain.UserProfile
	hashes   map[string]string
	listErr  error
}

func newMemProfiles() *memProfiles {
	return &memProfiles{
		profiles: map[string]domain.UserProfile{},
		hashes:   map[string]string{},
	}
}

func (m *memProfiles) Create(ctx context.Context, profile *domain.UserProfile, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.profiles {
		if p.Email == profile.Email {
			return domain.ErrEmailTaken
		}
	}
	m.profiles[profile.ID] = *profile
	m.hashes[profile.ID] = passwordHash
	return nil
}

func (m *memProfiles) GetByID(ctx context.Context, id string) (*domain.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (m *memProfiles) GetByEmail(ctx context.Context, email string) (*domain.UserProfile, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, p := range m.profiles {
		if p.Email == email {
			return &p, m.hashes[id], nil
		}
	}
	return nil, "", domain.ErrNotFound
}

func (m *memProfiles) List(ctx context.Context) ([]domain.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]domain.UserProfile, 0, len(m.profiles))
	for _, p := range m.profiles {
		out = append(out, p)
	}
	return out, nil
}

func (m *memProfiles) SetApproval(ctx context.Context, id string, approved bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.IsApproved = approved
	m.profiles[id] = p
	return nil
}

func (m *memProfiles) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.profiles[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.profiles, id)
	delete(m.hashes, id)
	return nil
}

func (m *memProfiles) setRole(id string, role domain.UserRole) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.profiles[id]
	p.Role = role
	m.profiles[id] = p
}

// memGenerations is an in-memory domain.GenerationRepository.
type memGenerations struct {
	mu      sync.Mutex
	records []domain.GenerationRecord
}

func (m *memGenerations) Insert(ctx context.Context, rec *domain.GenerationRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, *rec)
	return nil
}

func (m *memGenerations) CountSince(ctx context.Context, userID string, since time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.records {
		if r.UserID == userID && !r.GeneratedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (m *memGenerations) OldestSince(ctx context.Context, userID string, since time.Time) (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var oldest time.Time
	for _, r := range m.records {
		if r.UserID != userID || r.GeneratedAt.Before(since) {
			continue
		}
		if oldest.IsZero() || r.GeneratedAt.Before(oldest) {
			oldest = r.GeneratedAt
		}
	}
	if oldest.IsZero() {
		return time.Time{}, domain.ErrNotFound
	}
	return oldest, nil
}

func (m *memGenerations) ListSince(ctx context.Context, userID string, since time.Time) ([]domain.GenerationRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.GenerationRecord
	for _, r := range m.records {
		if r.UserID == userID && !r.GeneratedAt.Before(since) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memGenerations) seed(userID string, n int, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := 0; i < n; i++ {
		m.records = append(m.records, domain.GenerationRecord{
			UserID:      userID,
			PDFName:     "skript.pdf",
			GeneratedAt: at,
		})
	}
}

// memChunks is an in-memory domain.ChunkRepository.
type memChunks struct {
	chunks map[string][]domain.DocumentChunk
}

func (m *memChunks) ListByFile(ctx context.Context, fileName string) ([]domain.DocumentChunk, error) {
	return m.chunks[fileName], nil
}

// staticBucket is an in-memory domain.ObjectStore.
type staticBucket struct {
	objects map[string][]domain.StorageObject
	folders []string
	err     error
}

func (b *staticBucket) List(ctx context.Context, prefix string) ([]domain.StorageObject, []string, error) {
	if b.err != nil {
		return nil, nil, b.err
	}
	if prefix == "" {
		return b.objects[""], b.folders, nil
	}
	return b.objects[prefix], nil, nil
}

func (b *staticBucket) PublicURL(path string) string {
	return "https://cdn.example.com/fulldocs/" + path
}

type staticGenerator struct {
	questions []domain.TestQuestion
	err       error
}

func (g *staticGenerator) Generate(ctx context.Context, req generation.QuestionRequest) ([]domain.TestQuestion, error) {
	if g.err != nil {
		return nil, g.err
	}
	return g.questions, nil
}

type testEnv struct {
	app      *App
	profiles *memProfiles
	records  *memGenerations
	chunks   *memChunks
	bucket   *staticBucket
	model    *staticGenerator
}

func newTestEnv() *testEnv {
	logger := zerolog.Nop()
	profiles := newMemProfiles()
	records := &memGenerations{}
	chunks := &memChunks{chunks: map[string][]domain.DocumentChunk{
		"skript.pdf": {
			{ID: "c1", Content: "Kapitel 1", FileName: "skript.pdf", ChunkIndex: 0},
			{ID: "c2", Content: "Kapitel 2", FileName: "skript.pdf", ChunkIndex: 1},
		},
	}}
	bucket := &staticBucket{objects: map[string][]domain.StorageObject{
		"": {{Name: "skript.pdf", Size: 100, CreatedAt: time.Now()}},
	}}
	model := &staticGenerator{questions: []domain.TestQuestion{{
		Question:   "Was steht in Kapitel 1?",
		Type:       domain.QuestionOpen,
		Difficulty: domain.DifficultyEasy,
		Answer:     "Eine Einführung.",
	}}}

	tokens := auth.NewTokenManager("test-secret", time.Hour)
	svc := auth.NewService(profiles, tokens, logger)
	limiter := generation.NewRateLimiter(records, generation.DefaultLimit, logger)
	workflow := generation.NewWorkflow(limiter, chunks, model, generation.DefaultMaxChunks, 5, logger)

	return &testEnv{
		app: &App{
			Auth:     svc,
			Catalog:  catalog.NewService(bucket, logger),
			Workflow: workflow,
			Limiter:  limiter,
			Profiles: profiles,
			Logger:   logger,
		},
		profiles: profiles,
		records:  records,
		chunks:   chunks,
		bucket:   bucket,
		model:    model,
	}
}
