package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"server/internal/domain"
)

type fakeBucket struct {
	// listing keyed by prefix; "" is the root
	objects map[string][]domain.StorageObject
	folders map[string][]string
	failOn  string
	calls   []string
}

func (f *fakeBucket) List(ctx context.Context, prefix string) ([]domain.StorageObject, []string, error) {
	f.calls = append(f.calls, prefix)
	if f.failOn != "" && prefix == f.failOn {
		return nil, nil, errors.New("listing failed")
	}
	return f.objects[prefix], f.folders[prefix], nil
}

func (f *fakeBucket) PublicURL(path string) string {
	return "https://cdn.example.com/fulldocs/" + path
}

func TestListDepthOne(t *testing.T) {
	bucket := &fakeBucket{
		objects: map[string][]domain.StorageObject{
			"":     {{Name: "root.pdf", Size: 10}, {Name: "notes.txt"}},
			"docs": {{Name: "a.pdf", Size: 20}},
			// nested/b.pdf lives one level deeper and must stay invisible
			"docs/nested": {{Name: "b.pdf"}},
		},
		folders: map[string][]string{
			"":     {"docs"},
			"docs": {"nested"},
		},
	}
	svc := NewService(bucket, zerolog.Nop())

	entries, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("List() returned %d entries, want 2: %+v", len(entries), entries)
	}
	if entries[0].Path != "root.pdf" || entries[1].Path != "docs/a.pdf" {
		t.Fatalf("List() paths = %q, %q", entries[0].Path, entries[1].Path)
	}
	for _, e := range entries {
		if e.URL != "https://cdn.example.com/fulldocs/"+e.Path {
			t.Fatalf("entry URL = %q", e.URL)
		}
	}
	for _, call := range bucket.calls {
		if call == "docs/nested" {
			t.Fatalf("catalog descended into a nested sub-folder")
		}
	}
}

func TestListCaseInsensitivePDFMatch(t *testing.T) {
	bucket := &fakeBucket{
		objects: map[string][]domain.StorageObject{
			"": {{Name: "Skript.PDF"}, {Name: "image.png"}},
		},
	}
	svc := NewService(bucket, zerolog.Nop())

	entries, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "Skript.PDF" {
		t.Fatalf("List() = %+v", entries)
	}
}

func TestListFolderErrorAbortsAll(t *testing.T) {
	bucket := &fakeBucket{
		objects: map[string][]domain.StorageObject{
			"": {{Name: "root.pdf"}},
		},
		folders: map[string][]string{"": {"docs"}},
		failOn:  "docs",
	}
	svc := NewService(bucket, zerolog.Nop())

	if _, err := svc.List(context.Background()); err == nil {
		t.Fatalf("List() expected error when a folder listing fails")
	}
}

func TestListRootErrorAbortsAll(t *testing.T) {
	svc := NewService(&failingBucket{}, zerolog.Nop())
	if _, err := svc.List(context.Background()); err == nil {
		t.Fatalf("List() expected error when the root listing fails")
	}
}

type failingBucket struct{}

func (f *failingBucket) List(ctx context.Context, prefix string) ([]domain.StorageObject, []string, error) {
	return nil, nil, errors.New("bucket unavailable")
}

func (f *failingBucket) PublicURL(path string) string { return "" }
