package search

import (
	"context"
	"errors"
	"testing"
)

type failingEmbedder struct{}

func (failingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, errors.New("connection refused")
}
func (failingEmbedder) Dimension() uint64 { return 768 }

type fixedEmbedder struct{}

func (fixedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}
func (fixedEmbedder) Dimension() uint64 { return 3 }

type failingVectors struct{}

func (failingVectors) EnsureCollection(ctx context.Context, dimension uint64) error {
	return errors.New("connection refused")
}
func (failingVectors) Upsert(ctx context.Context, points []Point) error {
	return errors.New("connection refused")
}
func (failingVectors) Query(ctx context.Context, vector []float32, limit uint64) ([]Scored, error) {
	return nil, errors.New("connection refused")
}

var testDocs = []Document{
	{ID: "1", File: "main.plan", Title: "water the plants", Kind: "task", Text: "water the plants"},
	{ID: "2", File: "main.plan", Title: "dentist", Kind: "task", Text: "dentist\ncheckup and cleaning"},
	{ID: "3", File: "notes.plan", Title: "garden plan", Kind: "note", Text: "garden plan\nplant tomatoes in may"},
}

func TestSearchFallsBackWhenEmbedderDown(t *testing.T) {
	svc := &Service{embedder: failingEmbedder{}, vectors: failingVectors{}}

	results, err := svc.Search(context.Background(), testDocs, "plant", 10)
	if err != nil {
		t.Fatalf("Search() error = %v, want fallback instead", err)
	}
	if len(results) != 2 {
		t.Fatalf("Search() returned %d results, want 2", len(results))
	}
	// Title match ranks above description-only match.
	if results[0].Title != "water the plants" {
		t.Errorf("first result = %q, want %q", results[0].Title, "water the plants")
	}
	if results[1].Title != "garden plan" {
		t.Errorf("second result = %q, want %q", results[1].Title, "garden plan")
	}
}

func TestSearchFallsBackWhenVectorStoreDown(t *testing.T) {
	svc := &Service{embedder: fixedEmbedder{}, vectors: failingVectors{}}

	results, err := svc.Search(context.Background(), testDocs, "DENTIST", 10)
	if err != nil {
		t.Fatalf("Search() error = %v, want fallback instead", err)
	}
	if len(results) != 1 || results[0].Title != "dentist" {
		t.Errorf("Search() = %v, want single case-insensitive match on dentist", results)
	}
}

func TestIndexPropagatesBackendError(t *testing.T) {
	svc := &Service{embedder: fixedEmbedder{}, vectors: failingVectors{}}
	if err := svc.Index(context.Background(), testDocs); err == nil {
		t.Error("Index() should fail when the vector backend is down")
	}
}

func TestSubstringSearchLimit(t *testing.T) {
	results := substringSearch(testDocs, "plan", 1)
	if len(results) != 1 {
		t.Errorf("substringSearch() returned %d results, want 1", len(results))
	}
}

func TestSubstringSearchNoMatch(t *testing.T) {
	if results := substringSearch(testDocs, "xyzzy", 10); len(results) != 0 {
		t.Errorf("substringSearch() = %v, want none", results)
	}
}
