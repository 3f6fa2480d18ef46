// Package search indexes tasks and notes into a vector collection and
// answers semantic queries, with a plain substring scan as fallback when
// the embedding or vector backend is unreachable.
package search

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/planfile/planfile/internal/logging"
	"github.com/planfile/planfile/internal/planfile"
)

// Document is one indexable task or note.
type Document struct {
	ID    string // Deterministic UUID, stable across re-indexing
	File  string
	Title string
	Kind  string // "task" or "note"
	Text  string // Title plus description, what gets embedded
}

// Result is one search hit.
type Result struct {
	File  string
	Title string
	Kind  string
	Score float32
}

type embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() uint64
}

type vectorStore interface {
	EnsureCollection(ctx context.Context, dimension uint64) error
	Upsert(ctx context.Context, points []Point) error
	Query(ctx context.Context, vector []float32, limit uint64) ([]Scored, error)
}

// Service ties the embedder and the vector store together.
type Service struct {
	embedder embedder
	vectors  vectorStore
}

// NewService creates a search service. Either backend may be nil; Search
// then always takes the substring fallback and Index fails.
func NewService(e *Embedder, v *VectorStore) *Service {
	s := &Service{}
	if e != nil {
		s.embedder = e
	}
	if v != nil {
		s.vectors = v
	}
	return s
}

// BuildDocuments extracts the indexable documents from a loaded collection.
func BuildDocuments(fs *planfile.Files) []Document {
	var docs []Document
	for _, sc := range fs.Commands() {
		var title, kind string
		var desc []string
		switch cmd := sc.Command.(type) {
		case *planfile.Task:
			title, kind, desc = cmd.Title, "task", cmd.Desc
		case *planfile.Note:
			title, kind, desc = cmd.Title, "note", cmd.Desc
		default:
			continue
		}

		file := fs.Path(sc.Source.File)
		text := title
		if len(desc) > 0 {
			text += "\n" + strings.Join(desc, "\n")
		}

		docs = append(docs, Document{
			ID:    uuid.NewSHA1(uuid.NameSpaceOID, []byte(file+"\x00"+title)).String(),
			File:  file,
			Title: title,
			Kind:  kind,
			Text:  text,
		})
	}
	return docs
}

// Index embeds all documents and upserts them into the collection.
func (s *Service) Index(ctx context.Context, docs []Document) error {
	if s.embedder == nil || s.vectors == nil {
		return errors.New("embedding and vector backends are required for indexing")
	}
	if err := s.vectors.EnsureCollection(ctx, s.embedder.Dimension()); err != nil {
		return err
	}

	points := make([]Point, 0, len(docs))
	for _, doc := range docs {
		vector, err := s.embedder.Embed(ctx, doc.Text)
		if err != nil {
			return err
		}
		points = append(points, Point{
			ID:     doc.ID,
			Vector: vector,
			Payload: map[string]interface{}{
				"file":  doc.File,
				"title": doc.Title,
				"kind":  doc.Kind,
			},
		})
	}

	if len(points) == 0 {
		return nil
	}
	return s.vectors.Upsert(ctx, points)
}

// Search runs a semantic query. When the embedding or vector backend is
// unreachable it degrades to a case-insensitive substring scan over the
// documents and logs a warning.
func (s *Service) Search(ctx context.Context, docs []Document, query string, limit int) ([]Result, error) {
	if s.embedder == nil || s.vectors == nil {
		return substringSearch(docs, query, limit), nil
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		logging.WithError(err).Warn("embedding backend unreachable, falling back to substring search")
		return substringSearch(docs, query, limit), nil
	}

	scored, err := s.vectors.Query(ctx, vector, uint64(limit))
	if err != nil {
		logging.WithError(err).Warn("vector backend unreachable, falling back to substring search")
		return substringSearch(docs, query, limit), nil
	}

	results := make([]Result, 0, len(scored))
	for _, hit := range scored {
		r := Result{Score: hit.Score}
		if v, ok := hit.Payload["file"].(string); ok {
			r.File = v
		}
		if v, ok := hit.Payload["title"].(string); ok {
			r.Title = v
		}
		if v, ok := hit.Payload["kind"].(string); ok {
			r.Kind = v
		}
		results = append(results, r)
	}
	return results, nil
}

// substringSearch is the offline fallback. Title matches rank above
// description-only matches.
func substringSearch(docs []Document, query string, limit int) []Result {
	needle := strings.ToLower(query)

	var results []Result
	for _, doc := range docs {
		var score float32
		switch {
		case strings.Contains(strings.ToLower(doc.Title), needle):
			score = 1
		case strings.Contains(strings.ToLower(doc.Text), needle):
			score = 0.5
		default:
			continue
		}
		results = append(results, Result{
			File:  doc.File,
			Title: doc.Title,
			Kind:  doc.Kind,
			Score: score,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}
