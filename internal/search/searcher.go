// Package search provides keyword search over extracted lesson metadata.
package search

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/mvp-joe/course-validator/internal/lesson"
)

const (
	defaultLimit = 10
	maxLimit     = 100
	batchSize    = 1000

	unclassifiedModule = "unclassified"
)

// Searcher answers keyword queries over lesson titles, objectives and paths.
type Searcher interface {
	// Search runs a bleve query-string query. Supports field scoping
	// (title:hooks, module:2), boolean operators, phrases and wildcards.
	Search(ctx context.Context, query string, limit int) ([]*Result, error)

	// Close releases the index.
	Close() error
}

// Result is one matching lesson.
type Result struct {
	Path       string   `json:"path"`
	Title      string   `json:"title"`
	Module     *int     `json:"module"`
	Lesson     *int     `json:"lesson"`
	Score      float64  `json:"score"`
	Highlights []string `json:"highlights"`
}

type lessonSearcher struct {
	index bleve.Index
	mu    sync.RWMutex
}

// New builds an in-memory index over lessons.
func New(ctx context.Context, lessons []*lesson.LessonFile) (Searcher, error) {
	index, err := bleve.NewMemOnly(buildMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create bleve index: %w", err)
	}

	if err := indexLessons(ctx, index, lessons); err != nil {
		index.Close()
		return nil, fmt.Errorf("failed to index lessons: %w", err)
	}

	return &lessonSearcher{index: index}, nil
}

func buildMapping() *mapping.IndexMappingImpl {
	indexMapping := bleve.NewIndexMapping()

	text := func(analyzer string, termVectors bool) *mapping.FieldMapping {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = analyzer
		fm.Store = true
		fm.Index = true
		fm.IncludeTermVectors = termVectors
		return fm
	}

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("path", text("standard", false))
	docMapping.AddFieldMappingsAt("title", text("standard", true))
	docMapping.AddFieldMappingsAt("objectives", text("standard", true))
	docMapping.AddFieldMappingsAt("prerequisites", text("keyword", false))
	docMapping.AddFieldMappingsAt("module", text("keyword", false))
	docMapping.AddFieldMappingsAt("lesson", text("keyword", false))

	indexMapping.DefaultMapping = docMapping
	return indexMapping
}

func indexLessons(ctx context.Context, index bleve.Index, lessons []*lesson.LessonFile) error {
	batch := index.NewBatch()
	for i, l := range lessons {
		if i%batchSize == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		if err := batch.Index(l.Path, toDocument(l)); err != nil {
			return fmt.Errorf("failed to add lesson %s to batch: %w", l.Path, err)
		}

		if batch.Size() >= batchSize {
			if err := index.Batch(batch); err != nil {
				return fmt.Errorf("failed to execute batch: %w", err)
			}
			batch = index.NewBatch()
		}
	}

	if batch.Size() > 0 {
		if err := index.Batch(batch); err != nil {
			return fmt.Errorf("failed to execute final batch: %w", err)
		}
	}
	return nil
}

func toDocument(l *lesson.LessonFile) map[string]interface{} {
	return map[string]interface{}{
		"path":          l.Path,
		"title":         l.Title,
		"objectives":    l.Objectives,
		"prerequisites": l.Prerequisites,
		"module":        numberField(l.Module),
		"lesson":        numberField(l.Lesson),
	}
}

func numberField(n *int) string {
	if n == nil {
		return unclassifiedModule
	}
	return strconv.Itoa(*n)
}

func parseNumberField(v interface{}) *int {
	s, _ := v.(string)
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

// Search executes a bleve QueryStringQuery and returns hits by score, then path.
func (s *lessonSearcher) Search(ctx context.Context, queryStr string, limit int) ([]*Result, error) {
	if strings.TrimSpace(queryStr) == "" {
		return nil, fmt.Errorf("empty search query")
	}
	if limit <= 0 || limit > maxLimit {
		limit = defaultLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	req := bleve.NewSearchRequestOptions(bleve.NewQueryStringQuery(queryStr), limit, 0, false)
	highlightStyle := "html"
	req.Highlight = bleve.NewHighlight()
	req.Highlight.Style = &highlightStyle
	req.Highlight.Fields = []string{"title", "objectives"}
	req.Fields = []string{"path", "title", "module", "lesson"}

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("bleve search failed: %w", err)
	}

	results := make([]*Result, 0, len(res.Hits))
	for _, hit := range res.Hits {
		path, _ := hit.Fields["path"].(string)
		title, _ := hit.Fields["title"].(string)
		results = append(results, &Result{
			Path:       path,
			Title:      title,
			Module:     parseNumberField(hit.Fields["module"]),
			Lesson:     parseNumberField(hit.Fields["lesson"]),
			Score:      hit.Score,
			Highlights: extractHighlights(hit.Fragments),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Path < results[j].Path
	})
	return results, nil
}

// extractHighlights flattens fragments in field order, at most 3 per hit.
func extractHighlights(fragments map[string][]string) []string {
	var highlights []string
	for _, field := range []string{"title", "objectives"} {
		highlights = append(highlights, fragments[field]...)
	}
	if len(highlights) > 3 {
		highlights = highlights[:3]
	}
	return highlights
}

func (s *lessonSearcher) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index != nil {
		return s.index.Close()
	}
	return nil
}
