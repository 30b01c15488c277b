// Package pipeline runs discovery, header extraction and outline building
// for a course tree.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/maypok86/otter"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mvp-joe/course-validator/internal/config"
	"github.com/mvp-joe/course-validator/internal/extractor"
	"github.com/mvp-joe/course-validator/internal/lesson"
	"github.com/mvp-joe/course-validator/internal/outline"
	"github.com/mvp-joe/course-validator/internal/scanner"
)

// Stats tracks what a run processed.
type Stats struct {
	Files        int
	Placeholders int
	CacheHits    int
	Modules      int
	Issues       int
	Duration     time.Duration
}

// Result is the outcome of one validation run.
type Result struct {
	RunID   string
	Root    string
	Outline *outline.CourseOutline
	Issues  []lesson.Issue
	Stats   Stats
}

// IssuesFor returns the issues that reference path.
func (r *Result) IssuesFor(path string) []lesson.Issue {
	var out []lesson.Issue
	for _, issue := range r.Issues {
		if issue.Refers(path) {
			out = append(out, issue)
		}
	}
	return out
}

// HasErrors reports whether any issue should fail the run.
func (r *Result) HasErrors() bool {
	return lesson.HasErrors(r.Issues)
}

// extraction is the outcome of reading one lesson file.
type extraction struct {
	lesson *lesson.LessonFile
	err    error // header problem, never fatal
	cached bool
}

// cachedLesson is an extraction outcome keyed on file identity.
type cachedLesson struct {
	size    int64
	modTime time.Time
	lesson  *lesson.LessonFile
	err     error
}

// Pipeline validates course trees. A Pipeline may be reused across runs;
// extraction results are cached between runs for unchanged files.
type Pipeline struct {
	cfg       *config.Config
	extractor *extractor.Extractor
	cache     otter.Cache[string, cachedLesson]
	hasCache  bool
	logger    *zap.Logger
	progress  ProgressReporter
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithProgress sets the progress reporter.
func WithProgress(progress ProgressReporter) Option {
	return func(p *Pipeline) {
		if progress != nil {
			p.progress = progress
		}
	}
}

// New creates a pipeline from cfg.
func New(cfg *config.Config, opts ...Option) (*Pipeline, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	p := &Pipeline{
		cfg:       cfg,
		extractor: extractor.New(cfg.ExtractorOptions()),
		logger:    zap.NewNop(),
		progress:  &NoOpProgressReporter{},
	}
	for _, opt := range opts {
		opt(p)
	}

	if cfg.Pipeline.CacheSize > 0 {
		cache, err := otter.MustBuilder[string, cachedLesson](cfg.Pipeline.CacheSize).Build()
		if err != nil {
			return nil, fmt.Errorf("failed to create extraction cache: %w", err)
		}
		p.cache = cache
		p.hasCache = true
	}

	return p, nil
}

// Close releases the extraction cache.
func (p *Pipeline) Close() {
	if p.hasCache {
		p.cache.Close()
	}
}

// Run scans root, extracts every lesson header and builds the outline.
// Filesystem failures are fatal and returned as *lesson.IOError; content
// problems are reported in Result.Issues.
func (p *Pipeline) Run(ctx context.Context, root string) (*Result, error) {
	startTime := time.Now()
	runID := uuid.NewString()
	logger := p.logger.With(zap.String("run_id", runID), zap.String("root", root))

	s, err := scanner.New(root, p.cfg.Paths.Lessons, p.cfg.Paths.Ignore)
	if err != nil {
		return nil, fmt.Errorf("failed to compile lesson patterns: %w", err)
	}

	p.progress.OnDiscoveryStart()
	files, err := s.Scan()
	if err != nil {
		return nil, err
	}
	p.progress.OnDiscoveryComplete(len(files))
	logger.Debug("Discovered lesson files", zap.Int("files", len(files)))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lessons, issues, cacheHits, err := p.extractAll(ctx, root, files)
	if err != nil {
		return nil, err
	}

	courseOutline, outlineIssues := outline.Build(lessons)
	issues = append(issues, outlineIssues...)
	lesson.SortIssues(issues)

	stats := Stats{
		Files:     len(lessons),
		CacheHits: cacheHits,
		Modules:   len(courseOutline.Modules),
		Issues:    len(issues),
		Duration:  time.Since(startTime),
	}
	for _, l := range lessons {
		if l.Placeholder {
			stats.Placeholders++
		}
	}
	p.progress.OnComplete(&stats)

	logger.Info("Course validated",
		zap.Int("files", stats.Files),
		zap.Int("modules", stats.Modules),
		zap.Int("issues", stats.Issues),
		zap.Int("placeholders", stats.Placeholders),
		zap.Int("cache_hits", stats.CacheHits),
		zap.Duration("duration", stats.Duration))

	return &Result{
		RunID:   runID,
		Root:    root,
		Outline: courseOutline,
		Issues:  issues,
		Stats:   stats,
	}, nil
}

// extractAll reads and parses files with a bounded worker pool. Results are
// stored by index; completion order does not matter because the outline
// builder re-sorts.
func (p *Pipeline) extractAll(ctx context.Context, root string, files []string) ([]*lesson.LessonFile, []lesson.Issue, int, error) {
	results := make([]extraction, len(files))

	p.progress.OnFileProcessingStart(len(files))

	var progressMu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, p.cfg.Pipeline.Workers))

	for i, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			relPath, err := filepath.Rel(root, file)
			if err != nil {
				return &lesson.IOError{Path: file, Err: err}
			}
			relPath = filepath.ToSlash(relPath)

			result, err := p.extractFile(file, relPath)
			if err != nil {
				return err
			}
			results[i] = result

			progressMu.Lock()
			p.progress.OnFileProcessed(relPath)
			progressMu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, 0, err
	}

	lessons := make([]*lesson.LessonFile, 0, len(results))
	var issues []lesson.Issue
	hits := 0
	for _, r := range results {
		lessons = append(lessons, r.lesson)
		issues = append(issues, extractor.Issues(r.lesson, r.err)...)
		if r.cached {
			hits++
		}
		if r.err != nil {
			p.logger.Debug("Header problem", zap.String("path", r.lesson.Path), zap.Error(r.err))
		}
	}
	return lessons, issues, hits, nil
}

// extractFile returns the extraction outcome for one file, using the cache
// when size and modification time are unchanged. Only the header window of
// the file is read. The returned error is a fatal *lesson.IOError.
func (p *Pipeline) extractFile(file, relPath string) (extraction, error) {
	info, err := os.Stat(file)
	if err != nil {
		return extraction{}, &lesson.IOError{Path: file, Err: err}
	}

	if p.hasCache {
		if c, ok := p.cache.Get(file); ok && c.size == info.Size() && c.modTime.Equal(info.ModTime()) && c.lesson.Path == relPath {
			return extraction{lesson: c.lesson, err: c.err, cached: true}, nil
		}
	}

	f, err := os.Open(file)
	if err != nil {
		return extraction{}, &lesson.IOError{Path: file, Err: err}
	}
	defer f.Close()

	lf, headerErr := p.extractor.ExtractFrom(relPath, f)
	var ioErr *lesson.IOError
	if errors.As(headerErr, &ioErr) {
		return extraction{}, &lesson.IOError{Path: file, Err: ioErr.Err}
	}

	if p.hasCache {
		p.cache.Set(file, cachedLesson{size: info.Size(), modTime: info.ModTime(), lesson: lf, err: headerErr})
	}
	return extraction{lesson: lf, err: headerErr}, nil
}
