package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/mvp-joe/course-validator/internal/lesson"
)

// OutlineReader reads stored validation runs.
type OutlineReader struct {
	db *sql.DB
}

// NewOutlineReader creates an OutlineReader.
func NewOutlineReader(db *sql.DB) *OutlineReader {
	return &OutlineReader{db: db}
}

// LatestRun returns the most recently stored run, optionally limited to one
// course root. Returns (nil, nil) when nothing has been stored.
func (r *OutlineReader) LatestRun(ctx context.Context, root string) (*RunRecord, error) {
	query := sq.Select(
		"run_id", "root", "created_at", "duration_ms",
		"file_count", "placeholder_count", "error_count", "warning_count",
	).
		From("runs").
		OrderBy("created_at DESC", "rowid DESC").
		Limit(1)
	if root != "" {
		query = query.Where(sq.Eq{"root": root})
	}

	var (
		run        RunRecord
		createdAt  string
		durationMS int64
	)
	err := query.RunWith(r.db).QueryRowContext(ctx).Scan(
		&run.RunID,
		&run.Root,
		&createdAt,
		&durationMS,
		&run.Files,
		&run.Placeholders,
		&run.Errors,
		&run.Warnings,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest run: %w", err)
	}

	run.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	run.Duration = time.Duration(durationMS) * time.Millisecond
	return &run, nil
}

// Lessons returns the lessons of a run in outline order with their objectives.
func (r *OutlineReader) Lessons(ctx context.Context, runID string) ([]*lesson.LessonFile, error) {
	rows, err := sq.Select("file_path", "module", "lesson", "title", "placeholder", "prerequisites").
		From("lessons").
		Where(sq.Eq{"run_id": runID}).
		OrderBy("position").
		RunWith(r.db).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query lessons for run %s: %w", runID, err)
	}
	defer rows.Close()

	var lessons []*lesson.LessonFile
	byPath := map[string]*lesson.LessonFile{}
	for rows.Next() {
		var (
			l             lesson.LessonFile
			module, num   sql.NullInt64
			prerequisites string
		)
		if err := rows.Scan(&l.Path, &module, &num, &l.Title, &l.Placeholder, &prerequisites); err != nil {
			return nil, fmt.Errorf("failed to scan lesson: %w", err)
		}
		l.Module = nullIntToIntPtr(module)
		l.Lesson = nullIntToIntPtr(num)
		l.Prerequisites = splitLines(prerequisites)
		lessons = append(lessons, &l)
		byPath[l.Path] = &l
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate lessons: %w", err)
	}

	objRows, err := sq.Select("file_path", "text").
		From("objectives").
		Where(sq.Eq{"run_id": runID}).
		OrderBy("file_path", "position").
		RunWith(r.db).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query objectives for run %s: %w", runID, err)
	}
	defer objRows.Close()

	for objRows.Next() {
		var path, text string
		if err := objRows.Scan(&path, &text); err != nil {
			return nil, fmt.Errorf("failed to scan objective: %w", err)
		}
		if l, ok := byPath[path]; ok {
			l.Objectives = append(l.Objectives, text)
		}
	}
	if err := objRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate objectives: %w", err)
	}

	return lessons, nil
}

// Issues returns the issues of a run in their stored order, optionally
// filtered by kind.
func (r *OutlineReader) Issues(ctx context.Context, runID string, kinds ...lesson.IssueKind) ([]lesson.Issue, error) {
	query := sq.Select("kind", "severity", "paths", "message").
		From("issues").
		Where(sq.Eq{"run_id": runID}).
		OrderBy("position")
	if len(kinds) > 0 {
		names := make([]string, len(kinds))
		for i, k := range kinds {
			names[i] = string(k)
		}
		query = query.Where(sq.Eq{"kind": names})
	}

	rows, err := query.RunWith(r.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query issues for run %s: %w", runID, err)
	}
	defer rows.Close()

	var issues []lesson.Issue
	for rows.Next() {
		var (
			issue          lesson.Issue
			kind, severity string
			paths          string
		)
		if err := rows.Scan(&kind, &severity, &paths, &issue.Message); err != nil {
			return nil, fmt.Errorf("failed to scan issue: %w", err)
		}
		issue.Kind = lesson.IssueKind(kind)
		issue.Severity = lesson.Severity(severity)
		issue.Paths = splitLines(paths)
		issues = append(issues, issue)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate issues: %w", err)
	}
	return issues, nil
}
