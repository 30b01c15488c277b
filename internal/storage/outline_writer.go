package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/mvp-joe/course-validator/internal/lesson"
	"github.com/mvp-joe/course-validator/internal/pipeline"
)

// OutlineWriter stores validation runs.
type OutlineWriter struct {
	db  *sql.DB
	now func() time.Time
}

// NewOutlineWriter creates an OutlineWriter.
// DB must have schema already created via CreateSchema().
func NewOutlineWriter(db *sql.DB) *OutlineWriter {
	return &OutlineWriter{db: db, now: time.Now}
}

// WriteRun stores result as a new run. Writing a run ID that already exists
// replaces it. All rows are written atomically.
func (w *OutlineWriter) WriteRun(ctx context.Context, result *pipeline.Result) error {
	if result == nil || result.Outline == nil {
		return fmt.Errorf("cannot store an empty result")
	}

	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := sq.Delete("runs").
		Where(sq.Eq{"run_id": result.RunID}).
		RunWith(tx).
		ExecContext(ctx); err != nil {
		return fmt.Errorf("failed to clear run %s: %w", result.RunID, err)
	}

	errorCount, warningCount := countSeverities(result.Issues)
	if _, err := sq.Insert("runs").
		Columns(
			"run_id", "root", "created_at", "duration_ms",
			"file_count", "placeholder_count", "error_count", "warning_count",
		).
		Values(
			result.RunID,
			result.Root,
			w.now().UTC().Format(timeLayout),
			result.Stats.Duration.Milliseconds(),
			result.Stats.Files,
			result.Stats.Placeholders,
			errorCount,
			warningCount,
		).
		RunWith(tx).
		ExecContext(ctx); err != nil {
		return fmt.Errorf("failed to insert run %s: %w", result.RunID, err)
	}

	if err := writeLessons(ctx, tx, result.RunID, result.Outline.Lessons()); err != nil {
		return err
	}
	if err := writeIssues(ctx, tx, result.RunID, result.Issues); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run %s: %w", result.RunID, err)
	}
	return nil
}

func writeLessons(ctx context.Context, tx *sql.Tx, runID string, lessons []*lesson.LessonFile) error {
	if len(lessons) == 0 {
		return nil
	}

	lessonSQL, _, err := sq.Insert("lessons").
		Columns("run_id", "file_path", "position", "module", "lesson", "title", "placeholder", "prerequisites").
		Values("", "", 0, nil, nil, "", false, "").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build SQL: %w", err)
	}
	objectiveSQL, _, err := sq.Insert("objectives").
		Columns("run_id", "file_path", "position", "text").
		Values("", "", 0, "").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build SQL: %w", err)
	}

	lessonStmt, err := tx.PrepareContext(ctx, lessonSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare lesson statement: %w", err)
	}
	defer lessonStmt.Close()

	objectiveStmt, err := tx.PrepareContext(ctx, objectiveSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare objective statement: %w", err)
	}
	defer objectiveStmt.Close()

	for pos, l := range lessons {
		if _, err := lessonStmt.ExecContext(ctx,
			runID, l.Path, pos, l.Module, l.Lesson, l.Title, l.Placeholder, joinLines(l.Prerequisites),
		); err != nil {
			return fmt.Errorf("failed to insert lesson %s: %w", l.Path, err)
		}
		for i, obj := range l.Objectives {
			if _, err := objectiveStmt.ExecContext(ctx, runID, l.Path, i, obj); err != nil {
				return fmt.Errorf("failed to insert objective for %s: %w", l.Path, err)
			}
		}
	}
	return nil
}

func writeIssues(ctx context.Context, tx *sql.Tx, runID string, issues []lesson.Issue) error {
	if len(issues) == 0 {
		return nil
	}

	issueSQL, _, err := sq.Insert("issues").
		Columns("run_id", "position", "kind", "severity", "paths", "message").
		Values("", 0, "", "", "", "").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build SQL: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, issueSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare issue statement: %w", err)
	}
	defer stmt.Close()

	for pos, issue := range issues {
		if _, err := stmt.ExecContext(ctx,
			runID, pos, string(issue.Kind), string(issue.Severity), joinLines(issue.Paths), issue.Message,
		); err != nil {
			return fmt.Errorf("failed to insert issue %d: %w", pos, err)
		}
	}
	return nil
}

func countSeverities(issues []lesson.Issue) (errors, warnings int) {
	for _, issue := range issues {
		if issue.Severity == lesson.SeverityError {
			errors++
		} else {
			warnings++
		}
	}
	return errors, warnings
}
