package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/mvp-joe/course-validator/internal/lesson"
	"github.com/mvp-joe/course-validator/internal/pipeline"
)

// writeText renders module → lessons → titles, then the issue list.
func writeText(w io.Writer, result *pipeline.Result) error {
	doc := NewDocument(result)
	var sb strings.Builder

	if len(doc.Modules) == 0 {
		sb.WriteString("No lessons found.\n")
	}

	for _, m := range doc.Modules {
		sb.WriteString(m.Name)
		sb.WriteString("\n")
		for _, l := range m.Lessons {
			sb.WriteString(fmt.Sprintf("  %s. %s  (%s)\n", lessonNumber(l.Lesson), displayTitle(l), l.Path))
			for _, obj := range l.Objectives {
				sb.WriteString(fmt.Sprintf("       - %s\n", obj))
			}
		}
	}

	if len(doc.Issues) > 0 {
		sb.WriteString("\nIssues:\n")
		for _, issue := range doc.Issues {
			sb.WriteString(fmt.Sprintf("  [%s] %s: %s\n", issue.Severity, issue.Kind, issue.Message))
			for _, p := range issue.Paths {
				sb.WriteString(fmt.Sprintf("      %s\n", p))
			}
		}
	}

	sb.WriteString(fmt.Sprintf("\n%s in %s, %s, %s\n",
		plural(doc.Summary.Lessons, "lesson"),
		plural(doc.Summary.Modules, "module"),
		plural(doc.Summary.Errors, "error"),
		plural(doc.Summary.Warnings, "warning")))

	_, err := io.WriteString(w, sb.String())
	return err
}

func lessonNumber(n *int) string {
	if n == nil {
		return "?"
	}
	return fmt.Sprintf("%d", *n)
}

func displayTitle(l LessonDoc) string {
	switch {
	case l.Title != "":
		return l.Title
	case l.Placeholder:
		return "(no header)"
	}
	return "(untitled)"
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

// severityLabel is used by the markdown issue table.
func severityLabel(s lesson.Severity) string {
	if s == lesson.SeverityError {
		return "**error**"
	}
	return string(s)
}
