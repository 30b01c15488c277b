package lesson

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for lesson types:
// - SortIssues orders by kind, first path, message and sorts each issue's paths
// - SortIssues is independent of input order
// - HasErrors is true only when an error-severity issue exists
// - Refers matches any referenced path
// - IOError matches ErrIO and the underlying error, and supports errors.As
// - HeaderError matches ErrMalformedHeader and converts to an issue whose
//   severity follows Recoverable
// - HasModule / HasLesson follow the optional numbers

func TestSortIssues(t *testing.T) {
	t.Parallel()

	build := func() []Issue {
		return []Issue{
			{Kind: MissingTitle, Severity: SeverityWarning, Paths: []string{"b.js"}, Message: "x"},
			{Kind: DuplicateLessonNumber, Severity: SeverityWarning, Paths: []string{"z.js", "a.js"}, Message: "dup"},
			{Kind: MissingTitle, Severity: SeverityWarning, Paths: []string{"a.js"}, Message: "y"},
			{Kind: MalformedHeader, Severity: SeverityError, Paths: []string{"a.js"}, Message: "b"},
			{Kind: MalformedHeader, Severity: SeverityError, Paths: []string{"a.js"}, Message: "a"},
		}
	}

	issues := build()
	SortIssues(issues)

	assert.Equal(t, DuplicateLessonNumber, issues[0].Kind)
	assert.Equal(t, []string{"a.js", "z.js"}, issues[0].Paths)
	assert.Equal(t, "a", issues[1].Message)
	assert.Equal(t, "b", issues[2].Message)
	assert.Equal(t, []string{"a.js"}, issues[3].Paths)
	assert.Equal(t, []string{"b.js"}, issues[4].Paths)

	reversed := build()
	for i, j := 0, len(reversed)-1; i < j; i, j = i+1, j-1 {
		reversed[i], reversed[j] = reversed[j], reversed[i]
	}
	SortIssues(reversed)
	assert.Equal(t, issues, reversed)
}

func TestHasErrors(t *testing.T) {
	t.Parallel()

	assert.False(t, HasErrors(nil))
	assert.False(t, HasErrors([]Issue{{Kind: MissingTitle, Severity: SeverityWarning}}))
	assert.True(t, HasErrors([]Issue{
		{Kind: MissingTitle, Severity: SeverityWarning},
		{Kind: MalformedHeader, Severity: SeverityError},
	}))
}

func TestIssue_RefersAndString(t *testing.T) {
	t.Parallel()

	issue := Issue{Kind: DuplicateLessonNumber, Severity: SeverityWarning, Paths: []string{"a.js", "b.js"}, Message: "lesson 1 claimed twice"}

	assert.True(t, issue.Refers("b.js"))
	assert.False(t, issue.Refers("c.js"))
	assert.Equal(t, "[warning] DuplicateLessonNumber: lesson 1 claimed twice (a.js, b.js)", issue.String())
}

func TestIOError(t *testing.T) {
	t.Parallel()

	var err error = &IOError{Path: "/course", Err: fs.ErrNotExist}
	wrapped := fmt.Errorf("scan failed: %w", err)

	assert.ErrorIs(t, wrapped, ErrIO)
	assert.ErrorIs(t, wrapped, fs.ErrNotExist)
	assert.NotErrorIs(t, wrapped, ErrMalformedHeader)

	var ioErr *IOError
	require.True(t, errors.As(wrapped, &ioErr))
	assert.Equal(t, "/course", ioErr.Path)
	assert.Contains(t, err.Error(), "cannot read /course")
}

func TestHeaderError(t *testing.T) {
	t.Parallel()

	recoverable := &HeaderError{Path: "01-a.js", Reason: "no leading comment block", Recoverable: true}
	fatal := &HeaderError{Path: "02-b.js", Reason: "unterminated block comment"}

	assert.ErrorIs(t, recoverable, ErrMalformedHeader)
	assert.Equal(t, "01-a.js: no leading comment block", recoverable.Error())

	issue := recoverable.Issue()
	assert.Equal(t, MalformedHeader, issue.Kind)
	assert.Equal(t, SeverityWarning, issue.Severity)
	assert.Equal(t, []string{"01-a.js"}, issue.Paths)
	assert.Equal(t, "no leading comment block", issue.Message)

	assert.Equal(t, SeverityError, fatal.Issue().Severity)
}

func TestLessonFile_Numbers(t *testing.T) {
	t.Parallel()

	l := LessonFile{Path: "00-welcome.js"}
	assert.False(t, l.HasModule())
	assert.False(t, l.HasLesson())

	l.Module, l.Lesson = Int(2), Int(1)
	assert.True(t, l.HasModule())
	assert.True(t, l.HasLesson())
	assert.Equal(t, 2, *l.Module)
}
