// Package extractor turns the leading comment block of a lesson file into
// lesson metadata.
package extractor

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/mvp-joe/course-validator/internal/lesson"
	"github.com/mvp-joe/course-validator/internal/scanner"
)

// Extractor parses lesson headers. It is safe for concurrent use.
type Extractor struct {
	opts      Options
	languages *treeSitterLanguages
}

// New creates an extractor. Zero-valued fields in opts take their defaults.
func New(opts Options) *Extractor {
	e := &Extractor{opts: opts.withDefaults()}
	if e.opts.UseTreeSitter {
		e.languages = newTreeSitterLanguages()
	}
	return e
}

// Extract parses the header of the lesson at relPath (slash-separated,
// relative to the course root).
//
// A LessonFile is always returned. When no header is recognised the result is
// a placeholder and the error is a *lesson.HeaderError wrapping
// lesson.ErrMalformedHeader; Recoverable is false only for a header that is
// not valid UTF-8 or a block comment that never closes.
func (e *Extractor) Extract(relPath string, source []byte) (*lesson.LessonFile, error) {
	return e.ExtractFrom(relPath, bytes.NewReader(source))
}

// ExtractFrom is Extract over a reader. Only the first MaxHeaderLines lines
// are parsed; the rest of r is read only when a block comment is still open
// at the end of that window, to find its closing delimiter. Read failures are
// returned as *lesson.IOError.
func (e *Extractor) ExtractFrom(relPath string, r io.Reader) (*lesson.LessonFile, error) {
	lf := &lesson.LessonFile{
		Path:       relPath,
		Objectives: []string{},
	}
	fillFromPath(lf)

	br := bufio.NewReader(r)
	lines, more, err := readWindow(br, e.opts.MaxHeaderLines)
	if err != nil {
		return nil, &lesson.IOError{Path: relPath, Err: err}
	}
	ext := strings.ToLower(path.Ext(relPath))

	block := scanLeadingComment(lines, ext)
	if block != nil && block.close != "" {
		closed := false
		if more {
			if closed, err = containsToken(br, block.close); err != nil {
				return nil, &lesson.IOError{Path: relPath, Err: err}
			}
		}
		if !closed {
			lf.Placeholder = true
			return lf, &lesson.HeaderError{Path: relPath, Reason: "leading block comment is never closed"}
		}
	}

	// a block truncated by the window is left to the line scanner
	if e.languages != nil && (block == nil || block.close == "") {
		if language := e.languages.forExt(ext); language != nil {
			if tsBlock, ok := treeSitterLeadingComment(language, []byte(strings.Join(lines, "\n"))); ok {
				block = tsBlock
			}
		}
	}

	if block == nil {
		lf.Placeholder = true
		if !utf8.ValidString(strings.Join(lines, "\n")) {
			return lf, &lesson.HeaderError{Path: relPath, Reason: "content is not valid UTF-8"}
		}
		return lf, &lesson.HeaderError{Path: relPath, Reason: "no leading comment block", Recoverable: true}
	}

	if !utf8.ValidString(strings.Join(block.lines, "\n")) {
		lf.Placeholder = true
		return lf, &lesson.HeaderError{Path: relPath, Reason: "header is not valid UTF-8"}
	}

	cleaned := cleanCommentLines(block.lines)
	lf.RawHeader = strings.Join(cleaned, "\n")

	h := parseHeader(cleaned, e.opts)
	if h.module != nil {
		lf.Module = h.module
	}
	if h.lesson != nil {
		lf.Lesson = h.lesson
	}
	lf.Title = h.title
	lf.Objectives = h.objectives
	lf.Prerequisites = h.prerequisites

	return lf, nil
}

// fillFromPath derives module and lesson numbers from the path convention:
// the top-level directory prefix is the module, the file prefix the lesson.
func fillFromPath(lf *lesson.LessonFile) {
	dir, file := path.Split(lf.Path)
	if n, ok := scanner.NumberPrefix(file); ok {
		lf.Lesson = lesson.Int(n)
	}
	if dir == "" {
		return
	}
	top := strings.SplitN(dir, "/", 2)[0]
	if n, ok := scanner.NumberPrefix(top); ok {
		lf.Module = lesson.Int(n)
	}
}

// Issues converts an extraction outcome into validation issues.
func Issues(lf *lesson.LessonFile, err error) []lesson.Issue {
	var issues []lesson.Issue
	var herr *lesson.HeaderError
	if errors.As(err, &herr) {
		issues = append(issues, herr.Issue())
	}
	if lf != nil && !lf.Placeholder && lf.Title == "" {
		issues = append(issues, lesson.Issue{
			Kind:     lesson.MissingTitle,
			Severity: lesson.SeverityWarning,
			Paths:    []string{lf.Path},
			Message:  "header has no title",
		})
	}
	return issues
}
