package scanner

import (
	"errors"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/gobwas/glob"
	"github.com/mvp-joe/course-validator/internal/lesson"
)

// lessonName matches the lesson naming convention: numeric prefix, separator, slug.
// e.g. "01-fundamentos-react.js", "2_intro.md"
var lessonName = regexp.MustCompile(`^(\d+)[-_. ]+(\S)`)

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// Scanner discovers lesson files under a course root.
type Scanner struct {
	rootDir        string
	lessonPatterns []compiledPattern
	ignorePatterns []compiledPattern
}

// New creates a scanner for rootDir. Patterns are matched against slash-separated
// paths relative to rootDir.
func New(rootDir string, lessonPatterns, ignorePatterns []string) (*Scanner, error) {
	s := &Scanner{
		rootDir: rootDir,
	}

	for _, pattern := range lessonPatterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, err
		}
		s.lessonPatterns = append(s.lessonPatterns, compiledPattern{pattern: pattern, glob: g})
	}

	for _, pattern := range ignorePatterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, err
		}
		s.ignorePatterns = append(s.ignorePatterns, compiledPattern{pattern: pattern, glob: g})
	}

	return s, nil
}

// Paths yields the absolute path of every lesson file under the root. The
// sequence is lazy and restartable: each range walks the tree again. An
// unreadable root or directory yields a single *lesson.IOError and stops.
func (s *Scanner) Paths() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		info, err := os.Stat(s.rootDir)
		if err != nil {
			yield("", &lesson.IOError{Path: s.rootDir, Err: err})
			return
		}
		if !info.IsDir() {
			yield("", &lesson.IOError{Path: s.rootDir, Err: errors.New("not a directory")})
			return
		}

		stopped := false
		walkErr := filepath.WalkDir(s.rootDir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return &lesson.IOError{Path: path, Err: err}
			}

			relPath, err := filepath.Rel(s.rootDir, path)
			if err != nil {
				return err
			}
			relPath = filepath.ToSlash(relPath)

			if d.IsDir() {
				if relPath != "." && s.shouldIgnore(relPath) {
					return filepath.SkipDir
				}
				return nil
			}

			if !s.IsLesson(relPath) {
				return nil
			}

			if !yield(path, nil) {
				stopped = true
				return filepath.SkipAll
			}
			return nil
		})

		if walkErr != nil && !stopped {
			var ioErr *lesson.IOError
			if !errors.As(walkErr, &ioErr) {
				walkErr = &lesson.IOError{Path: s.rootDir, Err: walkErr}
			}
			yield("", walkErr)
		}
	}
}

// Scan collects Paths into a sorted slice.
func (s *Scanner) Scan() ([]string, error) {
	var paths []string
	for path, err := range s.Paths() {
		if err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths, nil
}

// IsLesson reports whether a slash-separated path relative to the root names a
// lesson file: not ignored, matching a lesson pattern, and following the
// numeric-prefix naming convention.
func (s *Scanner) IsLesson(relPath string) bool {
	if s.shouldIgnore(relPath) {
		return false
	}
	if !lessonName.MatchString(pathBase(relPath)) {
		return false
	}
	return s.matchesAnyPattern(relPath, s.lessonPatterns)
}

// NumberPrefix parses the numeric prefix of a lesson file or module directory
// name. "02-React-Framework" -> 2, "01-fundamentos-react.js" -> 1.
func NumberPrefix(name string) (int, bool) {
	m := lessonName.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Slug returns the name without its numeric prefix and extension.
// "01-fundamentos-react.js" -> "fundamentos-react".
func Slug(name string) string {
	name = strings.TrimSuffix(name, filepath.Ext(name))
	if loc := lessonName.FindStringSubmatchIndex(name); loc != nil {
		return name[loc[4]:]
	}
	return name
}

// Ignores reports whether an absolute path under the root is excluded by the
// ignore patterns. The root itself is never ignored.
func (s *Scanner) Ignores(path string) bool {
	rel, err := filepath.Rel(s.rootDir, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return false
	}
	return s.shouldIgnore(filepath.ToSlash(rel))
}

// shouldIgnore checks if a path matches any ignore pattern.
func (s *Scanner) shouldIgnore(relPath string) bool {
	// Always ignore the validator's own directory
	if strings.HasPrefix(relPath, ".course/") || relPath == ".course" {
		return true
	}

	if s.matchesAnyPattern(relPath, s.ignorePatterns) {
		return true
	}

	// Also check if this is a directory that would match with /** suffix
	// For example, "node_modules" should match pattern "node_modules/**"
	return s.matchesAnyPattern(relPath+"/**", s.ignorePatterns)
}

// matchesAnyPattern checks if a path matches any of the given patterns.
func (s *Scanner) matchesAnyPattern(path string, patterns []compiledPattern) bool {
	for _, cp := range patterns {
		if cp.glob.Match(path) {
			return true
		}
	}

	// Special handling: if path is in root (no slash), also try matching against
	// patterns with **/ prefix removed. This makes "**/*.md" match both
	// "01-intro.md" and "docs/01-intro.md".
	if !strings.Contains(path, "/") {
		for _, cp := range patterns {
			if strings.HasPrefix(cp.pattern, "**/") {
				simplified := strings.TrimPrefix(cp.pattern, "**/")
				if simplifiedGlob, err := glob.Compile(simplified, '/'); err == nil {
					if simplifiedGlob.Match(path) {
						return true
					}
				}
			}
		}
	}

	return false
}

func pathBase(relPath string) string {
	if i := strings.LastIndex(relPath, "/"); i >= 0 {
		return relPath[i+1:]
	}
	return relPath
}
