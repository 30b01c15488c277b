package scanner

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mvp-joe/course-validator/internal/lesson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Scanner:
// - Empty directory yields no paths
// - Lesson files matching pattern and naming convention are found
// - Files without numeric prefix are skipped
// - Files with non-matching extensions are skipped
// - Ignored directories are pruned
// - Root-level files match "**/" patterns
// - Paths() is restartable (two ranges yield the same paths)
// - Breaking out of Paths() early stops the walk
// - Missing root yields an IOError matching lesson.ErrIO
// - Root that is a file yields an IOError
// - NumberPrefix and Slug parse lesson and module names

var defaultPatterns = []string{"**/*.js", "**/*.md"}
var defaultIgnore = []string{"node_modules/**", ".git/**"}

func writeFiles(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		path := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("// x\n"), 0644))
	}
}

func relAll(t *testing.T, root string, paths []string) []string {
	t.Helper()
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		rel, err := filepath.Rel(root, p)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func TestScanner_EmptyDirectory(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	s, err := New(root, defaultPatterns, defaultIgnore)
	require.NoError(t, err)

	paths, err := s.Scan()
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestScanner_FindsLessonFiles(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFiles(t, root,
		"02-React-Framework/01-fundamentos-react.js",
		"02-React-Framework/02-hooks-avancados.js",
		"02-React-Framework/README.md",
		"02-React-Framework/helpers.js",
		"02-React-Framework/03-styles.css",
		"01-JavaScript/01-intro.md",
		"00-welcome.js",
		"node_modules/01-dep/01-index.js",
	)

	s, err := New(root, defaultPatterns, defaultIgnore)
	require.NoError(t, err)

	paths, err := s.Scan()
	require.NoError(t, err)

	assert.Equal(t, []string{
		"00-welcome.js",
		"01-JavaScript/01-intro.md",
		"02-React-Framework/01-fundamentos-react.js",
		"02-React-Framework/02-hooks-avancados.js",
	}, relAll(t, root, paths))
}

func TestScanner_PathsIsRestartable(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFiles(t, root, "01-a/01-x.js", "01-a/02-y.js", "02-b/01-z.js")

	s, err := New(root, defaultPatterns, defaultIgnore)
	require.NoError(t, err)

	collect := func() []string {
		var out []string
		for p, err := range s.Paths() {
			require.NoError(t, err)
			out = append(out, p)
		}
		return out
	}

	first := collect()
	second := collect()
	assert.Len(t, first, 3)
	assert.ElementsMatch(t, first, second)
}

func TestScanner_EarlyBreakStopsWalk(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFiles(t, root, "01-a/01-x.js", "01-a/02-y.js", "02-b/01-z.js")

	s, err := New(root, defaultPatterns, defaultIgnore)
	require.NoError(t, err)

	count := 0
	for _, err := range s.Paths() {
		require.NoError(t, err)
		count++
		break
	}
	assert.Equal(t, 1, count)
}

func TestScanner_MissingRoot(t *testing.T) {
	t.Parallel()

	root := filepath.Join(t.TempDir(), "missing")
	s, err := New(root, defaultPatterns, defaultIgnore)
	require.NoError(t, err)

	_, err = s.Scan()
	require.Error(t, err)
	assert.True(t, errors.Is(err, lesson.ErrIO))

	var ioErr *lesson.IOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, root, ioErr.Path)
}

func TestScanner_RootIsFile(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	file := filepath.Join(root, "01-file.js")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	s, err := New(file, defaultPatterns, defaultIgnore)
	require.NoError(t, err)

	_, err = s.Scan()
	assert.ErrorIs(t, err, lesson.ErrIO)
}

func TestScanner_InvalidPattern(t *testing.T) {
	t.Parallel()

	_, err := New(t.TempDir(), []string{"[unclosed"}, nil)
	assert.Error(t, err)
}

func TestScanner_IsLesson(t *testing.T) {
	t.Parallel()

	s, err := New("/course", defaultPatterns, defaultIgnore)
	require.NoError(t, err)

	assert.True(t, s.IsLesson("01-intro.js"))
	assert.True(t, s.IsLesson("03-Node/04_streams.js"))
	assert.False(t, s.IsLesson("03-Node/streams.js"))
	assert.False(t, s.IsLesson("03-Node/04-streams.css"))
	assert.False(t, s.IsLesson("node_modules/01-x.js"))
	assert.False(t, s.IsLesson(".course/01-cache.js"))
}

func TestNumberPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want int
		ok   bool
	}{
		{"02-React-Framework", 2, true},
		{"01-fundamentos-react.js", 1, true},
		{"10_capstone", 10, true},
		{"README.md", 0, false},
		{"2024", 0, false},
	}
	for _, tt := range tests {
		got, ok := NumberPrefix(tt.name)
		assert.Equal(t, tt.ok, ok, tt.name)
		assert.Equal(t, tt.want, got, tt.name)
	}
}

func TestSlug(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "fundamentos-react", Slug("01-fundamentos-react.js"))
	assert.Equal(t, "React-Framework", Slug("02-React-Framework"))
	assert.Equal(t, "README", Slug("README.md"))
}

func TestScanner_Ignores(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	s, err := New(root, defaultPatterns, defaultIgnore)
	require.NoError(t, err)

	assert.True(t, s.Ignores(filepath.Join(root, "node_modules")))
	assert.True(t, s.Ignores(filepath.Join(root, ".course")))
	assert.False(t, s.Ignores(root))
	assert.False(t, s.Ignores(filepath.Join(root, "02-React-Framework")))
	assert.False(t, s.Ignores(filepath.Join(filepath.Dir(root), "elsewhere")))
}
