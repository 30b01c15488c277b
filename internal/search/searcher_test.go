package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/course-validator/internal/lesson"
)

// Test Plan for lesson search:
// - Title terms find the lesson
// - Highlights mark matched terms as HTML without terminal escapes
// - Objective terms find the lesson
// - module: field scoping limits hits to one module
// - Unclassified lessons are searchable by module:unclassified
// - Empty query is rejected
// - Cancelled context fails the initial index build

func courseLessons() []*lesson.LessonFile {
	return []*lesson.LessonFile{
		{
			Path:       "02-React-Framework/01-fundamentos-react.js",
			Module:     lesson.Int(2),
			Lesson:     lesson.Int(1),
			Title:      "Fundamentos do React",
			Objectives: []string{"Entender JSX", "Criar componentes"},
		},
		{
			Path:       "02-React-Framework/02-hooks-avancados.js",
			Module:     lesson.Int(2),
			Lesson:     lesson.Int(2),
			Title:      "Hooks Avançados",
			Objectives: []string{"useEffect", "useReducer"},
		},
		{
			Path:       "03-Node/01-express.js",
			Module:     lesson.Int(3),
			Lesson:     lesson.Int(1),
			Title:      "Servidor com Express",
			Objectives: []string{"Criar rotas"},
		},
		{Path: "00-welcome.js", Placeholder: true},
	}
}

func newSearcher(t *testing.T) Searcher {
	t.Helper()
	s, err := New(context.Background(), courseLessons())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func paths(results []*Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Path
	}
	return out
}

func TestSearch_Title(t *testing.T) {
	t.Parallel()

	results, err := newSearcher(t).Search(context.Background(), "hooks", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)

	hit := results[0]
	assert.Equal(t, "02-React-Framework/02-hooks-avancados.js", hit.Path)
	assert.Equal(t, "Hooks Avançados", hit.Title)
	require.NotNil(t, hit.Module)
	assert.Equal(t, 2, *hit.Module)
	require.NotNil(t, hit.Lesson)
	assert.Equal(t, 2, *hit.Lesson)
	assert.NotEmpty(t, hit.Highlights)
}

func TestSearch_HighlightsAreHTML(t *testing.T) {
	t.Parallel()

	results, err := newSearcher(t).Search(context.Background(), "title:hooks", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.NotEmpty(t, results[0].Highlights)

	for _, h := range results[0].Highlights {
		assert.NotContains(t, h, "\x1b[")
	}
	assert.Contains(t, results[0].Highlights[0], "<mark>")
}

func TestSearch_Objectives(t *testing.T) {
	t.Parallel()

	results, err := newSearcher(t).Search(context.Background(), "objectives:criar", 10)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"02-React-Framework/01-fundamentos-react.js",
		"03-Node/01-express.js",
	}, paths(results))
}

func TestSearch_ModuleScope(t *testing.T) {
	t.Parallel()

	results, err := newSearcher(t).Search(context.Background(), "+objectives:criar +module:3", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"03-Node/01-express.js"}, paths(results))

	results, err = newSearcher(t).Search(context.Background(), "module:unclassified", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "00-welcome.js", results[0].Path)
	assert.Nil(t, results[0].Module)
}

func TestSearch_EmptyQuery(t *testing.T) {
	t.Parallel()

	_, err := newSearcher(t).Search(context.Background(), "  ", 10)
	assert.Error(t, err)
}

func TestNew_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(ctx, courseLessons())
	assert.ErrorIs(t, err, context.Canceled)
}
