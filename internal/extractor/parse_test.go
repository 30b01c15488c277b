package extractor

import (
	"testing"

	"github.com/mvp-joe/course-validator/internal/lesson"
	"github.com/stretchr/testify/assert"
)

// Test Plan for header parsing:
// - Numbering line yields module, lesson and the trailing title
// - "nº" ordinal prefix is accepted
// - Module-only numbering line supplies a title of last resort
// - Explicit title marker beats the numbering line
// - Prose line becomes the title when nothing better exists
// - Objective and prerequisite sections end at a blank line
// - matchMarker requires a colon and preserves original casing
// - isHeadingLine accepts short colon-terminated lines only
// - cleanItem and splitRefs trim glyphs and empty entries

func TestParseHeader(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		lines         []string
		module        *int
		lesson        *int
		title         string
		objectives    []string
		prerequisites []string
	}{
		{
			name:       "module and lesson on one line",
			lines:      []string{"Module 3 Lesson 4: Closures"},
			module:     lesson.Int(3),
			lesson:     lesson.Int(4),
			title:      "Closures",
			objectives: []string{},
		},
		{
			name:       "ordinal prefix",
			lines:      []string{"Aula nº 5 - Hooks"},
			lesson:     lesson.Int(5),
			title:      "Hooks",
			objectives: []string{},
		},
		{
			name:       "module only",
			lines:      []string{"Module 4: Advanced"},
			module:     lesson.Int(4),
			title:      "Advanced",
			objectives: []string{},
		},
		{
			name:       "explicit title wins",
			lines:      []string{"Lesson 1: Old", "Title: New"},
			lesson:     lesson.Int(1),
			title:      "New",
			objectives: []string{},
		},
		{
			name:       "prose title",
			lines:      []string{"Introdução ao curso", "Objetivos:", "- Conhecer a turma"},
			title:      "Introdução ao curso",
			objectives: []string{"Conhecer a turma"},
		},
		{
			name: "sections end at blank lines",
			lines: []string{
				"Lesson 2: Arrays",
				"",
				"Objectives:",
				"- map",
				"- filter",
				"",
				"Prerequisites: 01-intro, 1.1",
			},
			lesson:        lesson.Int(2),
			title:         "Arrays",
			objectives:    []string{"map", "filter"},
			prerequisites: []string{"01-intro", "1.1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := parseHeader(tt.lines, DefaultOptions())
			assert.Equal(t, tt.module, h.module)
			assert.Equal(t, tt.lesson, h.lesson)
			assert.Equal(t, tt.title, h.title)
			assert.Equal(t, tt.objectives, h.objectives)
			assert.Equal(t, tt.prerequisites, h.prerequisites)
		})
	}
}

func TestMatchMarker(t *testing.T) {
	t.Parallel()

	markers := []string{"objectives"}

	rest, ok := matchMarker("- Objectives: Learn JSX", markers)
	assert.True(t, ok)
	assert.Equal(t, "Learn JSX", rest)

	_, ok = matchMarker("Objectives list", markers)
	assert.False(t, ok)

	_, ok = matchMarker("Title - x", []string{"title"})
	assert.False(t, ok)
}

func TestIsHeadingLine(t *testing.T) {
	t.Parallel()

	assert.True(t, isHeadingLine("Instructor notes:"))
	assert.False(t, isHeadingLine("- item:"))
	assert.False(t, isHeadingLine("This is a rather long sentence ending:"))
	assert.False(t, isHeadingLine("Instructor notes"))
}

func TestCleanItemAndSplitRefs(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Passar props", cleanItem("  • Passar props "))
	assert.Equal(t, "First", cleanItem("1) First"))
	assert.Equal(t, []string{"a", "b", "c"}, splitRefs("a, b ,, c"))
	assert.Nil(t, splitRefs(""))
}
