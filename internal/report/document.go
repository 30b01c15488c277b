package report

import (
	"github.com/mvp-joe/course-validator/internal/lesson"
	"github.com/mvp-joe/course-validator/internal/pipeline"
)

// Document is the structured form of a run, shared by the json and yaml
// formats. It carries no run ID or timing so identical trees render
// identically.
type Document struct {
	Modules []ModuleDoc    `json:"modules" yaml:"modules"`
	Issues  []lesson.Issue `json:"issues" yaml:"issues"`
	Summary Summary        `json:"summary" yaml:"summary"`
}

// ModuleDoc is one module group with its ordered lessons.
type ModuleDoc struct {
	Module  *int        `json:"module" yaml:"module"`
	Name    string      `json:"name" yaml:"name"`
	Lessons []LessonDoc `json:"lessons" yaml:"lessons"`
}

// LessonDoc is a lesson entry with the issues that reference it.
type LessonDoc struct {
	Path          string         `json:"path" yaml:"path"`
	Lesson        *int           `json:"lesson" yaml:"lesson"`
	Title         string         `json:"title" yaml:"title"`
	Objectives    []string       `json:"objectives" yaml:"objectives"`
	Prerequisites []string       `json:"prerequisites,omitempty" yaml:"prerequisites,omitempty"`
	Placeholder   bool           `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Issues        []lesson.Issue `json:"issues" yaml:"issues"`
}

// Summary counts what the run found.
type Summary struct {
	Modules      int `json:"modules" yaml:"modules"`
	Lessons      int `json:"lessons" yaml:"lessons"`
	Placeholders int `json:"placeholders" yaml:"placeholders"`
	Errors       int `json:"errors" yaml:"errors"`
	Warnings     int `json:"warnings" yaml:"warnings"`
}

// NewDocument converts a pipeline result into a Document.
func NewDocument(result *pipeline.Result) *Document {
	doc := &Document{
		Modules: []ModuleDoc{},
		Issues:  []lesson.Issue{},
	}
	if result == nil || result.Outline == nil {
		return doc
	}

	doc.Issues = append(doc.Issues, result.Issues...)
	for _, g := range result.Outline.Modules {
		md := ModuleDoc{Module: g.Number, Name: g.Name, Lessons: []LessonDoc{}}
		for _, l := range g.Lessons {
			issues := result.IssuesFor(l.Path)
			if issues == nil {
				issues = []lesson.Issue{}
			}
			objectives := l.Objectives
			if objectives == nil {
				objectives = []string{}
			}
			md.Lessons = append(md.Lessons, LessonDoc{
				Path:          l.Path,
				Lesson:        l.Lesson,
				Title:         l.Title,
				Objectives:    objectives,
				Prerequisites: l.Prerequisites,
				Placeholder:   l.Placeholder,
				Issues:        issues,
			})
			doc.Summary.Lessons++
			if l.Placeholder {
				doc.Summary.Placeholders++
			}
		}
		doc.Modules = append(doc.Modules, md)
	}
	doc.Summary.Modules = len(doc.Modules)

	for _, issue := range doc.Issues {
		if issue.Severity == lesson.SeverityError {
			doc.Summary.Errors++
		} else {
			doc.Summary.Warnings++
		}
	}
	return doc
}
