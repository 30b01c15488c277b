package outline

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/dominikbraun/graph"
	"github.com/mvp-joe/course-validator/internal/lesson"
	"github.com/mvp-joe/course-validator/internal/scanner"
)

// refIndex resolves the ways a header may name another lesson: its path, file
// name with or without extension, slug, or "module.lesson" number.
type refIndex map[string]string

func newRefIndex(lessons []*lesson.LessonFile) refIndex {
	idx := refIndex{}
	add := func(key, p string) {
		key = strings.ToLower(key)
		if _, taken := idx[key]; !taken {
			idx[key] = p
		}
	}
	for _, l := range lessons {
		base := path.Base(l.Path)
		add(l.Path, l.Path)
		add(strings.TrimSuffix(l.Path, path.Ext(l.Path)), l.Path)
		add(base, l.Path)
		add(strings.TrimSuffix(base, path.Ext(base)), l.Path)
		add(scanner.Slug(base), l.Path)
		if l.Module != nil && l.Lesson != nil {
			add(fmt.Sprintf("%d.%d", *l.Module, *l.Lesson), l.Path)
		}
	}
	return idx
}

func (r refIndex) resolve(ref string) (string, bool) {
	p, ok := r[strings.ToLower(strings.TrimSpace(ref))]
	return p, ok
}

// PrerequisiteGraph builds a directed graph with an edge from each
// prerequisite to the lesson that requires it. Edges that would close a cycle
// are rejected and reported; unresolvable references are reported too.
func PrerequisiteGraph(o *CourseOutline) (graph.Graph[string, string], []lesson.Issue) {
	lessons := o.Lessons()
	refs := newRefIndex(lessons)

	g := graph.New(graph.StringHash, graph.Directed(), graph.PreventCycles())
	for _, l := range lessons {
		// paths are unique, so the only possible error is a duplicate path
		_ = g.AddVertex(l.Path)
	}

	var issues []lesson.Issue
	for _, l := range lessons {
		for _, ref := range l.Prerequisites {
			target, ok := refs.resolve(ref)
			if !ok {
				issues = append(issues, lesson.Issue{
					Kind:     lesson.UnknownPrerequisite,
					Severity: lesson.SeverityWarning,
					Paths:    []string{l.Path},
					Message:  fmt.Sprintf("prerequisite %q does not match any lesson", ref),
				})
				continue
			}

			if target == l.Path {
				issues = append(issues, cycleIssue(l.Path, target, ref))
				continue
			}

			err := g.AddEdge(target, l.Path)
			switch {
			case err == nil, errors.Is(err, graph.ErrEdgeAlreadyExists):
			case errors.Is(err, graph.ErrEdgeCreatesCycle):
				issues = append(issues, cycleIssue(l.Path, target, ref))
			default:
				issues = append(issues, lesson.Issue{
					Kind:     lesson.UnknownPrerequisite,
					Severity: lesson.SeverityWarning,
					Paths:    []string{l.Path},
					Message:  fmt.Sprintf("prerequisite %q could not be linked: %v", ref, err),
				})
			}
		}
	}
	return g, issues
}

func cycleIssue(from, to, ref string) lesson.Issue {
	paths := []string{from}
	if to != from {
		paths = append(paths, to)
	}
	return lesson.Issue{
		Kind:     lesson.PrerequisiteCycle,
		Severity: lesson.SeverityWarning,
		Paths:    paths,
		Message:  fmt.Sprintf("prerequisite %q creates a cycle", ref),
	}
}

func prerequisiteIssues(o *CourseOutline) []lesson.Issue {
	_, issues := PrerequisiteGraph(o)
	return issues
}
