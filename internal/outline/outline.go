// Package outline assembles extracted lessons into an ordered course outline
// and detects ordering problems across the whole set.
package outline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mvp-joe/course-validator/internal/lesson"
	"github.com/mvp-joe/course-validator/internal/scanner"
)

// UnclassifiedName labels the group of lessons without a module number.
const UnclassifiedName = "Unclassified"

// ModuleGroup is one module of the outline with its lessons in order.
type ModuleGroup struct {
	Number  *int                 `json:"module" yaml:"module"`
	Name    string               `json:"name" yaml:"name"`
	Lessons []*lesson.LessonFile `json:"lessons" yaml:"lessons"`
}

// Unclassified reports whether the group collects lessons without a module.
func (g ModuleGroup) Unclassified() bool { return g.Number == nil }

// CourseOutline is the ordered course structure. It is not mutated after Build.
type CourseOutline struct {
	Modules []ModuleGroup `json:"modules" yaml:"modules"`
}

// Lessons returns every lesson in outline order.
func (o *CourseOutline) Lessons() []*lesson.LessonFile {
	var out []*lesson.LessonFile
	for _, g := range o.Modules {
		out = append(out, g.Lessons...)
	}
	return out
}

// Len returns the number of lessons in the outline.
func (o *CourseOutline) Len() int {
	n := 0
	for _, g := range o.Modules {
		n += len(g.Lessons)
	}
	return n
}

// Build groups lessons by module, orders groups and lessons, and reports
// duplicate lesson numbers, out-of-order modules and prerequisite problems.
// The result depends only on the set of lessons, not on their order.
func Build(files []*lesson.LessonFile) (*CourseOutline, []lesson.Issue) {
	sorted := make([]*lesson.LessonFile, 0, len(files))
	for _, f := range files {
		if f != nil {
			sorted = append(sorted, f)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool { return lessLesson(sorted[i], sorted[j]) })

	out := &CourseOutline{Modules: []ModuleGroup{}}
	for _, f := range sorted {
		n := len(out.Modules)
		if n == 0 || !sameModule(out.Modules[n-1].Number, f.Module) {
			out.Modules = append(out.Modules, ModuleGroup{
				Number: f.Module,
				Name:   groupName(f.Module),
			})
			n++
		}
		out.Modules[n-1].Lessons = append(out.Modules[n-1].Lessons, f)
	}

	var issues []lesson.Issue
	issues = append(issues, duplicateLessons(out)...)
	issues = append(issues, outOfOrderModules(sorted)...)
	issues = append(issues, prerequisiteIssues(out)...)
	lesson.SortIssues(issues)

	return out, issues
}

// lessLesson orders by module (unclassified last), then lesson number
// (numbered before unnumbered), then path.
func lessLesson(a, b *lesson.LessonFile) bool {
	if c := compareOptional(a.Module, b.Module); c != 0 {
		return c < 0
	}
	if c := compareOptional(a.Lesson, b.Lesson); c != 0 {
		return c < 0
	}
	return a.Path < b.Path
}

// compareOptional sorts present values numerically before absent ones.
func compareOptional(a, b *int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case *a < *b:
		return -1
	case *a > *b:
		return 1
	}
	return 0
}

func sameModule(a, b *int) bool {
	return compareOptional(a, b) == 0
}

func groupName(module *int) string {
	if module == nil {
		return UnclassifiedName
	}
	return fmt.Sprintf("Module %d", *module)
}

// duplicateLessons emits one issue per lesson number claimed by more than one
// file within the same module.
func duplicateLessons(o *CourseOutline) []lesson.Issue {
	var issues []lesson.Issue
	for _, g := range o.Modules {
		if g.Unclassified() {
			continue
		}
		for i := 0; i < len(g.Lessons); {
			j := i + 1
			cur := g.Lessons[i]
			for j < len(g.Lessons) && cur.Lesson != nil && g.Lessons[j].Lesson != nil && *g.Lessons[j].Lesson == *cur.Lesson {
				j++
			}
			if j-i > 1 {
				paths := make([]string, 0, j-i)
				for _, l := range g.Lessons[i:j] {
					paths = append(paths, l.Path)
				}
				issues = append(issues, lesson.Issue{
					Kind:     lesson.DuplicateLessonNumber,
					Severity: lesson.SeverityWarning,
					Paths:    paths,
					Message:  fmt.Sprintf("lesson %d of module %d is claimed by %d files", *cur.Lesson, *g.Number, j-i),
				})
			}
			i = j
		}
	}
	return issues
}

// topDir is a top-level course directory and the module numbers its lessons claim.
type topDir struct {
	name  string
	min   int
	max   int
	paths []string
}

// outOfOrderModules walks top-level directories in course order and flags a
// directory whose lowest module number does not exceed every module seen in
// earlier directories.
func outOfOrderModules(files []*lesson.LessonFile) []lesson.Issue {
	dirs := map[string]*topDir{}
	for _, f := range files {
		if f.Module == nil {
			continue
		}
		i := strings.Index(f.Path, "/")
		if i < 0 {
			continue
		}
		name := f.Path[:i]
		d, ok := dirs[name]
		if !ok {
			d = &topDir{name: name, min: *f.Module, max: *f.Module}
			dirs[name] = d
		}
		d.min = min(d.min, *f.Module)
		d.max = max(d.max, *f.Module)
		d.paths = append(d.paths, f.Path)
	}

	ordered := make([]*topDir, 0, len(dirs))
	for _, d := range dirs {
		ordered = append(ordered, d)
	}
	sort.Slice(ordered, func(i, j int) bool { return lessDir(ordered[i].name, ordered[j].name) })

	var issues []lesson.Issue
	var prev *topDir
	highest := 0
	for _, d := range ordered {
		if prev != nil && d.min <= highest {
			issues = append(issues, lesson.Issue{
				Kind:     lesson.OutOfOrderModule,
				Severity: lesson.SeverityWarning,
				Paths:    append([]string(nil), d.paths...),
				Message:  fmt.Sprintf("directory %q starts at module %d but an earlier directory already reached module %d", d.name, d.min, highest),
			})
		}
		if prev == nil || d.max > highest {
			highest = d.max
		}
		prev = d
	}
	return issues
}

// lessDir orders directory names by numeric prefix, then lexically.
func lessDir(a, b string) bool {
	na, okA := scanner.NumberPrefix(a)
	nb, okB := scanner.NumberPrefix(b)
	if okA && okB && na != nb {
		return na < nb
	}
	if okA != okB {
		return okA
	}
	return a < b
}
