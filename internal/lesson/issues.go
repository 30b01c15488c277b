package lesson

import (
	"fmt"
	"sort"
	"strings"
)

// IssueKind classifies a content problem found while validating a course.
type IssueKind string

const (
	MissingTitle          IssueKind = "MissingTitle"
	DuplicateLessonNumber IssueKind = "DuplicateLessonNumber"
	MalformedHeader       IssueKind = "MalformedHeader"
	OutOfOrderModule      IssueKind = "OutOfOrderModule"
	UnknownPrerequisite   IssueKind = "UnknownPrerequisite"
	PrerequisiteCycle     IssueKind = "PrerequisiteCycle"
)

// Severity decides whether an issue fails the run.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Issue is a non-fatal validation finding attached to one or more lesson files.
type Issue struct {
	Kind     IssueKind `json:"kind" yaml:"kind"`
	Severity Severity  `json:"severity" yaml:"severity"`
	Paths    []string  `json:"paths" yaml:"paths"`
	Message  string    `json:"message" yaml:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("[%s] %s: %s (%s)", i.Severity, i.Kind, i.Message, strings.Join(i.Paths, ", "))
}

// Refers reports whether the issue references path.
func (i Issue) Refers(path string) bool {
	for _, p := range i.Paths {
		if p == path {
			return true
		}
	}
	return false
}

// SortIssues orders issues by kind, first path, then message so that output
// does not depend on discovery or completion order.
func SortIssues(issues []Issue) {
	for i := range issues {
		sort.Strings(issues[i].Paths)
	}
	sort.SliceStable(issues, func(a, b int) bool {
		ia, ib := issues[a], issues[b]
		if ia.Kind != ib.Kind {
			return ia.Kind < ib.Kind
		}
		pa, pb := firstPath(ia), firstPath(ib)
		if pa != pb {
			return pa < pb
		}
		return ia.Message < ib.Message
	})
}

// HasErrors reports whether any issue has error severity.
func HasErrors(issues []Issue) bool {
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

func firstPath(i Issue) string {
	if len(i.Paths) == 0 {
		return ""
	}
	return i.Paths[0]
}
