package report

import (
	"fmt"
	"strings"

	"github.com/mvp-joe/course-validator/internal/pipeline"
)

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	"*", `\*`,
	"_", `\_`,
	"[", `\[`,
	"]", `\]`,
	"<", `\<`,
	">", `\>`,
	"|", `\|`,
	"#", `\#`,
)

// Markdown renders the outline as a markdown table of contents followed by an
// issue table.
func Markdown(result *pipeline.Result) string {
	doc := NewDocument(result)
	var sb strings.Builder

	sb.WriteString("# Course Outline\n")

	for _, m := range doc.Modules {
		sb.WriteString(fmt.Sprintf("\n## %s\n\n", m.Name))
		for _, l := range m.Lessons {
			sb.WriteString(fmt.Sprintf("- Lesson %s: **%s** (`%s`)\n", lessonNumber(l.Lesson), markdownEscaper.Replace(displayTitle(l)), l.Path))
			for _, obj := range l.Objectives {
				sb.WriteString(fmt.Sprintf("  - %s\n", markdownEscaper.Replace(obj)))
			}
		}
	}

	if len(doc.Issues) > 0 {
		sb.WriteString("\n## Issues\n\n")
		sb.WriteString("| Severity | Kind | Files | Message |\n")
		sb.WriteString("|---|---|---|---|\n")
		for _, issue := range doc.Issues {
			files := make([]string, 0, len(issue.Paths))
			for _, p := range issue.Paths {
				files = append(files, "`"+p+"`")
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
				severityLabel(issue.Severity), issue.Kind, strings.Join(files, ", "), markdownEscaper.Replace(issue.Message)))
		}
	}

	sb.WriteString(fmt.Sprintf("\n_%s in %s, %s, %s_\n",
		plural(doc.Summary.Lessons, "lesson"),
		plural(doc.Summary.Modules, "module"),
		plural(doc.Summary.Errors, "error"),
		plural(doc.Summary.Warnings, "warning")))

	return sb.String()
}
