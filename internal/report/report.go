// Package report renders validation results for people and for downstream
// documentation generators.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"

	"github.com/mvp-joe/course-validator/internal/lesson"
	"github.com/mvp-joe/course-validator/internal/pipeline"
)

// Format names a report rendering.
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// ParseFormat converts a flag or config value into a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatYAML, FormatMarkdown, FormatHTML:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("unknown report format %q", s)
}

// Write renders result to w in the given format.
func Write(w io.Writer, result *pipeline.Result, format Format) error {
	switch format {
	case FormatText, "":
		return writeText(w, result)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(NewDocument(result))
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(NewDocument(result)); err != nil {
			return fmt.Errorf("failed to encode yaml report: %w", err)
		}
		return enc.Close()
	case FormatMarkdown:
		_, err := io.WriteString(w, Markdown(result))
		return err
	case FormatHTML:
		return writeHTML(w, result)
	}
	return fmt.Errorf("unknown report format %q", format)
}

// ExitCode returns 1 when any issue has error severity, 0 otherwise.
func ExitCode(issues []lesson.Issue) int {
	if lesson.HasErrors(issues) {
		return 1
	}
	return 0
}

func writeHTML(w io.Writer, result *pipeline.Result) error {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))

	var body bytes.Buffer
	if err := md.Convert([]byte(Markdown(result)), &body); err != nil {
		return fmt.Errorf("failed to render html report: %w", err)
	}

	_, err := fmt.Fprintf(w, "<!DOCTYPE html>\n<html>\n<head><meta charset=\"utf-8\"><title>Course Outline</title></head>\n<body>\n%s</body>\n</html>\n", body.String())
	return err
}
