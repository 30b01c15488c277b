package extractor

import (
	"strings"
)

// commentStyle describes one comment syntax the line scanner recognises.
type commentStyle struct {
	open  string
	close string // empty for line comments
}

var (
	blockStyle = commentStyle{open: "/*", close: "*/"}
	htmlStyle  = commentStyle{open: "<!--", close: "-->"}
	slashStyle = commentStyle{open: "//"}
	hashStyle  = commentStyle{open: "#"}
)

// headerBlock is the leading comment found in a source file.
type headerBlock struct {
	lines []string // raw comment lines including delimiters
	close string   // closing delimiter still missing at the end of the window
}

// stylesFor returns the comment styles that may open a header in a file with
// the given extension. '#' is a heading in markdown, not a comment.
func stylesFor(ext string) []commentStyle {
	switch ext {
	case ".md", ".markdown", ".html", ".htm":
		return []commentStyle{htmlStyle}
	case ".py", ".sh", ".rb", ".yml", ".yaml", ".toml":
		return []commentStyle{hashStyle}
	default:
		return []commentStyle{blockStyle, slashStyle, htmlStyle}
	}
}

// firstContentLine returns the index of the first line that is neither blank
// nor a shebang, or -1.
func firstContentLine(lines []string) int {
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if i == 0 && strings.HasPrefix(trimmed, "#!") {
			continue
		}
		return i
	}
	return -1
}

// scanLeadingComment finds the leading comment block in the header window
// with the line scanner. A block comment still open at the end of lines is
// returned with its missing delimiter in close.
func scanLeadingComment(lines []string, ext string) *headerBlock {
	start := firstContentLine(lines)
	if start < 0 {
		return nil
	}

	first := strings.TrimSpace(lines[start])
	for _, style := range stylesFor(ext) {
		if !strings.HasPrefix(first, style.open) {
			continue
		}

		if style.close == "" {
			var out []string
			for i := start; i < len(lines); i++ {
				trimmed := strings.TrimSpace(lines[i])
				if !strings.HasPrefix(trimmed, style.open) {
					break
				}
				out = append(out, lines[i])
			}
			return &headerBlock{lines: out}
		}

		end := findClose(lines, start, style)
		if end < 0 {
			return &headerBlock{lines: append([]string(nil), lines[start:]...), close: style.close}
		}
		return &headerBlock{lines: append([]string(nil), lines[start:end+1]...)}
	}

	return nil
}

// findClose returns the index of the line that closes a block comment opened
// on line start, or -1.
func findClose(lines []string, start int, style commentStyle) int {
	for i := start; i < len(lines); i++ {
		line := lines[i]
		if i == start {
			idx := strings.Index(line, style.open)
			line = line[idx+len(style.open):]
		}
		if strings.Contains(line, style.close) {
			return i
		}
	}
	return -1
}

// cleanCommentLines strips comment delimiters and JSDoc-style gutters,
// returning the prose lines of a header.
func cleanCommentLines(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, line := range raw {
		s := strings.TrimSpace(line)

		for _, open := range []string{"/**", "/*", "<!--", "//"} {
			if strings.HasPrefix(s, open) {
				s = strings.TrimPrefix(s, open)
				break
			}
		}
		for _, close := range []string{"*/", "-->"} {
			if idx := strings.Index(s, close); idx >= 0 {
				s = s[:idx]
			}
		}
		s = strings.TrimSpace(s)

		if strings.HasPrefix(s, "#") && !strings.HasPrefix(strings.TrimSpace(line), "#!") {
			s = strings.TrimSpace(strings.TrimLeft(s, "#"))
		}
		// JSDoc gutter: " * text". A lone "*" bullet is kept by requiring a space or end.
		if s == "*" {
			s = ""
		} else if strings.HasPrefix(s, "* ") && isGutterLine(line) {
			s = strings.TrimSpace(s[2:])
		}

		// decorative rules such as "=====" or "-----"
		if isRule(s) {
			s = ""
		}

		out = append(out, s)
	}
	return trimBlankEdges(out)
}

// isGutterLine reports whether the raw line starts with a '*' gutter rather
// than being the comment opener itself.
func isGutterLine(raw string) bool {
	t := strings.TrimSpace(raw)
	return strings.HasPrefix(t, "*") && !strings.HasPrefix(t, "*/")
}

func isRule(s string) bool {
	if len(s) < 3 {
		return false
	}
	for _, r := range s {
		if r != '=' && r != '-' && r != '*' && r != '_' && r != '#' {
			return false
		}
	}
	return true
}

func trimBlankEdges(lines []string) []string {
	for len(lines) > 0 && lines[0] == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
