package extractor

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	modulePattern = regexp.MustCompile(`(?i)(?:^|[^\p{L}])(?:module|módulo|modulo)\s*(?:n[º°o.]\s*|#\s*)?(\d+)`)
	lessonPattern = regexp.MustCompile(`(?i)(?:^|[^\p{L}])(?:lesson|aula|lição|licao|lecture)\s*(?:n[º°o.]\s*|#\s*)?(\d+)`)
	bulletPattern = regexp.MustCompile(`^(?:[-*•+–]|\d+[.)])\s+`)
	tagPattern    = regexp.MustCompile(`^@\w+`)
)

// separators trimmed between a numbering token and the title text
const separators = " \t:-–—|.,"

// parsedHeader is the structured content of a cleaned header block.
type parsedHeader struct {
	module        *int
	lesson        *int
	title         string
	objectives    []string
	prerequisites []string
}

type section int

const (
	sectionNone section = iota
	sectionObjectives
	sectionPrerequisites
	sectionOther
)

// parseHeader extracts numbering, title, objectives and prerequisites from
// cleaned header lines.
func parseHeader(lines []string, opts Options) parsedHeader {
	var (
		h             parsedHeader
		explicitTitle string
		lessonTitle   string
		moduleTitle   string
		proseTitle    string
		current       = sectionNone
		seenSection   bool
	)
	h.objectives = []string{}

	for _, line := range lines {
		if line == "" {
			// a blank line ends a list section
			current = sectionNone
			continue
		}

		if rest, ok := matchMarker(line, opts.TitleMarkers); ok {
			if explicitTitle == "" {
				explicitTitle = strings.TrimSpace(rest)
			}
			current = sectionNone
			continue
		}

		if rest, ok := matchMarker(line, opts.ObjectiveMarkers); ok {
			current = sectionObjectives
			seenSection = true
			if item := cleanItem(rest); item != "" {
				h.objectives = append(h.objectives, item)
			}
			continue
		}

		if rest, ok := matchMarker(line, opts.PrerequisiteMarkers); ok {
			current = sectionPrerequisites
			seenSection = true
			h.prerequisites = append(h.prerequisites, splitRefs(rest)...)
			continue
		}

		moduleMatch := modulePattern.FindStringSubmatchIndex(line)
		lessonMatch := lessonPattern.FindStringSubmatchIndex(line)
		numbered := moduleMatch != nil || lessonMatch != nil

		if !numbered && isHeadingLine(line) {
			// "Instructor notes:" and similar end the current list
			current = sectionOther
			seenSection = true
			continue
		}

		switch current {
		case sectionObjectives:
			if item := cleanItem(line); item != "" {
				h.objectives = append(h.objectives, item)
			}
			continue
		case sectionPrerequisites:
			h.prerequisites = append(h.prerequisites, splitRefs(cleanItem(line))...)
			continue
		case sectionOther:
			continue
		}

		if numbered {
			lastEnd := 0
			if moduleMatch != nil {
				if h.module == nil {
					h.module = atoiPtr(line[moduleMatch[2]:moduleMatch[3]])
				}
				lastEnd = max(lastEnd, moduleMatch[1])
			}
			if lessonMatch != nil {
				if h.lesson == nil {
					h.lesson = atoiPtr(line[lessonMatch[2]:lessonMatch[3]])
				}
				lastEnd = max(lastEnd, lessonMatch[1])
			}
			rest := strings.TrimSpace(strings.TrimLeft(line[lastEnd:], separators))
			if lessonMatch != nil && lessonTitle == "" {
				lessonTitle = rest
			} else if lessonMatch == nil && moduleTitle == "" {
				moduleTitle = rest
			}
			continue
		}

		if proseTitle == "" && !seenSection && !bulletPattern.MatchString(line) && !tagPattern.MatchString(line) {
			proseTitle = line
		}
	}

	switch {
	case explicitTitle != "":
		h.title = explicitTitle
	case lessonTitle != "":
		h.title = lessonTitle
	case proseTitle != "":
		h.title = proseTitle
	default:
		h.title = moduleTitle
	}
	return h
}

func atoiPtr(s string) *int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

// matchMarker reports whether line starts with one of markers followed by ':'
// and returns the text after the colon.
func matchMarker(line string, markers []string) (string, bool) {
	lower := strings.ToLower(bulletPattern.ReplaceAllString(line, ""))
	for _, marker := range markers {
		m := strings.ToLower(marker)
		if !strings.HasPrefix(lower, m) {
			continue
		}
		rest := strings.TrimSpace(lower[len(m):])
		if !strings.HasPrefix(rest, ":") {
			continue
		}
		// recover original casing of the remainder
		original := bulletPattern.ReplaceAllString(line, "")
		idx := strings.Index(original, ":")
		return strings.TrimSpace(original[idx+1:]), true
	}
	return "", false
}

// isHeadingLine reports whether line looks like an unrecognised section
// heading such as "Instructor notes:".
func isHeadingLine(line string) bool {
	if !strings.HasSuffix(line, ":") || bulletPattern.MatchString(line) {
		return false
	}
	words := strings.Fields(line)
	return len(words) <= 4
}

// cleanItem trims bullet glyphs and whitespace from a list item.
func cleanItem(line string) string {
	return strings.TrimSpace(bulletPattern.ReplaceAllString(strings.TrimSpace(line), ""))
}

// splitRefs splits a comma separated list of lesson references.
func splitRefs(s string) []string {
	var refs []string
	for _, part := range strings.Split(s, ",") {
		if ref := strings.TrimSpace(part); ref != "" {
			refs = append(refs, ref)
		}
	}
	return refs
}
