package lesson

// LessonFile is the metadata extracted from a single lesson source file.
// Instances are built once by the extractor and treated as immutable.
type LessonFile struct {
	// Path is slash-separated and relative to the course root.
	Path string `json:"path" yaml:"path"`

	Module *int `json:"module,omitempty" yaml:"module,omitempty"`
	Lesson *int `json:"lesson,omitempty" yaml:"lesson,omitempty"`

	Title         string   `json:"title" yaml:"title"`
	Objectives    []string `json:"objectives" yaml:"objectives"`
	Prerequisites []string `json:"prerequisites,omitempty" yaml:"prerequisites,omitempty"`

	// RawHeader is the leading comment block with comment delimiters stripped.
	RawHeader string `json:"-" yaml:"-"`

	// Placeholder marks a file that had no recognizable header.
	Placeholder bool `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
}

// HasModule reports whether a module number was found for the file.
func (l *LessonFile) HasModule() bool { return l.Module != nil }

// HasLesson reports whether a lesson number was found for the file.
func (l *LessonFile) HasLesson() bool { return l.Lesson != nil }

// Int returns a pointer to n. Convenience for building LessonFile literals.
func Int(n int) *int { return &n }
