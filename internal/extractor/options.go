package extractor

// Options controls header parsing.
type Options struct {
	// MaxHeaderLines bounds how far into a file the leading comment block may reach.
	MaxHeaderLines int

	// Marker words are matched case-insensitively and followed by ':'.
	TitleMarkers        []string
	ObjectiveMarkers    []string
	PrerequisiteMarkers []string

	// UseTreeSitter locates the leading comment of JavaScript and TypeScript
	// sources with a tree-sitter parse instead of the line scanner.
	UseTreeSitter bool
}

// DefaultOptions returns the options used when no configuration is loaded.
func DefaultOptions() Options {
	return Options{
		MaxHeaderLines:      40,
		TitleMarkers:        []string{"title", "título", "titulo"},
		ObjectiveMarkers:    []string{"objectives", "learning objectives", "objetivos", "objetivos de aprendizagem"},
		PrerequisiteMarkers: []string{"prerequisites", "pré-requisitos", "pre-requisitos", "requires"},
		UseTreeSitter:       true,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MaxHeaderLines <= 0 {
		o.MaxHeaderLines = d.MaxHeaderLines
	}
	if len(o.TitleMarkers) == 0 {
		o.TitleMarkers = d.TitleMarkers
	}
	if len(o.ObjectiveMarkers) == 0 {
		o.ObjectiveMarkers = d.ObjectiveMarkers
	}
	if len(o.PrerequisiteMarkers) == 0 {
		o.PrerequisiteMarkers = d.PrerequisiteMarkers
	}
	return o
}
