package config

import "github.com/mvp-joe/course-validator/internal/extractor"

// ExtractorOptions converts the extraction section to extractor.Options.
func (c *Config) ExtractorOptions() extractor.Options {
	return extractor.Options{
		MaxHeaderLines:      c.Extraction.MaxHeaderLines,
		TitleMarkers:        c.Extraction.TitleMarkers,
		ObjectiveMarkers:    c.Extraction.ObjectiveMarkers,
		PrerequisiteMarkers: c.Extraction.PrerequisiteMarkers,
		UseTreeSitter:       c.Extraction.UseTreeSitter,
	}
}
