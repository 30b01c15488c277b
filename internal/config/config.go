package config

// Config represents the complete course validator configuration.
// It can be loaded from .course/config.yml with environment variable overrides.
type Config struct {
	Paths      PathsConfig      `yaml:"paths" mapstructure:"paths"`
	Extraction ExtractionConfig `yaml:"extraction" mapstructure:"extraction"`
	Pipeline   PipelineConfig   `yaml:"pipeline" mapstructure:"pipeline"`
	Output     OutputConfig     `yaml:"output" mapstructure:"output"`
	Storage    StorageConfig    `yaml:"storage" mapstructure:"storage"`
}

// PathsConfig defines which files are lesson candidates and which to ignore.
type PathsConfig struct {
	Lessons []string `yaml:"lessons" mapstructure:"lessons"` // glob patterns for lesson files
	Ignore  []string `yaml:"ignore" mapstructure:"ignore"`   // glob patterns to ignore
}

// ExtractionConfig controls how lesson headers are parsed.
type ExtractionConfig struct {
	MaxHeaderLines      int      `yaml:"max_header_lines" mapstructure:"max_header_lines"`         // line budget for the leading comment block
	TitleMarkers        []string `yaml:"title_markers" mapstructure:"title_markers"`               // e.g. "title", "título"
	ObjectiveMarkers    []string `yaml:"objective_markers" mapstructure:"objective_markers"`       // e.g. "objectives", "objetivos"
	PrerequisiteMarkers []string `yaml:"prerequisite_markers" mapstructure:"prerequisite_markers"` // e.g. "prerequisites"
	UseTreeSitter       bool     `yaml:"use_tree_sitter" mapstructure:"use_tree_sitter"`           // locate JS/TS comments with tree-sitter
}

// PipelineConfig tunes the file read pipeline.
type PipelineConfig struct {
	Workers   int `yaml:"workers" mapstructure:"workers"`       // concurrent file reads
	CacheSize int `yaml:"cache_size" mapstructure:"cache_size"` // extracted lessons kept between watch reruns
}

// OutputConfig selects the report format.
type OutputConfig struct {
	Format string `yaml:"format" mapstructure:"format"` // text, json, yaml, markdown or html
}

// StorageConfig configures the optional outline database.
type StorageConfig struct {
	DBPath string `yaml:"db_path" mapstructure:"db_path"` // empty disables persistence
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			Lessons: []string{
				"**/*.js",
				"**/*.jsx",
				"**/*.mjs",
				"**/*.cjs",
				"**/*.ts",
				"**/*.tsx",
				"**/*.md",
			},
			Ignore: []string{
				"node_modules/**",
				".git/**",
				"dist/**",
				"build/**",
				"coverage/**",
			},
		},
		Extraction: ExtractionConfig{
			MaxHeaderLines:      40,
			TitleMarkers:        []string{"title", "título", "titulo"},
			ObjectiveMarkers:    []string{"objectives", "learning objectives", "objetivos", "objetivos de aprendizagem"},
			PrerequisiteMarkers: []string{"prerequisites", "pré-requisitos", "pre-requisitos", "requires"},
			UseTreeSitter:       true,
		},
		Pipeline: PipelineConfig{
			Workers:   8,
			CacheSize: 10_000,
		},
		Output: OutputConfig{
			Format: "text",
		},
		Storage: StorageConfig{
			DBPath: "",
		},
	}
}

// LessonExtensions extracts unique file extensions from the lesson patterns.
// Returns extensions with leading dot (e.g., []string{".js", ".md"}).
func (c *Config) LessonExtensions() []string {
	seen := make(map[string]bool)
	var extensions []string
	for _, pattern := range c.Paths.Lessons {
		if ext := extractExtension(pattern); ext != "" && !seen[ext] {
			seen[ext] = true
			extensions = append(extensions, ext)
		}
	}
	return extensions
}

// extractExtension extracts the file extension from a glob pattern.
// Returns empty string if pattern doesn't match a simple extension pattern.
// Examples: "**/*.js" -> ".js", "*.ts" -> ".ts", "**/*.tsx" -> ".tsx"
func extractExtension(pattern string) string {
	for i := len(pattern) - 1; i >= 1; i-- {
		if pattern[i] == '.' && pattern[i-1] == '*' {
			return pattern[i:]
		}
	}
	return ""
}
