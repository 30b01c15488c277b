package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir    string
	configFile string
}

// LoaderOption customizes a Loader.
type LoaderOption func(*loader)

// WithConfigFile reads the given file instead of searching <root>/.course.
// A missing explicit file is an error.
func WithConfigFile(path string) LoaderOption {
	return func(l *loader) {
		l.configFile = path
	}
}

// NewLoader creates a new configuration loader for the given course root.
func NewLoader(rootDir string, opts ...LoaderOption) Loader {
	l := &loader{
		rootDir: rootDir,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (COURSE_*)
// 2. Config file (.course/config.yml or .course/config.yaml)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(l.rootDir, ".course"))
	}

	// COURSE_PIPELINE_WORKERS -> pipeline.workers
	v.SetEnvPrefix("COURSE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.BindEnv("extraction.max_header_lines")
	v.BindEnv("extraction.use_tree_sitter")
	v.BindEnv("pipeline.workers")
	v.BindEnv("pipeline.cache_size")
	v.BindEnv("output.format")
	v.BindEnv("storage.db_path")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is acceptable - we'll use defaults + env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("paths.lessons", defaults.Paths.Lessons)
	v.SetDefault("paths.ignore", defaults.Paths.Ignore)

	v.SetDefault("extraction.max_header_lines", defaults.Extraction.MaxHeaderLines)
	v.SetDefault("extraction.title_markers", defaults.Extraction.TitleMarkers)
	v.SetDefault("extraction.objective_markers", defaults.Extraction.ObjectiveMarkers)
	v.SetDefault("extraction.prerequisite_markers", defaults.Extraction.PrerequisiteMarkers)
	v.SetDefault("extraction.use_tree_sitter", defaults.Extraction.UseTreeSitter)

	v.SetDefault("pipeline.workers", defaults.Pipeline.Workers)
	v.SetDefault("pipeline.cache_size", defaults.Pipeline.CacheSize)

	v.SetDefault("output.format", defaults.Output.Format)
	v.SetDefault("storage.db_path", defaults.Storage.DBPath)
}
