package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

var (
	// ErrInvalidPattern indicates a glob pattern that does not compile
	ErrInvalidPattern = errors.New("invalid glob pattern")

	// ErrEmptyLessonPatterns indicates no lesson patterns were configured
	ErrEmptyLessonPatterns = errors.New("empty lesson patterns")

	// ErrInvalidHeaderBudget indicates a non-positive header line budget
	ErrInvalidHeaderBudget = errors.New("invalid header line budget")

	// ErrInvalidWorkers indicates a non-positive worker count
	ErrInvalidWorkers = errors.New("invalid worker count")

	// ErrInvalidCacheSize indicates a negative cache size
	ErrInvalidCacheSize = errors.New("invalid cache size")

	// ErrInvalidFormat indicates an unsupported report format
	ErrInvalidFormat = errors.New("invalid output format")
)

// Formats lists the report formats accepted by output.format and --format.
var Formats = []string{"text", "json", "yaml", "markdown", "html"}

// formatAliases maps shorthand format names to entries of Formats.
var formatAliases = map[string]string{"md": "markdown"}

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if err := validatePaths(&cfg.Paths); err != nil {
		errs = append(errs, err)
	}

	if err := validateExtraction(&cfg.Extraction); err != nil {
		errs = append(errs, err)
	}

	if err := validatePipeline(&cfg.Pipeline); err != nil {
		errs = append(errs, err)
	}

	if err := ValidateFormat(cfg.Output.Format); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

// ValidateFormat checks that format names a supported report format or one
// of its aliases. Matching ignores case and surrounding space.
func ValidateFormat(format string) error {
	name := strings.ToLower(strings.TrimSpace(format))
	if alias, ok := formatAliases[name]; ok {
		name = alias
	}
	for _, f := range Formats {
		if name == f {
			return nil
		}
	}
	return fmt.Errorf("%w: must be one of %s (or md), got '%s'", ErrInvalidFormat, strings.Join(Formats, ", "), format)
}

func validatePaths(cfg *PathsConfig) error {
	var errs []error

	if len(cfg.Lessons) == 0 {
		errs = append(errs, fmt.Errorf("%w: at least one lesson pattern required", ErrEmptyLessonPatterns))
	}

	for _, pattern := range append(append([]string{}, cfg.Lessons...), cfg.Ignore...) {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			errs = append(errs, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, pattern, err))
		}
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateExtraction(cfg *ExtractionConfig) error {
	if cfg.MaxHeaderLines <= 0 {
		return fmt.Errorf("%w: max_header_lines must be positive, got %d", ErrInvalidHeaderBudget, cfg.MaxHeaderLines)
	}
	return nil
}

func validatePipeline(cfg *PipelineConfig) error {
	var errs []error

	if cfg.Workers <= 0 {
		errs = append(errs, fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidWorkers, cfg.Workers))
	}

	// zero disables caching
	if cfg.CacheSize < 0 {
		errs = append(errs, fmt.Errorf("%w: cache_size cannot be negative, got %d", ErrInvalidCacheSize, cfg.CacheSize))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

// joinErrors combines multiple errors into a single error with clear formatting.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	var msgs []string
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}

	return fmt.Errorf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}
