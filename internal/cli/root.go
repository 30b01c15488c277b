package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	cfgFile string
	verbose bool

	logger = zap.NewNop()
)

// exitError carries a non-zero exit code without an error message, used when
// validation itself succeeded but found error-severity issues.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// rootCmd validates a course tree when called with a directory argument.
var rootCmd = &cobra.Command{
	Use:   "validate-course <root-dir>",
	Short: "Validate lesson files and build the course outline",
	Long: `validate-course checks that every lesson file in a course repository has a
well-formed header, extracts module/lesson numbers, titles and objectives,
and prints the ordered course outline followed by any content issues.

Lesson files follow the naming convention <number>-<slug>.<ext>, for example
02-React-Framework/01-fundamentos-react.js. Headers are read from the leading
comment block:

  /*
   * Módulo 2 - Aula 1: Fundamentos do React
   * Objetivos:
   *  - Entender JSX
   */

The exit code is 0 unless an issue has severity "error".

Examples:
  # Validate the course in the current directory
  validate-course .

  # Emit the outline as JSON for a documentation generator
  validate-course ./curso --format json

  # Re-validate on every change
  validate-course ./curso --watch
`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		config.Encoding = "console"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		l, err := config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	RunE: runValidate,
}

// Execute runs the root command and returns the process exit code.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() int {
	err := rootCmd.Execute()
	if err == nil {
		return 0
	}

	var exit *exitError
	if errors.As(err, &exit) {
		return exit.code
	}
	fmt.Fprintln(os.Stderr, "Error:", err)
	return 1
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is <root-dir>/.course/config.yml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
}
