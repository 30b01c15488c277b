package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mvp-joe/course-validator/internal/outline"
	"github.com/mvp-joe/course-validator/internal/pipeline"
	"github.com/mvp-joe/course-validator/internal/report"
	"github.com/mvp-joe/course-validator/internal/storage"
)

var (
	showFormatFlag string
	showDBFlag     string
)

var showCmd = &cobra.Command{
	Use:   "show <root-dir>",
	Short: "Print the report of the latest stored run",
	Long: `Show re-emits the report of the latest run stored for <root-dir> without
reading the course again. The database comes from --db, else storage.db_path.

The exit code is that of the stored run: 1 when it had error-severity issues.

Examples:
  validate-course show ./curso --db outline.db
  validate-course show ./curso --format json
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		code, err := executeShow(cmd.Context(), showOptions{
			root:       args[0],
			configFile: cfgFile,
			format:     showFormatFlag,
			dbPath:     showDBFlag,
		}, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		if code != 0 {
			return &exitError{code: code}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().StringVarP(&showFormatFlag, "format", "f", "", "report format: text, json, yaml, markdown, html (default from config, else text)")
	showCmd.Flags().StringVar(&showDBFlag, "db", "", "outline database to read (default storage.db_path)")
}

type showOptions struct {
	root       string
	configFile string
	format     string
	dbPath     string
}

func executeShow(ctx context.Context, opts showOptions, out io.Writer) (int, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	root, err := filepath.Abs(opts.root)
	if err != nil {
		return 1, fmt.Errorf("failed to resolve %s: %w", opts.root, err)
	}

	cfg, err := loadConfig(root, opts.configFile)
	if err != nil {
		return 1, err
	}

	dbPath := opts.dbPath
	switch {
	case dbPath != "":
		if dbPath, err = filepath.Abs(dbPath); err != nil {
			return 1, fmt.Errorf("failed to resolve %s: %w", opts.dbPath, err)
		}
	case cfg.Storage.DBPath != "":
		dbPath = resolvePath(root, cfg.Storage.DBPath)
	default:
		return 1, errors.New("no outline database: pass --db or set storage.db_path")
	}

	formatName := cfg.Output.Format
	if opts.format != "" {
		formatName = opts.format
	}
	format, err := report.ParseFormat(formatName)
	if err != nil {
		return 1, err
	}

	result, err := storedResult(ctx, root, dbPath)
	if err != nil {
		return 1, err
	}
	logger.Debug("loaded stored run", zap.String("run_id", result.RunID))

	if err := report.Write(out, result, format); err != nil {
		return 1, fmt.Errorf("failed to write report: %w", err)
	}
	return report.ExitCode(result.Issues), nil
}

// storedResult rebuilds the result of the latest run for root. The stored
// issues are authoritative; the outline is regrouped from the stored lessons.
func storedResult(ctx context.Context, root, dbPath string) (*pipeline.Result, error) {
	db, err := storage.Open(dbPath)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	reader := storage.NewOutlineReader(db)
	run, err := reader.LatestRun(ctx, root)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, fmt.Errorf("no stored run for %s in %s", root, dbPath)
	}

	lessons, err := reader.Lessons(ctx, run.RunID)
	if err != nil {
		return nil, err
	}
	issues, err := reader.Issues(ctx, run.RunID)
	if err != nil {
		return nil, err
	}

	courseOutline, _ := outline.Build(lessons)
	return &pipeline.Result{
		RunID:   run.RunID,
		Root:    run.Root,
		Outline: courseOutline,
		Issues:  issues,
		Stats: pipeline.Stats{
			Files:        run.Files,
			Placeholders: run.Placeholders,
			Modules:      len(courseOutline.Modules),
			Issues:       len(issues),
			Duration:     run.Duration,
		},
	}, nil
}
