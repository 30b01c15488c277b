package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mvp-joe/course-validator/internal/config"
	"github.com/mvp-joe/course-validator/internal/pipeline"
	"github.com/mvp-joe/course-validator/internal/report"
	"github.com/mvp-joe/course-validator/internal/scanner"
	"github.com/mvp-joe/course-validator/internal/storage"
	"github.com/mvp-joe/course-validator/internal/watcher"
)

var (
	formatFlag  string
	quietFlag   bool
	watchFlag   bool
	dbFlag      string
	workersFlag int
)

func init() {
	rootCmd.Flags().StringVarP(&formatFlag, "format", "f", "", "report format: text, json, yaml, markdown, html (default from config, else text)")
	rootCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "disable progress output")
	rootCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "re-validate whenever lesson files change")
	rootCmd.Flags().StringVar(&dbFlag, "db", "", "store each run in this SQLite outline database")
	rootCmd.Flags().IntVar(&workersFlag, "workers", 0, "number of concurrent file readers (default from config)")
}

// validateOptions are the resolved inputs of one validate invocation.
type validateOptions struct {
	root       string
	configFile string
	format     string
	quiet      bool
	watch      bool
	dbPath     string
	workers    int
}

func runValidate(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(cmd.ErrOrStderr(), "\nInterrupted! Cancelling validation...")
			cancel()
		case <-ctx.Done():
		}
	}()

	code, err := executeValidate(ctx, validateOptions{
		root:       args[0],
		configFile: cfgFile,
		format:     formatFlag,
		quiet:      quietFlag,
		watch:      watchFlag,
		dbPath:     dbFlag,
		workers:    workersFlag,
	}, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	if code != 0 {
		return &exitError{code: code}
	}
	return nil
}

// loadConfig resolves configuration for root and applies command-line overrides.
func loadConfig(root, configFile string) (*config.Config, error) {
	var opts []config.LoaderOption
	if configFile != "" {
		opts = append(opts, config.WithConfigFile(configFile))
	}
	cfg, err := config.NewLoader(root, opts...).Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// executeValidate runs one validation (or a watch loop) and returns the exit code.
func executeValidate(ctx context.Context, opts validateOptions, stdout, stderr io.Writer) (int, error) {
	root, err := filepath.Abs(opts.root)
	if err != nil {
		return 1, fmt.Errorf("failed to resolve %s: %w", opts.root, err)
	}

	cfg, err := loadConfig(root, opts.configFile)
	if err != nil {
		return 1, err
	}
	if opts.workers > 0 {
		cfg.Pipeline.Workers = opts.workers
	}
	if opts.dbPath != "" {
		// Flag paths are relative to the working directory, config paths to root.
		if cfg.Storage.DBPath, err = filepath.Abs(opts.dbPath); err != nil {
			return 1, fmt.Errorf("failed to resolve %s: %w", opts.dbPath, err)
		}
	}
	formatName := cfg.Output.Format
	if opts.format != "" {
		formatName = opts.format
	}
	format, err := report.ParseFormat(formatName)
	if err != nil {
		return 1, err
	}

	// Progress goes to stderr and only alongside the human-readable report.
	progress := NewCLIProgressReporter(opts.quiet || format != report.FormatText, stderr)

	p, err := pipeline.New(cfg, pipeline.WithLogger(logger), pipeline.WithProgress(progress))
	if err != nil {
		return 1, fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer p.Close()

	v := &validation{
		root:     root,
		cfg:      cfg,
		format:   format,
		pipeline: p,
		stdout:   stdout,
	}
	if cfg.Storage.DBPath != "" {
		db, err := storage.Open(resolvePath(root, cfg.Storage.DBPath))
		if err != nil {
			return 1, err
		}
		defer db.Close()
		v.writer = storage.NewOutlineWriter(db)
	}

	code, err := v.run(ctx)
	if err != nil {
		return 1, err
	}
	if !opts.watch {
		return code, nil
	}

	if !opts.quiet {
		fmt.Fprintln(stderr, "Watching for changes (Ctrl+C to stop)...")
	}
	code, err = v.watch(ctx, code)
	if err != nil {
		return 1, err
	}
	if !opts.quiet {
		fmt.Fprintln(stderr, "Watch mode stopped")
	}
	return code, nil
}

// validation is one configured validate invocation. run can be called
// repeatedly; the pipeline cache makes reruns cheap.
type validation struct {
	root     string
	cfg      *config.Config
	format   report.Format
	pipeline *pipeline.Pipeline
	writer   *storage.OutlineWriter
	stdout   io.Writer
}

func (v *validation) run(ctx context.Context) (int, error) {
	result, err := v.pipeline.Run(ctx, v.root)
	if err != nil {
		return 1, err
	}

	if err := report.Write(v.stdout, result, v.format); err != nil {
		return 1, fmt.Errorf("failed to write report: %w", err)
	}

	if v.writer != nil {
		if err := v.writer.WriteRun(ctx, result); err != nil {
			return 1, fmt.Errorf("failed to store run: %w", err)
		}
		logger.Debug("stored run", zap.String("run_id", result.RunID))
	}

	return report.ExitCode(result.Issues), nil
}

// watch re-runs validation on every debounced batch of lesson changes until
// ctx is cancelled, returning the exit code of the last run.
func (v *validation) watch(ctx context.Context, code int) (int, error) {
	sc, err := scanner.New(v.root, v.cfg.Paths.Lessons, v.cfg.Paths.Ignore)
	if err != nil {
		return 1, err
	}

	fw, err := watcher.NewFileWatcher([]string{v.root}, v.cfg.LessonExtensions(),
		watcher.WithLogger(logger),
		watcher.WithSkipDir(sc.Ignores),
	)
	if err != nil {
		return 1, fmt.Errorf("failed to start watcher: %w", err)
	}

	coordinator := watcher.NewCoordinator(fw, func(ctx context.Context, changed []string) error {
		logger.Info("lesson files changed", zap.Int("files", len(changed)))
		c, err := v.run(ctx)
		if err != nil {
			return err
		}
		code = c
		return nil
	}, logger)

	if err := coordinator.Run(ctx); err != nil && ctx.Err() == nil {
		return 1, fmt.Errorf("watch mode failed: %w", err)
	}
	return code, nil
}

func resolvePath(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
