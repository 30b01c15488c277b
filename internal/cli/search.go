package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/course-validator/internal/lesson"
	"github.com/mvp-joe/course-validator/internal/pipeline"
	"github.com/mvp-joe/course-validator/internal/search"
	"github.com/mvp-joe/course-validator/internal/storage"
)

var (
	searchLimitFlag int
	searchJSONFlag  bool
	searchDBFlag    string
)

var searchCmd = &cobra.Command{
	Use:   "search <root-dir> <query>",
	Short: "Search lesson titles and objectives",
	Long: `Search finds lessons by keyword across titles, objectives and paths.

The query uses bleve query-string syntax: field scoping (title:, objectives:,
path:, module:), +required / -excluded terms, "phrases" and wildcards.

By default the course is scanned first. With --db the lessons of the latest
stored run for <root-dir> are searched instead.

Examples:
  validate-course search ./curso hooks
  validate-course search ./curso "+objectives:jsx +module:2"
  validate-course search ./curso express --db outline.db --json
`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return executeSearch(cmd.Context(), searchOptions{
			root:       args[0],
			query:      args[1],
			configFile: cfgFile,
			limit:      searchLimitFlag,
			json:       searchJSONFlag,
			dbPath:     searchDBFlag,
		}, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().IntVarP(&searchLimitFlag, "limit", "n", 10, "maximum number of results (1-100)")
	searchCmd.Flags().BoolVar(&searchJSONFlag, "json", false, "print results as JSON")
	searchCmd.Flags().StringVar(&searchDBFlag, "db", "", "search the latest run stored in this outline database")
}

type searchOptions struct {
	root       string
	query      string
	configFile string
	limit      int
	json       bool
	dbPath     string
}

func executeSearch(ctx context.Context, opts searchOptions, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	root, err := filepath.Abs(opts.root)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", opts.root, err)
	}

	var lessons []*lesson.LessonFile
	if opts.dbPath != "" {
		lessons, err = storedLessons(ctx, root, opts.dbPath)
	} else {
		lessons, err = scannedLessons(ctx, root, opts.configFile)
	}
	if err != nil {
		return err
	}

	searcher, err := search.New(ctx, lessons)
	if err != nil {
		return err
	}
	defer searcher.Close()

	results, err := searcher.Search(ctx, opts.query, opts.limit)
	if err != nil {
		return err
	}

	if opts.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Fprintln(out, "No matching lessons.")
		return nil
	}
	for _, r := range results {
		title := r.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Fprintf(out, "%s  %s  (%.2f)\n", r.Path, title, r.Score)
		for _, h := range r.Highlights {
			fmt.Fprintf(out, "    %s\n", plainHighlight(h))
		}
	}
	return nil
}

// markReplacer turns highlight markup into bracketed terms for terminals.
var markReplacer = strings.NewReplacer("<mark>", "[", "</mark>", "]")

// plainHighlight renders an HTML highlight fragment as plain text.
func plainHighlight(fragment string) string {
	return strings.TrimSpace(html.UnescapeString(markReplacer.Replace(fragment)))
}

func scannedLessons(ctx context.Context, root, configFile string) ([]*lesson.LessonFile, error) {
	cfg, err := loadConfig(root, configFile)
	if err != nil {
		return nil, err
	}
	cfg.Pipeline.CacheSize = 0

	p, err := pipeline.New(cfg, pipeline.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer p.Close()

	result, err := p.Run(ctx, root)
	if err != nil {
		return nil, err
	}
	return result.Outline.Lessons(), nil
}

func storedLessons(ctx context.Context, root, dbPath string) ([]*lesson.LessonFile, error) {
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
	return reader.Lessons(ctx, run.RunID)
}
