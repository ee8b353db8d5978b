package commands

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/lenguyenthanh/sqltyper/internal/cli/config"
	"github.com/lenguyenthanh/sqltyper/pkg/analyzer"
	"github.com/lenguyenthanh/sqltyper/pkg/catalog"
)

// AnalyzeOptions holds options for the analyze command.
type AnalyzeOptions struct {
	Watch bool
}

// ConfigLoader resolves the configuration for a command invocation.
type ConfigLoader func(*cobra.Command) (*config.Config, error)

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand(loadConfig ConfigLoader) *cobra.Command {
	opts := &AnalyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze <file|dir>...",
		Short: "Analyze SQL files and describe their parameters and output",
		Long: `Analyze each SQL file against the configured database and print its
statement description: row multiplicity, input parameters, and output
columns with inferred nullability.

Directory arguments are scanned recursively for *.sql files.`,
		Example: `  # Analyze a single query file
  sqltyper analyze queries/find_user.sql

  # Analyze a whole directory as JSON
  sqltyper analyze --output json queries/

  # Keep watching for changes
  sqltyper analyze --watch queries/`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runAnalyze(cmd, args, opts, cfg)
		},
	}

	cmd.Flags().BoolVar(&opts.Watch, "watch", false, "Re-analyze files when they change")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string, opts *AnalyzeOptions, cfg *config.Config) error {
	ctx := cmd.Context()
	logger := newLogger(cmd.ErrOrStderr(), cfg.Verbose)

	files, err := collectSQLFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no .sql files found in %s", strings.Join(args, ", "))
	}

	cat, err := loadCatalog(ctx, cfg, logger)
	if err != nil {
		return err
	}

	runner := &analyzeRunner{
		cfg:    cfg,
		cat:    cat,
		logger: logger,
		stdout: cmd.OutOrStdout(),
		stderr: cmd.ErrOrStderr(),
	}

	failed := runner.analyzeAll(ctx, files)

	if opts.Watch {
		return runner.watch(ctx, args)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(files))
	}
	return nil
}

// loadCatalog takes the once-per-run schema snapshot over its own
// connection.
func loadCatalog(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*catalog.Catalog, error) {
	conn, err := pgx.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	defer func() { _ = conn.Close(ctx) }()

	cat, err := catalog.Load(ctx, conn, logger)
	if err != nil {
		return nil, analyzer.CatalogError(err)
	}
	return cat, nil
}

// analyzeRunner analyzes files against a shared catalog snapshot, one
// database connection per file.
type analyzeRunner struct {
	cfg    *config.Config
	cat    *catalog.Catalog
	logger *slog.Logger
	stdout io.Writer
	stderr io.Writer

	mu sync.Mutex // serializes output
}

// analyzeAll fans the files out over cfg.Jobs workers and returns the
// number of failures. Failures are reported per file; the run continues.
func (r *analyzeRunner) analyzeAll(ctx context.Context, files []string) int {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Jobs)

	var mu sync.Mutex
	failed := 0

	for _, file := range files {
		g.Go(func() error {
			if err := r.analyzeFile(ctx, file); err != nil {
				mu.Lock()
				failed++
				mu.Unlock()
				fmt.Fprintf(r.stderr, "%s: %v\n", file, err)
			}
			return nil
		})
	}

	_ = g.Wait()
	return failed
}

// analyzeFile runs the full pipeline for one file over a dedicated
// connection.
func (r *analyzeRunner) analyzeFile(ctx context.Context, file string) error {
	sql, err := os.ReadFile(file)
	if err != nil {
		return err
	}

	conn, err := pgx.Connect(ctx, r.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer func() { _ = conn.Close(ctx) }()

	desc, err := analyzer.Analyze(ctx, string(sql), r.cat, conn, r.logger)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return renderDescription(r.stdout, file, desc, r.cat, r.cfg.Output)
}

// collectSQLFiles expands file and directory arguments into a sorted list
// of .sql files.
func collectSQLFiles(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			add(arg)
			continue
		}

		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.HasSuffix(path, ".sql") {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Strings(files)
	return files, nil
}

// newLogger builds the CLI logger.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
