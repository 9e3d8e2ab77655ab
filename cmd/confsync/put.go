package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kemari/confsync/internal/config"
	"github.com/kemari/confsync/internal/history"
	"github.com/kemari/confsync/internal/log"
	"github.com/kemari/confsync/internal/model"
	"github.com/kemari/confsync/internal/report"
	"github.com/kemari/confsync/internal/sync"
	"github.com/kemari/confsync/internal/wiki"
)

// NewPutCmd creates the put command.
func NewPutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "put [files...]",
		Short: "Synchronize markdown documents with their wiki pages",
		Long: `Put synchronizes markdown documents with their wiki pages.

For each document, put compares the local content and the remote page
against the last synchronized state recorded in the document's front
matter, then acts on the drift:
- only local changed:  push the document to the wiki
- only remote changed: pull the page into the document
- both changed:        report a conflict (resolve with --force or --pull)
- neither changed:     do nothing

Examples:
  # Sync one document
  confsync put docs/guide.md

  # Sync every markdown file in a directory
  confsync put docs/

  # Create pages for unlinked documents under a parent page
  confsync put --create --parent 123456 docs/

  # Inspect drift without syncing
  confsync put --status docs/
  confsync put --diff docs/guide.md

  # Resolve a conflict
  confsync put --force docs/guide.md   # local wins
  confsync put --pull docs/guide.md    # remote wins

Configuration file (.confsync) example:
  server: https://example.atlassian.net
  email: user@example.com
  api_token: <token>
  space: ENG`,
		Args: cobra.ArbitraryArgs,
		RunE: runPutCmd,
	}

	// Connection flags
	cmd.Flags().StringP("server", "s", "", "Wiki base URL (e.g. https://example.atlassian.net)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout, "Per-request timeout for wiki API calls")

	// Sync behavior flags
	cmd.Flags().Bool("create", false, "Create pages for unlinked documents")
	cmd.Flags().String("parent", "", "Parent page ID or URL for created pages")
	cmd.Flags().BoolP("force", "f", false, "Overwrite the remote page on conflict")
	cmd.Flags().Bool("pull", false, "Replace local content with the remote page")
	cmd.Flags().Bool("status", false, "Report drift classification without syncing")
	cmd.Flags().Bool("diff", false, "Show local content against remote without syncing")
	cmd.Flags().String("page", "", "Sync against this page ID or URL (single file only)")
	cmd.Flags().String("title", "", "Remote page title on push or create (single file only)")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize, "Number of documents synced concurrently")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .confsync in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false, "Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false, "Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "", "Write report to specified file path (creates directories if needed)")

	// History flags
	cmd.Flags().Bool("no-history", false, "Skip recording outcomes in the sync journal")

	return cmd
}

// runPutCmd executes the put command.
func runPutCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging with credential redaction
	logger := log.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runPut(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig assembles a Config from the config file, environment, and
// flags, in that order of increasing precedence.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load the configuration file first so environment variables and
	// flags can override it. An explicitly given path must exist; the
	// implicit search is allowed to come up empty.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	if configPath != "" {
		cf, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		if err := cfg.ApplyFile(cf); err != nil {
			return nil, err
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	cfg.ApplyEnv()

	if server, err := cmd.Flags().GetString("server"); err != nil {
		return nil, err
	} else if server != "" {
		cfg.Server = server
	}
	if cmd.Flags().Changed("timeout") {
		if cfg.Timeout, err = cmd.Flags().GetDuration("timeout"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("batch") {
		if cfg.BatchSize, err = cmd.Flags().GetInt("batch"); err != nil {
			return nil, err
		}
	}

	if cfg.Create, err = cmd.Flags().GetBool("create"); err != nil {
		return nil, err
	}
	if cfg.Parent, err = cmd.Flags().GetString("parent"); err != nil {
		return nil, err
	}
	if cfg.Force, err = cmd.Flags().GetBool("force"); err != nil {
		return nil, err
	}
	if cfg.Pull, err = cmd.Flags().GetBool("pull"); err != nil {
		return nil, err
	}
	if cfg.Status, err = cmd.Flags().GetBool("status"); err != nil {
		return nil, err
	}
	if cfg.Diff, err = cmd.Flags().GetBool("diff"); err != nil {
		return nil, err
	}
	if cfg.PageOverride, err = cmd.Flags().GetString("page"); err != nil {
		return nil, err
	}
	if cfg.TitleOverride, err = cmd.Flags().GetString("title"); err != nil {
		return nil, err
	}

	if cfg.JSONReport, err = cmd.Flags().GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = cmd.Flags().GetString("output"); err != nil {
		return nil, err
	}
	if cfg.NoHistory, err = cmd.Flags().GetBool("no-history"); err != nil {
		return nil, err
	}

	cfg.Verbose = getVerboseFlag(cmd)
	cfg.HistoryDir = config.XDGDataDir()
	cfg.Files = args

	return cfg, nil
}

// runPut executes the sync run.
func runPut(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	files, err := sync.Expand(cfg.Files)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return errors.New("no markdown files matched the given paths")
	}

	client := wiki.NewClient(cfg.Server, cfg.Email, cfg.APIToken,
		wiki.WithTimeout(cfg.Timeout),
		wiki.WithMaxRetries(cfg.MaxRetries),
		wiki.WithRetryDelay(cfg.RetryDelay),
		wiki.WithSpaceKey(cfg.Space),
		wiki.WithLogger(logger),
	)

	opts := sync.Options{
		Create:        cfg.Create,
		ParentID:      cfg.Parent,
		Force:         cfg.Force,
		Pull:          cfg.Pull,
		Status:        cfg.Status,
		Diff:          cfg.Diff,
		PageOverride:  cfg.PageOverride,
		TitleOverride: cfg.TitleOverride,
	}

	syncer := sync.NewSyncer(client, cfg.ImageDir, logger)
	plan, err := syncer.BuildPlan(ctx, files, opts)
	if err != nil {
		return err
	}

	runner := sync.NewRunner(syncer,
		sync.WithConcurrency(cfg.BatchSize),
		sync.WithRunnerLogger(logger),
	)
	results := runner.Run(ctx, plan, opts)

	if err := outputReport(cfg, results); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	recordHistory(ctx, cfg, results, logger)

	if failed := failureCount(results); failed > 0 {
		return fmt.Errorf("%d of %d document(s) failed", failed, len(results))
	}
	return nil
}

// outputReport writes results in the requested format, to stdout and
// optionally to a file.
func outputReport(cfg *config.Config, results []*model.SyncResult) error {
	writers := []report.Writer{newReportWriter(cfg, os.Stdout)}

	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		writers = append(writers, newReportWriter(cfg, f))
	}

	_, err := report.NewMultiWriter(writers...).Write(results)
	return err
}

// newReportWriter picks the writer for the configured format.
func newReportWriter(cfg *config.Config, output io.Writer) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewJSONWriter(output, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(output)
	default:
		return report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}
}

// recordHistory journals the run's outcomes. Journal failures are
// logged, never fatal: the sync already happened.
func recordHistory(ctx context.Context, cfg *config.Config, results []*model.SyncResult, logger *slog.Logger) {
	if cfg.NoHistory {
		return
	}

	journal, err := history.Open(cfg.HistoryDir, history.DefaultOptions())
	if err != nil {
		logger.Warn("failed to open sync journal", slog.Any("error", err))
		return
	}
	defer journal.Close() //nolint:errcheck

	if err := journal.RecordAll(ctx, results); err != nil {
		logger.Warn("failed to record sync history", slog.Any("error", err))
	}
}

// failureCount counts results that ended in an error.
func failureCount(results []*model.SyncResult) int {
	n := 0
	for _, r := range results {
		if !r.OK() {
			n++
		}
	}
	return n
}
