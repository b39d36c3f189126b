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
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/nao1215/iloveck101/internal/config"
	"github.com/nao1215/iloveck101/internal/database"
	"github.com/nao1215/iloveck101/internal/httpclient"
	"github.com/nao1215/iloveck101/internal/log"
	"github.com/nao1215/iloveck101/internal/model"
	"github.com/nao1215/iloveck101/internal/pipeline"
	"github.com/nao1215/iloveck101/internal/report"
)

// abortMessage is printed when the user interrupts a crawl.
const abortMessage = "I love ck101"

// addCrawlFlags registers the crawl flags on cmd.
func addCrawlFlags(cmd *cobra.Command) {
	// Logging
	cmd.Flags().String("log-format", config.LogFormatText,
		"Log format: text, json or pretty")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .iloveck101 in current or home directory)")

	// Crawl behavior
	cmd.Flags().StringP("dir", "d", config.DefaultOutputDir(),
		"Base directory that receives one folder per thread")
	cmd.Flags().Int("thread-batch", config.DefaultThreadBatchSize,
		"Number of threads parsed concurrently")
	cmd.Flags().Int("image-batch", config.DefaultImageBatchSize,
		"Number of images downloaded concurrently per thread")
	cmd.Flags().Int("min-width", config.DefaultMinWidth,
		"Minimum image width in pixels")
	cmd.Flags().Int("min-height", config.DefaultMinHeight,
		"Minimum image height in pixels")
	cmd.Flags().Int("attempts", config.DefaultMaxAttempts,
		"Fetch attempts per thread page (1-10)")

	// Network
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each request")
	cmd.Flags().Float64("rate", config.DefaultRateLimit,
		"Maximum requests per second (0 = unlimited)")
	cmd.Flags().String("proxy", "",
		"SOCKS5 proxy address (e.g., 127.0.0.1:1080)")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header sent with every request")

	// Site
	cmd.Flags().String("base-url", config.DefaultBaseURL,
		"Origin prefixed to relative thread links")
	cmd.Flags().String("domain", config.DefaultSiteDomain,
		"Host the URL must belong to")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().Bool("no-history", false,
		"Do not record the run in the history database")
	cmd.Flags().BoolP("quiet", "q", false,
		"Disable the progress spinner")
}

// runCrawlCmd executes a crawl of the URL given as the only argument.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return config.ErrNoTarget
	}

	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.New(cmd.ErrOrStderr(), cfg.LogFormat, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return runCrawl(ctx, cmd, cfg, logger)
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

// buildConfig creates a Config from defaults, the config file and the
// flags the user actually set, in that order.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.RootURL = args[0]
	cfg.Verbose = getVerboseFlag(cmd)

	var err error
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently keep the defaults.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	if configPath != "" {
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		file.Apply(cfg)
	} else if cfg.ConfigFilePath != "" {
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}

	cfg.OutputDir = config.ExpandHome(cfg.OutputDir)
	return cfg, nil
}

// applyFlags copies every flag the user set onto cfg. Flags left at their
// default do not override values from the config file.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	for name, dst := range map[string]*string{
		"log-format": &cfg.LogFormat,
		"dir":        &cfg.OutputDir,
		"proxy":      &cfg.ProxyAddress,
		"user-agent": &cfg.UserAgent,
		"base-url":   &cfg.BaseURL,
		"domain":     &cfg.SiteDomain,
	} {
		if err := changedString(cmd, name, dst); err != nil {
			return err
		}
	}

	for name, dst := range map[string]*int{
		"thread-batch": &cfg.ThreadBatchSize,
		"image-batch":  &cfg.ImageBatchSize,
		"min-width":    &cfg.MinWidth,
		"min-height":   &cfg.MinHeight,
		"attempts":     &cfg.MaxAttempts,
	} {
		if err := changedInt(cmd, name, dst); err != nil {
			return err
		}
	}

	var err error
	if cmd.Flags().Changed("timeout") {
		if cfg.Timeout, err = cmd.Flags().GetDuration("timeout"); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("rate") {
		if cfg.RateLimit, err = cmd.Flags().GetFloat64("rate"); err != nil {
			return err
		}
	}

	if cfg.JSONReport, err = cmd.Flags().GetBool("json"); err != nil {
		return err
	}
	if cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown"); err != nil {
		return err
	}
	if cfg.ReportFile, err = cmd.Flags().GetString("output"); err != nil {
		return err
	}
	if cfg.Quiet, err = cmd.Flags().GetBool("quiet"); err != nil {
		return err
	}

	noHistory, err := cmd.Flags().GetBool("no-history")
	if err != nil {
		return err
	}
	if noHistory {
		cfg.SaveToDB = false
	}

	return nil
}

// changedString stores the value of a string flag in dst if the user set it.
func changedString(cmd *cobra.Command, name string, dst *string) error {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, err := cmd.Flags().GetString(name)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

// changedInt stores the value of an int flag in dst if the user set it.
func changedInt(cmd *cobra.Command, name string, dst *int) error {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, err := cmd.Flags().GetInt(name)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

// newClient creates the HTTP client shared by every crawl component.
func newClient(cfg *config.Config, logger *slog.Logger) (*httpclient.Client, error) {
	opts := []httpclient.Option{
		httpclient.WithTimeout(cfg.Timeout),
		httpclient.WithUserAgent(cfg.UserAgent),
		httpclient.WithMaxBodySize(cfg.MaxBodySize),
		httpclient.WithLogger(logger),
	}
	if cfg.Cookie != "" {
		opts = append(opts, httpclient.WithCookie(cfg.Cookie))
	}
	if len(cfg.Headers) > 0 {
		opts = append(opts, httpclient.WithHeaders(cfg.Headers))
	}
	if cfg.ProxyAddress != "" {
		opts = append(opts, httpclient.WithProxy(cfg.ProxyAddress))
	}
	if cfg.RateLimit > 0 {
		opts = append(opts, httpclient.WithRateLimit(cfg.RateLimit, cfg.RateBurst))
	}
	return httpclient.New(opts...)
}

// newSpinner returns a progress callback and a stop function. Quiet
// runs get a no-op callback.
func newSpinner(cfg *config.Config, w io.Writer) (pipeline.Progress, func()) {
	if cfg.Quiet {
		return func(string) {}, func() {}
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	s.Suffix = " starting"
	s.Start()

	progress := func(msg string) {
		s.Lock()
		s.Suffix = " " + msg
		s.Unlock()
	}
	return progress, s.Stop
}

// runCrawl crawls cfg.RootURL, then writes the report and records the run.
func runCrawl(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) error {
	logger.Debug("starting crawl",
		"url", cfg.RootURL,
		"dir", cfg.OutputDir,
		"threadBatch", cfg.ThreadBatchSize,
		"imageBatch", cfg.ImageBatchSize,
		"saveToDB", cfg.SaveToDB,
	)

	client, err := newClient(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create HTTP client: %w", err)
	}

	progress, stop := newSpinner(cfg, cmd.ErrOrStderr())
	orchestrator := pipeline.NewOrchestrator(client, cfg,
		pipeline.WithLogger(logger),
		pipeline.WithProgress(progress),
	)
	runReport, runErr := orchestrator.Run(ctx, cfg.RootURL)
	stop()

	// The history records every run, including failed and interrupted ones.
	// The caller's context may already be cancelled here.
	if err := saveRunReport(context.WithoutCancel(ctx), cfg, runReport, logger); err != nil {
		logger.Error("failed to save run", "run", runReport.ID, "error", err)
	}

	switch {
	case runErr == nil:
	case errors.Is(runErr, context.Canceled):
		if err := outputReport(cmd.OutOrStdout(), cfg, runReport); err != nil {
			logger.Error("report failed", "error", err)
		}
		fmt.Fprintln(cmd.ErrOrStderr(), abortMessage)
		return nil
	default:
		return runErr
	}

	return outputReport(cmd.OutOrStdout(), cfg, runReport)
}

// outputReport outputs the run report in the requested format to the report
// file, or to stdout when none is set.
func outputReport(stdout io.Writer, cfg *config.Config, runReport *model.RunReport) error {
	output := stdout
	if cfg.ReportFile != "" {
		// Create directories if they don't exist
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
		output = f
	}

	_, err := newReportWriter(output, cfg).Write(runReport)
	return err
}

// newReportWriter picks the report writer for the configured format.
func newReportWriter(output io.Writer, cfg *config.Config) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewJSONWriter(output, report.WithPrettyPrint(), report.WithVersion(getVersion()))
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(output)
	default:
		return report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}
}

// saveRunReport records the run in the history database if enabled.
func saveRunReport(ctx context.Context, cfg *config.Config, runReport *model.RunReport, logger *slog.Logger) error {
	if !cfg.SaveToDB {
		return nil
	}

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.SaveRun(ctx, runReport); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	logger.Debug("run saved to database", "run", runReport.ID, "db", db.Path())
	return nil
}
