package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pressbound/gitbook2pdf/internal/archive"
	"github.com/pressbound/gitbook2pdf/internal/assemble"
	"github.com/pressbound/gitbook2pdf/internal/config"
	"github.com/pressbound/gitbook2pdf/internal/crawler"
	"github.com/pressbound/gitbook2pdf/internal/fetch"
	"github.com/pressbound/gitbook2pdf/internal/log"
	"github.com/pressbound/gitbook2pdf/internal/model"
	"github.com/pressbound/gitbook2pdf/internal/render"
	"github.com/pressbound/gitbook2pdf/internal/report"
)

// runConvertCmd executes the conversion.
func runConvertCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runConversion(ctx, cfg, logger)
}

// buildConfig creates a Config from cobra command flags with per-host
// overrides from the config file. CLI flags the user set explicitly
// always win over config file values.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	if len(args) > 0 {
		cfg.BaseURL = args[0]
	}

	var err error
	if cfg.OutputPath, err = cmd.Flags().GetString("output"); err != nil {
		return nil, err
	}

	delaySeconds, err := cmd.Flags().GetFloat64("delay")
	if err != nil {
		return nil, err
	}
	cfg.Delay = time.Duration(delaySeconds * float64(time.Second))

	if cfg.WorkDir, err = cmd.Flags().GetString("temp"); err != nil {
		return nil, err
	}
	if cfg.Workers, err = cmd.Flags().GetInt("workers"); err != nil {
		return nil, err
	}
	if cfg.Verbose, err = cmd.Flags().GetBool("verbose"); err != nil {
		return nil, err
	}
	if cfg.KeepTemp, err = cmd.Flags().GetBool("keep-temp"); err != nil {
		return nil, err
	}
	if cfg.ProxyURL, err = cmd.Flags().GetString("proxy"); err != nil {
		return nil, err
	}
	if cfg.UserAgent, err = cmd.Flags().GetString("user-agent"); err != nil {
		return nil, err
	}
	if cfg.IgnoreRobots, err = cmd.Flags().GetBool("ignore-robots"); err != nil {
		return nil, err
	}
	if cfg.ReportPath, err = cmd.Flags().GetString("report"); err != nil {
		return nil, err
	}
	if cfg.NoArchive, err = cmd.Flags().GetBool("no-archive"); err != nil {
		return nil, err
	}
	if cfg.ConfigFilePath, err = cmd.Flags().GetString("config"); err != nil {
		return nil, err
	}

	if err := loadConfigFile(cfg); err != nil {
		return nil, err
	}
	applySiteConfig(cmd, cfg)

	return cfg, nil
}

// loadConfigFile loads per-host overrides. An explicitly named file
// must exist; the default search locations may all be empty.
func loadConfigFile(cfg *config.Config) error {
	explicit := cfg.ConfigFilePath != ""
	path := config.FindConfigFile(cfg.ConfigFilePath)

	if path == "" {
		if explicit {
			return fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
		}
		cfg.Sites = &config.File{Sites: make(map[string]config.SiteConfig)}
		return nil
	}

	sites, err := config.LoadConfigFile(path)
	if err != nil {
		return fmt.Errorf("failed to load config file %s: %w", path, err)
	}
	cfg.Sites = sites
	return nil
}

// applySiteConfig merges per-host config file values into cfg for
// settings the user did not set on the command line.
func applySiteConfig(cmd *cobra.Command, cfg *config.Config) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Host == "" {
		return
	}

	site := cfg.Sites.GetSiteConfig(u.Host)
	if site.DelaySeconds > 0 && !cmd.Flags().Changed("delay") {
		cfg.Delay = time.Duration(site.DelaySeconds * float64(time.Second))
	}
	if site.Workers > 0 && !cmd.Flags().Changed("workers") {
		cfg.Workers = site.Workers
	}
	if site.Proxy != "" && !cmd.Flags().Changed("proxy") {
		cfg.ProxyURL = site.Proxy
	}
	if site.UserAgent != "" && !cmd.Flags().Changed("user-agent") {
		cfg.UserAgent = site.UserAgent
	}
}

// runConversion performs the full crawl, assemble, and render flow.
func runConversion(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	started := time.Now()

	workDir, tempCreated, err := prepareWorkDir(cfg)
	if err != nil {
		return err
	}

	success := false
	defer func() {
		if success && tempCreated && !cfg.KeepTemp {
			if err := os.RemoveAll(workDir); err != nil {
				logger.Warn("failed to clean working directory", "dir", workDir, "error", err)
			}
			return
		}
		logger.Info("intermediate files retained", "dir", workDir)
	}()

	doc, err := crawl(ctx, cfg, workDir, logger)
	if err != nil {
		return err
	}

	htmlPath, err := assemble.New(logger).WriteFile(workDir, doc)
	if err != nil {
		return err
	}

	outputPath, err := filepath.Abs(cfg.OutputPath)
	if err != nil {
		return fmt.Errorf("invalid output path %q: %w", cfg.OutputPath, err)
	}

	renderer := render.NewChrome(
		render.WithTimeout(cfg.RenderTimeout),
		render.WithLogger(logger),
	)
	if err := renderer.Render(ctx, htmlPath, outputPath); err != nil {
		return err
	}

	logger.Info("conversion complete",
		"output", outputPath,
		"pages", len(doc.Pages),
		"elapsed", time.Since(started).Round(time.Millisecond),
	)

	info := report.Info{
		BaseURL:    cfg.BaseURL,
		OutputPath: outputPath,
		StartedAt:  started,
		Duration:   time.Since(started),
	}

	// Report and archive are advisory: their failures are logged, not
	// propagated, because the PDF has already been written.
	if cfg.ReportPath != "" {
		if err := report.New().WriteFile(cfg.ReportPath, doc, info); err != nil {
			logger.Warn("failed to write conversion report", "path", cfg.ReportPath, "error", err)
		} else {
			logger.Info("conversion report written", "path", cfg.ReportPath)
		}
	}
	if !cfg.NoArchive {
		saveToArchive(ctx, cfg, doc, outputPath, started, logger)
	}

	success = true
	fmt.Printf("PDF written to %s (%d pages", outputPath, len(doc.Pages))
	if n := doc.PlaceholderCount(); n > 0 {
		fmt.Printf(", %d failed", n)
	}
	fmt.Println(")")
	return nil
}

// prepareWorkDir resolves the working directory, creating a fresh
// temporary one when none was configured. The second return reports
// whether the directory was created by us and may be cleaned up.
func prepareWorkDir(cfg *config.Config) (string, bool, error) {
	if cfg.WorkDir != "" {
		if err := os.MkdirAll(cfg.WorkDir, 0750); err != nil {
			return "", false, fmt.Errorf("failed to create working directory: %w", err)
		}
		return cfg.WorkDir, false, nil
	}

	dir, err := os.MkdirTemp("", "gitbook2pdf-*")
	if err != nil {
		return "", false, fmt.Errorf("failed to create temporary directory: %w", err)
	}
	return dir, true, nil
}

// crawl builds the fetcher and crawler from the configuration and runs
// the crawl.
func crawl(ctx context.Context, cfg *config.Config, workDir string, logger *slog.Logger) (*model.Document, error) {
	opts := []fetch.Option{
		fetch.WithDelay(cfg.Delay),
		fetch.WithTimeout(cfg.Timeout),
		fetch.WithUserAgent(cfg.UserAgent),
		fetch.WithIgnoreRobots(cfg.IgnoreRobots),
		fetch.WithLogger(logger),
	}

	if cfg.ProxyURL != "" {
		proxyURL, err := url.Parse(cfg.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL %q: %w", cfg.ProxyURL, err)
		}
		opts = append(opts, fetch.WithProxy(proxyURL))
		logger.Info("using forward proxy", "proxy", cfg.ProxyURL)
	}

	if cfg.Sites != nil {
		if u, err := url.Parse(cfg.BaseURL); err == nil {
			if headers := cfg.Sites.GetSiteConfig(u.Host).Headers; len(headers) > 0 {
				opts = append(opts, fetch.WithHeaders(headers))
			}
		}
	}

	fetcher, err := fetch.New(cfg.BaseURL, workDir, opts...)
	if err != nil {
		return nil, err
	}

	c := crawler.New(fetcher,
		crawler.WithWorkers(cfg.Workers),
		crawler.WithLogger(logger),
	)
	return c.Run(ctx)
}

// saveToArchive records the conversion in the local history database.
func saveToArchive(ctx context.Context, cfg *config.Config, doc *model.Document, outputPath string, started time.Time, logger *slog.Logger) {
	a, err := archive.Open(cfg.ArchiveDir, archive.DefaultOptions())
	if err != nil {
		logger.Warn("failed to open conversion archive", "dir", cfg.ArchiveDir, "error", err)
		return
	}
	defer a.Close() //nolint:errcheck // Best effort cleanup

	if _, err := a.SaveConversion(ctx, doc, cfg.BaseURL, outputPath, started); err != nil {
		logger.Warn("failed to archive conversion", "error", err)
		return
	}
	logger.Debug("conversion archived", "path", a.Path())
}
