// Package main provides the entry point for the gitbook2pdf CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pressbound/gitbook2pdf/internal/config"
)

// exitCodeInterrupted is the process exit code after an interactive
// interruption, following shell convention (128 + SIGINT).
const exitCodeInterrupted = 130

// NewRootCmd creates the root command for gitbook2pdf.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gitbook2pdf [flags] <url>",
		Short: "Convert a GitBook site to a single PDF",
		Long: `gitbook2pdf crawls a GitBook-style documentation site, reconstructs its
table of contents, fetches every referenced page and image, and renders
the result as one PDF file.

Pages are fetched concurrently with a politeness delay between requests.
A page that fails to fetch becomes a placeholder in the output rather
than aborting the conversion.

Examples:
  # Convert a documentation site with defaults
  gitbook2pdf https://docs.example.com

  # Faster crawl with a custom output path
  gitbook2pdf -o book.pdf -w 5 -d 0.5 https://docs.example.com

  # Through a forward proxy, keeping the intermediate HTML
  gitbook2pdf -p http://127.0.0.1:8080 -k https://docs.example.com

Configuration file (.gitbook2pdf) example:
  sites:
    docs.example.com:
      delaySeconds: 2.0
      headers:
        Authorization: "Bearer token"`,
		Args:          cobra.MaximumNArgs(1),
		RunE:          runConvertCmd,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().StringP("output", "o", config.DefaultOutput, "Output PDF file path")
	cmd.Flags().Float64P("delay", "d", config.DefaultDelay.Seconds(),
		"Delay between requests in seconds")
	cmd.Flags().StringP("temp", "t", "",
		"Working directory for intermediate files (default: a fresh temporary directory)")
	cmd.Flags().IntP("workers", "w", config.DefaultWorkers, "Number of concurrent page fetches")
	cmd.Flags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.Flags().BoolP("keep-temp", "k", false, "Keep intermediate files after a successful run")
	cmd.Flags().StringP("proxy", "p", "",
		"Forward proxy URL applied to HTTP and HTTPS (e.g., http://proxy:8080)")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .gitbook2pdf in current or home directory)")
	cmd.Flags().String("user-agent", config.DefaultUserAgent, "User-Agent header for requests")
	cmd.Flags().Bool("ignore-robots", false, "Skip robots.txt checks")
	cmd.Flags().String("report", "", "Write a Markdown conversion report to this path")
	cmd.Flags().Bool("no-archive", false, "Do not record this conversion in the local archive")

	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command and maps errors to process exit codes:
// 0 on success, 130 on interruption, 1 on any other failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "interrupted")
			os.Exit(exitCodeInterrupted)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
