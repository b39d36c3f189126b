package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for iloveck101.
// The root command itself runs a crawl; init, history and version are
// subcommands.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "iloveck101 [flags] <url>",
		Short: "Download the pictures of ck101.com forum threads",
		Long: `iloveck101 downloads the pictures posted in ck101.com forum threads.

The URL may point to a single thread or to a forum listing page. For a
listing, every thread linked from the page is crawled. Images smaller than
400x400 pixels (avatars, smileys, icons) are skipped.

Pictures are saved to ~/Pictures/iloveck101/<thread id> - <title>/.

Examples:
  # Download one thread
  iloveck101 http://ck101.com/thread-2818521-1-1.html

  # Download every thread of a listing page
  iloveck101 http://ck101.com/forum-1345-1.html

  # Save somewhere else and keep smaller images too
  iloveck101 -d ./pics --min-width 200 --min-height 200 <url>

  # Print a Markdown report to a file
  iloveck101 -m -o report.md <url>`,
		Version:       getVersion(),
		Args:          cobra.MaximumNArgs(1),
		RunE:          runCrawlCmd,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	addCrawlFlags(cmd)

	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
