package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dreamerjackson/listcrawler/cmd/crawl"
	"github.com/dreamerjackson/listcrawler/version"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "print version.",
	Long:  "print version.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		version.Printer(cmd.OutOrStdout())
	},
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          version.Name,
		Short:        "polite crawler for paginated listings.",
		SilenceUsage: true,
	}
	rootCmd.AddCommand(crawl.CrawlCmd, versionCmd)
	return rootCmd
}

func Execute() {
	// records collected before an interrupt are still written
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
