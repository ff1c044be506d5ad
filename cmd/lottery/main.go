package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/qepting91/comment-lottery/internal/config"
	perr "github.com/qepting91/comment-lottery/internal/platform/errors"
	"github.com/qepting91/comment-lottery/internal/platform/logger"
)

var (
	settings   config.Settings
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:           "lottery",
	Short:         "Scrape Instagram post comments and draw giveaway winners",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger.Init(logger.FromEnv())
		var err error
		settings, err = config.Load()
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(scrapeCmd)
	rootCmd.AddCommand(drawCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
}

func main() {
	// SIGINT/SIGTERM stop paging between pages and shut the dashboard down
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(report(err))
	}
}

// report prints err for a human and returns the process exit code
func report(err error) int {
	code := perr.CodeOf(err)
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	if field := perr.FieldOf(err); field != "" {
		fmt.Fprintf(os.Stderr, "  field: %s\n", field)
	}
	if code != perr.ErrorCodeUnknown {
		fmt.Fprintf(os.Stderr, "  kind:  %s\n", code)
	}
	return perr.ExitCode(code)
}
