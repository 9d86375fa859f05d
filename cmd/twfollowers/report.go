package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"twfollowers/pkg/ui"
)

var (
	reportConcurrency int
	reportFailFast    bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show the stored followers ranked by follower count",
	Long: `Look up every account in the stored Follower List and print them in
descending order of their own follower count.

Accounts that cannot be looked up are listed below the table. With
--fail-fast the report stops at the first such account.`,
	Args: cobra.NoArgs,
	Run:  runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().IntVar(&reportConcurrency, "concurrency", 0, "parallel account lookups")
	reportCmd.Flags().BoolVar(&reportFailFast, "fail-fast", false, "stop at the first failed lookup")
}

func runReport(cmd *cobra.Command, args []string) {
	extra := map[string]interface{}{"concurrency": reportConcurrency}
	if cmd.Flags().Changed("fail-fast") {
		extra["fail-fast"] = reportFailFast
	}
	a := mustBuildApp(extra)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	report, err := a.service.BuildReport(ctx)
	if err != nil {
		ui.PrintError(userMessage(err))
		os.Exit(1)
	}

	fmt.Println(ui.RenderReport(report))
	if len(report.Failures) > 0 {
		os.Exit(2)
	}
}
