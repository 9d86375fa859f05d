package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	errs "twfollowers/pkg/errors"
	"twfollowers/pkg/ui"
)

var submitCmd = &cobra.Command{
	Use:   "submit <username>",
	Short: "Fetch the followers of an account and store them",
	Long: `Resolve a Twitter username, fetch one page of its followers and replace
the stored Follower List with their usernames.

A failed submission leaves the previous Follower List untouched.`,
	Example: `  twfollowers submit jack
  twfollowers submit @jack --data-file /tmp/jack.json`,
	Args: cobra.ExactArgs(1),
	Run:  runSubmit,
}

func init() {
	rootCmd.AddCommand(submitCmd)
}

func runSubmit(cmd *cobra.Command, args []string) {
	a := mustBuildApp(nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ui.PrintInfo("Target account", args[0])

	result, err := a.service.Submit(ctx, args[0])
	if err != nil {
		ui.PrintError(userMessage(err))
		os.Exit(1)
	}

	ui.PrintInfo("Account ID", result.AccountID)
	if result.Skipped > 0 {
		ui.PrintWarning("Followers without a username skipped", fmt.Sprintf("%d", result.Skipped))
	}
	ui.PrintSuccess(fmt.Sprintf("Stored %d followers of @%s in %s", len(result.Followers), result.Username, a.cfg.Storage.DataFile))
	fmt.Println("\nRun 'twfollowers report' to see them ranked.")
}

// userMessage returns the message a web user would see for err
func userMessage(err error) string {
	var e *errs.Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
