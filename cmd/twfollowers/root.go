package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"twfollowers/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	profile    string
	dataFile   string
	apiBaseURL string
	noLogo     bool
)

var rootCmd = &cobra.Command{
	Use:   "twfollowers",
	Short: "Look up the followers of a Twitter account and rank them by reach",
	Long: `twfollowers fetches the followers of a Twitter account, stores them in a
local Follower List and shows every stored follower with their own follower
count, most followed first.

Use it through the web form ('twfollowers serve') or directly from the
terminal ('twfollowers submit' and 'twfollowers report').`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noLogo {
			return
		}
		switch cmd.Name() {
		case "version", "help", "show", "list":
		default:
			ui.PrintLogo()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is ./.twfollowers.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVarP(&profile, "profile", "p", "default", "stored credential profile")
	rootCmd.PersistentFlags().StringVar(&dataFile, "data-file", "", "path of the Follower List file")
	rootCmd.PersistentFlags().StringVar(&apiBaseURL, "api-base-url", "", "Twitter API base URL")
	rootCmd.PersistentFlags().BoolVar(&noLogo, "no-logo", false, "do not print the banner")

	rootCmd.SetVersionTemplate(`twfollowers {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
