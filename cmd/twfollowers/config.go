package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"twfollowers/pkg/config"
	"twfollowers/pkg/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage twfollowers configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (TWFOLLOWERS_*)
  - .env file
  - Configuration file
  - Default values (lowest priority)`,
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with every default",
	Long: `Write the default configuration to '.twfollowers.yaml' in the current
directory, or to the path given with --config.`,
	Run: runConfigInit,
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Run:   runConfigShow,
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	Run:   runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) {
	configPath := configFile
	if configPath == "" {
		configPath = ".twfollowers.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		ui.PrintError("Configuration file already exists", configPath)
		fmt.Println("\nTo overwrite, first remove the existing file:")
		fmt.Printf("  rm %s\n", configPath)
		os.Exit(1)
	}

	if err := config.DefaultConfig().Save(configPath); err != nil {
		ui.PrintError("Failed to create configuration file", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Edit the file to taste")
	fmt.Println("2. Run 'twfollowers config validate' to check it")
	fmt.Println("3. Run 'twfollowers auth login' to store your API keys")
}

func runConfigShow(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(configFile, globalFlags())
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		ui.PrintError("Failed to format configuration", err.Error())
		os.Exit(1)
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Println()
	fmt.Print(string(data))

	fmt.Println("\nConfiguration sources (in order of priority):")
	fmt.Println("1. Command line flags")
	fmt.Println("2. Environment variables (" + config.EnvPrefix + "*)")
	fmt.Println("3. .env file")
	if configFile != "" {
		fmt.Printf("4. Configuration file: %s\n", configFile)
	} else {
		fmt.Println("4. Configuration file: (searched in default locations)")
	}
	fmt.Println("5. Default values")
}

func runConfigValidate(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(configFile, globalFlags())
	if err != nil {
		ui.PrintError("Configuration validation failed", err.Error())
		os.Exit(1)
	}

	var warnings []string
	if _, err := resolveCredentials(); err != nil {
		warnings = append(warnings, fmt.Sprintf("credentials for profile '%s' unavailable: %v", profile, err))
	}
	if cfg.RateLimit.LookupsPerWindow > 900 {
		warnings = append(warnings, "lookups_per_window exceeds the 900 per 15 minutes user-context quota")
	}

	if len(warnings) > 0 {
		ui.PrintWarning("Configuration warnings:")
		for _, warn := range warnings {
			fmt.Printf("  - %s\n", warn)
		}
		fmt.Println()
	}

	ui.PrintSuccess("Configuration is valid")

	fmt.Println("\nConfiguration summary:")
	fmt.Printf("  API base URL: %s\n", cfg.Twitter.BaseURL)
	fmt.Printf("  Listen address: %s\n", cfg.Server.Addr)
	fmt.Printf("  Follower List: %s\n", cfg.Storage.DataFile)
	fmt.Printf("  Rate limit: %d lookups per %s (%s)\n", cfg.RateLimit.LookupsPerWindow, cfg.RateLimit.Window, cfg.RateLimit.Strategy)
	fmt.Printf("  Report concurrency: %d, fail fast: %t\n", cfg.Report.Concurrency, cfg.Report.FailFast)
	fmt.Printf("  Log level: %s\n", cfg.Logging.Level)
}
