package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"twfollowers/pkg/auth"
	"twfollowers/pkg/ui"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage Twitter API credentials",
	Long: `Manage the Twitter API credentials used for lookups.

Credentials are resolved from:
  - Environment variables (CONSUMER_KEY, CONSUMER_SECRET, ACCESS_TOKEN, ACCESS_TOKEN_SECRET)
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation

Never share your credentials or config files!`,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store Twitter API credentials securely",
	Long: `Store the four Twitter API secrets under a profile name
(--profile, default "default").

You will be prompted for the consumer key and secret and the access token
and secret. Input is hidden.`,
	Example: `  twfollowers auth login
  twfollowers auth login --profile work`,
	Args: cobra.NoArgs,
	Run:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout [profile]",
	Short: "Remove stored credentials",
	Args:  cobra.MaximumNArgs(1),
	Run:   runLogout,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored credential profiles",
	Long:  `List every stored profile with its secrets masked.`,
	Args:  cobra.NoArgs,
	Run:   runList,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(listCmd)
}

func mustManager() *auth.Manager {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}
	return manager
}

func runLogin(cmd *cobra.Command, args []string) {
	manager := mustManager()
	reader := bufio.NewReader(os.Stdin)

	auth.ShowCredentialsGuide(os.Stdout)
	fmt.Println()

	if existing, _ := manager.Retrieve(profile); existing != nil {
		fmt.Printf("Profile '%s' already exists. Update credentials? (y/N): ", profile)
		input, _ := reader.ReadString('\n')
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "y") {
			return
		}
	}

	fmt.Println("Enter your API keys (they will be hidden as you type):")
	fmt.Println()

	creds := &auth.Credentials{
		Profile:           profile,
		ConsumerKey:       mustPrompt(reader, "API key (consumer key)"),
		ConsumerSecret:    mustPrompt(reader, "API key secret (consumer secret)"),
		AccessToken:       mustPrompt(reader, "Access token"),
		AccessTokenSecret: mustPrompt(reader, "Access token secret"),
		LastModified:      time.Now(),
	}

	if err := manager.Store(creds); err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			ui.PrintError("Credentials incomplete", err.Error())
		} else {
			ui.PrintError("Failed to store credentials", err.Error())
		}
		os.Exit(1)
	}

	ui.PrintSuccess(fmt.Sprintf("Credentials saved for profile '%s'", creds.Profile))
	fmt.Println("\nNext steps:")
	fmt.Println("  $ twfollowers submit <username>")
	fmt.Println("  $ twfollowers serve")
	if creds.Profile != auth.DefaultProfile {
		fmt.Printf("\nSelect this profile with --profile %s\n", creds.Profile)
	}
}

func mustPrompt(reader *bufio.Reader, label string) string {
	fmt.Printf("%s: ", label)
	value, err := readSecret(reader)
	if err != nil {
		ui.PrintError("Failed to read "+label, err.Error())
		os.Exit(1)
	}
	return value
}

// readSecret reads a line without echo when stdin is a terminal
func readSecret(reader *bufio.Reader) (string, error) {
	if term.IsTerminal(int(syscall.Stdin)) {
		secret, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err == nil {
			return strings.TrimSpace(string(secret)), nil
		}
	}

	input, err := reader.ReadString('\n')
	if err != nil && input == "" {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

func runLogout(cmd *cobra.Command, args []string) {
	manager := mustManager()

	target := profile
	if len(args) > 0 {
		target = args[0]
	}

	if err := manager.Delete(target); err != nil {
		if errors.Is(err, auth.ErrCredentialsNotFound) {
			ui.PrintWarning("No stored credentials for profile", target)
			return
		}
		ui.PrintError("Failed to remove credentials", err.Error())
		os.Exit(1)
	}
	ui.PrintSuccess("Credentials removed: " + target)
}

func runList(cmd *cobra.Command, args []string) {
	manager := mustManager()

	all, err := manager.List()
	if err != nil {
		ui.PrintError("Failed to list profiles", err.Error())
		os.Exit(1)
	}

	if len(all) == 0 {
		ui.PrintInfo("No stored profiles", "Use 'twfollowers auth login' to add one")
		return
	}

	ui.PrintHighlight("Stored Profiles")
	fmt.Println()

	for i, creds := range all {
		sanitized := auth.SanitizeCredentials(creds)
		fmt.Printf("%d. Profile: %s\n", i+1, sanitized.Profile)
		fmt.Printf("   Consumer Key: %s\n", sanitized.ConsumerKey)
		fmt.Printf("   Consumer Secret: %s\n", sanitized.ConsumerSecret)
		fmt.Printf("   Access Token: %s\n", sanitized.AccessToken)
		fmt.Printf("   Access Token Secret: %s\n", sanitized.AccessTokenSecret)
		if !sanitized.LastModified.IsZero() {
			fmt.Printf("   Last Modified: %s\n", sanitized.LastModified.Format("2006-01-02 15:04:05"))
		}
		fmt.Println()
	}
}
