package main

import (
	"fmt"
	"os"

	"twfollowers/pkg/auth"
	"twfollowers/pkg/config"
	"twfollowers/pkg/followers"
	"twfollowers/pkg/logger"
	"twfollowers/pkg/ratelimit"
	"twfollowers/pkg/storage"
	"twfollowers/pkg/twitter"
	"twfollowers/pkg/ui"
)

// globalFlags collects the persistent flags config.Load understands
func globalFlags() map[string]interface{} {
	flags := make(map[string]interface{})
	if logLevel != "" {
		flags["log-level"] = logLevel
	}
	if dataFile != "" {
		flags["data-file"] = dataFile
	}
	if apiBaseURL != "" {
		flags["api-base-url"] = apiBaseURL
	}
	return flags
}

// app is everything a command needs once configuration is resolved
type app struct {
	cfg     *config.Config
	log     logger.Logger
	service *followers.Service
}

// mustLoadConfig loads configuration and initialises the global logger
func mustLoadConfig(extra map[string]interface{}) (*config.Config, logger.Logger) {
	flags := globalFlags()
	for k, v := range extra {
		flags[k] = v
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		ui.PrintError("Failed to initialize logger", err.Error())
		os.Exit(1)
	}

	return cfg, logger.GetLogger()
}

// mustBuildApp resolves credentials and wires the followers service.
// The process refuses to continue without a complete credential set.
func mustBuildApp(extra map[string]interface{}) *app {
	cfg, log := mustLoadConfig(extra)

	creds, err := resolveCredentials()
	if err != nil {
		log.WithError(err).WithField("profile", profile).Error("Credentials unavailable")
		ui.PrintError("Twitter API credentials unavailable", err.Error())
		fmt.Println("\nRun 'twfollowers auth login' or set the credential environment variables.")
		os.Exit(1)
	}

	svc, err := newService(cfg, creds, log)
	if err != nil {
		ui.PrintError("Failed to initialize service", err.Error())
		os.Exit(1)
	}

	return &app{cfg: cfg, log: log, service: svc}
}

func resolveCredentials() (*auth.Credentials, error) {
	manager, err := auth.NewManager()
	if err != nil {
		return nil, err
	}
	return manager.Resolve(profile)
}

func newService(cfg *config.Config, creds *auth.Credentials, log logger.Logger) (*followers.Service, error) {
	limiter, err := ratelimit.New(cfg.RateLimit.Strategy, cfg.RateLimit.LookupsPerWindow, cfg.RateLimit.Window)
	if err != nil {
		return nil, err
	}

	client := twitter.NewClient(cfg.Twitter.Timeout, log,
		twitter.WithBaseURL(cfg.Twitter.BaseURL),
		twitter.WithUserAgent(cfg.Twitter.UserAgent),
	)

	store := storage.NewFollowerStore(cfg.Storage.DataFile)

	return followers.NewService(client, store, creds, limiter, log, followers.Options{
		MaxResults:  cfg.Twitter.FollowersMaxResults,
		Concurrency: cfg.Report.Concurrency,
		FailFast:    cfg.Report.FailFast,
	}), nil
}
