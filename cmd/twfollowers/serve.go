package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"twfollowers/internal/web"
	"twfollowers/pkg/ui"
)

var (
	serveAddr        string
	serveConcurrency int
	serveFailFast    bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web form and follower report",
	Long: `Run the HTTP server.

Routes:
  /            submission form; POST a username to store its followers
  /followers/  the stored followers ranked by their own follower count
  /health      liveness probe

The server stops gracefully on SIGINT or SIGTERM.`,
	Example: `  twfollowers serve
  twfollowers serve --addr :9000 --concurrency 8`,
	Args: cobra.NoArgs,
	Run:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default :8000)")
	serveCmd.Flags().IntVar(&serveConcurrency, "concurrency", 0, "parallel account lookups per report")
	serveCmd.Flags().BoolVar(&serveFailFast, "fail-fast", false, "stop a report at the first failed lookup")
}

func runServe(cmd *cobra.Command, args []string) {
	extra := map[string]interface{}{
		"addr":        serveAddr,
		"concurrency": serveConcurrency,
	}
	if cmd.Flags().Changed("fail-fast") {
		extra["fail-fast"] = serveFailFast
	}
	a := mustBuildApp(extra)

	_, srv, err := web.NewServer(a.cfg.Server, a.service, a.log)
	if err != nil {
		ui.PrintError("Failed to build HTTP server", err.Error())
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ui.PrintInfo("Listening on", a.cfg.Server.Addr)
	ui.PrintInfo("Follower List", a.cfg.Storage.DataFile)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return web.Serve(gctx, srv, a.cfg.Server.ShutdownTimeout, a.log)
	})

	if err := g.Wait(); err != nil {
		a.log.WithError(err).Error("Server stopped with error")
		ui.PrintError("Server error", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess("Server stopped")
}
