package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/leen324/locscope/internal/contract"
	"github.com/leen324/locscope/internal/web"
	"github.com/pkg/browser"
	"github.com/spf13/cobra"
)

// serveCmd runs the interactive chart over HTTP.
var serveCmd = &cobra.Command{
	Use:   "serve [source]",
	Short: "Serve the interactive chart over HTTP.",
	Long: `Start an HTTP server that keeps one chart per browser session. Each viewer
can move the time slider, brush regions and hover commits independently.

Endpoints:
  GET  /               chart page
  GET  /api/state      current frame, points and tooltip
  POST /api/brush      {"rect":{"x0":..,"y0":..,"x1":..,"y1":..}} or {"rect":null}
  POST /api/cutoff     {"position":0-100}
  POST /api/hover      {"id":"...","x":..,"y":..,"enter":true}
  GET  /api/fragments  stats and breakdown panels as HTML
  POST /api/reload     load the source again
  GET  /healthz, /metrics

Examples:
  locscope serve --addr 127.0.0.1:8080 --open`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(rootCtx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return runServer(ctx)
	},
}

func runServer(ctx context.Context) error {
	srv := web.NewServer(cfg, cacheManager)
	ln, err := srv.Listen()
	if err != nil {
		return err
	}

	url := fmt.Sprintf("http://%s/", ln.Addr().String())
	fmt.Printf("Serving %s at %s\n", cfg.Source, url)
	if cfg.OpenBrowser {
		if err := browser.OpenURL(url); err != nil {
			contract.LogWarn("Cannot open browser", err)
		}
	}
	return srv.Serve(ctx, ln)
}
