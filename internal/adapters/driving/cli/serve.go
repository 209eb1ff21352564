package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/preciar/internal/adapters/driving/mcp"
	"github.com/custodia-labs/preciar/internal/adapters/driving/rest"
	"github.com/custodia-labs/preciar/internal/adapters/driving/watch"
	"github.com/custodia-labs/preciar/internal/logger"
)

var (
	serveAddr    string
	serveNoWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve predictions over HTTP",
	Long: `Starts the HTTP API with Prometheus metrics on /metrics and the MCP
streamable endpoint on /mcp.

The manifest is watched so the model reloads when another process retrains.
When the scheduler is enabled in the configuration, periodic pipeline
refreshes run in the background.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from serving.addr)")
	serveCmd.Flags().BoolVar(&serveNoWatch, "no-watch", false, "do not watch the manifest for changes")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if predictionService == nil {
		return errors.New("prediction service not configured")
	}
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings := settingsService.Settings()
	addr := serveAddr
	if addr == "" {
		addr = settings.Serving.Addr
	}

	server, err := rest.NewServer(&rest.Ports{
		Prediction: predictionService,
		Pipeline:   pipelineService,
		Dispatcher: jobDispatcher,
	})
	if err != nil {
		return err
	}

	mcpServer, err := mcp.NewServer(&mcp.Ports{
		Prediction:  predictionService,
		Dispatcher:  jobDispatcher,
		Experiments: experimentService,
	})
	if err != nil {
		return err
	}
	server.Mount("/mcp", mcpServer.Handler())

	// Warm the cache so the first request does not pay the load.
	if err := predictionService.Reload(cmd.Context()); err != nil {
		logger.Warn("serve: no model loaded yet: %v", err)
	}

	g, ctx := errgroup.WithContext(cmd.Context())

	g.Go(func() error {
		return server.Run(ctx, addr)
	})

	if !serveNoWatch {
		watcher := watch.NewManifestWatcher(settings.Paths.ManifestPath(), predictionService, watch.DefaultDebounce)
		g.Go(func() error {
			return watcher.Run(ctx)
		})
	}

	if scheduler != nil && settings.Scheduler.Enabled {
		g.Go(func() error {
			return runScheduler(ctx)
		})
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Serving on http://localhost%s\n", addr)
	return g.Wait()
}

func runScheduler(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		scheduler.Stop() //nolint:errcheck
	}()
	return scheduler.Start(ctx)
}
