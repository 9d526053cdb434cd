package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/flowsmith/flowsmith/internal/config"
	"github.com/flowsmith/flowsmith/internal/logging"
	"github.com/flowsmith/flowsmith/internal/metrics"
	httpadapter "github.com/flowsmith/flowsmith/pkg/adapters/http"
	"github.com/flowsmith/flowsmith/pkg/builder"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the flow builder HTTP server",
	Long:  `Starts the flowsmith API over HTTP: flow validation, persistence, exports and an SSE event stream.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Addr = addr
		}

		logger := logging.New(logging.ParseLevel(cfg.Log.Level), cfg.Log.Format)

		store, closeStore, err := config.OpenStore(cmd.Context(), cfg.Store)
		if err != nil {
			fmt.Printf("Error opening %s store: %v\n", cfg.Store.Backend, err)
			os.Exit(1)
		}
		defer closeStore()

		reg := prometheus.NewRegistry()
		collectors := metrics.NewBuilder(reg)

		svc := builder.New(store,
			builder.WithLogger(logger),
			builder.WithHooks(collectors.Hooks()),
		)

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		mux.Handle("/", httpadapter.NewHandler(svc,
			httpadapter.WithLogger(logger),
			httpadapter.WithMetrics(reg),
		))

		srv := &http.Server{
			Addr:    cfg.Addr,
			Handler: mux,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			logger.Info("starting flowsmith server", "addr", srv.Addr, "store", cfg.Store.Backend)
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		// Blocking main and waiting for shutdown.
		select {
		case err := <-serverErrors:
			// Error when starting HTTP server.
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)

		case sig := <-shutdown:
			logger.Info("starting shutdown", "signal", sig.String())

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			// Asking listener to shut down and shed load.
			if err := srv.Shutdown(ctx); err != nil {
				logger.Error("graceful shutdown did not complete", "timeout", 5*time.Second, "err", err)
				if err := srv.Close(); err != nil {
					logger.Error("failed to close server", "err", err)
				}
			}
			logger.Info("flowsmith server stopped gracefully")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address, e.g. :8080 (overrides config)")
}
