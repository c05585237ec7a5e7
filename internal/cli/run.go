package cli

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dshills/portfolio/internal/app"
	"github.com/dshills/portfolio/internal/logging"
	"github.com/dshills/portfolio/internal/metrics"
)

// NewRunCommand creates the run command.
func NewRunCommand(opts *RootOptions) *cobra.Command {
	var (
		metricsAddr string
		watch       bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the application and read console commands from stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			logger, err := newLogger(cmd.ErrOrStderr(), cfg)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			addr := metricsAddr
			if addr == "" && cfg.Metrics.Enabled {
				addr = cfg.Metrics.Addr
			}

			deps := app.Deps{Logger: logger}
			var prom *metrics.Prometheus
			if addr != "" {
				prom = metrics.NewPrometheus()
				deps.Metrics = prom
			}

			a, err := app.New(cfg, deps)
			if err != nil {
				return err
			}
			if err := a.Start(ctx); err != nil {
				return err
			}
			defer a.Shutdown(context.Background())

			if prom != nil {
				stop := serveMetrics(addr, prom, logger)
				defer stop()
			}
			if watch && opts.ConfigPath != "" {
				if err := a.WatchConfig(opts.ConfigPath); err != nil {
					logger.Warn("config watch disabled", "path", opts.ConfigPath, "error", err)
				}
			}

			in := cmd.InOrStdin()
			console := NewConsole(a, cmd.OutOrStdout(), WithPrompt(isTerminal(in)))
			if err := console.Watch(); err != nil {
				return err
			}
			defer console.Close()

			return console.Run(ctx, in)
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	cmd.Flags().BoolVar(&watch, "watch", true, "reload the config file when it changes")
	return cmd
}

// serveMetrics starts the metrics endpoint and returns its shutdown func.
func serveMetrics(addr string, prom *metrics.Prometheus, logger logging.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", prom.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "addr", addr, "error", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

// isTerminal reports whether r is an interactive terminal.
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
