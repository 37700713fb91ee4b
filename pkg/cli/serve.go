package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/williamokano/gfs_rotator/pkg/backup"
	"github.com/williamokano/gfs_rotator/pkg/config"
	"github.com/williamokano/gfs_rotator/pkg/metrics"
)

const metricsNamespace = "gfs_rotator"

func newServeCmd(flags *globalFlags) *cobra.Command {
	var (
		schedule    string
		metricsAddr string
		runNow      bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run rotation on a cron schedule and expose Prometheus metrics",
		Long: `serve runs a rotation of every configured database on a cron schedule
(--schedule, then the config "schedule", then "0 3 * * *"). The config file is
watched and reloaded on change; an invalid reload is logged and ignored.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := flags.load()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			m := metrics.New(metricsNamespace, reg)

			daemon := backup.NewDaemon(cfg, schedule, log, m)

			if runNow {
				if _, err := daemon.RunOnce(ctx); err != nil {
					log.Error().Err(err).Msg("initial rotation finished with errors")
				}
			}

			g, gCtx := errgroup.WithContext(ctx)

			g.Go(func() error {
				return daemon.Start(gCtx)
			})

			g.Go(func() error {
				return config.Watch(gCtx, flags.configFile, config.DefaultDebounce, log, func(next *config.Config) {
					if err := daemon.UpdateConfig(gCtx, next); err != nil {
						log.Error().Err(err).Msg("failed to apply reloaded configuration")
					}
				})
			})

			if metricsAddr != "" {
				g.Go(func() error {
					return serveMetrics(gCtx, metricsAddr, reg, log)
				})
			}

			return g.Wait()
		},
	}

	cmd.Flags().StringVar(&schedule, "schedule", "", "cron schedule overriding the config")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", ":9090", "address of the /metrics endpoint, empty to disable")
	cmd.Flags().BoolVar(&runNow, "run-now", false, "rotate once at startup before waiting for the schedule")

	return cmd
}

func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry, log zerolog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("serving metrics")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
