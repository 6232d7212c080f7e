package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"bq28z610-go/drivers/bq28z610"
	"bq28z610-go/internal/exporter"
)

func newExportCmd(a *app) *cobra.Command {
	var flags struct {
		listen   string
		interval time.Duration
		once     bool
	}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Serve gauge telemetry as Prometheus metrics",
		Long: `Poll the gauge every --interval and serve the metrics on --listen at the
configured path until interrupted. With --once, poll a single time and print
the metrics page instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			listen := a.cfg.Exporter.Addr
			if flags.listen != "" {
				listen = flags.listen
			}
			every := a.cfg.Exporter.Interval
			if flags.interval > 0 {
				every = flags.interval
			}

			reg := exporter.NewRegistry()
			m := exporter.NewMetrics(reg)
			zo := a.drvCfg.Observer
			cfg := a.drvCfg
			cfg.Observer = bq28z610.ObserverFunc(func(e bq28z610.Event) {
				zo.Observe(e)
				m.Observe(e)
			})
			a.dev.Configure(cfg)
			defer a.dev.Configure(a.drvCfg)

			p := exporter.NewPoller(a.dev, m, a.log.Named("exporter"))
			if flags.once {
				if err := p.Poll(); err != nil {
					a.log.Warn("poll failed", zap.Error(err))
				}
				rec := httptest.NewRecorder()
				exporter.Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, a.cfg.Exporter.Path, nil))
				_, err := cmd.OutOrStdout().Write(rec.Body.Bytes())
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			mux := http.NewServeMux()
			mux.Handle(a.cfg.Exporter.Path, exporter.Handler(reg))
			srv := &http.Server{Addr: listen, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

			errc := make(chan error, 1)
			go func() { errc <- srv.ListenAndServe() }()
			go p.Run(ctx, every)
			a.log.Info("exporter listening", zap.String("addr", listen),
				zap.String("path", a.cfg.Exporter.Path), zap.Duration("interval", every))

			select {
			case <-ctx.Done():
			case err := <-errc:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
			}
			shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdown)
		},
	}
	cmd.Flags().StringVar(&flags.listen, "listen", "", "Listen address (default exporter.addr)")
	cmd.Flags().DurationVar(&flags.interval, "interval", 0, "Poll interval (default exporter.interval)")
	cmd.Flags().BoolVar(&flags.once, "once", false, "Poll once and print the metrics")
	return cmd
}
