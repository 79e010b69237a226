package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/vitwit/paylink"
	"github.com/vitwit/paylink/config"
	"github.com/vitwit/paylink/logger"
	"github.com/vitwit/paylink/metrics"
)

var (
	configFile string
	jsonOutput bool

	cfg *config.Config
	log logger.Logger
)

var rootCmd = &cobra.Command{
	Use:           "paylink",
	Short:         "Pay a payment link on-chain or through the backend",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if configFile != "" {
			cfg, err = config.LoadFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return err
		}
		log = logger.NewZapLogger(cfg.LogLevel)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	PersistentPreRunE: func(*cobra.Command, []string) error {
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return printJSON(cmd, paylink.GetVersion())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "JSON config file (PAYLINK_* environment variables override it)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON")
	rootCmd.AddCommand(showCmd, payCmd, versionCmd)
}

// open builds the client with a zap logger and, if configured, a Prometheus
// endpoint. The returned stop func flushes both.
func open(ctx context.Context) (*paylink.Paylink, func(), error) {
	rec := metrics.Recorder(metrics.NoopRecorder{})
	var srv *http.Server

	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		rec = metrics.NewPrometheusRecorder(reg)

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		srv = &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server stopped", map[string]any{"addr": cfg.MetricsAddr, "error": err})
			}
		}()
	}

	p, err := paylink.New(ctx, cfg, paylink.WithLogger(log), paylink.WithMetrics(rec))
	if err != nil {
		if srv != nil {
			_ = srv.Close()
		}
		return nil, nil, err
	}

	stop := func() {
		p.Close()
		if srv != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}
		if z, ok := log.(*logger.ZapLogger); ok {
			_ = z.Sync()
		}
	}
	return p, stop, nil
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		cancel()
		os.Exit(1)
	}
}
