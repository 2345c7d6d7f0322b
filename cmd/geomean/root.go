package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/ahrav/go-geomean/infrastructure/middleware"
	"github.com/ahrav/go-geomean/internal/application"
	"github.com/ahrav/go-geomean/internal/ports"
)

// globalOptions holds the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath  string
	seed        uint64
	method      string
	metricsAddr string
	logLevel    string
}

// runtimeEnv is what PersistentPreRunE prepares for the subcommands. The
// caller of Execute owns it and must call close afterwards, whether or not
// the command failed.
type runtimeEnv struct {
	cfg      application.AppConfig
	logger   *slog.Logger
	rng      *rand.Rand
	registry *application.EstimatorRegistry
	metrics  ports.MetricsCollector
	shutdown func()
}

func newRootCmd(env *runtimeEnv) *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "geomean",
		Short: "Practise estimating geometric means with pen and paper",
		Long: `geomean trains the table-based logarithm method for estimating the
geometric mean of a handful of guesses, and measures how accurate the
pen-and-paper methods are.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return env.prepare(cmd, opts)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to a YAML configuration file")
	flags.Uint64Var(&opts.seed, "seed", 0, "random seed (0 picks one at random)")
	flags.StringVar(&opts.method, "method", "", "estimation method (overrides the config file)")
	flags.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn or error")

	root.AddCommand(
		newPracticeCmd(env),
		newEstimateCmd(env),
		newBenchCmd(env),
	)
	return root
}

// prepare loads configuration and builds the shared collaborators.
func (env *runtimeEnv) prepare(cmd *cobra.Command, opts *globalOptions) error {
	logger, err := newLogger(cmd.ErrOrStderr(), opts.logLevel)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	env.logger = logger

	loader := application.NewConfigLoader()
	env.cfg = application.DefaultConfig()
	if opts.configPath != "" {
		if env.cfg, err = loader.LoadFromFile(opts.configPath); err != nil {
			return err
		}
	}
	if opts.method != "" {
		env.cfg.Method = opts.method
	}

	seed := opts.seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	logger.Debug("random source seeded", "seed", seed)
	env.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	env.registry = application.NewEstimatorRegistry()

	if opts.metricsAddr != "" {
		if env.metrics, env.shutdown, err = serveMetrics(opts.metricsAddr, logger); err != nil {
			return err
		}
	}
	return nil
}

// close releases what prepare started. It is safe to call more than once
// and on an environment that was never prepared.
func (env *runtimeEnv) close() {
	if env.shutdown != nil {
		env.shutdown()
		env.shutdown = nil
	}
}

// newLogger returns a text logger on w at the named level.
func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

// serveMetrics exposes a private registry on addr and returns the collector
// writing to it with a function that stops the server. A listen failure is
// reported as a *ports.MetricsError.
func serveMetrics(addr string, logger *slog.Logger) (ports.MetricsCollector, func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, ports.NewMetricsError(addr, "listen", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := middleware.NewPrometheusMetrics(reg)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", ports.NewMetricsError(addr, "serve", err))
		}
	}()
	logger.Info("serving metrics", "addr", ln.Addr().String())

	return metrics, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Warn("metrics server shutdown", "error", ports.NewMetricsError(addr, "shutdown", err))
		}
		// Serve may not have taken ownership of the listener yet.
		_ = ln.Close()
	}, nil
}
