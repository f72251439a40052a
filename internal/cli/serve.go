package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/sparqlc/internal/ir"
	"github.com/roach88/sparqlc/internal/logger"
	"github.com/roach88/sparqlc/internal/metrics"
	"github.com/roach88/sparqlc/internal/server"
	"github.com/roach88/sparqlc/internal/store"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr            string
	LogLevel        string
	LogConsole      bool
	Config          string
	Cache           string
	NoMetrics       bool
	ShutdownTimeout time.Duration
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the compiler over HTTP",
		Long: `Serve the compiler over HTTP until interrupted.

  POST /query    compile the request body
  GET  /healthz  liveness
  GET  /metrics  Prometheus metrics

Flags fall back to the environment:
  SPARQLC_ADDR, SPARQLC_LOG_LEVEL, SPARQLC_CONFIG, SPARQLC_CACHE

Examples:
  sparqlc serve
  sparqlc serve --addr :9090 --cache /var/lib/sparqlc/cache.db
  SPARQLC_LOG_LEVEL=debug sparqlc serve --log-console`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", getEnv("SPARQLC_ADDR", ":8080"), "listen address")
	cmd.Flags().StringVar(&opts.LogLevel, "log-level", getEnv("SPARQLC_LOG_LEVEL", "info"), "log level (debug|info|warn|error)")
	cmd.Flags().BoolVar(&opts.LogConsole, "log-console", false, "human-readable logs instead of JSON")
	cmd.Flags().StringVar(&opts.Config, "config", getEnv("SPARQLC_CONFIG", ""), "CUE compiler config")
	cmd.Flags().StringVar(&opts.Cache, "cache", getEnv("SPARQLC_CACHE", ""), "sqlite compiled-query cache")
	cmd.Flags().BoolVar(&opts.NoMetrics, "no-metrics", false, "do not serve /metrics")
	cmd.Flags().DurationVar(&opts.ShutdownTimeout, "shutdown-timeout", 10*time.Second, "graceful shutdown timeout")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	log := logger.Build(logger.Config{
		Level:     opts.LogLevel,
		Console:   opts.LogConsole,
		Component: "sparqlc",
	}, cmd.ErrOrStderr())

	c, err := loadCompiler(opts.Config)
	if err != nil {
		log.Error().Err(err).Str("config", opts.Config).Msg("load config")
		return WrapExitError(ExitCommandError, "loading config", err)
	}

	var cache *store.Store
	if opts.Cache != "" {
		cache, err = store.Open(opts.Cache, store.WithLogger(log))
		if err != nil {
			log.Error().Err(err).Str("cache", opts.Cache).Msg("open cache")
			return WrapExitError(ExitCommandError, "opening cache", err)
		}
		defer cache.Close()
	}

	var m *metrics.Provider
	if !opts.NoMetrics {
		m = metrics.Init(metrics.Config{Build: metrics.BuildInfo{Version: ir.CompilerVersion, Revision: Revision}})
	}

	svc := server.NewService(c, cache, m, log)
	handler := server.NewRouter(svc, m, log)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().
		Str("addr", opts.Addr).
		Str("version", versionString()).
		Str("config_fingerprint", c.Config().Fingerprint()).
		Bool("cache", cache != nil).
		Msg("starting sparqlc")

	if err := server.Run(ctx, server.Config{Addr: opts.Addr, ShutdownTimeout: opts.ShutdownTimeout}, handler, log); err != nil {
		log.Error().Err(err).Msg("server error")
		return WrapExitError(ExitCommandError, fmt.Sprintf("serving on %s", opts.Addr), err)
	}
	log.Info().Msg("server stopped")
	return nil
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
