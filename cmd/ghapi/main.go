// Command ghapi reads repository data from the GitHub REST API and prints it
// as JSON.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Sternrassler/github-api-client/internal/config"
	"github.com/Sternrassler/github-api-client/pkg/client"
	"github.com/Sternrassler/github-api-client/pkg/logging"
	"github.com/Sternrassler/github-api-client/pkg/metrics"
	"github.com/Sternrassler/github-api-client/pkg/ratelimit"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := execute(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

// execute runs the command line and releases everything it opened.
func execute(ctx context.Context, args []string, out, errOut io.Writer) error {
	a := &app{out: out}
	defer a.close()

	root := newRootCmd(a, errOut)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// app holds the state shared by all subcommands.
type app struct {
	configPath  string
	logLevel    string
	pretty      bool
	baseURL     string
	redisURL    string
	metricsAddr string

	out    io.Writer
	logger zerolog.Logger
	client *client.Client

	closers []func()
}

func newRootCmd(a *app, errOut io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:          "ghapi",
		Short:        "Read repository data from the GitHub REST API",
		Long:         "ghapi fetches tags, releases, pull requests, licenses and the rate limit of GitHub repositories and prints them as JSON.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd, errOut)
		},
	}
	root.SetOut(a.out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "path to a YAML config file")
	flags.StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error, disabled)")
	flags.BoolVar(&a.pretty, "pretty", false, "human-readable logs instead of JSON")
	flags.StringVar(&a.baseURL, "base-url", "", "API base URL (default https://api.github.com)")
	flags.StringVar(&a.redisURL, "redis", "", "share the rate limit state through this Redis (redis://host:port/db or host:port)")
	flags.StringVar(&a.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while running")

	root.AddCommand(newTagsCmd(a))
	root.AddCommand(newReleasesCmd(a))
	root.AddCommand(newPullsCmd(a))
	root.AddCommand(newLicenseCmd(a))
	root.AddCommand(newRateLimitCmd(a))
	root.AddCommand(newReleasesOrTagsCmd(a))
	root.AddCommand(newPageCmd(a))

	return root
}

// setup resolves the configuration and builds the client.
func (a *app) setup(cmd *cobra.Command, errOut io.Writer) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if flags.Changed("pretty") {
		cfg.Log.Pretty = a.pretty
	}
	if flags.Changed("base-url") {
		cfg.BaseURL = a.baseURL
	}
	if flags.Changed("redis") {
		cfg.RedisURL = a.redisURL
	}
	if flags.Changed("metrics-addr") {
		cfg.MetricsAddr = a.metricsAddr
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	level, _ := logging.ParseLevel(cfg.Log.Level)
	logging.Setup(logging.Config{Level: level, Pretty: cfg.Log.Pretty, Output: errOut})
	a.logger = logging.NewLogger("ghapi")

	clientCfg := cfg.ClientConfig()
	clientLogger := logging.NewLogger("github-client")
	clientCfg.Logger = &clientLogger

	if cfg.RedisURL != "" {
		opts, err := cfg.RedisOptions()
		if err != nil {
			return err
		}
		redisClient := redis.NewClient(opts)
		a.closers = append(a.closers, func() { redisClient.Close() })

		if err := redisClient.Ping(cmd.Context()).Err(); err != nil {
			return fmt.Errorf("connect to redis at %s: %w", opts.Addr, err)
		}
		clientCfg.RateLimitStore = ratelimit.NewRedisStore(redisClient, cfg.Username)
		a.logger.Debug().Str("addr", opts.Addr).Msg("Sharing rate limit state through Redis")
	}

	if cfg.MetricsAddr != "" {
		a.serveMetrics(cfg.MetricsAddr)
	}

	c, err := client.New(clientCfg)
	if err != nil {
		return err
	}
	a.client = c
	a.closers = append(a.closers, func() { c.Close() })

	return nil
}

func (a *app) serveMetrics(addr string) {
	srv := metrics.NewServer(addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error().Err(err).Str("addr", addr).Msg("Metrics server failed")
		}
	}()
	a.logger.Info().Str("addr", addr).Msg("Serving metrics")

	a.closers = append(a.closers, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	})
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
