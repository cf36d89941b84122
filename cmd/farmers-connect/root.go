package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"farmers-connect/internal/app"
	"farmers-connect/internal/common/config"
	"farmers-connect/internal/common/logger"
	"farmers-connect/internal/common/metrics"
	"farmers-connect/internal/common/observability"
	"farmers-connect/internal/diagnostics"
)

// options holds the persistent flags.
type options struct {
	ConfigFile string
	Verbose    bool
	JSONOutput bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:           "farmers-connect",
		Short:         "Crop price prediction, crop recommendation and market dashboard client",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigFile, "config", "c", "", "Path to config.yaml")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVar(&opts.JSONOutput, "json", false, "Output in JSON format")

	cmd.AddCommand(
		newOptionsCmd(opts),
		newPredictCmd(opts),
		newRecommendCmd(opts),
		newWeatherCmd(opts),
		newMarketCmd(opts),
		newDashboardCmd(opts),
		newRegisterCmd(opts),
	)
	return cmd
}

// runtime is everything a subcommand needs, built from config and flags.
type runtime struct {
	opts   *options
	out    io.Writer
	cfg    *config.Config
	zap    *zap.Logger
	log    logger.Logger
	obs    *observability.Observability
	export metrics.Exporter
	events *diagnostics.MemorySink
	redis  *redis.Client
	client *app.Client
}

func setup(cmd *cobra.Command, opts *options) (*runtime, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.ConfigFile != "" {
		cfg, err = config.LoadFromFile(opts.ConfigFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	level := cfg.Logging.Level
	if opts.Verbose {
		level = "debug"
	}
	zapLog := logger.NewWithOutput(level, cfg.Logging.Format, cfg.Logging.Output)
	log := logger.NewZapAdapter(zapLog)

	rt := &runtime{
		opts:   opts,
		out:    cmd.OutOrStdout(),
		cfg:    cfg,
		zap:    zapLog,
		log:    log,
		events: diagnostics.NewMemorySink(),
	}

	if cfg.Metrics.Enabled {
		rt.obs = observability.New(cfg.Metrics.ServiceName)
		rt.export = metrics.Exporter{
			TextfilePath:   cfg.Metrics.TextfilePath,
			PushgatewayURL: cfg.Metrics.PushgatewayURL,
			Job:            cfg.Metrics.ServiceName,
		}
	}

	sinks := diagnostics.MultiSink{diagnostics.NewLogSink(log), rt.events}
	if cfg.Diagnostics.Redis.Enabled {
		rt.redis = diagnostics.NewRedisClient(cfg.Diagnostics.Redis)
		redisSink := diagnostics.NewRedisSink(rt.redis, cfg.Diagnostics.Redis.Stream, cfg.Diagnostics.Redis.MaxLen, log)

		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Second)
		pingErr := redisSink.Ping(ctx)
		cancel()
		if pingErr != nil {
			log.Warn("Redis diagnostics disabled", map[string]interface{}{"error": pingErr.Error()})
		} else {
			sinks = append(sinks, redisSink)
		}
	}

	settings, err := app.SettingsFromConfig(cfg)
	if err != nil {
		rt.close()
		return nil, err
	}
	rt.client, err = app.NewClient(settings,
		app.WithSink(sinks),
		app.WithLogger(log),
		app.WithObservability(rt.obs),
	)
	if err != nil {
		rt.close()
		return nil, err
	}
	return rt, nil
}

func (rt *runtime) close() {
	if rt.export.Enabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := rt.export.Export(ctx); err != nil {
			rt.log.Warn("Metrics export failed", map[string]interface{}{"error": err.Error()})
		}
		cancel()
	}
	if rt.redis != nil {
		_ = rt.redis.Close()
	}
	rt.obs.Shutdown()
	_ = rt.zap.Sync()
}

// print writes v as JSON with --json, otherwise the text lines.
func (rt *runtime) print(v interface{}, lines ...string) error {
	if rt.opts.JSONOutput {
		enc := json.NewEncoder(rt.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(rt.out, line); err != nil {
			return err
		}
	}
	return nil
}

// withRuntime adapts a runtime-aware function to cobra's RunE.
func withRuntime(opts *options, fn func(cmd *cobra.Command, rt *runtime) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		rt, err := setup(cmd, opts)
		if err != nil {
			return err
		}
		defer rt.close()
		return fn(cmd, rt)
	}
}
