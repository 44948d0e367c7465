package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/scoutkit/logger"
	"github.com/kbukum/scoutkit/observability"
	"github.com/kbukum/scoutkit/server"
	"github.com/kbukum/scoutkit/version"
)

// newServeCmd creates the "serve" command: run the OpenAI-compatible
// gateway server until interrupted.
func newServeCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the OpenAI-compatible gateway server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configFile)
			if err != nil {
				return err
			}
			return runServe(cfg)
		},
	}
}

func runServe(cfg *appConfig) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logger.GetGlobalLogger().WithComponent("serve")

	var gwOpts []server.GatewayOption
	if cfg.Telemetry.Enabled {
		shutdown, metrics, err := initTelemetry(ctx, cfg)
		if err != nil {
			return err
		}
		defer shutdown()
		gwOpts = append(gwOpts, server.WithMetrics(metrics))
	}

	gw := server.NewGateway(cfg.Server, gwOpts...)
	srv := server.New(cfg.Server, gw)

	if err := srv.Start(ctx); err != nil {
		return err
	}
	log.Info("server started", map[string]any{
		"addr":    srv.Addr(),
		"version": version.Short(),
	})

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Stop(shutdownCtx)
}

// initTelemetry wires OTLP trace and metric export. The returned
// shutdown flushes both providers.
func initTelemetry(ctx context.Context, cfg *appConfig) (func(), *observability.Metrics, error) {
	tp, err := observability.InitTracer(ctx, observability.TracerConfig{
		ServiceName:    cfg.Name,
		ServiceVersion: version.Version,
		Environment:    cfg.Environment,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return nil, nil, err
	}

	mp, err := observability.InitMeter(ctx, observability.MeterConfig{
		ServiceName:    cfg.Name,
		ServiceVersion: version.Version,
		Environment:    cfg.Environment,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
	})
	if err != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tp.Shutdown(shutdownCtx)
		return nil, nil, err
	}

	metrics, err := observability.NewMetrics(observability.Meter(cfg.Name))
	if err != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tp.Shutdown(shutdownCtx)
		_ = mp.Shutdown(shutdownCtx)
		return nil, nil, err
	}

	shutdown := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Warn("tracer shutdown failed", map[string]any{"error": err.Error()})
		}
		if err := mp.Shutdown(shutdownCtx); err != nil {
			logger.Warn("meter shutdown failed", map[string]any{"error": err.Error()})
		}
	}
	return shutdown, metrics, nil
}
