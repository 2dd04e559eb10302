package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vectorapi/vector-agent/internal/config"
	"github.com/vectorapi/vector-agent/internal/health"
	"github.com/vectorapi/vector-agent/internal/logger"
	"github.com/vectorapi/vector-agent/internal/metrics"
	"github.com/vectorapi/vector-agent/internal/rpc"
	"github.com/vectorapi/vector-agent/internal/sampler"
	"github.com/vectorapi/vector-agent/internal/telemetry"
	"github.com/vectorapi/vector-agent/internal/transport"

	"github.com/rs/zerolog/log"
)

func main() {

	// Load config
	path := "config.yaml"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Init logger
	logger.Init(cfg.Logging)
	log.Info().Str("device_id", cfg.Device.DeviceID).Msg("starting vector agent")
	log.Info().Str("server", cfg.Device.Server).Str("transport", cfg.Transport.Kind).Msg("telemetry target")

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// OS Signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	//------------------------------------------
	// START HEALTH SERVER
	//------------------------------------------
	healthSrv := health.New(cfg.Health.Port)
	healthSrv.SetRunning(true)

	go func() {
		if err := healthSrv.Serve(); err != nil {
			log.Error().Err(err).Msg("health server stopped")
		}
	}()
	log.Info().Str("port", cfg.Health.Port).Msg("health and metrics endpoints running")

	//------------------------------------------
	// CONNECT PUSH TRANSPORT
	//------------------------------------------
	var tr transport.Transport
	switch cfg.Transport.Kind {
	case "kafka":
		k, err := transport.NewKafka(cfg)
		if err != nil {
			panic("kafka transport: " + err.Error())
		}
		tr = k
	default:
		tr = transport.NewMQTT(cfg)
	}
	if c, ok := tr.(transport.Connector); ok {
		if err := c.Connect(ctx); err != nil {
			log.Warn().Err(err).Msg("transport connect failed, will retry in background")
		}
	}

	// mirror connectivity into the health endpoint
	go func() {
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				healthSrv.SetConnected(tr.IsConnected())
			}
		}
	}()

	//------------------------------------------
	// START DISPATCHER + DEVICE METRICS
	//------------------------------------------
	disp := telemetry.NewDispatcher(cfg, tr)
	source := metrics.NewSystem(cfg.Probe.Interface)

	probe := metrics.NewProbe(cfg.Probe.TargetHost, time.Duration(cfg.Probe.IntervalSeconds)*time.Second)
	go probe.Run(ctx)

	//------------------------------------------
	// START RPC SERVER
	//------------------------------------------
	rpcSrv := rpc.NewServer(cfg, disp, source, probe)
	go func() {
		if err := rpcSrv.Serve(); err != nil {
			log.Error().Err(err).Msg("rpc server stopped")
		}
	}()

	//------------------------------------------
	// START PERIODIC SAMPLER
	//------------------------------------------
	smp := sampler.New(cfg, disp, source)
	go smp.Run(ctx)

	//------------------------------------------
	// WAIT FOR SHUTDOWN SIGNAL
	//------------------------------------------
	sig := <-sigChan
	log.Warn().Str("signal", sig.String()).Msg("shutdown signal received")

	//------------------------------------------
	// SHUTDOWN SEQUENCE
	//------------------------------------------
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	log.Info().Msg("stopping rpc server...")
	rpcSrv.Shutdown(shutdownCtx)

	log.Info().Msg("closing transport...")
	tr.Close()

	healthSrv.SetRunning(false)

	log.Info().Msg("agent stopped cleanly")
}
