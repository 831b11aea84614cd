// Command scalper runs the trading engine against a TOML config file,
// sleeping between cycles at the configured tick interval.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/victorious243/scalper/internal/api"
	"github.com/victorious243/scalper/internal/broker"
	"github.com/victorious243/scalper/internal/config"
	"github.com/victorious243/scalper/internal/engine"
	"github.com/victorious243/scalper/internal/logging"
	"github.com/victorious243/scalper/internal/metrics"
	"github.com/victorious243/scalper/internal/store"
	"github.com/victorious243/scalper/pkg/utils"
)

func main() {
	configPath := flag.String("config", "", "path to the TOML bot configuration")
	mode := flag.String("mode", "paper", "paper, dry-run, or live")
	tickInterval := flag.Duration("tick", 60*time.Second, "delay between run cycles")
	dataPath := flag.String("store", "data/trades.sqlite", "path to the sqlite trade/event store")
	apiAddr := flag.String("api-addr", "0.0.0.0", "monitoring API bind host")
	apiPort := flag.Int("api-port", 8090, "monitoring API bind port")
	logLevel := flag.String("log-level", "info", "log level (debug, info, warn, error)")
	flag.Parse()

	logger, err := logging.New(*logLevel)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if *configPath == "" {
		logger.Fatal("missing required --config flag")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	switch *mode {
	case "live":
		logger.Fatal("live trading requires a live broker adapter, which this build does not wire; use paper or dry-run")
	case "paper":
		cfg.PaperTrading = true
		cfg.DryRun = false
	case "dry-run":
		cfg.PaperTrading = true
		cfg.DryRun = true
	default:
		logger.Fatal("mode must be paper, dry-run, or live", zap.String("mode", *mode))
	}

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}
	if cfg.LiveEnabled {
		logging.Event(logger, "live_enabled", zap.String("acknowledgement", cfg.LiveAcknowledgement))
	}

	// Retries absorb a transient sqlite lock from a prior instance still
	// tearing down.
	st, err := utils.Retry(utils.DefaultRetryConfig(), func() (*store.Store, error) {
		return store.Open(*dataPath)
	})
	if err != nil {
		logger.Fatal("failed to open trade store", zap.Error(err))
	}
	defer st.Close()

	adapter := broker.NewPaper(decimal.NewFromInt(10000))
	adapter.Connect()
	defer adapter.Shutdown()

	reg := metrics.New(prometheus.DefaultRegisterer)

	eng := engine.New(logger, cfg, adapter, st, engine.WithMetrics(reg))

	apiCfg := api.DefaultConfig()
	apiCfg.Host = *apiAddr
	apiCfg.Port = *apiPort
	apiServer := api.NewServer(logger, apiCfg, eng.Risk(), eng.TradeBook(), adapter)
	apiServer.SetStore(st)
	eng.SetBroadcaster(apiServer)

	go func() {
		if err := apiServer.Start(); err != nil {
			logger.Warn("api server stopped", zap.Error(err))
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(*tickInterval)
	defer ticker.Stop()

	logger.Info("scalper engine started", zap.String("mode", *mode), zap.Duration("tick", *tickInterval))

	for {
		select {
		case <-sigChan:
			logger.Info("shutdown signal received")
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			apiServer.Stop(shutdownCtx)
			shutdownCancel()
			return
		case <-ticker.C:
			if err := eng.RunOnce(ctx, time.Now().UTC()); err != nil {
				logger.Error("run cycle failed", zap.Error(err))
			}
		}
	}
}
