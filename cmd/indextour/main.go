// indextour walks a DocumentDB-compatible account through the effects of
// the container indexing policy: it loads a sample dataset, measures query
// cost and latency under consistent indexing, with indexing turned off and
// with one property excluded from the index, and prints the comparison.
//
// Usage:
//
//	indextour                  # against the in-process emulator
//	indextour -docs 20000      # override the document count
//
// Env vars:
//
//	ENV              — config environment name (default: local)
//	DOCDEX_ENDPOINT  — service endpoint (remote mode)
//	DOCDEX_KEY       — base64 master key (remote mode)
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docdex"
	"github.com/kailas-cloud/docdex/internal/config"
	"github.com/kailas-cloud/docdex/internal/emulator"
	logpkg "github.com/kailas-cloud/docdex/internal/logger"
	"github.com/kailas-cloud/docdex/internal/version"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	applyFlags(&cfg)

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting indexing policy tour",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Bool("emulator", cfg.Service.UseEmulator),
		zap.Int("document_count", cfg.Tour.DocumentCount),
	)

	ctx, cancel := signal.NotifyContext(
		context.Background(), syscall.SIGTERM, syscall.SIGINT,
	)
	defer cancel()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("Tour failed", zap.Error(err))
	}
}

func applyFlags(cfg *config.Config) {
	flag.IntVar(&cfg.Tour.DocumentCount, "docs", cfg.Tour.DocumentCount, "number of sample documents to load")
	flag.BoolVar(&cfg.Tour.KeepResources, "keep", cfg.Tour.KeepResources, "keep database and container after the tour")
	flag.BoolVar(&cfg.Service.UseEmulator, "emulator", cfg.Service.UseEmulator, "run against an in-process emulator")
	flag.IntVar(&cfg.Metrics.Port, "metrics-port", cfg.Metrics.Port, "Prometheus metrics port (0 disables)")
	flag.Parse()
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	reg := prometheus.NewRegistry()
	metrics := newTourMetrics(reg)

	if cfg.Metrics.Port > 0 {
		srv := serveMetrics(cfg.Metrics.Port, reg, logger)
		defer func() {
			shutCtx, shutCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutCancel()
			_ = srv.Shutdown(shutCtx)
		}()
	}

	endpoint, masterKey := cfg.Service.Endpoint, cfg.Service.MasterKey
	if cfg.Service.UseEmulator {
		emuEndpoint, stop, err := startEmulator(cfg, logger)
		if err != nil {
			return fmt.Errorf("start emulator: %w", err)
		}
		defer stop()
		endpoint, masterKey = emuEndpoint, emulator.DefaultKey
		logger.Info("Emulator listening", zap.String("endpoint", endpoint))
	}

	client, err := docdex.New(
		docdex.WithEndpoint(endpoint),
		docdex.WithKey(masterKey),
		docdex.WithPrometheus(reg),
	)
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}

	t := &tour{
		cfg:     cfg.Tour,
		client:  client,
		logger:  logger,
		metrics: metrics,
	}
	return t.run(ctx)
}

// startEmulator serves the in-process emulator on a loopback port and
// returns its endpoint plus a shutdown func.
func startEmulator(cfg config.Config, logger *zap.Logger) (string, func(), error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, err
	}

	emu := emulator.New(
		emulator.WithReindexDuration(time.Duration(cfg.Emulator.ReindexDurationSec)*time.Second),
		emulator.WithLogger(logger.Named("emulator")),
	)
	srv := &http.Server{Handler: emu.Handler()}
	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			logger.Error("Emulator server error", zap.Error(err))
		}
	}()

	stop := func() {
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutCtx)
	}
	return "http://" + ln.Addr().String(), stop, nil
}
