// docdex-emulator serves a standalone in-memory DocumentDB-compatible
// endpoint for local development. It accepts the well-known emulator master
// key and exposes prometheus metrics on /metrics of a separate port.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docdex/internal/config"
	"github.com/kailas-cloud/docdex/internal/emulator"
	logpkg "github.com/kailas-cloud/docdex/internal/logger"
	"github.com/kailas-cloud/docdex/internal/version"
)

func main() {
	var (
		port        = flag.Int("port", 8081, "service port")
		metricsPort = flag.Int("metrics-port", 0, "Prometheus metrics port (0 disables)")
		reindexSec  = flag.Int("reindex-sec", 3, "simulated index transformation duration in seconds")
	)
	flag.Parse()

	env := config.GetEnv()
	logger, err := logpkg.New(env)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting docdex emulator",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.Int("port", *port),
	)

	emu := emulator.New(
		emulator.WithReindexDuration(time.Duration(*reindexSec)*time.Second),
		emulator.WithLogger(logger),
	)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      emu.Handler(),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	var metricsSrv *http.Server
	if *metricsPort > 0 {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsSrv = &http.Server{Addr: fmt.Sprintf(":%d", *metricsPort), Handler: mux}
		go func() {
			logger.Info("Metrics listening", zap.String("addr", metricsSrv.Addr))
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("Metrics server error", zap.Error(err))
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Emulator listening",
			zap.String("addr", srv.Addr),
			zap.String("master_key", emulator.DefaultKey),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(shutdownCtx)
	}

	logger.Info("Emulator stopped gracefully")
}
