package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// tourMetrics exposes the load and query measurements for scraping during
// long runs.
type tourMetrics struct {
	docsLoaded    prometheus.Counter
	loadCharge    prometheus.Counter
	queryCharge   *prometheus.GaugeVec
	queryDuration *prometheus.HistogramVec
}

func newTourMetrics(reg prometheus.Registerer) *tourMetrics {
	m := &tourMetrics{
		docsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "indextour",
			Name:      "documents_loaded_total",
			Help:      "Documents inserted into the sample container",
		}),

		loadCharge: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "indextour",
			Name:      "load_request_charge_total",
			Help:      "Request charge consumed by document inserts",
		}),

		queryCharge: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "indextour",
			Name:      "query_request_charge",
			Help:      "Request charge of the last probe query",
		}, []string{"phase", "query"}),

		queryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "indextour",
			Name:      "query_duration_seconds",
			Help:      "Probe query latency",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"phase", "query"}),
	}

	reg.MustRegister(m.docsLoaded, m.loadCharge, m.queryCharge, m.queryDuration)
	return m
}

func serveMetrics(port int, reg *prometheus.Registry, logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("Metrics listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Metrics server error", zap.Error(err))
		}
	}()
	return srv
}
