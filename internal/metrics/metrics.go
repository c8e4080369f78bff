// Package metrics exposes Prometheus instruments for the reply pipeline.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "character_chatter"

// Reply outcomes
const (
	OutcomeOK       = "ok"
	OutcomeFailed   = "failed"
	OutcomeReported = "reported"
	OutcomeRejected = "rejected"
)

// Metrics groups the bot's instruments
type Metrics struct {
	Replies           *prometheus.CounterVec
	GenerationSeconds *prometheus.HistogramVec
	EmbedRequests     *prometheus.CounterVec
	BusyDrops         prometheus.Counter
	Reports           *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New registers the instruments on reg. A nil reg uses a fresh registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		Replies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "replies_total",
			Help:      "Reply pipeline runs by character and outcome.",
		}, []string{"character", "outcome"}),
		GenerationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_seconds",
			Help:      "Time spent waiting for the AI backend.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
		}, []string{"character"}),
		EmbedRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "embed_requests_total",
			Help:      "Embed render calls by outcome.",
		}, []string{"outcome"}),
		BusyDrops: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "busy_drops_total",
			Help:      "Requests dropped because the user already had one in flight.",
		}),
		Reports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_total",
			Help:      "Message reports submitted to Discord by outcome.",
		}, []string{"outcome"}),
		gatherer: reg,
	}

	reg.MustRegister(m.Replies, m.GenerationSeconds, m.EmbedRequests, m.BusyDrops, m.Reports)
	return m
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done
func (m *Metrics) Serve(ctx context.Context, addr string, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.InfoContext(ctx, "serving metrics", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.ErrorContext(ctx, "metrics server stopped", tint.Err(err))
		return err
	}
	return nil
}
