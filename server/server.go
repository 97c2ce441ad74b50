// Package server exposes the planning views of a loaded workspace over a
// read-only JSON HTTP interface.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/etnz/budget"
	"github.com/etnz/budget/date"
	"github.com/etnz/budget/internal/logger"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Server serves a ledger and its remediator. Neither is mutated by any handler.
type Server struct {
	ledger     *budget.Ledger
	remediator *budget.Remediator
	router     *mux.Router
	registry   *prometheus.Registry
	metrics    *metrics
	log        zerolog.Logger
}

// New builds the server and its routes.
func New(l *budget.Ledger, r *budget.Remediator, log zerolog.Logger) *Server {
	s := &Server{
		ledger:     l,
		remediator: r,
		router:     mux.NewRouter(),
		registry:   prometheus.NewRegistry(),
		metrics:    newMetrics("budget"),
		log:        log,
	}
	s.registry.MustRegister(s.metrics)

	s.router.Use(s.instrument)
	s.router.HandleFunc("/months", s.listMonths).Methods(http.MethodGet)
	s.router.HandleFunc("/months/{month}", s.getMonth).Methods(http.MethodGet)
	s.router.HandleFunc("/months/{month}/totals", s.getTotals).Methods(http.MethodGet)
	s.router.HandleFunc("/accounts/{id}/balance", s.getBalance).Methods(http.MethodGet)
	s.router.HandleFunc("/balances/discrepancies", s.getDiscrepancies).Methods(http.MethodGet)
	s.router.HandleFunc("/remediation/scan", s.getScan).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.router.ServeHTTP(w, r) }

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.log.Info().Str("addr", addr).Msg("serving")

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdown); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

// instrument counts and times every request, and carries the logger in the
// request context.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := r.URL.Path
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(logger.WithContext(r.Context(), s.log)))
		elapsed := time.Since(start)

		s.metrics.requests.WithLabelValues(route, strconv.Itoa(rec.code)).Inc()
		s.metrics.latency.WithLabelValues(route).Observe(elapsed.Seconds())
		s.log.Debug().Str("method", r.Method).Str("route", route).Int("status", rec.code).Dur("duration", elapsed).Msg("request")
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// writeError maps the core error taxonomy to HTTP status codes.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, budget.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, budget.ErrValidation):
		code = http.StatusBadRequest
	case errors.Is(err, budget.ErrReferential):
		code = http.StatusConflict
	}
	if code == http.StatusInternalServerError {
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

// monthVar parses the {month} path variable.
func monthVar(r *http.Request) (date.Month, error) {
	raw := mux.Vars(r)["month"]
	m, err := date.ParseMonth(raw)
	if err != nil {
		return date.Month{}, &budget.ValidationError{Entity: "month", ID: raw, Field: "month", Constraint: "must be YYYY-MM"}
	}
	return m, nil
}
