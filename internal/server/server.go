package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"meatflow/internal/geo"
	"meatflow/internal/logging"
	"meatflow/internal/metrics"
	"meatflow/internal/view"
)

type Server struct {
	srv      *http.Server
	engine   *view.Engine
	features []geo.Feature
	logger   logging.Logger
	metrics  *metrics.Metrics
}

// New wires the API routes. features may be empty, in which case the
// choropleth and mapping-gap routes return empty lists.
func New(addr string, engine *view.Engine, features []geo.Feature, logger logging.Logger, m *metrics.Metrics) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	if m == nil {
		m = metrics.New()
	}
	s := &Server{
		engine:   engine,
		features: features,
		logger:   logger.Named("server"),
		metrics:  m,
	}
	s.srv = &http.Server{
		Addr:         addr,
		Handler:      s.routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /healthz", s.instrument("healthz", http.HandlerFunc(s.handleHealth)))
	mux.Handle("GET /metrics", s.metrics.Handler())
	mux.Handle("GET /api/indicators", s.instrument("indicators", http.HandlerFunc(s.handleIndicators)))
	mux.Handle("GET /api/snapshot", s.instrument("snapshot", http.HandlerFunc(s.handleSnapshot)))
	mux.Handle("GET /api/choropleth", s.instrument("choropleth", http.HandlerFunc(s.handleChoropleth)))
	mux.Handle("GET /api/mapping-gaps", s.instrument("mapping_gaps", http.HandlerFunc(s.handleMappingGaps)))
	return mux
}

func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

func (s *Server) Start() error {
	s.logger.Info("http server listening", logging.String("addr", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	s.logger.Info("http server stopped")
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusRecorder) WriteHeader(code int) {
	if w.wroteHeader {
		return
	}
	w.status = code
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusRecorder) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

// instrument counts requests by route and status and logs slow or failed
// ones.
func (s *Server) instrument(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.metrics.HTTPRequests.WithLabelValues(route, fmt.Sprint(rec.status)).Inc()
		fields := []logging.Field{
			logging.String("route", route),
			logging.String("query", r.URL.RawQuery),
			logging.Int("status", rec.status),
			logging.Duration("elapsed", time.Since(start)),
		}
		switch {
		case rec.status >= 500:
			s.logger.Error("request failed", fields...)
		case rec.status >= 400:
			s.logger.Warn("request rejected", fields...)
		default:
			s.logger.Debug("request served", fields...)
		}
	})
}
