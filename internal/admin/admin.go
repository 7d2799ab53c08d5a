// Package admin serves operational endpoints on a separate listener:
// prometheus metrics, a health probe and pprof.
package admin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/pprof"
	"time"

	"goeda/internal/logging"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Checker reports whether a dependency is healthy.
type Checker func(ctx context.Context) error

// Config configures the admin listener.
type Config struct {
	Addr      string
	RateLimit int // requests per minute per client IP; 0 disables limiting
	Checks    map[string]Checker
}

// Server is the admin HTTP listener.
type Server struct {
	http *http.Server
}

// NewServer builds the admin router.
func NewServer(cfg Config) *Server {
	return &Server{http: &http.Server{
		Addr:              cfg.Addr,
		Handler:           NewRouter(cfg),
		ReadHeaderTimeout: 5 * time.Second,
	}}
}

// NewRouter returns the admin routes.
func NewRouter(cfg Config) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	if cfg.RateLimit > 0 {
		r.Use(rateLimit(cfg.RateLimit, time.Minute))
	}

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", healthHandler(cfg.Checks))

	r.Route("/debug/pprof", func(r chi.Router) {
		r.HandleFunc("/", pprof.Index)
		r.HandleFunc("/cmdline", pprof.Cmdline)
		r.HandleFunc("/profile", pprof.Profile)
		r.HandleFunc("/symbol", pprof.Symbol)
		r.HandleFunc("/trace", pprof.Trace)
		r.Handle("/{profile}", http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			pprof.Handler(chi.URLParam(req, "profile")).ServeHTTP(w, req)
		}))
	})
	return r
}

func rateLimit(limit int, window time.Duration) func(http.Handler) http.Handler {
	return httprate.Limit(
		limit,
		window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(window.Seconds())))
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"rate_limit_exceeded","code":"RATE_LIMITED"}`))
		}),
	)
}

func healthHandler(checks map[string]Checker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		status := http.StatusOK
		body := `{"status":"ok"}`
		for name, check := range checks {
			if err := check(ctx); err != nil {
				logger := logging.FromContext(ctx, "admin")
				logger.Warn().Err(err).Str("check", name).Msg("health check failed")
				status = http.StatusServiceUnavailable
				body = fmt.Sprintf(`{"status":"unavailable","failed":%q}`, name)
				break
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	logger := logging.WithComponent("admin")
	logger.Info().Str("addr", s.http.Addr).Msg("admin listener starting")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
