package api

import (
	"context"
	"net/http"
	"time"

	"randpredict/auth"
	"randpredict/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
)

// Server is the HTTP front of the game
type Server struct {
	router chi.Router
	server *http.Server
}

// NewServer builds the router and an http.Server listening on addr
func NewServer(addr string, handler *Handler, authenticator *auth.Authenticator, m *metrics.Metrics) *Server {
	router := NewRouter(handler, authenticator, m)
	return &Server{
		router: router,
		server: &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 20 * time.Second, // Random.org calls may take up to 15s
			IdleTimeout:  120 * time.Second,
		},
	}
}

// NewRouter wires every endpoint. authenticator and m may be nil.
func NewRouter(handler *Handler, authenticator *auth.Authenticator, m *metrics.Metrics) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(m))
	if authenticator != nil {
		r.Use(authenticator.Middleware)
	}

	r.Get("/healthz", handler.Healthz)
	if m != nil {
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/leaderboard", handler.Leaderboard)
		r.Post("/game-run", handler.RecordGameRun)
		r.Get("/global-analytics", handler.GlobalAnalytics)
		r.Get("/user-analytics", handler.UserAnalytics)
		r.Post("/random", handler.Random)

		r.Route("/auth", func(r chi.Router) {
			r.Get("/session", handler.Session)
			r.Post("/check-legacy-email", handler.CheckLegacyEmail)
			r.Get("/migration-status", handler.MigrationStatus)
			r.Post("/migrate-account", handler.MigrateAccount)
		})
	})

	return r
}

// Handler returns the router
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until Shutdown is called
func (s *Server) Run() error {
	log.WithField("addr", s.server.Addr).Info("HTTP server listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	s.server.SetKeepAlivesEnabled(false)
	return s.server.Shutdown(ctx)
}

// requestLogger logs each request and records it under its route pattern
func requestLogger(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			elapsed := time.Since(start)

			if m != nil {
				m.ObserveRequest(r.Method, route, status, elapsed)
			}

			entry := log.WithFields(log.Fields{
				"method":   r.Method,
				"route":    route,
				"status":   status,
				"duration": elapsed.String(),
				"remote":   r.RemoteAddr,
			})
			if status >= http.StatusInternalServerError {
				entry.Warn("Request served")
			} else {
				entry.Debug("Request served")
			}
		})
	}
}
