// Package httpapi exposes the auth operations over HTTP. It is a thin layer:
// request decoding, bearer-token auth, and mapping service error kinds to
// status codes. All business rules live in the services it calls.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/dkotlyar/passfort/internal/logging"
	"github.com/dkotlyar/passfort/internal/server/flows"
	"github.com/dkotlyar/passfort/internal/server/metrics"
	"github.com/dkotlyar/passfort/internal/server/sessions"
	"github.com/dkotlyar/passfort/internal/server/users"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

type Server struct {
	address   string
	logger    logging.Logger
	users     *users.Service
	sessions  *sessions.Service
	flows     *flows.Service
	collector *metrics.Collector
	registry  *prometheus.Registry
	jwtSecret []byte
}

func NewServer(a string, l logging.Logger, us *users.Service, ss *sessions.Service, fs *flows.Service, secretKey string) *Server {
	registry := prometheus.NewRegistry()
	return &Server{
		address:   a,
		logger:    l.With("module", "http_server"),
		users:     us,
		sessions:  ss,
		flows:     fs,
		collector: metrics.NewCollector(registry),
		registry:  registry,
		jwtSecret: []byte(secretKey),
	}
}

// Router assembles the route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/ping", s.handlePing)
	r.Method(http.MethodGet, "/metrics", metrics.Handler(s.registry))

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)
		r.Post("/refresh", s.handleRefresh)
		r.Post("/logout", s.handleLogout)
		r.Post("/verify/confirm", s.handleConfirmVerification)
		r.Post("/reset/request", s.handleRequestReset)
		r.Post("/reset/confirm", s.handleCompleteReset)

		r.Group(func(r chi.Router) {
			r.Use(s.accessTokenMiddleware)
			r.Post("/verify/request", s.handleRequestVerification)
			r.Post("/password", s.handleChangePassword)
			r.Get("/whoami", s.handleWhoami)
		})
	})

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}
