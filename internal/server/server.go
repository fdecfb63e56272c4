package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/hongminglow/holonet-be/internal/auth"
	"github.com/hongminglow/holonet-be/internal/config"
	"github.com/hongminglow/holonet-be/internal/http/handlers"
	"github.com/hongminglow/holonet-be/internal/middleware"
	"github.com/hongminglow/holonet-be/internal/observability"
	"github.com/hongminglow/holonet-be/internal/storage"
)

// Deps are the long-lived collaborators owned by main.
type Deps struct {
	Users   storage.UserStore
	Films   storage.FilmStore
	DB      handlers.Pinger
	Logger  *slog.Logger
	Metrics *observability.Metrics
}

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, deps Deps) (*Server, error) {
	tokens, err := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer)
	if err != nil {
		return nil, err
	}
	passwords := auth.NewPasswordHasher(cfg.BcryptCost)
	authn, err := auth.NewAuthenticator(deps.Users, tokens, passwords)
	if err != nil {
		return nil, err
	}

	handler := NewHandler(cfg, deps, authn, passwords)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{inner: httpServer}, nil
}

// NewHandler builds the routed handler tree. Every non-public route is
// wrapped in the auth guard with its declared requirement.
func NewHandler(cfg config.Config, deps Deps, authn *auth.Authenticator, passwords *auth.PasswordHasher) http.Handler {
	router := mux.NewRouter()
	router.Use(middleware.RouteLabel)

	guard := middleware.NewAuthGuard(authn, deps.Logger, deps.Metrics)

	var routes []handlers.Route
	routes = append(routes, handlers.NewHealthHandler(time.Now(), deps.DB).Routes()...)
	routes = append(routes, handlers.NewAuthHandler(authn, deps.Logger, deps.Metrics).Routes()...)
	routes = append(routes, handlers.NewUsersHandler(deps.Users, passwords, deps.Logger).Routes()...)
	routes = append(routes, handlers.NewFilmsHandler(deps.Films, deps.Logger).Routes()...)

	for _, route := range routes {
		var h http.Handler = route.Handler
		if !route.Public {
			h = guard.Require(route.Name(), route.Requires)(h)
		}
		router.Handle(route.Path, h).Methods(route.Method)
	}
	if deps.Metrics != nil {
		router.Handle("/metrics", deps.Metrics.Handler()).Methods(http.MethodGet)
	}

	return middleware.Logging(deps.Logger, deps.Metrics)(middleware.CORS(cfg.CORSOrigins, router))
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.inner.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}
