// Package server wires the HTTP surface: routing, auth middleware, request
// metrics, and the JSON error envelope.
package server

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"franchisehub-api/internal/common/config"
	"franchisehub-api/internal/common/logger"
	"franchisehub-api/internal/common/observability"
	"franchisehub-api/internal/models"
	"franchisehub-api/internal/services/auth"
	"franchisehub-api/internal/services/registration"
	"franchisehub-api/internal/services/review"
	"franchisehub-api/internal/services/search"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

// RegistrationService is the business listing surface the router needs.
type RegistrationService interface {
	Execute(ctx context.Context, input *registration.Input) (*registration.Output, error)
	ListBusinesses(ctx context.Context) ([]models.Business, error)
}

// ReviewService is the admin decision surface.
type ReviewService interface {
	ListPending(ctx context.Context) ([]models.PendingNotification, error)
	Approve(ctx context.Context, notificationID string) (*review.DecisionOutput, error)
	Reject(ctx context.Context, notificationID string) (*review.DecisionOutput, error)
}

// AuthService covers account management and token validation.
type AuthService interface {
	Register(ctx context.Context, input *auth.RegisterInput) (*models.User, error)
	Login(ctx context.Context, input *auth.LoginInput) (*auth.LoginOutput, error)
	Logout(ctx context.Context, claims *auth.Claims) error
	IsRevoked(ctx context.Context, tokenID string) bool
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, input *auth.ResetInput) error
	Tokens() *auth.TokenManager
}

// SearchService is the directory search surface. Nil disables the endpoint.
type SearchService interface {
	Search(ctx context.Context, keywords, industry string) ([]search.Hit, error)
}

type Server struct {
	httpServer *http.Server

	registration RegistrationService
	review       ReviewService
	auth         AuthService
	search       SearchService

	db    *sql.DB
	redis *redis.Client
	obs   *observability.Observability

	uploadsDir     string
	uploadsPath    string
	maxUploadBytes int64

	logger logger.Logger
}

type Deps struct {
	Registration  RegistrationService
	Review        ReviewService
	Auth          AuthService
	Search        SearchService
	DB            *sql.DB
	Redis         *redis.Client
	Observability *observability.Observability
	Logger        logger.Logger
}

func New(cfg *config.Config, deps Deps) *Server {
	s := &Server{
		registration:   deps.Registration,
		review:         deps.Review,
		auth:           deps.Auth,
		search:         deps.Search,
		db:             deps.DB,
		redis:          deps.Redis,
		obs:            deps.Observability,
		uploadsDir:     cfg.Uploads.Directory,
		uploadsPath:    cfg.Uploads.PublicPath,
		maxUploadBytes: int64(cfg.Uploads.MaxSizeMB) << 20,
		logger:         deps.Logger.WithFields(map[string]interface{}{"component": "server"}),
	}

	s.httpServer = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      s.routes(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/businesses", s.instrument("register_business", s.handleRegisterBusiness))
	mux.HandleFunc("GET /api/businesses", s.instrument("list_businesses", s.handleListBusinesses))
	mux.HandleFunc("GET /api/businesses/search", s.instrument("search_businesses", s.requireAdmin(s.handleSearchBusinesses)))

	mux.HandleFunc("GET /api/notifications", s.instrument("list_notifications", s.requireAdmin(s.handleListNotifications)))
	mux.HandleFunc("POST /api/notifications/{id}/approve", s.instrument("approve", s.requireAdmin(s.handleApprove)))
	mux.HandleFunc("POST /api/notifications/{id}/reject", s.instrument("reject", s.requireAdmin(s.handleReject)))

	mux.HandleFunc("POST /api/auth/register", s.instrument("auth_register", s.handleRegisterUser))
	mux.HandleFunc("POST /api/auth/login", s.instrument("auth_login", s.handleLogin))
	mux.HandleFunc("POST /api/auth/logout", s.instrument("auth_logout", s.requireAuth(s.handleLogout)))
	mux.HandleFunc("POST /api/auth/forgot-password", s.instrument("auth_forgot", s.handleForgotPassword))
	mux.HandleFunc("POST /api/auth/reset-password", s.instrument("auth_reset", s.handleResetPassword))

	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)
	mux.Handle("GET /metrics", promhttp.Handler())

	if s.uploadsDir != "" && s.uploadsPath != "" {
		prefix := s.uploadsPath
		if prefix[len(prefix)-1] != '/' {
			prefix += "/"
		}
		mux.Handle("GET "+prefix, http.StripPrefix(prefix, http.FileServer(http.Dir(s.uploadsDir))))
	}

	return mux
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReadyz reports readiness based on the stores the workflow depends on.
// Elasticsearch is deliberately excluded; the core workflow runs without it.
func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if s.db != nil {
		if err := s.db.PingContext(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
				"reason": "postgres",
			})
			return
		}
	}
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
				"reason": "redis",
			})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// Start blocks on the listener until Shutdown or a fatal accept error.
func (s *Server) Start() error {
	s.logger.Info("http server listening", map[string]interface{}{
		"addr": s.httpServer.Addr,
	})
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the routed mux, used by tests to drive requests without a
// listener.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
