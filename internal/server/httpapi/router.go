package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/profilekeeper/internal/logging"
	"github.com/dmitrijs2005/profilekeeper/internal/server/metrics"
	"github.com/dmitrijs2005/profilekeeper/internal/server/models"
	"github.com/dmitrijs2005/profilekeeper/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// AccountService is the business layer behind the routes.
type AccountService interface {
	Signup(ctx context.Context, username, email, password string, remember bool) (*services.AuthResult, error)
	Login(ctx context.Context, username, password string, remember bool) (*services.AuthResult, error)
	UpdatePassword(ctx context.Context, userID, oldPassword, newPassword string) (*models.PublicUser, error)
	UpdateAvatar(ctx context.Context, userID string, data []byte, contentType string) (*models.PublicUser, error)
	GetAvatar(ctx context.Context, userID string) ([]byte, string, error)
	DeleteUser(ctx context.Context, userID, password string) (*models.PublicUser, error)
	Authorize(ctx context.Context, userID string) (*models.PublicUser, error)
}

// TokenVerifier resolves a bearer token to an account id.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// Pinger reports database reachability for /readyz.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Options tunes the router.
type Options struct {
	MaxUploadBytes     int64
	CORSAllowedOrigins []string
}

const maxJSONBodyBytes = 1 << 20

// API holds the dependencies of the HTTP handlers.
type API struct {
	users  AccountService
	tokens TokenVerifier
	db     Pinger
	logger logging.Logger
	opts   Options
}

func NewAPI(users AccountService, tokens TokenVerifier, db Pinger, l logging.Logger, opts Options) *API {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 5 << 20
	}
	if len(opts.CORSAllowedOrigins) == 0 {
		opts.CORSAllowedOrigins = []string{"*"}
	}
	return &API{users: users, tokens: tokens, db: db, logger: l.With("module", "http_api"), opts: opts}
}

// Routes builds the chi router with the full middleware chain.
func (a *API) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(a.requestLogger)
	r.Use(metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: a.opts.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
		MaxAge:         300,
	}))
	r.Use(middleware.Recoverer)

	r.NotFound(a.handleNoRoute)
	r.MethodNotAllowed(a.handleNoRoute)

	r.Get("/healthz", a.handleHealthz)
	r.Get("/readyz", a.handleReadyz)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/user", func(r chi.Router) {
		r.Post("/signup", a.handleSignup)
		r.Post("/login", a.handleLogin)
		r.Get("/avatar/{id}", a.handleGetAvatar)

		r.Group(func(r chi.Router) {
			r.Use(a.requireToken)
			r.Get("/authorize", a.handleAuthorize)
			r.Patch("/avatar", a.handleUpdateAvatar)
			r.Patch("/update", a.handleUpdatePassword)
			r.Delete("/delete", a.handleDeleteUser)
		})
	})

	return r
}

func (a *API) handleNoRoute(w http.ResponseWriter, r *http.Request) {
	a.respondError(w, r, http.StatusNotFound, MsgNoSuchRoute)
}

func (a *API) handleHealthz(w http.ResponseWriter, r *http.Request) {
	a.respondJSON(w, r, http.StatusOK, healthResponse{Status: "ok"})
}

func (a *API) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := a.db.PingContext(ctx); err != nil {
		a.logger.Error(ctx, "Readiness check failed", "error", err)
		a.respondJSON(w, r, http.StatusServiceUnavailable, healthResponse{
			Status:  "unavailable",
			Message: "database connection failed",
		})
		return
	}

	a.respondJSON(w, r, http.StatusOK, healthResponse{Status: "ok"})
}
