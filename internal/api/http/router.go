// Package http exposes the application over a JSON API and a public
// redirect endpoint, with identity carried in a signed session cookie.
package http

import (
	"context"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/go-playground/validator/v10"

	"github.com/Puzzlebottom/tinyapp/internal/auth"
	"github.com/Puzzlebottom/tinyapp/internal/models"
)

// AccountService defines the account operations the API depends on.
type AccountService interface {
	// Register creates a new account for the email/password pair.
	// It returns the created account or an error if the email is taken or invalid.
	Register(ctx context.Context, email, password string) (*models.Account, error)

	// Authenticate verifies the email/password pair and returns the matching account.
	Authenticate(ctx context.Context, email, password string) (*models.Account, error)
}

// URLService defines the link operations the API depends on.
type URLService interface {
	// Shorten creates a short code for targetURL owned by the session account.
	Shorten(ctx context.Context, sess auth.Session, targetURL string) (*models.URL, error)

	// URLsForAccount returns every link owned by the account, keyed by short code.
	URLsForAccount(ctx context.Context, accountID string) (map[string]*models.URL, error)

	// GetURL retrieves a single link with its visit statistics.
	GetURL(ctx context.Context, sess auth.Session, shortCode string) (*models.URL, error)

	// ModifyURL replaces the target address of a link.
	ModifyURL(ctx context.Context, sess auth.Session, shortCode, targetURL string) (*models.URL, error)

	// RemoveURL deletes a link.
	RemoveURL(ctx context.Context, sess auth.Session, shortCode string) error

	// FollowShortCode resolves a short code and records the visit.
	FollowShortCode(ctx context.Context, shortCode, visitorID string) (*models.URL, error)
}

// getValidate initializes a validator instance for incoming request payloads.
// Field names in validation errors match the JSON tags.
func getValidate() *validator.Validate {
	validate := validator.New()

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return validate
}

// NewRouter initializes and returns a new HTTP router with all routes and middleware configured.
func NewRouter(logger *httplog.Logger, tokens *auth.TokenManager, accountSvc AccountService, urlSvc URLService) http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*"},
		AllowedMethods:   []string{"POST", "GET", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Accept"},
		AllowCredentials: true,
		MaxAge:           84600,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(sessionMiddleware(tokens))

	r.Get("/u/{shortCode}", handleFollowShortCode(urlSvc, tokens))

	r.Route("/api/v1", func(r chi.Router) {
		validate := getValidate()

		r.Get("/ping", handlePing)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", handleRegister(accountSvc, tokens, validate))
			r.Post("/login", handleLogin(accountSvc, tokens, validate))
			r.Post("/logout", handleLogout(tokens))
		})

		r.Route("/urls", func(r chi.Router) {
			r.Post("/", handleShortenURL(urlSvc, validate))
			r.Get("/", handleListURLs(urlSvc))

			r.Route("/{shortCode}", func(r chi.Router) {
				r.Get("/", handleGetURL(urlSvc))
				r.Put("/", handleModifyURL(urlSvc, validate))
				r.Delete("/", handleRemoveURL(urlSvc))
			})
		})
	})

	return r
}
