package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/Puzzlebottom/tinyapp/internal/auth"
	"github.com/Puzzlebottom/tinyapp/internal/models"
	"github.com/Puzzlebottom/tinyapp/internal/service"
	"github.com/Puzzlebottom/tinyapp/internal/storage"
	"github.com/Puzzlebottom/tinyapp/pkg/response"
)

// handlePing handles health check requests to ensure the server is running.
func handlePing(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "pong")
}

// credentialsRequest represents the request payload for registration and login.
type credentialsRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// accountResponse represents the response payload for account operations.
type accountResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func toAccountResponse(account *models.Account) accountResponse {
	return accountResponse{
		ID:        account.ID,
		Email:     account.Email,
		CreatedAt: account.CreatedAt,
	}
}

// urlRequest represents the request payload for creating or updating a shortened URL.
type urlRequest struct {
	URL string `json:"url" validate:"required,url"`
}

// visitResponse represents a single entry of a link's visit log.
type visitResponse struct {
	VisitorID string    `json:"visitor_id"`
	VisitedAt time.Time `json:"visited_at"`
}

// urlResponse represents the response payload for a shortened URL operation.
type urlResponse struct {
	ShortCode      string          `json:"short_code"`
	URL            string          `json:"url"`
	TotalVisits    int64           `json:"total_visits"`
	UniqueVisitors int64           `json:"unique_visitors"`
	Visits         []visitResponse `json:"visits,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func toURLResponse(url *models.URL) urlResponse {
	resp := urlResponse{
		ShortCode:      url.ShortCode,
		URL:            url.TargetURL,
		TotalVisits:    url.TotalVisits,
		UniqueVisitors: url.UniqueVisitors,
		CreatedAt:      url.CreatedAt,
		UpdatedAt:      url.UpdatedAt,
	}

	for _, visit := range url.VisitLog {
		resp.Visits = append(resp.Visits, visitResponse{
			VisitorID: visit.VisitorID,
			VisitedAt: visit.VisitedAt,
		})
	}

	return resp
}

// decodeAndValidate decodes the request body into req and validates it,
// rendering the error response itself when either step fails.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, validate *validator.Validate, req any) bool {
	if err := render.DecodeJSON(r.Body, req); err != nil {
		if errors.Is(err, io.EOF) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.EmptyRequestBodyResponse)
			return false
		}

		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.BadRequestResponse)
		return false
	}

	if err := validate.Struct(req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ValidationErrorResponse(err))
		return false
	}

	return true
}

// handleRegister handles POST requests to create a new account.
//
// The request must contain a well-formed email and a non-empty password.
// On success the response carries a session cookie logged in as the new account.
func handleRegister(svc AccountService, tokens *auth.TokenManager, validate *validator.Validate) http.HandlerFunc {
	const op = "api.http.handleRegister"
	const successMsg = "The account has been registered successfully."

	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialsRequest

		if !decodeAndValidate(w, r, validate, &req) {
			return
		}

		account, err := svc.Register(r.Context(), req.Email, req.Password)
		if err != nil {
			if errors.Is(err, storage.ErrAccountExists) {
				render.Status(r, http.StatusConflict)
				render.JSON(w, r, response.AccountExistsResponse)
				return
			}

			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		sess := sessionFromContext(r.Context()).WithVisitor().WithAccount(account.ID)
		setSessionCookie(w, r, tokens, sess)

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, response.SuccessResponse(successMsg, toAccountResponse(account)))
	}
}

// handleLogin handles POST requests to authenticate an account.
//
// An unknown email and a wrong password both produce the same 401 response.
func handleLogin(svc AccountService, tokens *auth.TokenManager, validate *validator.Validate) http.HandlerFunc {
	const op = "api.http.handleLogin"
	const successMsg = "Logged in successfully."

	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialsRequest

		if !decodeAndValidate(w, r, validate, &req) {
			return
		}

		account, err := svc.Authenticate(r.Context(), req.Email, req.Password)
		if err != nil {
			if errors.Is(err, service.ErrInvalidCredentials) || errors.Is(err, service.ErrInvalidEmail) {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.InvalidCredentialsResponse)
				return
			}

			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		sess := sessionFromContext(r.Context()).WithVisitor().WithAccount(account.ID)
		setSessionCookie(w, r, tokens, sess)

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.SuccessResponse(successMsg, toAccountResponse(account)))
	}
}

// handleLogout handles POST requests to end the authenticated session.
//
// The visitor token survives logout so visit history stays attached to the browser.
func handleLogout(tokens *auth.TokenManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFromContext(r.Context()).WithoutAccount()
		setSessionCookie(w, r, tokens, sess)

		render.NoContent(w, r)
	}
}

// handleShortenURL handles POST requests to shorten a URL.
//
// The caller must be logged in. The handler validates the input, calls the URL
// shortening service, and returns the generated short code with relevant metadata.
func handleShortenURL(svc URLService, validate *validator.Validate) http.HandlerFunc {
	const op = "api.http.handleShortenURL"
	const successMsg = "The URL has been shortened successfully."

	return func(w http.ResponseWriter, r *http.Request) {
		var req urlRequest

		if !decodeAndValidate(w, r, validate, &req) {
			return
		}

		sess := sessionFromContext(r.Context())

		url, err := svc.Shorten(r.Context(), sess, req.URL)
		if err != nil {
			if errors.Is(err, service.ErrUnauthorized) {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.AuthenticationRequiredResponse)
				return
			}

			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, response.SuccessResponse(successMsg, toURLResponse(url)))
	}
}

// handleListURLs handles GET requests to list the links owned by the session account.
func handleListURLs(svc URLService) http.HandlerFunc {
	const op = "api.http.handleListURLs"
	const successMsg = "The URLs were successfully retrieved."

	return func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFromContext(r.Context())

		if !sess.IsAuthenticated() {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, response.AuthenticationRequiredResponse)
			return
		}

		urls, err := svc.URLsForAccount(r.Context(), sess.AccountID)
		if err != nil {
			if errors.Is(err, storage.ErrAccountNotFound) {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.AuthenticationRequiredResponse)
				return
			}

			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		data := make(map[string]urlResponse, len(urls))
		for shortCode, url := range urls {
			data[shortCode] = toURLResponse(url)
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.SuccessResponse(successMsg, data))
	}
}

// renderURLError maps link operation failures onto API responses. Unexpected
// errors are logged under op and reported as server errors.
func renderURLError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, service.ErrNotOwned):
		render.Status(r, http.StatusForbidden)
		render.JSON(w, r, response.LinkNotOwnedResponse)
	case errors.Is(err, service.ErrUnauthorized):
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.AuthenticationRequiredResponse)
	case errors.Is(err, storage.ErrURLNotFound):
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.ResourceNotFoundResponse)
	default:
		httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.ServerErrorResponse)
	}
}

// handleGetURL handles GET requests to retrieve a single link with its visit statistics.
//
// The caller must be logged in and own the link.
func handleGetURL(svc URLService) http.HandlerFunc {
	const op = "api.http.handleGetURL"
	const successMsg = "The URL was successfully retrieved."

	return func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFromContext(r.Context())
		shortCode := chi.URLParam(r, "shortCode")

		url, err := svc.GetURL(r.Context(), sess, shortCode)
		if err != nil {
			renderURLError(w, r, op, err)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.SuccessResponse(successMsg, toURLResponse(url)))
	}
}

// handleModifyURL handles PUT requests to modify an existing URL.
//
// The request must contain a valid new URL and the caller must own the link.
func handleModifyURL(svc URLService, validate *validator.Validate) http.HandlerFunc {
	const op = "api.http.handleModifyURL"
	const successMsg = "The URL was successfully modified."

	return func(w http.ResponseWriter, r *http.Request) {
		var req urlRequest

		if !decodeAndValidate(w, r, validate, &req) {
			return
		}

		sess := sessionFromContext(r.Context())
		shortCode := chi.URLParam(r, "shortCode")

		url, err := svc.ModifyURL(r.Context(), sess, shortCode, req.URL)
		if err != nil {
			renderURLError(w, r, op, err)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.SuccessResponse(successMsg, toURLResponse(url)))
	}
}

// handleRemoveURL handles DELETE requests to remove a link.
//
// The caller must be logged in and own the link.
func handleRemoveURL(svc URLService) http.HandlerFunc {
	const op = "api.http.handleRemoveURL"
	const successMsg = "The URL was successfully removed."

	return func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFromContext(r.Context())
		shortCode := chi.URLParam(r, "shortCode")

		if err := svc.RemoveURL(r.Context(), sess, shortCode); err != nil {
			renderURLError(w, r, op, err)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.SuccessResponse(successMsg))
	}
}

// handleFollowShortCode handles public GET requests to follow a short link.
//
// Anonymous callers get a visitor token on first use so repeat visits count
// as one unique visitor. On success the response redirects to the target URL.
func handleFollowShortCode(svc URLService, tokens *auth.TokenManager) http.HandlerFunc {
	const op = "api.http.handleFollowShortCode"

	return func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFromContext(r.Context()).WithVisitor()
		setSessionCookie(w, r, tokens, sess)

		shortCode := chi.URLParam(r, "shortCode")

		url, err := svc.FollowShortCode(r.Context(), shortCode, sess.VisitorID)
		if err != nil {
			if errors.Is(err, storage.ErrURLNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.ResourceNotFoundResponse)
				return
			}

			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		http.Redirect(w, r, url.TargetURL, http.StatusFound)
	}
}
