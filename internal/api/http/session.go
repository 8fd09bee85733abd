package http

import (
	"context"
	"net/http"

	"github.com/go-chi/httplog/v2"

	"github.com/Puzzlebottom/tinyapp/internal/auth"
)

// sessionCookieName is the cookie carrying the signed session token.
const sessionCookieName = "tinyapp_session"

type sessionCtxKey struct{}

// sessionMiddleware parses the session cookie into an auth.Session and
// stores it in the request context. A missing, expired or tampered cookie
// yields an anonymous session rather than an error.
func sessionMiddleware(tokens *auth.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var sess auth.Session

			if cookie, err := r.Cookie(sessionCookieName); err == nil {
				sess, _ = tokens.Parse(cookie.Value)
			}

			ctx := context.WithValue(r.Context(), sessionCtxKey{}, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// sessionFromContext returns the session attached by sessionMiddleware.
// Requests that never passed through the middleware get an anonymous session.
func sessionFromContext(ctx context.Context) auth.Session {
	sess, _ := ctx.Value(sessionCtxKey{}).(auth.Session)
	return sess
}

// setSessionCookie signs sess and sends it back as the session cookie.
func setSessionCookie(w http.ResponseWriter, r *http.Request, tokens *auth.TokenManager, sess auth.Session) {
	const op = "api.http.setSessionCookie"

	token, err := tokens.Issue(sess)
	if err != nil {
		httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
