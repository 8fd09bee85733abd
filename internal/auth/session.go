package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// Session is the identity attached to a single request: at most one
// authenticated account and one anonymous visitor token. The zero value
// is a fully anonymous session.
type Session struct {
	AccountID string
	VisitorID string
}

// IsAuthenticated reports whether the session carries an account identity.
func (s Session) IsAuthenticated() bool {
	return s.AccountID != ""
}

// WithAccount returns the session authenticated as the given account.
func (s Session) WithAccount(accountID string) Session {
	s.AccountID = accountID
	return s
}

// WithoutAccount returns the session with the account identity cleared.
// The visitor token survives logout.
func (s Session) WithoutAccount() Session {
	s.AccountID = ""
	return s
}

// WithVisitor returns the session with a visitor token assigned,
// generating a fresh one only if the session has none yet.
func (s Session) WithVisitor() Session {
	if s.VisitorID == "" {
		s.VisitorID = uuid.NewString()
	}
	return s
}

// ErrInvalidToken is returned when a session token cannot be parsed or verified.
var ErrInvalidToken = errors.New("invalid session token")

type sessionClaims struct {
	jwt.RegisteredClaims
	AccountID string `json:"account_id,omitempty"`
	VisitorID string `json:"visitor_id,omitempty"`
}

// TokenManager signs sessions into cookie values and parses them back.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager creates a TokenManager with the given signing secret
// and token lifetime.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Issue signs the session into a compact token string.
func (m *TokenManager) Issue(sess Session) (string, error) {
	const op = "auth.TokenManager.Issue"

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		AccountID: sess.AccountID,
		VisitorID: sess.VisitorID,
	})

	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("%s: failed to sign token: %w", op, err)
	}

	return signed, nil
}

// Parse verifies tokenString and returns the session it carries.
func (m *TokenManager) Parse(tokenString string) (Session, error) {
	const op = "auth.TokenManager.Parse"

	claims := &sessionClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return Session{}, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	return Session{
		AccountID: claims.AccountID,
		VisitorID: claims.VisitorID,
	}, nil
}
