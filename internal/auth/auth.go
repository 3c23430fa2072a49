// Package auth issues and verifies session tokens and gates the
// administrator role by a single fixed email identity.
package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/volunteerhub/volunteer-signup/internal/config"
	"github.com/volunteerhub/volunteer-signup/internal/model"
)

// Role is derived from a session on demand, never cached.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Session is the verified identity carried by a token.
type Session struct {
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Service checks credentials and signs session tokens (HS256 JWT).
type Service struct {
	cfg config.AuthConfig
	now func() time.Time
}

// NewService constructs an auth Service.
func NewService(cfg config.AuthConfig) *Service {
	return &Service{cfg: cfg, now: time.Now}
}

// SignIn verifies credentials and returns a signed session token.
// Unknown emails and wrong passwords both come back as ErrAuthFailure.
func (s *Service) SignIn(email, password string) (string, Session, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return "", Session{}, fmt.Errorf("%w: email and password are required", model.ErrAuthFailure)
	}

	expected, ok := s.passwordFor(email)
	if !ok || subtle.ConstantTimeCompare([]byte(expected), []byte(password)) != 1 {
		return "", Session{}, model.ErrAuthFailure
	}

	session := Session{Email: email, ExpiresAt: s.now().Add(s.cfg.SessionTTL)}
	claims := jwt.RegisteredClaims{
		Subject:   email,
		IssuedAt:  jwt.NewNumericDate(s.now()),
		ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", Session{}, fmt.Errorf("sign session token: %w", err)
	}
	return token, session, nil
}

func (s *Service) passwordFor(email string) (string, bool) {
	if email == strings.ToLower(s.cfg.AdminEmail) && s.cfg.AdminPassword != "" {
		return s.cfg.AdminPassword, true
	}
	pw, ok := s.cfg.Accounts[email]
	return pw, ok
}

// ParseSession verifies a token and returns its session.
func (s *Service) ParseSession(token string) (Session, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return Session{}, model.ErrAuthFailure
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return Session{}, model.ErrAuthFailure
	}
	session := Session{Email: claims.Subject}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}
	return session, nil
}

// Role derives the caller's role from the session alone. It is a pure
// function: the admin flag is recomputed on demand and never stored.
func (s *Service) Role(session Session) Role {
	if strings.EqualFold(session.Email, s.cfg.AdminEmail) {
		return RoleAdmin
	}
	return RoleUser
}

type contextKey struct{}

// SessionFromContext returns the verified session attached by middleware.
func SessionFromContext(ctx context.Context) (Session, bool) {
	session, ok := ctx.Value(contextKey{}).(Session)
	return session, ok
}

// RequireAdmin rejects requests without a valid admin session: 401 for a
// missing or invalid token, 403 for a valid session with the wrong role.
// Clients treat either as a forced sign-out.
func (s *Service) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			unauthorized(w, http.StatusUnauthorized, "authentication required")
			return
		}
		session, err := s.ParseSession(token)
		if err != nil {
			unauthorized(w, http.StatusUnauthorized, "invalid or expired session")
			return
		}
		if s.Role(session) != RoleAdmin {
			unauthorized(w, http.StatusForbidden, "administrator account required")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), contextKey{}, session)))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return header[len(prefix):]
	}
	return ""
}

func unauthorized(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprintf(w, `{"error":%q}`+"\n", msg)
}
