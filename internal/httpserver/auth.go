// internal/httpserver/auth.go
//
// Session tokens.
// A board is private to whoever created it: POST /sessions hands back an
// HS256 JWT whose "sid" claim names the session, both in the body and as an
// HttpOnly cookie. Every /sessions/{id} route requires that token.

package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/hlog"
)

var errTokenMismatch = errors.New("token does not match session")

// signToken creates an HS256 JWT for session id.
func (s *Server) signToken(id string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(s.opts.TokenTTL)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid": id,
		"exp": exp.Unix(),
		"iat": now.Unix(),
	})
	ss, err := t.SignedString([]byte(s.opts.JWTSecret))
	return ss, exp, err
}

// parseToken validates tokenStr and returns its session ID.
func (s *Server) parseToken(tokenStr string) (string, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.opts.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", jwt.ErrTokenInvalidClaims
	}
	sid, _ := claims["sid"].(string)
	if sid == "" {
		return "", jwt.ErrTokenInvalidClaims
	}
	return sid, nil
}

// setSessionCookie writes the token cookie with appropriate security attributes.
func (s *Server) setSessionCookie(w http.ResponseWriter, token string, exp time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.opts.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.opts.Secure,
		SameSite: s.sameSite(),
		Expires:  exp,
	})
}

// clearSessionCookie deletes the token cookie.
func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.opts.CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.opts.Secure,
		SameSite: s.sameSite(),
		MaxAge:   -1,
	})
}

func (s *Server) sameSite() http.SameSite {
	if s.opts.Secure {
		return http.SameSiteNoneMode // required for third-party contexts when Secure
	}
	return http.SameSiteLaxMode
}

// bearerOrCookie extracts a bearer token from the Authorization header or the session cookie.
func (s *Server) bearerOrCookie(r *http.Request) string {
	// Authorization: Bearer <token>
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(s.opts.CookieName); err == nil {
		return c.Value
	}
	return ""
}

// ctxSessionKey is the context key type for the authorized session ID.
type ctxSessionKey struct{}

// requireSession enforces a valid token whose sid matches the {id} URL parameter.
func (s *Server) requireSession() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := s.bearerOrCookie(r)
			if tokenStr == "" {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			sid, err := s.parseToken(tokenStr)
			if err == nil && sid != chi.URLParam(r, "id") {
				err = errTokenMismatch
			}
			if err != nil {
				hlog.FromRequest(r).Debug().Err(err).Msg("rejected session token")
				writeError(w, http.StatusUnauthorized, "Invalid token")
				return
			}
			ctx := context.WithValue(r.Context(), ctxSessionKey{}, sid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// sessionID returns the authorized session ID placed by requireSession.
func sessionID(r *http.Request) string {
	id, _ := r.Context().Value(ctxSessionKey{}).(string)
	return id
}
