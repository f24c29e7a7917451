package middleware

import (
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jobstack/job-board/internal/token"
	"github.com/rs/zerolog"
)

func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Logger()
		logger.Info().
			Str("Host", r.Host).
			Str("method", r.Method).
			Stringer("url", r.URL).
			Str("x-forwarded-for", r.Header.Get("x-forwarded-for")).
			Msg("req")
		next.ServeHTTP(w, r)
	})
}

func HeadersMiddleware(next http.Handler, env string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if env != "dev" {
			w.Header().Set("X-Frame-Options", "deny")
			w.Header().Set("X-XSS-Protection", "1; mode=block")
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			w.Header().Set("Referrer-Policy", "origin")
		}
		next.ServeHTTP(w, r)
	})
}

func UserAuthenticatedMiddleware(jwtKey []byte, next http.HandlerFunc) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := GetUserFromJWT(r, jwtKey)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"detail": "Authentication required"}`))
			return
		}
		if claims.UserID == "" || claims.Email == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"detail": "Authentication required"}`))
			return
		}
		next(w, r)
	})
}

func AdminAuthenticatedMiddleware(jwtKey []byte, next http.HandlerFunc) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := GetUserFromJWT(r, jwtKey)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"detail": "Authentication required"}`))
			return
		}
		if !claims.IsAdmin {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"detail": "Admin access required"}`))
			return
		}
		next(w, r)
	})
}

// GetUserFromJWT extracts and verifies the bearer access token.
func GetUserFromJWT(r *http.Request, jwtKey []byte) (*token.UserJWT, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, errors.New("could not find authorization header")
	}
	raw := strings.TrimPrefix(authHeader, "Bearer ")
	if raw == authHeader || raw == "" {
		return nil, errors.New("authorization header is not a bearer token")
	}
	return token.ParseAccessToken(jwtKey, raw)
}

// IsSignedOn reports whether the request carries a valid access token.
func IsSignedOn(r *http.Request, jwtKey []byte) bool {
	_, err := GetUserFromJWT(r, jwtKey)
	return err == nil
}
