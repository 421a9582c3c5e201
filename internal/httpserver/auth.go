package httpserver

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// signSessionToken creates an HS256 JWT bound to a session id.
func (s *Server) signSessionToken(sessionID string) (string, time.Time, error) {
	exp := time.Now().Add(s.opts.SessionTTL)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid": sessionID,
		"exp": exp.Unix(),
		"iat": time.Now().Unix(),
	})
	ss, err := t.SignedString([]byte(s.opts.SessionSecret))
	return ss, exp, err
}

// parseSessionToken validates a token and returns its session id.
func (s *Server) parseSessionToken(tok string) (string, error) {
	claims := jwt.MapClaims{}
	t, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.opts.SessionSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !t.Valid {
		return "", errors.New("invalid token")
	}
	sid, _ := claims["sid"].(string)
	if sid == "" {
		return "", errors.New("invalid token")
	}
	return sid, nil
}

// requireSessionToken enforces a valid token whose session id matches the
// {id} URL parameter.
func (s *Server) requireSessionToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := bearer(r)
		if tok == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		sid, err := s.parseSessionToken(tok)
		if err != nil || sid != chi.URLParam(r, "id") {
			writeError(w, http.StatusUnauthorized, "invalid_token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireSimulateKey checks the X-Simulate-Key header against the configured
// bcrypt hash. Without a hash the endpoint is disabled.
func (s *Server) requireSimulateKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.opts.SimulateKeyHash == "" {
			writeError(w, http.StatusForbidden, "simulate_disabled")
			return
		}
		key := r.Header.Get("X-Simulate-Key")
		if key == "" || !checkKey(s.opts.SimulateKeyHash, key) {
			writeError(w, http.StatusUnauthorized, "invalid_key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkKey is a bcrypt verifier.
func checkKey(hash, key string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)) == nil
}

// HashKey produces the bcrypt hash expected in SIMULATE_KEY_HASH.
func HashKey(key string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	return string(b), err
}

// bearer extracts a bearer token from the Authorization header.
func bearer(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	return ""
}
