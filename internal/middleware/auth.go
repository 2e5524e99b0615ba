package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"mediastream/internal/logging"
	"mediastream/internal/metrics"

	"golang.org/x/crypto/bcrypt"
)

// Authenticator verifies a username and password.
type Authenticator interface {
	Authenticate(username, password string) bool
}

// BcryptAuthenticator accepts a single user whose password matches a bcrypt
// hash.
type BcryptAuthenticator struct {
	Username     string
	PasswordHash []byte
}

// NewBcryptAuthenticator validates hash and returns an Authenticator for
// username.
func NewBcryptAuthenticator(username, hash string) (*BcryptAuthenticator, error) {
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return nil, err
	}
	return &BcryptAuthenticator{Username: username, PasswordHash: []byte(hash)}, nil
}

// Authenticate compares the username in constant time and the password
// against the bcrypt hash.
func (a *BcryptAuthenticator) Authenticate(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.Username)) == 1
	passErr := bcrypt.CompareHashAndPassword(a.PasswordHash, []byte(password))
	return userOK && passErr == nil
}

// AuthConfig configures the BasicAuth middleware.
type AuthConfig struct {
	Realm string
	// SkipPaths are exact paths served without credentials
	SkipPaths []string
}

// DefaultAuthConfig leaves health probes open.
func DefaultAuthConfig() AuthConfig {
	return AuthConfig{
		Realm:     "mediastream",
		SkipPaths: []string{"/health", "/healthz", "/livez", "/readyz", "/version"},
	}
}

// BasicAuth gates every request behind HTTP basic authentication. A nil
// Authenticator disables the gate.
func BasicAuth(auth Authenticator, config AuthConfig) func(http.Handler) http.Handler {
	skip := make(map[string]bool, len(config.SkipPaths))
	for _, p := range config.SkipPaths {
		skip[p] = true
	}
	challenge := `Basic realm="` + strings.ReplaceAll(config.Realm, `"`, "") + `", charset="UTF-8"`

	return func(next http.Handler) http.Handler {
		if auth == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skip[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			username, password, ok := r.BasicAuth()
			if !ok {
				metrics.AuthAttemptsTotal.WithLabelValues("missing").Inc()
				unauthorized(w, challenge)
				return
			}

			if !auth.Authenticate(username, password) {
				metrics.AuthAttemptsTotal.WithLabelValues("failure").Inc()
				logging.Warn("Failed authentication for user %q from %s", sanitizeLogField(username), sanitizeLogField(getClientIP(r)))
				unauthorized(w, challenge)
				return
			}

			metrics.AuthAttemptsTotal.WithLabelValues("success").Inc()
			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter, challenge string) {
	w.Header().Set("WWW-Authenticate", challenge)
	http.Error(w, "Unauthorized", http.StatusUnauthorized)
}
