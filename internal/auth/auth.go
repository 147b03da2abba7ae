package auth

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
)

// ErrUnauthorized is returned by a Verifier when a request carries no valid credentials.
var ErrUnauthorized = errors.New("unauthorized")

// Authenticator attaches credentials to an outgoing request.
type Authenticator interface {
	Authenticate(*http.Request) error
}

// Verifier checks the credentials of an incoming request.
type Verifier interface {
	Verify(*http.Request) error
}

// No authentication
type NoneAuth struct{}

func (a *NoneAuth) Authenticate(r *http.Request) error {
	return nil
}

func (a *NoneAuth) Verify(r *http.Request) error {
	return nil
}

// HTTP Basic Auth
type BasicAuth struct {
	Username string
	Password string
}

func (a *BasicAuth) Authenticate(r *http.Request) error {
	r.SetBasicAuth(a.Username, a.Password)
	return nil
}

func (a *BasicAuth) Verify(r *http.Request) error {
	user, pass, ok := r.BasicAuth()
	if !ok || !equal(user, a.Username) || !equal(pass, a.Password) {
		return ErrUnauthorized
	}
	return nil
}

// Token-based auth
type TokenAuth struct {
	Token string
}

func (a *TokenAuth) Authenticate(r *http.Request) error {
	r.Header.Set("Authorization", "Bearer "+a.Token)
	return nil
}

func (a *TokenAuth) Verify(r *http.Request) error {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || a.Token == "" || !equal(token, a.Token) {
		return ErrUnauthorized
	}
	return nil
}

// FromToken returns TokenAuth for a non-empty token and NoneAuth otherwise.
func FromToken(token string) interface {
	Authenticator
	Verifier
} {
	if token == "" {
		return &NoneAuth{}
	}
	return &TokenAuth{Token: token}
}

func equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
