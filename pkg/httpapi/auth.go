package httpapi

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/harun/rentdesk/pkg/aitools"
)

// Identity headers set by the trusted upstream that authenticated the user.
const (
	HeaderUserID    = "X-User-ID"
	HeaderCompanyID = "X-Company-ID"
	HeaderRole      = "X-User-Role"
	HeaderSecret    = "X-Rentdesk-Secret"
)

// ErrUnauthenticated is returned when a request does not come from the
// trusted upstream.
var ErrUnauthenticated = errors.New("unauthenticated")

// Authenticator derives the caller's execution context from a request.
// It only identifies the caller; the tool executor decides what the
// caller may do.
type Authenticator interface {
	Authenticate(r *http.Request) (aitools.ExecutionContext, error)
}

// AuthenticatorFunc adapts a function to Authenticator.
type AuthenticatorFunc func(r *http.Request) (aitools.ExecutionContext, error)

// Authenticate implements Authenticator.
func (f AuthenticatorFunc) Authenticate(r *http.Request) (aitools.ExecutionContext, error) {
	return f(r)
}

// HeaderAuthenticator trusts identity headers set by an upstream proxy.
// When SharedSecret is set, requests must also carry it in
// X-Rentdesk-Secret.
type HeaderAuthenticator struct {
	SharedSecret string
}

// Authenticate implements Authenticator. An unknown role is passed through
// as-is so the executor's role gate rejects it.
func (a HeaderAuthenticator) Authenticate(r *http.Request) (aitools.ExecutionContext, error) {
	if a.SharedSecret != "" {
		secret := r.Header.Get(HeaderSecret)
		if subtle.ConstantTimeCompare([]byte(secret), []byte(a.SharedSecret)) != 1 {
			return aitools.ExecutionContext{}, ErrUnauthenticated
		}
	}

	rawRole := strings.TrimSpace(r.Header.Get(HeaderRole))
	role, ok := aitools.ParseRole(rawRole)
	if !ok {
		role = aitools.Role(rawRole)
	}

	return aitools.ExecutionContext{
		UserID:    strings.TrimSpace(r.Header.Get(HeaderUserID)),
		CompanyID: strings.TrimSpace(r.Header.Get(HeaderCompanyID)),
		Role:      role,
	}, nil
}
