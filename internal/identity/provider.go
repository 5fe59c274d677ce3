// Package identity wraps the hosted authentication service the portal
// delegates credential management to. The rest of the codebase only sees the
// Provider interface; the concrete implementation speaks the provider's REST
// API over HTTP.
package identity

import (
	"context"
	"errors"
)

// Session captures the provider-issued tokens and account identity returned by
// a successful sign-in or sign-up.
type Session struct {
	AccessToken  string
	RefreshToken string
	UserID       string
	Email        string
}

// Provider exposes the identity operations the portal consumes. Every call is
// asynchronous from the caller's point of view and may fail with a
// provider-specific message carried by *ProviderError.
type Provider interface {
	SignIn(ctx context.Context, email string, password string) (Session, error)
	SignUp(ctx context.Context, email string, password string, displayName string) (Session, error)
	SignOut(ctx context.Context, accessToken string) error
	SendPasswordReset(ctx context.Context, email string, redirectURL string) error
	UpdatePassword(ctx context.Context, accessToken string, newPassword string) error
}

// ErrInvalidCredentials indicates the provider rejected a sign-in because the
// email/password pair did not match. Callers replace this with a localized
// friendly message instead of surfacing the provider's own wording.
var ErrInvalidCredentials = errors.New("identity: invalid credentials")

// ProviderError carries the provider's HTTP status and human-readable message
// so callers can pass the message through to the user verbatim.
type ProviderError struct {
	StatusCode int
	Message    string
}

func (providerError *ProviderError) Error() string {
	return providerError.Message
}
