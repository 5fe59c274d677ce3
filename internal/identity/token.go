package identity

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	expectedTokenAudience = "authenticated"
	tokenClockSkewLeeway  = 30 * time.Second
)

var (
	// ErrMissingTokenSecret indicates the verifier was built without a signing secret.
	ErrMissingTokenSecret = errors.New("identity: missing token secret")
	// ErrInvalidAccessToken indicates the access token failed verification.
	ErrInvalidAccessToken = errors.New("identity: invalid access token")
)

// TokenClaims carries the verified identity extracted from a provider access token.
type TokenClaims struct {
	UserID string
	Email  string
}

type accessTokenClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenVerifier validates provider-issued access tokens offline using the
// shared HMAC secret, the way the provider's own edge does.
type TokenVerifier struct {
	secret []byte
	parser *jwt.Parser
}

// NewTokenVerifier constructs a TokenVerifier for the given shared secret.
func NewTokenVerifier(secret string) (*TokenVerifier, error) {
	trimmedSecret := strings.TrimSpace(secret)
	if trimmedSecret == "" {
		return nil, ErrMissingTokenSecret
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(expectedTokenAudience),
		jwt.WithLeeway(tokenClockSkewLeeway),
		jwt.WithExpirationRequired(),
	)

	return &TokenVerifier{secret: []byte(trimmedSecret), parser: parser}, nil
}

// Verify checks the token signature, expiry and audience, and returns the
// embedded identity.
func (verifier *TokenVerifier) Verify(accessToken string) (TokenClaims, error) {
	var claims accessTokenClaims
	_, parseErr := verifier.parser.ParseWithClaims(accessToken, &claims, func(*jwt.Token) (any, error) {
		return verifier.secret, nil
	})
	if parseErr != nil {
		return TokenClaims{}, fmt.Errorf("%w: %v", ErrInvalidAccessToken, parseErr)
	}

	userID := strings.TrimSpace(claims.Subject)
	if userID == "" {
		return TokenClaims{}, fmt.Errorf("%w: missing subject", ErrInvalidAccessToken)
	}

	return TokenClaims{
		UserID: userID,
		Email:  strings.ToLower(strings.TrimSpace(claims.Email)),
	}, nil
}
