package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"github.com/kareemeredaze/maitre-seo/internal/identity"
)

const (
	contextKeyCurrentUser = "api_current_user"

	sessionCookieName      = "maitre_seo_session"
	sessionKeyAccessToken  = "access_token"
	sessionKeyRefreshToken = "refresh_token"
	sessionMaxAgeSeconds   = 7 * 24 * 60 * 60

	logEventLoadSession = "load_session"
	loginRedirectPath   = "/login"
)

// ErrMissingSessionSecret indicates the cookie session secret configuration was omitted.
var ErrMissingSessionSecret = errors.New("api: missing session secret")

// CurrentUser captures the authenticated account made available to handlers.
// The identity is re-derived from the verified access token on every request,
// never from client-supplied identifiers.
type CurrentUser struct {
	ID          string
	Email       string
	AccessToken string
}

// SessionManager reads and writes the portal's cookie session, which carries
// the provider-issued tokens between requests.
type SessionManager struct {
	store *sessions.CookieStore
}

// SessionConfig captures cookie session settings.
type SessionConfig struct {
	Secret       string
	SecureCookie bool
}

// NewSessionManager constructs a SessionManager backed by a cookie store.
func NewSessionManager(configuration SessionConfig) (*SessionManager, error) {
	trimmedSecret := strings.TrimSpace(configuration.Secret)
	if trimmedSecret == "" {
		return nil, ErrMissingSessionSecret
	}

	store := sessions.NewCookieStore([]byte(trimmedSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAgeSeconds,
		HttpOnly: true,
		Secure:   configuration.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	}

	return &SessionManager{store: store}, nil
}

// Establish writes the provider session into the cookie session.
func (sessionManager *SessionManager) Establish(context *gin.Context, providerSession identity.Session) error {
	session, _ := sessionManager.store.Get(context.Request, sessionCookieName)
	session.Values[sessionKeyAccessToken] = providerSession.AccessToken
	session.Values[sessionKeyRefreshToken] = providerSession.RefreshToken
	return session.Save(context.Request, context.Writer)
}

// Clear expires the cookie session.
func (sessionManager *SessionManager) Clear(context *gin.Context) error {
	session, _ := sessionManager.store.Get(context.Request, sessionCookieName)
	session.Options.MaxAge = -1
	return session.Save(context.Request, context.Writer)
}

// AccessToken returns the provider access token stored in the cookie session.
func (sessionManager *SessionManager) AccessToken(context *gin.Context) (string, bool) {
	session, sessionErr := sessionManager.store.Get(context.Request, sessionCookieName)
	if sessionErr != nil {
		return "", false
	}
	accessToken, ok := session.Values[sessionKeyAccessToken].(string)
	if !ok || strings.TrimSpace(accessToken) == "" {
		return "", false
	}
	return accessToken, true
}

// AuthManager resolves authenticated portal users from the ambient request
// session and enforces access on gateway routes.
type AuthManager struct {
	sessionManager *SessionManager
	tokenVerifier  *identity.TokenVerifier
	logger         *zap.Logger
}

// NewAuthManager constructs an AuthManager with the provided dependencies.
func NewAuthManager(sessionManager *SessionManager, tokenVerifier *identity.TokenVerifier, logger *zap.Logger) *AuthManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthManager{
		sessionManager: sessionManager,
		tokenVerifier:  tokenVerifier,
		logger:         logger,
	}
}

// RequireAuthenticatedJSON enforces authentication for JSON API routes.
func (authManager *AuthManager) RequireAuthenticatedJSON() gin.HandlerFunc {
	return func(context *gin.Context) {
		if _, ok := authManager.ensureUser(context); !ok {
			context.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{jsonKeyError: errorValueUnauthorized})
			return
		}
		context.Next()
	}
}

// RequireAuthenticatedWeb redirects unauthenticated page requests to the login page.
func (authManager *AuthManager) RequireAuthenticatedWeb() gin.HandlerFunc {
	return func(context *gin.Context) {
		if _, ok := authManager.ensureUser(context); !ok {
			context.Redirect(http.StatusFound, loginRedirectPath)
			context.Abort()
			return
		}
		context.Next()
	}
}

// CurrentUser returns the authenticated account associated with the request if available.
func (authManager *AuthManager) CurrentUser(context *gin.Context) (*CurrentUser, bool) {
	return authManager.ensureUser(context)
}

// CurrentUserFromContext loads the current user from the request context.
func CurrentUserFromContext(context *gin.Context) (*CurrentUser, bool) {
	value, exists := context.Get(contextKeyCurrentUser)
	if !exists {
		return nil, false
	}
	currentUser, ok := value.(*CurrentUser)
	return currentUser, ok
}

func (authManager *AuthManager) ensureUser(context *gin.Context) (*CurrentUser, bool) {
	if currentUser, exists := CurrentUserFromContext(context); exists {
		return currentUser, true
	}

	accessToken, hasToken := authManager.sessionManager.AccessToken(context)
	if !hasToken {
		return nil, false
	}

	claims, verifyErr := authManager.tokenVerifier.Verify(accessToken)
	if verifyErr != nil {
		authManager.logger.Warn(logEventLoadSession, zap.Error(verifyErr))
		return nil, false
	}

	currentUser := &CurrentUser{
		ID:          claims.UserID,
		Email:       claims.Email,
		AccessToken: accessToken,
	}
	context.Set(contextKeyCurrentUser, currentUser)
	return currentUser, true
}
