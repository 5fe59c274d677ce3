package api

import (
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kareemeredaze/maitre-seo/internal/identity"
	"github.com/kareemeredaze/maitre-seo/internal/model"
)

const (
	logEventSignIn        = "sign_in"
	logEventSignUp        = "sign_up"
	logEventSignOut       = "sign_out"
	logEventPasswordReset = "password_reset"
	logEventCreateProfile = "create_profile"

	passwordUpdateReturnPath = "/update-password"
)

// AuthHandlers fronts the identity provider for the portal's auth flows and
// owns the cookie session lifecycle.
type AuthHandlers struct {
	database         *gorm.DB
	identityProvider identity.Provider
	sessionManager   *SessionManager
	activityRecorder *ActivityRecorder
	logger           *zap.Logger
	publicBaseURL    string
}

// NewAuthHandlers constructs AuthHandlers.
func NewAuthHandlers(
	database *gorm.DB,
	identityProvider identity.Provider,
	sessionManager *SessionManager,
	activityRecorder *ActivityRecorder,
	logger *zap.Logger,
	publicBaseURL string,
) *AuthHandlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandlers{
		database:         database,
		identityProvider: identityProvider,
		sessionManager:   sessionManager,
		activityRecorder: activityRecorder,
		logger:           logger,
		publicBaseURL:    strings.TrimRight(strings.TrimSpace(publicBaseURL), "/"),
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type passwordResetRequest struct {
	Email string `json:"email"`
}

// Login exchanges credentials for a provider session and establishes the
// cookie session. The provider's invalid-credentials wording is replaced with
// localized copy; every other provider message passes through verbatim.
func (handlers *AuthHandlers) Login(context *gin.Context) {
	var payload loginRequest
	if bindErr := context.BindJSON(&payload); bindErr != nil {
		context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: messageInvalidRequest})
		return
	}

	email := strings.ToLower(strings.TrimSpace(payload.Email))
	if email == "" || payload.Password == "" {
		context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: messageInvalidRequest})
		return
	}

	session, signInErr := handlers.identityProvider.SignIn(context.Request.Context(), email, payload.Password)
	if signInErr != nil {
		if errors.Is(signInErr, identity.ErrInvalidCredentials) {
			context.JSON(http.StatusUnauthorized, gin.H{jsonKeyError: messageInvalidCredential})
			return
		}
		handlers.logger.Warn(logEventSignIn, zap.Error(signInErr))
		var providerError *identity.ProviderError
		if errors.As(signInErr, &providerError) {
			context.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: providerError.Message})
			return
		}
		context.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: messageQueryFailed})
		return
	}

	if establishErr := handlers.sessionManager.Establish(context, session); establishErr != nil {
		handlers.logger.Warn(logEventSignIn, zap.Error(establishErr))
		context.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: messageSaveFailed})
		return
	}

	context.JSON(http.StatusOK, gin.H{jsonKeySuccess: true})
}

// Signup registers an account with the identity provider, creates the profile
// row and establishes the cookie session.
func (handlers *AuthHandlers) Signup(context *gin.Context) {
	var payload signupRequest
	if bindErr := context.BindJSON(&payload); bindErr != nil {
		context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: messageInvalidRequest})
		return
	}

	email := strings.ToLower(strings.TrimSpace(payload.Email))
	if _, parseErr := mail.ParseAddress(email); parseErr != nil {
		context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: messageInvalidRequest})
		return
	}
	if len(payload.Password) < MinimumPasswordLength {
		context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: messagePasswordTooShort})
		return
	}

	requestContext := context.Request.Context()
	fullName := strings.TrimSpace(payload.FullName)

	session, signUpErr := handlers.identityProvider.SignUp(requestContext, email, payload.Password, fullName)
	if signUpErr != nil {
		handlers.logger.Warn(logEventSignUp, zap.Error(signUpErr))
		var providerError *identity.ProviderError
		if errors.As(signUpErr, &providerError) {
			context.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: providerError.Message})
			return
		}
		context.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: messageSignupFailed})
		return
	}

	profile := model.Profile{
		ID:       session.UserID,
		Email:    session.Email,
		FullName: fullName,
	}
	if createErr := handlers.database.WithContext(requestContext).Create(&profile).Error; createErr != nil {
		// The provider account exists either way; the profile row is recreated
		// lazily on the next signup attempt with the same identity.
		handlers.logger.Warn(logEventCreateProfile, zap.Error(createErr))
	}

	handlers.activityRecorder.Record(requestContext, session.UserID, model.ActivityTypeAuth, activityMessageAccountCreated)

	if establishErr := handlers.sessionManager.Establish(context, session); establishErr != nil {
		handlers.logger.Warn(logEventSignUp, zap.Error(establishErr))
		context.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: messageSaveFailed})
		return
	}

	context.JSON(http.StatusOK, gin.H{jsonKeySuccess: true})
}

// Logout revokes the provider session when possible and clears the cookie session.
func (handlers *AuthHandlers) Logout(context *gin.Context) {
	if accessToken, hasToken := handlers.sessionManager.AccessToken(context); hasToken {
		if signOutErr := handlers.identityProvider.SignOut(context.Request.Context(), accessToken); signOutErr != nil {
			handlers.logger.Warn(logEventSignOut, zap.Error(signOutErr))
		}
	}

	if clearErr := handlers.sessionManager.Clear(context); clearErr != nil {
		handlers.logger.Warn(logEventSignOut, zap.Error(clearErr))
	}

	context.JSON(http.StatusOK, gin.H{jsonKeySuccess: true})
}

// RequestPasswordReset asks the provider to email a recovery link. The answer
// is success regardless of account existence so the endpoint cannot be used to
// probe registered emails.
func (handlers *AuthHandlers) RequestPasswordReset(context *gin.Context) {
	var payload passwordResetRequest
	if bindErr := context.BindJSON(&payload); bindErr != nil {
		context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: messageInvalidRequest})
		return
	}

	email := strings.ToLower(strings.TrimSpace(payload.Email))
	if _, parseErr := mail.ParseAddress(email); parseErr != nil {
		context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: messageInvalidRequest})
		return
	}

	returnURL := handlers.publicBaseURL + passwordUpdateReturnPath
	if resetErr := handlers.identityProvider.SendPasswordReset(context.Request.Context(), email, returnURL); resetErr != nil {
		handlers.logger.Warn(logEventPasswordReset, zap.Error(resetErr))
	}

	context.JSON(http.StatusOK, gin.H{jsonKeySuccess: true})
}
