package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kareemeredaze/maitre-seo/internal/identity"
	"github.com/kareemeredaze/maitre-seo/internal/model"
)

const (
	// MinimumPasswordLength is enforced before any identity provider call.
	MinimumPasswordLength = 8

	logEventChangePassword = "change_password"
)

// SecurityHandlers forwards credential changes to the identity provider.
type SecurityHandlers struct {
	identityProvider identity.Provider
	logger           *zap.Logger
	activityRecorder *ActivityRecorder
}

// NewSecurityHandlers constructs SecurityHandlers.
func NewSecurityHandlers(identityProvider identity.Provider, logger *zap.Logger, activityRecorder *ActivityRecorder) *SecurityHandlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SecurityHandlers{
		identityProvider: identityProvider,
		logger:           logger,
		activityRecorder: activityRecorder,
	}
}

type changePasswordRequest struct {
	Password string `json:"password"`
}

// ChangePassword validates the new credential locally, then asks the identity
// provider to apply it. Provider rejections (weak-password policy, rate limit)
// surface with the provider's own message.
func (handlers *SecurityHandlers) ChangePassword(context *gin.Context) {
	currentUser, ok := CurrentUserFromContext(context)
	if !ok {
		context.JSON(http.StatusUnauthorized, gin.H{jsonKeyError: errorValueUnauthorized})
		return
	}

	var payload changePasswordRequest
	if bindErr := context.BindJSON(&payload); bindErr != nil {
		context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: messageInvalidRequest})
		return
	}

	if len(payload.Password) < MinimumPasswordLength {
		context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: messagePasswordTooShort})
		return
	}

	requestContext := context.Request.Context()
	if updateErr := handlers.identityProvider.UpdatePassword(requestContext, currentUser.AccessToken, payload.Password); updateErr != nil {
		handlers.logger.Warn(logEventChangePassword, zap.Error(updateErr))

		var providerError *identity.ProviderError
		if errors.As(updateErr, &providerError) {
			context.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: providerError.Message})
			return
		}
		context.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: messageSaveFailed})
		return
	}

	handlers.activityRecorder.Record(requestContext, currentUser.ID, model.ActivityTypeAuth, activityMessagePasswordChanged)

	context.JSON(http.StatusOK, gin.H{jsonKeySuccess: true})
}
