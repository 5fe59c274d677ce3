package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kareemeredaze/maitre-seo/internal/model"
)

const (
	logEventLoadProfile   = "load_profile"
	logEventUpdateProfile = "update_profile"
)

// ProfileHandlers serves the caller's profile record.
type ProfileHandlers struct {
	database         *gorm.DB
	logger           *zap.Logger
	activityRecorder *ActivityRecorder
}

// NewProfileHandlers constructs ProfileHandlers.
func NewProfileHandlers(database *gorm.DB, logger *zap.Logger, activityRecorder *ActivityRecorder) *ProfileHandlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileHandlers{
		database:         database,
		logger:           logger,
		activityRecorder: activityRecorder,
	}
}

// updateProfileRequest accepts the customer-editable fields only. Email and id
// are deliberately absent: they are never mutable through this path, even when
// present in the payload.
type updateProfileRequest struct {
	FullName       *string `json:"full_name"`
	Phone          *string `json:"phone"`
	Company        *string `json:"company"`
	CompanyWebsite *string `json:"company_website"`
	CompanySector  *string `json:"company_sector"`
}

// GetProfile returns the caller's profile.
func (handlers *ProfileHandlers) GetProfile(context *gin.Context) {
	currentUser, ok := CurrentUserFromContext(context)
	if !ok {
		context.JSON(http.StatusUnauthorized, gin.H{jsonKeyError: errorValueUnauthorized})
		return
	}

	var profile model.Profile
	loadErr := handlers.database.WithContext(context.Request.Context()).
		First(&profile, "id = ?", currentUser.ID).Error
	if loadErr != nil {
		if errors.Is(loadErr, gorm.ErrRecordNotFound) {
			context.JSON(http.StatusNotFound, gin.H{jsonKeyError: messageProfileNotFound})
			return
		}
		handlers.logger.Warn(logEventLoadProfile, zap.Error(loadErr))
		context.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: messageQueryFailed})
		return
	}

	context.JSON(http.StatusOK, toProfileResponse(profile))
}

// UpdateProfile applies a partial update to the caller's profile row.
func (handlers *ProfileHandlers) UpdateProfile(context *gin.Context) {
	currentUser, ok := CurrentUserFromContext(context)
	if !ok {
		context.JSON(http.StatusUnauthorized, gin.H{jsonKeyError: errorValueUnauthorized})
		return
	}

	var payload updateProfileRequest
	if bindErr := context.BindJSON(&payload); bindErr != nil {
		context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: messageInvalidRequest})
		return
	}

	updates := make(map[string]any)
	if payload.FullName != nil {
		updates["full_name"] = strings.TrimSpace(*payload.FullName)
	}
	if payload.Phone != nil {
		updates["phone"] = strings.TrimSpace(*payload.Phone)
	}
	if payload.Company != nil {
		updates["company"] = strings.TrimSpace(*payload.Company)
	}
	if payload.CompanyWebsite != nil {
		updates["company_website"] = strings.TrimSpace(*payload.CompanyWebsite)
	}
	if payload.CompanySector != nil {
		updates["company_sector"] = strings.TrimSpace(*payload.CompanySector)
	}

	if len(updates) > 0 {
		requestContext := context.Request.Context()
		updateErr := handlers.database.WithContext(requestContext).
			Model(&model.Profile{}).
			Where("id = ?", currentUser.ID).
			Updates(updates).Error
		if updateErr != nil {
			handlers.logger.Warn(logEventUpdateProfile, zap.Error(updateErr))
			context.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: messageSaveFailed})
			return
		}

		handlers.activityRecorder.Record(requestContext, currentUser.ID, model.ActivityTypeProfile, activityMessageProfileUpdated)
	}

	context.JSON(http.StatusOK, gin.H{jsonKeySuccess: true})
}
