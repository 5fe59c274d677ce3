package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kareemeredaze/maitre-seo/internal/model"
)

const (
	defaultActivityLimit = 10
	maxActivityLimit     = 50

	logEventRecordActivity = "record_activity"
	logEventListActivity   = "list_activity"

	activityMessageProfileUpdated  = "Profil mis à jour."
	activityMessagePasswordChanged = "Mot de passe modifié."
	activityMessageAccountCreated  = "Compte créé."
)

// ActivityRecorder appends audit trail entries for account events. Appends are
// best-effort; a failed append is logged and never surfaced to the caller.
type ActivityRecorder struct {
	database *gorm.DB
	logger   *zap.Logger
}

// NewActivityRecorder constructs an ActivityRecorder.
func NewActivityRecorder(database *gorm.DB, logger *zap.Logger) *ActivityRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityRecorder{database: database, logger: logger}
}

// Record appends one activity entry for the user.
func (recorder *ActivityRecorder) Record(ctx context.Context, userID string, entryType string, message string) {
	entry, entryErr := model.NewActivityEntry(model.ActivityInput{
		UserID:  userID,
		Type:    entryType,
		Message: message,
	})
	if entryErr != nil {
		recorder.logger.Warn(logEventRecordActivity, zap.Error(entryErr))
		return
	}
	if createErr := recorder.database.WithContext(ctx).Create(&entry).Error; createErr != nil {
		recorder.logger.Warn(logEventRecordActivity, zap.Error(createErr))
	}
}

// ActivityHandlers serves the caller's audit trail.
type ActivityHandlers struct {
	database *gorm.DB
	logger   *zap.Logger
}

// NewActivityHandlers constructs ActivityHandlers.
func NewActivityHandlers(database *gorm.DB, logger *zap.Logger) *ActivityHandlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityHandlers{database: database, logger: logger}
}

// ListRecentActivity returns the caller's most recent activity entries, newest first.
func (handlers *ActivityHandlers) ListRecentActivity(context *gin.Context) {
	currentUser, ok := CurrentUserFromContext(context)
	if !ok {
		context.JSON(http.StatusUnauthorized, gin.H{jsonKeyError: errorValueUnauthorized})
		return
	}

	limit := parseActivityLimit(context.Query("limit"))

	var entries []model.ActivityEntry
	queryErr := handlers.database.WithContext(context.Request.Context()).
		Where("user_id = ?", currentUser.ID).
		Order("created_at desc").
		Limit(limit).
		Find(&entries).Error
	if queryErr != nil {
		handlers.logger.Warn(logEventListActivity, zap.Error(queryErr))
		context.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: messageQueryFailed})
		return
	}

	responses := make([]activityResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, toActivityResponse(entry))
	}

	context.JSON(http.StatusOK, responses)
}

func parseActivityLimit(rawLimit string) int {
	if rawLimit == "" {
		return defaultActivityLimit
	}
	parsed, parseErr := strconv.Atoi(rawLimit)
	if parseErr != nil || parsed <= 0 {
		return defaultActivityLimit
	}
	if parsed > maxActivityLimit {
		return maxActivityLimit
	}
	return parsed
}
