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
	logEventListCampaigns  = "list_campaigns"
	logEventLoadCampaign   = "load_campaign"
	logEventLoadBacklinks  = "load_backlinks"
	campaignIdentifierName = "id"
)

// CampaignHandlers serves the caller's campaigns and their backlinks.
type CampaignHandlers struct {
	database *gorm.DB
	logger   *zap.Logger
}

// NewCampaignHandlers constructs CampaignHandlers.
func NewCampaignHandlers(database *gorm.DB, logger *zap.Logger) *CampaignHandlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CampaignHandlers{database: database, logger: logger}
}

// ListCampaigns returns every campaign owned by the caller.
func (handlers *CampaignHandlers) ListCampaigns(context *gin.Context) {
	currentUser, ok := CurrentUserFromContext(context)
	if !ok {
		context.JSON(http.StatusUnauthorized, gin.H{jsonKeyError: errorValueUnauthorized})
		return
	}

	var campaigns []model.Campaign
	queryErr := handlers.database.WithContext(context.Request.Context()).
		Where("user_id = ?", currentUser.ID).
		Order("created_at desc").
		Find(&campaigns).Error
	if queryErr != nil {
		handlers.logger.Warn(logEventListCampaigns, zap.Error(queryErr))
		context.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: messageQueryFailed})
		return
	}

	responses := make([]campaignResponse, 0, len(campaigns))
	for _, campaign := range campaigns {
		responses = append(responses, toCampaignResponse(campaign))
	}

	context.JSON(http.StatusOK, responses)
}

// CampaignDetail returns one owned campaign merged with its backlinks, newest
// first. A campaign belonging to another user answers exactly like a missing
// one so existence never leaks.
func (handlers *CampaignHandlers) CampaignDetail(context *gin.Context) {
	currentUser, ok := CurrentUserFromContext(context)
	if !ok {
		context.JSON(http.StatusUnauthorized, gin.H{jsonKeyError: errorValueUnauthorized})
		return
	}

	campaignIdentifier := strings.TrimSpace(context.Param(campaignIdentifierName))
	if campaignIdentifier == "" {
		context.JSON(http.StatusNotFound, gin.H{jsonKeyError: messageCampaignNotFound})
		return
	}

	requestContext := context.Request.Context()

	var campaign model.Campaign
	loadErr := handlers.database.WithContext(requestContext).
		First(&campaign, "id = ? AND user_id = ?", campaignIdentifier, currentUser.ID).Error
	if loadErr != nil {
		if errors.Is(loadErr, gorm.ErrRecordNotFound) {
			context.JSON(http.StatusNotFound, gin.H{jsonKeyError: messageCampaignNotFound})
			return
		}
		handlers.logger.Warn(logEventLoadCampaign, zap.Error(loadErr))
		context.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: messageQueryFailed})
		return
	}

	var backlinks []model.Backlink
	backlinksErr := handlers.database.WithContext(requestContext).
		Where("campaign_id = ?", campaign.ID).
		Order("created_at desc").
		Find(&backlinks).Error
	if backlinksErr != nil {
		handlers.logger.Warn(logEventLoadBacklinks, zap.Error(backlinksErr))
		context.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: messageQueryFailed})
		return
	}

	backlinkResponses := make([]backlinkResponse, 0, len(backlinks))
	for _, backlink := range backlinks {
		backlinkResponses = append(backlinkResponses, toBacklinkResponse(backlink))
	}

	context.JSON(http.StatusOK, campaignDetailResponse{
		campaignResponse: toCampaignResponse(campaign),
		Backlinks:        backlinkResponses,
	})
}
