package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kareemeredaze/maitre-seo/internal/model"
	"github.com/kareemeredaze/maitre-seo/internal/storage"
)

func seedCampaign(testingT *testing.T, environment *testEnvironment, userID string, name string, createdAt time.Time) model.Campaign {
	testingT.Helper()

	campaign := model.Campaign{
		ID:             storage.NewID(),
		UserID:         userID,
		Name:           name,
		Status:         model.CampaignStatusActive,
		TargetLinks:    25,
		DeliveredLinks: 18,
		CreatedAt:      createdAt,
	}
	require.NoError(testingT, environment.database.Create(&campaign).Error)
	return campaign
}

func seedBacklink(testingT *testing.T, environment *testEnvironment, campaignID string, url string, createdAt time.Time) model.Backlink {
	testingT.Helper()

	backlink := model.Backlink{
		ID:           storage.NewID(),
		CampaignID:   campaignID,
		URL:          url,
		AnchorText:   "ancre",
		TargetURL:    "https://client.example.com",
		DomainRating: 42,
		Status:       model.BacklinkStatusLive,
		CreatedAt:    createdAt,
	}
	require.NoError(testingT, environment.database.Create(&backlink).Error)
	return backlink
}

func TestListCampaignsReturnsOnlyOwnRowsNewestFirst(t *testing.T) {
	environment := newTestEnvironment(t)
	baseTime := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	seedCampaign(t, environment, testUserID, "Ancienne", baseTime)
	seedCampaign(t, environment, testUserID, "Récente", baseTime.Add(time.Hour))
	seedCampaign(t, environment, testOtherUserID, "Étrangère", baseTime.Add(2*time.Hour))
	cookie := environment.sessionCookie(t, testUserID, testUserEmail)

	recorder := environment.perform(t, http.MethodGet, "/api/campaigns", requestOptions{cookie: cookie})

	require.Equal(t, http.StatusOK, recorder.Code)
	payload := decodeJSONList(t, recorder)
	require.Len(t, payload, 2)
	require.Equal(t, "Récente", payload[0]["name"])
	require.Equal(t, "Ancienne", payload[1]["name"])
}

func TestListCampaignsEmptyOwnershipReturnsEmptyList(t *testing.T) {
	environment := newTestEnvironment(t)
	cookie := environment.sessionCookie(t, testUserID, testUserEmail)

	recorder := environment.perform(t, http.MethodGet, "/api/campaigns", requestOptions{cookie: cookie})

	require.Equal(t, http.StatusOK, recorder.Code)
	require.Empty(t, decodeJSONList(t, recorder))
}

func TestCampaignDetailMergesBacklinksNewestFirst(t *testing.T) {
	environment := newTestEnvironment(t)
	baseTime := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	campaign := seedCampaign(t, environment, testUserID, "Netlinking T3", baseTime)
	seedBacklink(t, environment, campaign.ID, "https://premier.example.com", baseTime.Add(time.Minute))
	seedBacklink(t, environment, campaign.ID, "https://second.example.com", baseTime.Add(2*time.Minute))
	cookie := environment.sessionCookie(t, testUserID, testUserEmail)

	recorder := environment.perform(t, http.MethodGet, "/api/campaigns/"+campaign.ID, requestOptions{cookie: cookie})

	require.Equal(t, http.StatusOK, recorder.Code)
	payload := decodeJSONBody(t, recorder)
	require.Equal(t, "Netlinking T3", payload["name"])

	backlinks, ok := payload["backlinks"].([]any)
	require.True(t, ok)
	require.Len(t, backlinks, 2)
	first, ok := backlinks[0].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "https://second.example.com", first["url"])
	require.EqualValues(t, 42, first["dr"])
}

func TestCampaignDetailForeignAndMissingAnswersAreIdentical(t *testing.T) {
	environment := newTestEnvironment(t)
	baseTime := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	foreignCampaign := seedCampaign(t, environment, testOtherUserID, "Étrangère", baseTime)
	cookie := environment.sessionCookie(t, testUserID, testUserEmail)

	foreignRecorder := environment.perform(t, http.MethodGet, "/api/campaigns/"+foreignCampaign.ID, requestOptions{cookie: cookie})
	missingRecorder := environment.perform(t, http.MethodGet, "/api/campaigns/"+storage.NewID(), requestOptions{cookie: cookie})

	require.Equal(t, http.StatusNotFound, foreignRecorder.Code)
	require.Equal(t, http.StatusNotFound, missingRecorder.Code)
	require.Equal(t, missingRecorder.Body.String(), foreignRecorder.Body.String())
	payload := decodeJSONBody(t, foreignRecorder)
	require.Equal(t, "Campagne introuvable.", payload["error"])
}

func TestCampaignDetailWithoutBacklinksReturnsEmptyList(t *testing.T) {
	environment := newTestEnvironment(t)
	campaign := seedCampaign(t, environment, testUserID, "Sans liens", time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))
	cookie := environment.sessionCookie(t, testUserID, testUserEmail)

	recorder := environment.perform(t, http.MethodGet, "/api/campaigns/"+campaign.ID, requestOptions{cookie: cookie})

	require.Equal(t, http.StatusOK, recorder.Code)
	payload := decodeJSONBody(t, recorder)
	backlinks, ok := payload["backlinks"].([]any)
	require.True(t, ok)
	require.Empty(t, backlinks)
}
