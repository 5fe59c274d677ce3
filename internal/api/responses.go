package api

import (
	"time"

	"github.com/kareemeredaze/maitre-seo/internal/model"
)

const (
	jsonKeyError   = "error"
	jsonKeySuccess = "success"

	errorValueUnauthorized = "unauthorized"

	// User-facing copy stays in French, matching the rest of the site.
	messageInvalidRequest    = "Requête invalide."
	messageProfileNotFound   = "Profil introuvable."
	messageCampaignNotFound  = "Campagne introuvable."
	messageQueryFailed       = "Erreur de chargement."
	messageSaveFailed        = "Erreur lors de la sauvegarde."
	messagePasswordTooShort  = "Le mot de passe doit contenir au moins 8 caractères."
	messageInvalidCredential = "Email ou mot de passe incorrect."
	messageSignupFailed      = "Impossible de créer le compte."
)

// Response shapes are defined per endpoint and mapped from store rows at the
// gateway boundary; store rows never pass through unmodified.

type profileResponse struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	FullName       string    `json:"full_name"`
	Phone          string    `json:"phone"`
	Company        string    `json:"company"`
	CompanyWebsite string    `json:"company_website"`
	CompanySector  string    `json:"company_sector"`
	AvatarURL      string    `json:"avatar_url"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type campaignResponse struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user_id"`
	Name           string     `json:"name"`
	Status         string     `json:"status"`
	StartDate      *time.Time `json:"start_date"`
	EndDate        *time.Time `json:"end_date"`
	TargetLinks    int        `json:"target_links"`
	DeliveredLinks int        `json:"delivered_links"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

type campaignDetailResponse struct {
	campaignResponse
	Backlinks []backlinkResponse `json:"backlinks"`
}

type backlinkResponse struct {
	ID           string     `json:"id"`
	CampaignID   string     `json:"campaign_id"`
	URL          string     `json:"url"`
	AnchorText   string     `json:"anchor_text"`
	TargetURL    string     `json:"target_url"`
	DomainRating int        `json:"dr"`
	Status       string     `json:"status"`
	LiveDate     *time.Time `json:"live_date"`
	CreatedAt    time.Time  `json:"created_at"`
}

type invoiceResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Number    string    `json:"number"`
	Amount    float64   `json:"amount"`
	Status    string    `json:"status"`
	DueDate   time.Time `json:"due_date"`
	PDFURL    string    `json:"pdf_url"`
	CreatedAt time.Time `json:"created_at"`
}

type activityResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

func toProfileResponse(profile model.Profile) profileResponse {
	return profileResponse{
		ID:             profile.ID,
		Email:          profile.Email,
		FullName:       profile.FullName,
		Phone:          profile.Phone,
		Company:        profile.Company,
		CompanyWebsite: profile.CompanyWebsite,
		CompanySector:  profile.CompanySector,
		AvatarURL:      profile.AvatarURL,
		CreatedAt:      profile.CreatedAt,
		UpdatedAt:      profile.UpdatedAt,
	}
}

func toCampaignResponse(campaign model.Campaign) campaignResponse {
	return campaignResponse{
		ID:             campaign.ID,
		UserID:         campaign.UserID,
		Name:           campaign.Name,
		Status:         campaign.Status,
		StartDate:      campaign.StartDate,
		EndDate:        campaign.EndDate,
		TargetLinks:    campaign.TargetLinks,
		DeliveredLinks: campaign.DeliveredLinks,
		CreatedAt:      campaign.CreatedAt,
		UpdatedAt:      campaign.UpdatedAt,
	}
}

func toBacklinkResponse(backlink model.Backlink) backlinkResponse {
	return backlinkResponse{
		ID:           backlink.ID,
		CampaignID:   backlink.CampaignID,
		URL:          backlink.URL,
		AnchorText:   backlink.AnchorText,
		TargetURL:    backlink.TargetURL,
		DomainRating: backlink.DomainRating,
		Status:       backlink.Status,
		LiveDate:     backlink.LiveDate,
		CreatedAt:    backlink.CreatedAt,
	}
}

func toInvoiceResponse(invoice model.Invoice) invoiceResponse {
	return invoiceResponse{
		ID:        invoice.ID,
		UserID:    invoice.UserID,
		Number:    invoice.Number,
		Amount:    invoice.Amount,
		Status:    invoice.Status,
		DueDate:   invoice.DueDate,
		PDFURL:    invoice.PDFURL,
		CreatedAt: invoice.CreatedAt,
	}
}

func toActivityResponse(entry model.ActivityEntry) activityResponse {
	return activityResponse{
		ID:        entry.ID,
		UserID:    entry.UserID,
		Type:      entry.Type,
		Message:   entry.Message,
		CreatedAt: entry.CreatedAt,
	}
}
