// Package dashboard drives the customer dashboard's view state: one async
// resource per collection, five named views, derived indicators and the
// mutation flows. It talks to the portal gateway over its JSON API and is the
// library behind both the dashaudit CLI and the dashboard tests.
package dashboard

import "time"

// Profile is the caller's account record as served by the gateway.
type Profile struct {
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

// Campaign is one link-building campaign owned by the caller.
type Campaign struct {
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

// Backlink is one delivered link inside a campaign.
type Backlink struct {
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

// CampaignDetail is a campaign extended with its backlinks, newest first.
type CampaignDetail struct {
	Campaign
	Backlinks []Backlink `json:"backlinks"`
}

// Invoice is one read-only billing record.
type Invoice struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Number    string    `json:"number"`
	Amount    float64   `json:"amount"`
	Status    string    `json:"status"`
	DueDate   time.Time `json:"due_date"`
	PDFURL    string    `json:"pdf_url"`
	CreatedAt time.Time `json:"created_at"`
}

// ActivityEntry is one line of the caller's audit trail.
type ActivityEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	campaignStatusActive = "active"
	invoiceStatusPaid    = "paid"
	invoiceStatusPending = "pending"
)
