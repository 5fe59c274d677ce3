package model

import "time"

// Profile mirrors the identity-provider account with the customer-editable
// fields this service manages. The primary key is the identity provider user
// id; the email belongs to the provider and is never mutated through the
// profile update path.
type Profile struct {
	ID             string    `gorm:"primaryKey;size:36"`
	Email          string    `gorm:"not null;size:320;uniqueIndex"`
	FullName       string    `gorm:"size:200"`
	Phone          string    `gorm:"size:32"`
	Company        string    `gorm:"size:200"`
	CompanyWebsite string    `gorm:"size:500"`
	CompanySector  string    `gorm:"size:200"`
	AvatarURL      string    `gorm:"size:500"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

// Campaign is a bounded body of link-building work owned by one customer.
// Status transitions happen in back-office tooling; this service only reads
// and displays them.
type Campaign struct {
	ID             string     `gorm:"primaryKey;size:36"`
	UserID         string     `gorm:"index;not null;size:36"`
	Name           string     `gorm:"not null;size:200"`
	Status         string     `gorm:"not null;size:16;index"`
	StartDate      *time.Time
	EndDate        *time.Time
	TargetLinks    int       `gorm:"not null;default:0"`
	DeliveredLinks int       `gorm:"not null;default:0"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

// Backlink is a single published inbound link delivered for a campaign.
type Backlink struct {
	ID           string `gorm:"primaryKey;size:36"`
	CampaignID   string `gorm:"index;not null;size:36"`
	URL          string `gorm:"not null;size:500"`
	AnchorText   string `gorm:"not null;size:300"`
	TargetURL    string `gorm:"not null;size:500"`
	DomainRating int    `gorm:"column:dr;not null;default:0"`
	Status       string `gorm:"not null;size:16;index"`
	LiveDate     *time.Time
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}

// Invoice is a read-only billing projection for one customer.
type Invoice struct {
	ID        string    `gorm:"primaryKey;size:36"`
	UserID    string    `gorm:"index;not null;size:36"`
	Number    string    `gorm:"not null;size:64"`
	Amount    float64   `gorm:"not null;default:0"`
	Status    string    `gorm:"not null;size:16;index"`
	DueDate   time.Time `gorm:"not null"`
	PDFURL    string    `gorm:"column:pdf_url;size:500"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

const (
	CampaignStatusActive    = "active"
	CampaignStatusCompleted = "completed"
	CampaignStatusPaused    = "paused"
	CampaignStatusDraft     = "draft"

	BacklinkStatusLive     = "live"
	BacklinkStatusPending  = "pending"
	BacklinkStatusRemoved  = "removed"
	BacklinkStatusReplaced = "replaced"

	InvoiceStatusPaid    = "paid"
	InvoiceStatusPending = "pending"
	InvoiceStatusOverdue = "overdue"
)
