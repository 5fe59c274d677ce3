package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	ActivityTypeBacklink = "backlink"
	ActivityTypeCampaign = "campaign"
	ActivityTypeInvoice  = "invoice"
	ActivityTypeAuth     = "auth"
	ActivityTypeProfile  = "profile"

	activityMessageMaxLength = 500
	activityTypeMaxLength    = 16
)

var (
	ErrInvalidActivityUserID  = errors.New("invalid_activity_user_id")
	ErrInvalidActivityType    = errors.New("invalid_activity_type")
	ErrInvalidActivityMessage = errors.New("invalid_activity_message")
)

// ActivityEntry is one line of the append-only, per-user audit trail.
type ActivityEntry struct {
	ID        string    `gorm:"primaryKey;size:36"`
	UserID    string    `gorm:"index;not null;size:36"`
	Type      string    `gorm:"not null;size:16"`
	Message   string    `gorm:"not null;size:500"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (ActivityEntry) TableName() string {
	return "activity_log"
}

// ActivityInput holds the raw values used to construct an ActivityEntry.
type ActivityInput struct {
	UserID  string
	Type    string
	Message string
}

// NewActivityEntry constructs an ActivityEntry with validated, normalized fields.
func NewActivityEntry(input ActivityInput) (ActivityEntry, error) {
	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return ActivityEntry{}, ErrInvalidActivityUserID
	}

	entryType := strings.TrimSpace(input.Type)
	if validationErr := validateActivityType(entryType); validationErr != nil {
		return ActivityEntry{}, validationErr
	}

	message := strings.TrimSpace(input.Message)
	if message == "" {
		return ActivityEntry{}, fmt.Errorf("%w: empty", ErrInvalidActivityMessage)
	}
	if len(message) > activityMessageMaxLength {
		return ActivityEntry{}, fmt.Errorf("%w: too long", ErrInvalidActivityMessage)
	}

	return ActivityEntry{
		ID:      uuid.NewString(),
		UserID:  userID,
		Type:    entryType,
		Message: message,
	}, nil
}

func validateActivityType(entryType string) error {
	if len(entryType) > activityTypeMaxLength {
		return fmt.Errorf("%w: too long", ErrInvalidActivityType)
	}
	switch entryType {
	case ActivityTypeBacklink, ActivityTypeCampaign, ActivityTypeInvoice, ActivityTypeAuth, ActivityTypeProfile:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrInvalidActivityType, entryType)
	}
}
