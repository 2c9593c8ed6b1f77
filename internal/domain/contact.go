package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ContactRequest struct {
	ID           uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name         string         `json:"name" gorm:"size:100;not null"`
	Email        string         `json:"email" gorm:"size:100;not null"`
	Phone        *string        `json:"phone"`
	Message      string         `json:"message" gorm:"type:text;not null"`
	Read         bool           `json:"read" gorm:"not null;default:false;index"`
	Notification datatypes.JSON `json:"notification,omitempty" gorm:"type:jsonb"`
	CreatedAt    time.Time      `json:"createdAt" gorm:"index"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

type ContactFilter struct {
	Read *bool
}

type NotificationStatus string

const (
	NotificationSent    NotificationStatus = "sent"
	NotificationPartial NotificationStatus = "partial"
	NotificationFailed  NotificationStatus = "failed"
)

// NotificationOutcome reports the two independent deliveries of a contact submission.
type NotificationOutcome struct {
	Status      NotificationStatus `json:"status"`
	AdminEmail  bool               `json:"adminEmail"`
	ClientEmail bool               `json:"clientEmail"`
	Errors      []string           `json:"errors,omitempty"`
}

func NewNotificationOutcome(adminErr, clientErr error) NotificationOutcome {
	out := NotificationOutcome{
		AdminEmail:  adminErr == nil,
		ClientEmail: clientErr == nil,
	}
	if adminErr != nil {
		out.Errors = append(out.Errors, "admin notification failed")
	}
	if clientErr != nil {
		out.Errors = append(out.Errors, "confirmation email failed")
	}

	switch {
	case out.AdminEmail && out.ClientEmail:
		out.Status = NotificationSent
	case out.AdminEmail || out.ClientEmail:
		out.Status = NotificationPartial
	default:
		out.Status = NotificationFailed
	}
	return out
}

// Degraded reports whether at least one delivery failed.
func (o NotificationOutcome) Degraded() bool {
	return o.Status != NotificationSent
}
