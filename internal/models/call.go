package models

import (
	"time"

	"github.com/google/uuid"
)

// CallStatus represents the state of a telephony call session
type CallStatus string

const (
	CallStatusInitiated CallStatus = "initiated"
	CallStatusRinging   CallStatus = "ringing"
	CallStatusAnswered  CallStatus = "answered"
	CallStatusCompleted CallStatus = "completed"
	CallStatusFailed    CallStatus = "failed"
)

// CallSession records one call placed through the telephony vendor for a lead
type CallSession struct {
	ID           uuid.UUID  `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	LeadID       uuid.UUID  `gorm:"type:uuid;index;not null" json:"lead_id"`
	Lead         Lead       `gorm:"foreignKey:LeadID" json:"-"`
	OperatorID   uuid.UUID  `gorm:"type:uuid;index;not null" json:"operator_id"`
	VendorCallID string     `gorm:"type:varchar(100);uniqueIndex" json:"vendor_call_id"`
	Status       CallStatus `gorm:"type:varchar(20);not null;default:'initiated'" json:"status"`
	StartedAt    time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"started_at"`
	EndedAt      *time.Time `json:"ended_at"`
	CreatedAt    time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}
