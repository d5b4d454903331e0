package models

import (
	"time"

	"github.com/google/uuid"
)

// ReviewStatus represents the state of a quality review
type ReviewStatus string

const (
	ReviewStatusPending  ReviewStatus = "pending"
	ReviewStatusApproved ReviewStatus = "approved"
	ReviewStatusRejected ReviewStatus = "rejected"
)

// QualityReview represents a QC queue entry for a lead that reached "success".
// The lock columns live on the review row itself so that lock state survives
// server restarts and is shared between instances; expiry is server-enforced.
type QualityReview struct {
	ID              uuid.UUID    `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	LeadID          uuid.UUID    `gorm:"type:uuid;uniqueIndex;not null" json:"lead_id"`
	Lead            Lead         `gorm:"foreignKey:LeadID" json:"lead,omitempty"`
	Status          ReviewStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	OperatorComment string       `gorm:"type:text" json:"operator_comment"`
	QCComment       string       `gorm:"type:text" json:"qc_comment"`
	ReviewerID      *uuid.UUID   `gorm:"type:uuid" json:"reviewer_id"`
	ReviewedAt      *time.Time   `json:"reviewed_at"`
	LockedBy        *uuid.UUID   `gorm:"type:uuid;index" json:"-"`
	LockedAt        *time.Time   `json:"-"`
	LockExpiresAt   *time.Time   `json:"-"`
	CreatedAt       time.Time    `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time    `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// LockHolder returns the reviewer currently holding the lock, or nil.
// A lock only has meaning on a pending review and only until it expires.
func (r *QualityReview) LockHolder(now time.Time) *uuid.UUID {
	if r.Status != ReviewStatusPending {
		return nil
	}
	if r.LockedBy == nil || r.LockExpiresAt == nil {
		return nil
	}
	if !r.LockExpiresAt.After(now) {
		return nil
	}
	return r.LockedBy
}

// LockedByOther reports whether someone other than reviewer holds the lock
func (r *QualityReview) LockedByOther(reviewer uuid.UUID, now time.Time) bool {
	holder := r.LockHolder(now)
	return holder != nil && *holder != reviewer
}
