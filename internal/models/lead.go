package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LeadStatus represents a lead's position in the call workflow
type LeadStatus string

const (
	LeadStatusNew     LeadStatus = "new"
	LeadStatusInWork  LeadStatus = "in_work"
	LeadStatusSuccess LeadStatus = "success"
	LeadStatusFail    LeadStatus = "fail"
)

// ApprovalStatus represents the QC verdict on a successful lead
type ApprovalStatus string

const (
	ApprovalStatusNone     ApprovalStatus = "none"
	ApprovalStatusPending  ApprovalStatus = "pending"
	ApprovalStatusApproved ApprovalStatus = "approved"
	ApprovalStatusRejected ApprovalStatus = "rejected"
)

// Lead represents a sales prospect routed to an operator
type Lead struct {
	ID             uuid.UUID      `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	Name           string         `gorm:"type:varchar(255);not null" json:"name"`
	Phone          string         `gorm:"type:varchar(32);not null" json:"phone"`
	ProjectID      uuid.UUID      `gorm:"type:uuid;index;not null" json:"project_id"`
	Project        Project        `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Status         LeadStatus     `gorm:"type:varchar(20);not null;default:'new';index" json:"status"`
	ApprovalStatus ApprovalStatus `gorm:"type:varchar(20);not null;default:'none'" json:"approval_status"`
	AssignedTo     *uuid.UUID     `gorm:"type:uuid;index" json:"assigned_to"`
	Assignee       *User          `gorm:"foreignKey:AssignedTo" json:"-"`
	Comment        string         `gorm:"type:text" json:"comment"`
	CreatedAt      time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}
