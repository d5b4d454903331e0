package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TransactionType represents the kind of balance-affecting event
type TransactionType string

const (
	TransactionTypeEarned     TransactionType = "earned"
	TransactionTypeBonus      TransactionType = "bonus"
	TransactionTypePenalty    TransactionType = "penalty"
	TransactionTypeWithdrawal TransactionType = "withdrawal"
	TransactionTypeAdjustment TransactionType = "adjustment"
)

// TransactionCategory groups transactions for history filtering
type TransactionCategory string

const (
	TransactionCategoryCall       TransactionCategory = "call"
	TransactionCategoryQCApproved TransactionCategory = "qc_approved"
	TransactionCategoryQCRejected TransactionCategory = "qc_rejected"
	TransactionCategoryOther      TransactionCategory = "other"
)

// ValidTransactionCategory reports whether c is a known history filter
func ValidTransactionCategory(c TransactionCategory) bool {
	switch c {
	case TransactionCategoryCall, TransactionCategoryQCApproved, TransactionCategoryQCRejected, TransactionCategoryOther:
		return true
	}
	return false
}

// UserBalance is the materialized fold of a user's transactions.
// It is only ever mutated through the ledger credit path.
type UserBalance struct {
	ID          uuid.UUID      `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	UserID      uuid.UUID      `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	User        User           `gorm:"foreignKey:UserID" json:"-"`
	Balance     float64        `gorm:"type:decimal(20,2);not null;default:0" json:"balance"`
	TotalEarned float64        `gorm:"type:decimal(20,2);not null;default:0" json:"total_earned"`
	CreatedAt   time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// Transaction is one append-only ledger entry. Reference is a deterministic
// key for the settlement event so a retried credit cannot apply twice.
type Transaction struct {
	ID          uuid.UUID           `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	UserID      uuid.UUID           `gorm:"type:uuid;index;not null" json:"user_id"`
	User        User                `gorm:"foreignKey:UserID" json:"-"`
	Amount      float64             `gorm:"type:decimal(20,2);not null" json:"amount"`
	Type        TransactionType     `gorm:"type:varchar(20);not null" json:"type"`
	Category    TransactionCategory `gorm:"type:varchar(20);not null;default:'other';index" json:"category"`
	Description string              `gorm:"type:text" json:"description"`
	LeadID      *uuid.UUID          `gorm:"type:uuid;index" json:"lead_id"`
	Lead        *Lead               `gorm:"foreignKey:LeadID" json:"-"`
	Reference   string              `gorm:"type:varchar(100);uniqueIndex;not null" json:"reference"`
	CreatedAt   time.Time           `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}
