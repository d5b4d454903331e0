package balance

import (
	"errors"
	"fmt"

	"github.com/callwork/backend/internal/models"
	"github.com/callwork/backend/internal/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrInsufficientFunds is returned when a withdrawal exceeds the spendable balance
var ErrInsufficientFunds = errors.New("insufficient funds")

// BalanceService maintains the append-only ledger and the materialized
// per-user balance derived from it
type BalanceService struct {
	db *gorm.DB
}

// NewBalanceService creates a new balance service
func NewBalanceService(db *gorm.DB) *BalanceService {
	return &BalanceService{db: db}
}

// CreditParams describes one settlement event
type CreditParams struct {
	UserID      uuid.UUID
	Amount      float64
	Type        models.TransactionType
	Category    models.TransactionCategory
	Description string
	LeadID      *uuid.UUID
	Reference   string
}

// Credit appends one ledger entry and updates the cached balance.
// Returns the created transaction and whether the credit was applied;
// a duplicate reference means the event was already settled and is a no-op.
func (s *BalanceService) Credit(params CreditParams) (*models.Transaction, bool, error) {
	var transaction *models.Transaction
	applied := false

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		transaction, applied, err = s.creditWithTx(tx, params)
		return err
	})
	if err != nil {
		return nil, false, err
	}

	return transaction, applied, nil
}

// CreditWithTx applies a credit inside an existing transaction. Used by the
// outcome and approval paths so the credit commits atomically with the
// status change that earns it.
func (s *BalanceService) CreditWithTx(tx *gorm.DB, params CreditParams) (*models.Transaction, bool, error) {
	return s.creditWithTx(tx, params)
}

func (s *BalanceService) creditWithTx(tx *gorm.DB, params CreditParams) (*models.Transaction, bool, error) {
	// Idempotence: the unique index on reference decides whether this
	// settlement event already happened.
	var existing models.Transaction
	err := tx.Where("reference = ?", params.Reference).First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("error checking ledger reference: %w", err)
	}

	transaction := models.Transaction{
		UserID:      params.UserID,
		Amount:      params.Amount,
		Type:        params.Type,
		Category:    params.Category,
		Description: params.Description,
		LeadID:      params.LeadID,
		Reference:   params.Reference,
	}

	if err := tx.Create(&transaction).Error; err != nil {
		return nil, false, fmt.Errorf("error creating transaction record: %w", err)
	}

	if err := s.applyToBalance(tx, params.UserID, params.Amount); err != nil {
		return nil, false, err
	}

	return &transaction, true, nil
}

// applyToBalance updates the cached balance with a single atomic arithmetic
// update; concurrent credits for the same user cannot lose an increment
func (s *BalanceService) applyToBalance(tx *gorm.DB, userID uuid.UUID, amount float64) error {
	earnedDelta := amount
	if earnedDelta < 0 {
		earnedDelta = 0
	}

	result := tx.Model(&models.UserBalance{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"balance":      gorm.Expr("balance + ?", amount),
			"total_earned": gorm.Expr("total_earned + ?", earnedDelta),
		})
	if result.Error != nil {
		return fmt.Errorf("error updating balance: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		balance := models.UserBalance{
			UserID:      userID,
			Balance:     amount,
			TotalEarned: earnedDelta,
		}
		if err := tx.Create(&balance).Error; err != nil {
			return fmt.Errorf("error creating balance record: %w", err)
		}
	}

	return nil
}

// GetBalance returns the user's cached balance, zero-valued if the user has
// no ledger activity yet
func (s *BalanceService) GetBalance(userID uuid.UUID) (*models.UserBalance, error) {
	var balance models.UserBalance
	err := s.db.Where("user_id = ?", userID).First(&balance).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.UserBalance{UserID: userID}, nil
		}
		return nil, fmt.Errorf("error finding balance: %w", err)
	}
	return &balance, nil
}

// TransactionView is a history entry joined with the originating lead's
// comments for audit display
type TransactionView struct {
	models.Transaction
	LeadName        string `json:"lead_name,omitempty"`
	OperatorComment string `json:"operator_comment,omitempty"`
	QCComment       string `json:"qc_comment,omitempty"`
}

// HistoryFilter describes a transaction history query
type HistoryFilter struct {
	Category models.TransactionCategory
	Page     int
	PageSize int
}

// NormalizePagination clamps page and page size to sane bounds
func (f *HistoryFilter) NormalizePagination() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = 20
	}
	if f.PageSize > 100 {
		f.PageSize = 100
	}
}

// GetTransactions returns the user's transaction history, newest first
func (s *BalanceService) GetTransactions(userID uuid.UUID, filter HistoryFilter) ([]TransactionView, int64, error) {
	filter.NormalizePagination()

	query := s.db.Model(&models.Transaction{}).Where("transactions.user_id = ?", userID)
	if filter.Category != "" {
		query = query.Where("transactions.category = ?", filter.Category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("error counting transactions: %w", err)
	}

	var views []TransactionView
	offset := (filter.Page - 1) * filter.PageSize
	err := query.
		Select("transactions.*, leads.name AS lead_name, leads.comment AS operator_comment, quality_reviews.qc_comment AS qc_comment").
		Joins("LEFT JOIN leads ON leads.id = transactions.lead_id").
		Joins("LEFT JOIN quality_reviews ON quality_reviews.lead_id = transactions.lead_id").
		Order("transactions.created_at DESC").
		Offset(offset).
		Limit(filter.PageSize).
		Scan(&views).Error
	if err != nil {
		return nil, 0, fmt.Errorf("error finding transactions: %w", err)
	}

	return views, total, nil
}

// Withdraw debits the spendable balance. The conditional update guards
// against concurrent withdrawals overdrawing the account.
func (s *BalanceService) Withdraw(userID uuid.UUID, amount float64, description string) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, errors.New("withdrawal amount must be positive")
	}

	var transaction models.Transaction

	err := s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.UserBalance{}).
			Where("user_id = ? AND balance >= ?", userID, amount).
			Update("balance", gorm.Expr("balance - ?", amount))
		if result.Error != nil {
			return fmt.Errorf("error updating balance: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrInsufficientFunds
		}

		transaction = models.Transaction{
			UserID:      userID,
			Amount:      -amount,
			Type:        models.TransactionTypeWithdrawal,
			Category:    models.TransactionCategoryOther,
			Description: description,
			Reference:   utils.WithdrawalReference(uuid.New()),
		}
		if err := tx.Create(&transaction).Error; err != nil {
			return fmt.Errorf("error creating withdrawal record: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &transaction, nil
}
