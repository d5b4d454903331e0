package lead

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/callwork/backend/internal/models"
	"github.com/callwork/backend/internal/services/balance"
	"github.com/callwork/backend/internal/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrNoLeadsAvailable is returned when the new-lead pool is empty
	ErrNoLeadsAvailable = errors.New("no leads available")
	// ErrLeadNotFound is returned when the lead does not exist
	ErrLeadNotFound = errors.New("lead not found")
	// ErrNotAssignee is returned when an operator acts on someone else's lead
	ErrNotAssignee = errors.New("lead is not assigned to this operator")
	// ErrLeadNotInWork is returned when completing a lead that is not in work
	ErrLeadNotInWork = errors.New("lead is not in work")
	// ErrNoActiveLead is returned when the operator has no current lead
	ErrNoActiveLead = errors.New("no lead currently in work")
	// ErrInvalidOutcome is returned for an unknown outcome value
	ErrInvalidOutcome = errors.New("invalid outcome")
)

// Outcome is an operator-submitted result for a lead in work
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFail    Outcome = "fail"
	OutcomeNew     Outcome = "new" // skip: return the lead to the pool
)

// ValidOutcome reports whether o is a known outcome
func ValidOutcome(o Outcome) bool {
	switch o {
	case OutcomeSuccess, OutcomeFail, OutcomeNew:
		return true
	}
	return false
}

// Terminal reports whether the outcome ends work on the lead.
// Terminal outcomes earn the flat per-call fee; a skip does not.
func (o Outcome) Terminal() bool {
	return o == OutcomeSuccess || o == OutcomeFail
}

// LeadService drives the lead assignment workflow
type LeadService struct {
	db             *gorm.DB
	balanceService *balance.BalanceService
	callFee        float64
}

// NewLeadService creates a new lead service
func NewLeadService(db *gorm.DB, balanceService *balance.BalanceService, callFee float64) *LeadService {
	return &LeadService{
		db:             db,
		balanceService: balanceService,
		callFee:        callFee,
	}
}

// ClaimNext claims the oldest unassigned "new" lead for the operator.
// A single conditional update with SKIP LOCKED guarantees at-most-one-claim
// under concurrent requests.
func (s *LeadService) ClaimNext(operatorID uuid.UUID) (*models.Lead, error) {
	var claimed struct {
		ID uuid.UUID
	}

	result := s.db.Raw(`
		UPDATE leads SET assigned_to = ?, status = ?, updated_at = NOW()
		WHERE id = (
			SELECT id FROM leads
			WHERE status = ? AND assigned_to IS NULL AND deleted_at IS NULL
			ORDER BY created_at
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id
	`, operatorID, models.LeadStatusInWork, models.LeadStatusNew).Scan(&claimed)
	if result.Error != nil {
		return nil, fmt.Errorf("error claiming lead: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrNoLeadsAvailable
	}

	var lead models.Lead
	if err := s.db.Preload("Project").First(&lead, "id = ?", claimed.ID).Error; err != nil {
		return nil, fmt.Errorf("error loading claimed lead: %w", err)
	}

	return &lead, nil
}

// CurrentLead returns the operator's lead currently in work, if any
func (s *LeadService) CurrentLead(operatorID uuid.UUID) (*models.Lead, error) {
	var lead models.Lead
	err := s.db.Preload("Project").
		Where("assigned_to = ? AND status = ?", operatorID, models.LeadStatusInWork).
		Order("updated_at DESC").
		First(&lead).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActiveLead
		}
		return nil, fmt.Errorf("error finding current lead: %w", err)
	}
	return &lead, nil
}

// CompleteResult reports what a completion did
type CompleteResult struct {
	Lead        *models.Lead          `json:"lead"`
	FeeCredited bool                  `json:"fee_credited"`
	FeeAmount   float64               `json:"fee_amount,omitempty"`
	Review      *models.QualityReview `json:"review,omitempty"`
}

// Complete records an operator's outcome for a lead in work. Terminal
// outcomes credit the flat call fee exactly once per lead; "success" also
// creates the pending quality review. Everything commits atomically.
func (s *LeadService) Complete(operatorID uuid.UUID, leadID *uuid.UUID, outcome Outcome, comment string) (*CompleteResult, error) {
	if !ValidOutcome(outcome) {
		return nil, ErrInvalidOutcome
	}

	result := &CompleteResult{}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		lead, err := lockLeadRow(tx, operatorID, leadID)
		if err != nil {
			return err
		}

		if lead.Status != models.LeadStatusInWork {
			return ErrLeadNotInWork
		}
		if lead.AssignedTo == nil || *lead.AssignedTo != operatorID {
			return ErrNotAssignee
		}

		updates := map[string]interface{}{
			"comment":    comment,
			"updated_at": time.Now(),
		}

		switch outcome {
		case OutcomeNew:
			// Skip: back to the pool, no fee, no review
			updates["status"] = models.LeadStatusNew
			updates["assigned_to"] = nil
		case OutcomeFail:
			updates["status"] = models.LeadStatusFail
		case OutcomeSuccess:
			updates["status"] = models.LeadStatusSuccess
			updates["approval_status"] = models.ApprovalStatusPending
		}

		if err := tx.Model(lead).Updates(updates).Error; err != nil {
			return fmt.Errorf("error updating lead: %w", err)
		}

		if outcome == OutcomeSuccess {
			review := models.QualityReview{
				LeadID:          lead.ID,
				Status:          models.ReviewStatusPending,
				OperatorComment: comment,
			}
			if err := tx.Create(&review).Error; err != nil {
				return fmt.Errorf("error creating quality review: %w", err)
			}
			result.Review = &review
		}

		if outcome.Terminal() {
			leadRef := lead.ID
			_, applied, err := s.balanceService.CreditWithTx(tx, balance.CreditParams{
				UserID:      operatorID,
				Amount:      s.callFee,
				Type:        models.TransactionTypeEarned,
				Category:    models.TransactionCategoryCall,
				Description: fmt.Sprintf("Call completion fee for lead %s", lead.Name),
				LeadID:      &leadRef,
				Reference:   utils.CallFeeReference(lead.ID),
			})
			if err != nil {
				return err
			}
			result.FeeCredited = applied
			if applied {
				result.FeeAmount = s.callFee
			}
		}

		if err := tx.First(lead, "id = ?", lead.ID).Error; err != nil {
			return fmt.Errorf("error reloading lead: %w", err)
		}
		result.Lead = lead
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// lockLeadRow reads the target lead with a row lock held for the rest of
// the transaction, so a concurrent completion waits instead of double-settling
func lockLeadRow(tx *gorm.DB, operatorID uuid.UUID, leadID *uuid.UUID) (*models.Lead, error) {
	var lead models.Lead
	query := tx.Clauses(clause.Locking{Strength: "UPDATE"})
	var err error
	if leadID != nil {
		err = query.First(&lead, "id = ?", *leadID).Error
	} else {
		err = query.Where("assigned_to = ? AND status = ?", operatorID, models.LeadStatusInWork).
			Order("updated_at DESC").First(&lead).Error
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if leadID != nil {
				return nil, ErrLeadNotFound
			}
			return nil, ErrNoActiveLead
		}
		return nil, fmt.Errorf("error finding lead: %w", err)
	}
	return &lead, nil
}

// ListFilter describes a lead listing query
type ListFilter struct {
	Status     models.LeadStatus
	ProjectID  *uuid.UUID
	AssignedTo *uuid.UUID
	Page       int
	PageSize   int
}

// List returns leads matching the filter, newest first
func (s *LeadService) List(filter ListFilter) ([]models.Lead, int64, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	query := s.db.Model(&models.Lead{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ProjectID != nil {
		query = query.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.AssignedTo != nil {
		query = query.Where("assigned_to = ?", *filter.AssignedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("error counting leads: %w", err)
	}

	var leads []models.Lead
	offset := (filter.Page - 1) * filter.PageSize
	err := query.Preload("Project").
		Order("created_at DESC").
		Offset(offset).
		Limit(filter.PageSize).
		Find(&leads).Error
	if err != nil {
		return nil, 0, fmt.Errorf("error finding leads: %w", err)
	}

	return leads, total, nil
}

// Get returns one lead by id
func (s *LeadService) Get(id uuid.UUID) (*models.Lead, error) {
	var lead models.Lead
	if err := s.db.Preload("Project").First(&lead, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("error finding lead: %w", err)
	}
	return &lead, nil
}

// Create creates a lead in the "new" pool
func (s *LeadService) Create(lead *models.Lead) error {
	lead.Status = models.LeadStatusNew
	lead.ApprovalStatus = models.ApprovalStatusNone
	lead.AssignedTo = nil
	if err := s.db.Create(lead).Error; err != nil {
		return fmt.Errorf("error creating lead: %w", err)
	}
	return nil
}

// Update applies field changes to a lead
func (s *LeadService) Update(id uuid.UUID, updates map[string]interface{}) (*models.Lead, error) {
	lead, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.db.Model(lead).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("error updating lead: %w", err)
	}
	return lead, nil
}

// Delete soft-deletes a lead
func (s *LeadService) Delete(id uuid.UUID) error {
	result := s.db.Delete(&models.Lead{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("error deleting lead: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrLeadNotFound
	}
	return nil
}

// ImportCSV creates leads from a CSV stream with name,phone[,comment] rows.
// Returns the number of leads created.
func (s *LeadService) ImportCSV(r io.Reader, projectID uuid.UUID) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	created := 0
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for {
			record, err := reader.Read()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return fmt.Errorf("error reading CSV: %w", err)
			}
			if len(record) < 2 {
				continue
			}

			lead := models.Lead{
				Name:      record[0],
				Phone:     record[1],
				ProjectID: projectID,
				Status:    models.LeadStatusNew,
			}
			if len(record) > 2 {
				lead.Comment = record[2]
			}

			if err := tx.Create(&lead).Error; err != nil {
				return fmt.Errorf("error creating lead from CSV: %w", err)
			}
			created++
		}
	})
	if err != nil {
		return 0, err
	}

	return created, nil
}
