package quality

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/callwork/backend/internal/models"
	"github.com/callwork/backend/internal/services/balance"
	"github.com/callwork/backend/internal/services/notify"
	"github.com/callwork/backend/internal/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrReviewNotFound is returned when the review does not exist
	ErrReviewNotFound = errors.New("review not found")
	// ErrReviewResolved is returned when acting on an approved/rejected review
	ErrReviewResolved = errors.New("review already resolved")
	// ErrNotLockHolder is returned when renewing a lock the caller does not hold
	ErrNotLockHolder = errors.New("lock not held by caller")
	// ErrLockContended is returned when a lock acquire loses a race; retryable
	ErrLockContended = errors.New("review lock contended, retry")
)

// LockConflictError reports that another reviewer holds the lock
type LockConflictError struct {
	LockedBy     uuid.UUID `json:"locked_by"`
	LockedByName string    `json:"locked_by_name"`
	LockedAt     time.Time `json:"locked_at"`
}

func (e *LockConflictError) Error() string {
	return fmt.Sprintf("review locked by %s", e.LockedByName)
}

// QualityService manages the QC review queue. Lock state lives on the
// review rows with a server-enforced TTL; clients renew via heartbeat and
// an abandoned lock is reclaimed by the sweeper or by the next acquirer.
type QualityService struct {
	db             *gorm.DB
	balanceService *balance.BalanceService
	publisher      notify.Publisher
	lockTTL        time.Duration
}

// NewQualityService creates a new quality service
func NewQualityService(db *gorm.DB, balanceService *balance.BalanceService, publisher notify.Publisher, lockTTL time.Duration) *QualityService {
	return &QualityService{
		db:             db,
		balanceService: balanceService,
		publisher:      publisher,
		lockTTL:        lockTTL,
	}
}

// ReviewView is a review annotated with lock metadata for the queue listing
type ReviewView struct {
	models.QualityReview
	LeadName     string     `json:"lead_name"`
	LeadPhone    string     `json:"lead_phone"`
	ProjectName  string     `json:"project_name"`
	OperatorName string     `json:"operator_name"`
	IsLocked     bool       `json:"is_locked"`
	LockedBy     *uuid.UUID `json:"locked_by"`
	LockedByName string     `json:"locked_by_name,omitempty"`
	LockedAt     *time.Time `json:"locked_at"`
}

// annotate computes the lock metadata visible to QC clients. Resolved
// reviews and expired locks always read as unlocked.
func annotate(review models.QualityReview, lockerName string, now time.Time) ReviewView {
	view := ReviewView{QualityReview: review}

	if holder := review.LockHolder(now); holder != nil {
		view.IsLocked = true
		view.LockedBy = holder
		view.LockedByName = lockerName
		view.LockedAt = review.LockedAt
	}

	return view
}

// ListReviews returns reviews with the given status, annotated with lock state
func (s *QualityService) ListReviews(status models.ReviewStatus) ([]ReviewView, error) {
	var reviews []models.QualityReview
	query := s.db.Preload("Lead").Preload("Lead.Project").Preload("Lead.Assignee").
		Order("created_at")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("error finding reviews: %w", err)
	}

	lockerNames, err := s.lockerNames(reviews)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	views := make([]ReviewView, 0, len(reviews))
	for _, review := range reviews {
		name := ""
		if review.LockedBy != nil {
			name = lockerNames[*review.LockedBy]
		}
		view := annotate(review, name, now)
		view.LeadName = review.Lead.Name
		view.LeadPhone = review.Lead.Phone
		view.ProjectName = review.Lead.Project.Name
		if review.Lead.Assignee != nil {
			view.OperatorName = review.Lead.Assignee.FullName()
		}
		views = append(views, view)
	}

	return views, nil
}

// lockerNames resolves reviewer names for every lock holder in one query
func (s *QualityService) lockerNames(reviews []models.QualityReview) (map[uuid.UUID]string, error) {
	ids := make([]uuid.UUID, 0)
	for _, review := range reviews {
		if review.LockedBy != nil {
			ids = append(ids, *review.LockedBy)
		}
	}
	names := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	var users []models.User
	if err := s.db.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("error finding lock holders: %w", err)
	}
	for _, user := range users {
		names[user.ID] = user.FullName()
	}
	return names, nil
}

// Lock acquires the lock on a pending review for the reviewer. The single
// conditional update means concurrent attempts yield exactly one winner;
// an expired lock is taken over as if free.
func (s *QualityService) Lock(ctx context.Context, reviewID, reviewerID uuid.UUID, reviewerName string) (*ReviewView, error) {
	view, err := s.tryLock(ctx, reviewID, reviewerID, reviewerName)
	if errors.Is(err, ErrLockContended) {
		// The acquire missed but the diagnostic read found the lock free:
		// the holder released between the two statements. One retry absorbs
		// that window; a second miss is reported as contention.
		return s.tryLock(ctx, reviewID, reviewerID, reviewerName)
	}
	return view, err
}

func (s *QualityService) tryLock(ctx context.Context, reviewID, reviewerID uuid.UUID, reviewerName string) (*ReviewView, error) {
	now := time.Now()
	expiry := now.Add(s.lockTTL)

	result := s.db.Model(&models.QualityReview{}).
		Where("id = ? AND status = ?", reviewID, models.ReviewStatusPending).
		Where("locked_by IS NULL OR locked_by = ? OR lock_expires_at < ?", reviewerID, now).
		Updates(map[string]interface{}{
			"locked_by":       reviewerID,
			"locked_at":       now,
			"lock_expires_at": expiry,
		})
	if result.Error != nil {
		return nil, fmt.Errorf("error acquiring lock: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return nil, s.lockFailure(reviewID, now)
	}

	var review models.QualityReview
	if err := s.db.First(&review, "id = ?", reviewID).Error; err != nil {
		return nil, fmt.Errorf("error loading review: %w", err)
	}

	s.publisher.PublishQualityEvent(ctx, notify.Event{
		Type:      notify.EventReviewLocked,
		ReviewID:  review.ID,
		LeadID:    review.LeadID,
		ActorID:   reviewerID,
		ActorName: reviewerName,
		At:        now,
	})

	view := annotate(review, reviewerName, now)
	return &view, nil
}

// lockFailure inspects the review to report why an acquire missed
func (s *QualityService) lockFailure(reviewID uuid.UUID, now time.Time) error {
	var review models.QualityReview
	if err := s.db.First(&review, "id = ?", reviewID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReviewNotFound
		}
		return fmt.Errorf("error loading review: %w", err)
	}

	if review.Status != models.ReviewStatusPending {
		return ErrReviewResolved
	}

	holder := review.LockHolder(now)
	if holder == nil {
		// Raced with an unlock between the update and this read
		return ErrLockContended
	}

	conflict := &LockConflictError{LockedBy: *holder}
	if review.LockedAt != nil {
		conflict.LockedAt = *review.LockedAt
	}
	var user models.User
	if err := s.db.First(&user, "id = ?", *holder).Error; err == nil {
		conflict.LockedByName = user.FullName()
	}
	return conflict
}

// Heartbeat extends the caller's lock TTL
func (s *QualityService) Heartbeat(reviewID, reviewerID uuid.UUID) error {
	now := time.Now()
	result := s.db.Model(&models.QualityReview{}).
		Where("id = ? AND status = ? AND locked_by = ? AND lock_expires_at >= ?",
			reviewID, models.ReviewStatusPending, reviewerID, now).
		Update("lock_expires_at", now.Add(s.lockTTL))
	if result.Error != nil {
		return fmt.Errorf("error renewing lock: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotLockHolder
	}
	return nil
}

// Unlock releases the caller's lock. Releasing a lock not held by the
// caller (or already released) is a silent no-op.
func (s *QualityService) Unlock(ctx context.Context, reviewID, reviewerID uuid.UUID, reviewerName string) error {
	result := s.db.Model(&models.QualityReview{}).
		Where("id = ? AND locked_by = ?", reviewID, reviewerID).
		Updates(map[string]interface{}{
			"locked_by":       nil,
			"locked_at":       nil,
			"lock_expires_at": nil,
		})
	if result.Error != nil {
		return fmt.Errorf("error releasing lock: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		var review models.QualityReview
		if err := s.db.First(&review, "id = ?", reviewID).Error; err == nil {
			s.publisher.PublishQualityEvent(ctx, notify.Event{
				Type:      notify.EventReviewUnlocked,
				ReviewID:  review.ID,
				LeadID:    review.LeadID,
				ActorID:   reviewerID,
				ActorName: reviewerName,
				At:        time.Now(),
			})
		}
	}

	return nil
}

// ApprovalResult reports what an approval settled
type ApprovalResult struct {
	Review      *models.QualityReview `json:"review"`
	Amount      float64               `json:"amount"`
	ProjectName string                `json:"project_name"`
	Credited    bool                  `json:"credited"`
}

// Approve resolves a pending review as approved and settles the project's
// success price to the lead's operator. The caller must hold the lock or
// the lock must be free (it is acquired implicitly); a lock held by another
// reviewer blocks the approval. Resolution, lead status and the credit
// commit atomically, and the ledger reference makes the credit idempotent.
func (s *QualityService) Approve(ctx context.Context, reviewID, reviewerID uuid.UUID, reviewerName, comment string) (*ApprovalResult, error) {
	result := &ApprovalResult{}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		review, lead, err := s.loadForResolve(tx, reviewID, reviewerID)
		if err != nil {
			return err
		}

		var project models.Project
		if err := tx.First(&project, "id = ?", lead.ProjectID).Error; err != nil {
			return fmt.Errorf("error finding project: %w", err)
		}

		if err := s.resolve(tx, review, lead, reviewerID, comment,
			models.ReviewStatusApproved, models.ApprovalStatusApproved); err != nil {
			return err
		}

		if lead.AssignedTo != nil {
			leadRef := lead.ID
			_, applied, err := s.balanceService.CreditWithTx(tx, balance.CreditParams{
				UserID:      *lead.AssignedTo,
				Amount:      project.SuccessPrice,
				Type:        models.TransactionTypeEarned,
				Category:    models.TransactionCategoryQCApproved,
				Description: fmt.Sprintf("Approved lead %s (%s)", lead.Name, project.Name),
				LeadID:      &leadRef,
				Reference:   utils.ReviewRewardReference(review.ID),
			})
			if err != nil {
				return err
			}
			result.Credited = applied
		}

		result.Review = review
		result.Amount = project.SuccessPrice
		result.ProjectName = project.Name
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publisher.PublishQualityEvent(ctx, notify.Event{
		Type:      notify.EventReviewResolved,
		ReviewID:  result.Review.ID,
		LeadID:    result.Review.LeadID,
		ActorID:   reviewerID,
		ActorName: reviewerName,
		At:        time.Now(),
	})

	return result, nil
}

// Reject resolves a pending review as rejected. No transaction is ever
// created for a rejection; the operator keeps only the per-call fee.
func (s *QualityService) Reject(ctx context.Context, reviewID, reviewerID uuid.UUID, reviewerName, comment string) (*models.QualityReview, error) {
	var resolved *models.QualityReview

	err := s.db.Transaction(func(tx *gorm.DB) error {
		review, lead, err := s.loadForResolve(tx, reviewID, reviewerID)
		if err != nil {
			return err
		}

		if err := s.resolve(tx, review, lead, reviewerID, comment,
			models.ReviewStatusRejected, models.ApprovalStatusRejected); err != nil {
			return err
		}

		resolved = review
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publisher.PublishQualityEvent(ctx, notify.Event{
		Type:      notify.EventReviewResolved,
		ReviewID:  resolved.ID,
		LeadID:    resolved.LeadID,
		ActorID:   reviewerID,
		ActorName: reviewerName,
		At:        time.Now(),
	})

	return resolved, nil
}

// loadForResolve locks the review row and checks the resolve preconditions:
// the review must be pending and not locked by another reviewer
func (s *QualityService) loadForResolve(tx *gorm.DB, reviewID, reviewerID uuid.UUID) (*models.QualityReview, *models.Lead, error) {
	var review models.QualityReview
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&review, "id = ?", reviewID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrReviewNotFound
		}
		return nil, nil, fmt.Errorf("error finding review: %w", err)
	}

	if review.Status != models.ReviewStatusPending {
		return nil, nil, ErrReviewResolved
	}

	now := time.Now()
	if review.LockedByOther(reviewerID, now) {
		return nil, nil, s.lockFailure(reviewID, now)
	}

	var lead models.Lead
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&lead, "id = ?", review.LeadID).Error; err != nil {
		return nil, nil, fmt.Errorf("error finding lead: %w", err)
	}

	return &review, &lead, nil
}

// resolve marks the review terminal, mirrors the verdict on the lead and
// clears the lock. The status predicate means only one resolver can ever
// win, whatever the row-lock behavior of the surrounding transaction.
func (s *QualityService) resolve(tx *gorm.DB, review *models.QualityReview, lead *models.Lead, reviewerID uuid.UUID, comment string, reviewStatus models.ReviewStatus, approval models.ApprovalStatus) error {
	now := time.Now()

	result := tx.Model(review).
		Where("status = ?", models.ReviewStatusPending).
		Updates(map[string]interface{}{
			"status":          reviewStatus,
			"qc_comment":      comment,
			"reviewer_id":     reviewerID,
			"reviewed_at":     now,
			"locked_by":       nil,
			"locked_at":       nil,
			"lock_expires_at": nil,
		})
	if result.Error != nil {
		return fmt.Errorf("error resolving review: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrReviewResolved
	}

	if err := tx.Model(lead).Update("approval_status", approval).Error; err != nil {
		return fmt.Errorf("error updating lead approval status: %w", err)
	}

	review.Status = reviewStatus
	review.QCComment = comment
	review.ReviewerID = &reviewerID
	review.ReviewedAt = &now
	review.LockedBy = nil
	review.LockedAt = nil
	review.LockExpiresAt = nil
	return nil
}

// AddComment records a QC note on a pending review without resolving it
func (s *QualityService) AddComment(reviewID, reviewerID uuid.UUID, comment string) (*models.QualityReview, error) {
	var review models.QualityReview
	if err := s.db.First(&review, "id = ?", reviewID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("error finding review: %w", err)
	}

	if review.Status != models.ReviewStatusPending {
		return nil, ErrReviewResolved
	}

	if err := s.db.Model(&review).Update("qc_comment", comment).Error; err != nil {
		return nil, fmt.Errorf("error updating review comment: %w", err)
	}
	review.QCComment = comment
	return &review, nil
}

// ReleaseExpiredLocks clears locks whose TTL has passed and notifies
// clients so abandoned reviews return to the visible queue. Returns the
// number of locks released.
func (s *QualityService) ReleaseExpiredLocks(ctx context.Context) (int, error) {
	var expired []models.QualityReview
	now := time.Now()

	err := s.db.Raw(`
		UPDATE quality_reviews
		SET locked_by = NULL, locked_at = NULL, lock_expires_at = NULL, updated_at = NOW()
		WHERE status = ? AND locked_by IS NOT NULL AND lock_expires_at < ?
		RETURNING id, lead_id
	`, models.ReviewStatusPending, now).Scan(&expired).Error
	if err != nil {
		return 0, fmt.Errorf("error releasing expired locks: %w", err)
	}

	for _, review := range expired {
		s.publisher.PublishQualityEvent(ctx, notify.Event{
			Type:     notify.EventReviewUnlocked,
			ReviewID: review.ID,
			LeadID:   review.LeadID,
			At:       now,
		})
	}

	return len(expired), nil
}
