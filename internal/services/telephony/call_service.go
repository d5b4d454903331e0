package telephony

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/callwork/backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrSessionNotFound is returned when a call session does not exist
	ErrSessionNotFound = errors.New("call session not found")
	// ErrNotSessionOwner is returned when an operator hangs up someone else's call
	ErrNotSessionOwner = errors.New("call session belongs to another operator")
)

// CallService records call sessions against leads and drives the vendor client
type CallService struct {
	db     *gorm.DB
	client *Client
}

// NewCallService creates a new call service
func NewCallService(db *gorm.DB, client *Client) *CallService {
	return &CallService{db: db, client: client}
}

// StartCall dials the lead's phone through the vendor and records a session
func (s *CallService) StartCall(ctx context.Context, operatorID, leadID uuid.UUID) (*models.CallSession, error) {
	var lead models.Lead
	if err := s.db.First(&lead, "id = ?", leadID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("lead not found")
		}
		return nil, fmt.Errorf("error finding lead: %w", err)
	}

	session := models.CallSession{
		LeadID:     leadID,
		OperatorID: operatorID,
		Status:     models.CallStatusInitiated,
		StartedAt:  time.Now(),
	}
	if err := s.db.Create(&session).Error; err != nil {
		return nil, fmt.Errorf("error creating call session: %w", err)
	}

	state, err := s.client.Dial(ctx, lead.Phone, session.ID.String())
	if err != nil {
		s.db.Model(&session).Update("status", models.CallStatusFailed)
		return nil, err
	}

	if err := s.db.Model(&session).Update("vendor_call_id", state.CallID).Error; err != nil {
		return nil, fmt.Errorf("error saving vendor call id: %w", err)
	}
	session.VendorCallID = state.CallID

	return &session, nil
}

// Hangup terminates the operator's call
func (s *CallService) Hangup(ctx context.Context, operatorID, sessionID uuid.UUID) error {
	var session models.CallSession
	if err := s.db.First(&session, "id = ?", sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("error finding call session: %w", err)
	}

	if session.OperatorID != operatorID {
		return ErrNotSessionOwner
	}

	if session.VendorCallID != "" {
		if err := s.client.Hangup(ctx, session.VendorCallID); err != nil {
			return err
		}
	}

	now := time.Now()
	return s.db.Model(&session).Updates(map[string]interface{}{
		"status":   models.CallStatusCompleted,
		"ended_at": now,
	}).Error
}

// ApplyVendorStatus applies a vendor callback to the matching session.
// Unknown vendor call ids are ignored; the vendor may retry callbacks.
func (s *CallService) ApplyVendorStatus(vendorCallID string, status models.CallStatus) error {
	updates := map[string]interface{}{"status": status}
	if status == models.CallStatusCompleted || status == models.CallStatusFailed {
		updates["ended_at"] = time.Now()
	}

	result := s.db.Model(&models.CallSession{}).
		Where("vendor_call_id = ?", vendorCallID).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("error applying vendor status: %w", result.Error)
	}
	return nil
}

// MapVendorStatus normalizes a vendor status string to a call status
func MapVendorStatus(vendorStatus string) models.CallStatus {
	switch vendorStatus {
	case "ringing":
		return models.CallStatusRinging
	case "answered", "in-progress":
		return models.CallStatusAnswered
	case "completed", "hangup":
		return models.CallStatusCompleted
	case "failed", "busy", "no-answer":
		return models.CallStatusFailed
	default:
		return models.CallStatusInitiated
	}
}
