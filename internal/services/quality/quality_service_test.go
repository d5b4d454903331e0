package quality

import (
	"testing"
	"time"

	"github.com/callwork/backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestAnnotateUnlockedReview(t *testing.T) {
	now := time.Now()
	review := models.QualityReview{
		ID:     uuid.New(),
		Status: models.ReviewStatusPending,
	}

	view := annotate(review, "", now)
	assert.False(t, view.IsLocked)
	assert.Nil(t, view.LockedBy)
	assert.Empty(t, view.LockedByName)
	assert.Nil(t, view.LockedAt)
}

func TestAnnotateLockedReview(t *testing.T) {
	now := time.Now()
	reviewer := uuid.New()
	lockedAt := now.Add(-10 * time.Second)
	expiry := now.Add(80 * time.Second)

	review := models.QualityReview{
		ID:            uuid.New(),
		Status:        models.ReviewStatusPending,
		LockedBy:      &reviewer,
		LockedAt:      &lockedAt,
		LockExpiresAt: &expiry,
	}

	view := annotate(review, "Jane Reviewer", now)
	assert.True(t, view.IsLocked)
	assert.Equal(t, reviewer, *view.LockedBy)
	assert.Equal(t, "Jane Reviewer", view.LockedByName)
	assert.Equal(t, lockedAt, *view.LockedAt)
}

func TestAnnotateExpiredLockReadsAsUnlocked(t *testing.T) {
	now := time.Now()
	reviewer := uuid.New()
	lockedAt := now.Add(-5 * time.Minute)
	expiry := now.Add(-time.Minute)

	review := models.QualityReview{
		ID:            uuid.New(),
		Status:        models.ReviewStatusPending,
		LockedBy:      &reviewer,
		LockedAt:      &lockedAt,
		LockExpiresAt: &expiry,
	}

	view := annotate(review, "Jane Reviewer", now)
	assert.False(t, view.IsLocked)
	assert.Nil(t, view.LockedBy)
}

func TestAnnotateResolvedReviewReadsAsUnlocked(t *testing.T) {
	now := time.Now()
	reviewer := uuid.New()
	expiry := now.Add(time.Minute)

	review := models.QualityReview{
		ID:            uuid.New(),
		Status:        models.ReviewStatusApproved,
		LockedBy:      &reviewer,
		LockExpiresAt: &expiry,
	}

	view := annotate(review, "Jane Reviewer", now)
	assert.False(t, view.IsLocked)
}

func TestLockConflictError(t *testing.T) {
	conflict := &LockConflictError{
		LockedBy:     uuid.New(),
		LockedByName: "Jane Reviewer",
		LockedAt:     time.Now(),
	}

	assert.Contains(t, conflict.Error(), "Jane Reviewer")
}
