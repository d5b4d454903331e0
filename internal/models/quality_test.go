package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestLockHolder(t *testing.T) {
	now := time.Now()
	reviewer := uuid.New()
	future := now.Add(time.Minute)
	past := now.Add(-time.Minute)

	review := QualityReview{Status: ReviewStatusPending}
	assert.Nil(t, review.LockHolder(now), "unlocked review has no holder")

	review.LockedBy = &reviewer
	review.LockExpiresAt = &future
	holder := review.LockHolder(now)
	assert.NotNil(t, holder)
	assert.Equal(t, reviewer, *holder)

	// Expired lock reads as free
	review.LockExpiresAt = &past
	assert.Nil(t, review.LockHolder(now))

	// A lock on a resolved review has no meaning
	review.LockExpiresAt = &future
	review.Status = ReviewStatusApproved
	assert.Nil(t, review.LockHolder(now))
}

func TestLockedByOther(t *testing.T) {
	now := time.Now()
	holder := uuid.New()
	other := uuid.New()
	future := now.Add(time.Minute)

	review := QualityReview{
		Status:        ReviewStatusPending,
		LockedBy:      &holder,
		LockExpiresAt: &future,
	}

	assert.False(t, review.LockedByOther(holder, now), "own lock is not a conflict")
	assert.True(t, review.LockedByOther(other, now))

	past := now.Add(-time.Minute)
	review.LockExpiresAt = &past
	assert.False(t, review.LockedByOther(other, now), "expired lock is free for anyone")
}
