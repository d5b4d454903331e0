package handlers

import (
	"errors"
	"net/http"

	"github.com/callwork/backend/internal/services/balance"
	"github.com/callwork/backend/internal/services/lead"
	"github.com/callwork/backend/internal/services/quality"
	"github.com/gin-gonic/gin"
)

// statusForError maps workflow errors onto the HTTP error taxonomy:
// validation 400, missing 404, lock conflicts 409, everything else 500.
func statusForError(err error) int {
	var conflict *quality.LockConflictError
	switch {
	case errors.Is(err, lead.ErrLeadNotFound),
		errors.Is(err, lead.ErrNoActiveLead),
		errors.Is(err, quality.ErrReviewNotFound):
		return http.StatusNotFound
	case errors.Is(err, lead.ErrNoLeadsAvailable):
		return http.StatusNotFound
	case errors.As(err, &conflict),
		errors.Is(err, quality.ErrReviewResolved),
		errors.Is(err, quality.ErrNotLockHolder),
		errors.Is(err, quality.ErrLockContended):
		return http.StatusConflict
	case errors.Is(err, lead.ErrNotAssignee):
		return http.StatusForbidden
	case errors.Is(err, lead.ErrInvalidOutcome),
		errors.Is(err, lead.ErrLeadNotInWork),
		errors.Is(err, balance.ErrInsufficientFunds):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the mapped status and error body. Lock conflicts carry
// the holder's identity so the client can show who has the review.
func respondError(c *gin.Context, err error) {
	status := statusForError(err)

	var conflict *quality.LockConflictError
	if errors.As(err, &conflict) {
		c.JSON(status, gin.H{
			"error":          conflict.Error(),
			"locked_by":      conflict.LockedBy,
			"locked_by_name": conflict.LockedByName,
			"locked_at":      conflict.LockedAt,
		})
		return
	}

	c.JSON(status, gin.H{"error": err.Error()})
}
