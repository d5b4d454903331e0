package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/callwork/backend/internal/services/balance"
	"github.com/callwork/backend/internal/services/lead"
	"github.com/callwork/backend/internal/services/quality"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestStatusForError(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, statusForError(lead.ErrLeadNotFound))
	assert.Equal(t, http.StatusNotFound, statusForError(lead.ErrNoActiveLead))
	assert.Equal(t, http.StatusNotFound, statusForError(lead.ErrNoLeadsAvailable))
	assert.Equal(t, http.StatusNotFound, statusForError(quality.ErrReviewNotFound))

	assert.Equal(t, http.StatusConflict, statusForError(quality.ErrReviewResolved))
	assert.Equal(t, http.StatusConflict, statusForError(quality.ErrNotLockHolder))
	assert.Equal(t, http.StatusConflict, statusForError(quality.ErrLockContended))
	assert.Equal(t, http.StatusConflict, statusForError(&quality.LockConflictError{LockedBy: uuid.New()}))

	assert.Equal(t, http.StatusForbidden, statusForError(lead.ErrNotAssignee))

	assert.Equal(t, http.StatusBadRequest, statusForError(lead.ErrInvalidOutcome))
	assert.Equal(t, http.StatusBadRequest, statusForError(lead.ErrLeadNotInWork))
	assert.Equal(t, http.StatusBadRequest, statusForError(balance.ErrInsufficientFunds))

	assert.Equal(t, http.StatusInternalServerError, statusForError(errors.New("boom")))
}

func TestRespondErrorIncludesLockHolder(t *testing.T) {
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)

	conflict := &quality.LockConflictError{
		LockedBy:     uuid.New(),
		LockedByName: "Jane Reviewer",
		LockedAt:     time.Now(),
	}
	respondError(c, conflict)

	assert.Equal(t, http.StatusConflict, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "locked_by_name")
	assert.Contains(t, recorder.Body.String(), "Jane Reviewer")
}

func TestRespondErrorPlainError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)

	respondError(c, lead.ErrNotAssignee)

	assert.Equal(t, http.StatusForbidden, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "error")
}
