package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestReviewerFromContextUsesDisplayName(t *testing.T) {
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)

	reviewerID := uuid.New()
	c.Set("user_id", reviewerID.String())
	c.Set("email", "jane@example.com")
	c.Set("name", "Jane Reviewer")

	id, name, ok := reviewerFromContext(c)
	assert.True(t, ok)
	assert.Equal(t, reviewerID, id)
	assert.Equal(t, "Jane Reviewer", name, "events must carry the same display name the queue listing shows")
}

func TestReviewerFromContextRejectsMissingUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)

	_, _, ok := reviewerFromContext(c)
	assert.False(t, ok)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}
