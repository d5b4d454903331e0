package telephony

import (
	"testing"

	"github.com/callwork/backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestMapVendorStatus(t *testing.T) {
	assert.Equal(t, models.CallStatusRinging, MapVendorStatus("ringing"))
	assert.Equal(t, models.CallStatusAnswered, MapVendorStatus("answered"))
	assert.Equal(t, models.CallStatusAnswered, MapVendorStatus("in-progress"))
	assert.Equal(t, models.CallStatusCompleted, MapVendorStatus("completed"))
	assert.Equal(t, models.CallStatusCompleted, MapVendorStatus("hangup"))
	assert.Equal(t, models.CallStatusFailed, MapVendorStatus("failed"))
	assert.Equal(t, models.CallStatusFailed, MapVendorStatus("busy"))
	assert.Equal(t, models.CallStatusFailed, MapVendorStatus("no-answer"))

	assert.Equal(t, models.CallStatusInitiated, MapVendorStatus("something-new"))
}
