package utils

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestLedgerReferencesAreDeterministic(t *testing.T) {
	leadID := uuid.New()
	reviewID := uuid.New()

	// Same event, same reference: the ledger's unique constraint relies on this
	assert.Equal(t, CallFeeReference(leadID), CallFeeReference(leadID))
	assert.Equal(t, ReviewRewardReference(reviewID), ReviewRewardReference(reviewID))

	assert.Equal(t, "call_fee:"+leadID.String(), CallFeeReference(leadID))
	assert.Equal(t, "qc_reward:"+reviewID.String(), ReviewRewardReference(reviewID))
	assert.NotEqual(t, CallFeeReference(leadID), CallFeeReference(uuid.New()))
}
