package utils

import (
	"fmt"

	"github.com/google/uuid"
)

// Ledger references are deterministic per settlement event. The unique
// constraint on transactions.reference is what makes a retried credit a no-op.

// CallFeeReference returns the ledger reference for a lead's per-call fee
func CallFeeReference(leadID uuid.UUID) string {
	return fmt.Sprintf("call_fee:%s", leadID)
}

// ReviewRewardReference returns the ledger reference for a review's approval payout
func ReviewRewardReference(reviewID uuid.UUID) string {
	return fmt.Sprintf("qc_reward:%s", reviewID)
}

// WithdrawalReference returns the ledger reference for a withdrawal request
func WithdrawalReference(withdrawalID uuid.UUID) string {
	return fmt.Sprintf("withdrawal:%s", withdrawalID)
}
