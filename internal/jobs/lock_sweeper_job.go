package jobs

import (
	"context"
	"log"

	"github.com/callwork/backend/internal/services/quality"
)

// LockSweeper reclaims expired review locks so that a crashed or
// disconnected QC client cannot wedge a review. Clients that are alive
// renew their lock via heartbeat and are never swept.
type LockSweeper struct {
	qualityService *quality.QualityService
}

// NewLockSweeper creates a new lock sweeper
func NewLockSweeper(qualityService *quality.QualityService) *LockSweeper {
	return &LockSweeper{qualityService: qualityService}
}

// Run releases all expired locks once
func (s *LockSweeper) Run() {
	released, err := s.qualityService.ReleaseExpiredLocks(context.Background())
	if err != nil {
		log.Printf("Error sweeping expired review locks: %v", err)
		return
	}
	if released > 0 {
		log.Printf("Released %d expired review locks", released)
	}
}
