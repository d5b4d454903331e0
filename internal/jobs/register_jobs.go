package jobs

import (
	"time"

	"github.com/callwork/backend/internal/queue"
	"github.com/callwork/backend/internal/services/quality"
	"github.com/callwork/backend/internal/services/telephony"
	"github.com/go-co-op/gocron"
)

// RegisterAllJobHandlers registers all job handlers with the queue
func RegisterAllJobHandlers(
	q queue.QueueInterface,
	callService *telephony.CallService,
) {
	NewCallWebhookJob(q, callService)
}

// ScheduleRecurringJobs starts the scheduler for recurring maintenance work
func ScheduleRecurringJobs(
	qualityService *quality.QualityService,
	sweepInterval time.Duration,
) (*gocron.Scheduler, error) {
	scheduler := gocron.NewScheduler(time.UTC)

	sweeper := NewLockSweeper(qualityService)
	if _, err := scheduler.Every(sweepInterval).Do(sweeper.Run); err != nil {
		return nil, err
	}

	scheduler.StartAsync()
	return scheduler, nil
}
