package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/callwork/backend/internal/queue"
	"github.com/callwork/backend/internal/services/telephony"
)

// JobTypeProcessCallWebhook applies a telephony vendor callback
const JobTypeProcessCallWebhook queue.JobType = "process_call_webhook"

// CallWebhookPayload represents the payload for a call webhook job
type CallWebhookPayload struct {
	VendorCallID string `json:"vendor_call_id"`
	Status       string `json:"status"`
}

// CallWebhookJob processes telephony status callbacks asynchronously so the
// vendor gets an immediate 200 and retries are absorbed by the queue
type CallWebhookJob struct {
	callService *telephony.CallService
}

// NewCallWebhookJob creates the job and registers its handler
func NewCallWebhookJob(q queue.QueueInterface, callService *telephony.CallService) *CallWebhookJob {
	job := &CallWebhookJob{callService: callService}
	q.RegisterHandler(JobTypeProcessCallWebhook, job.processWebhook)
	return job
}

// processWebhook applies one vendor callback to the matching call session
func (j *CallWebhookJob) processWebhook(ctx context.Context, job queue.Job) (interface{}, error) {
	var payload CallWebhookPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal call webhook payload: %w", err)
	}

	status := telephony.MapVendorStatus(payload.Status)
	if err := j.callService.ApplyVendorStatus(payload.VendorCallID, status); err != nil {
		return nil, err
	}

	log.Printf("Applied vendor status %s for call %s", payload.Status, payload.VendorCallID)
	return map[string]string{"vendor_call_id": payload.VendorCallID, "status": string(status)}, nil
}
