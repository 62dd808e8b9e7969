package asynq

const (
	QueueMaintenance = "maintenance"
	QueueAudit       = "audit"

	CampaignExpirySweepTask   = "campaign:expiry_sweep"
	PostbackMarkProcessedTask = "postback:mark_processed"
)

type MarkProcessedPayload struct {
	PostbackLogID string `json:"postback_log_id"`
}

type ExpirySweepPayload struct {
	// RunDate is the date (YYYY-MM-DD) the sweep considers "today".
	// Empty means the worker's current date.
	RunDate string `json:"run_date,omitempty"`
}
