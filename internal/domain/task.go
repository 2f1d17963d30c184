package domain

// IngestionTask is the queue wire payload. TenantID stays a string on the
// wire; validation to an integer id happens before any remote call.
type IngestionTask struct {
	TenantID   string `json:"tenantId"`
	RetryCount int    `json:"retryCount,omitempty"`
}
