package domain

import (
	"fmt"
	"time"
)

// SyncWindow is the immutable time bound of one ingestion pass. It is
// computed once from the tenant's watermark and passed into every
// entity-sync call of that pass.
type SyncWindow struct {
	since *time.Time
}

// NewSyncWindow builds the window for a pass. A nil watermark means a full
// sync with no upstream filter.
func NewSyncWindow(watermark *time.Time) SyncWindow {
	if watermark == nil {
		return SyncWindow{}
	}
	t := watermark.UTC()
	return SyncWindow{since: &t}
}

// Incremental reports whether the pass is bounded by a prior watermark.
func (w SyncWindow) Incremental() bool {
	return w.since != nil
}

// Filter returns the upstream search filter for the window, empty for a
// full sync.
func (w SyncWindow) Filter() string {
	if w.since == nil {
		return ""
	}
	return fmt.Sprintf("updated_at:>'%s'", w.since.Format(time.RFC3339))
}

// EntityCounts tallies the nodes reconciled during one pass.
type EntityCounts struct {
	Customers int `json:"customers"`
	Products  int `json:"products"`
	Orders    int `json:"orders"`
}

// TenantSyncResult is one tenant's outcome in the scheduler's fan-out
// response.
type TenantSyncResult struct {
	Tenant string        `json:"tenant"`
	Status string        `json:"status"`
	Counts *EntityCounts `json:"counts,omitempty"`
	Error  string        `json:"error,omitempty"`
}

// Sync pass outcomes.
const (
	SyncStatusSuccess = "success"
	SyncStatusFailed  = "failed"
)

// SyncEvent announces the outcome of a pass to external observers.
type SyncEvent struct {
	TenantID    int64        `json:"tenantId"`
	StoreDomain string       `json:"storeDomain"`
	Status      string       `json:"status"`
	Counts      EntityCounts `json:"counts"`
	OccurredAt  time.Time    `json:"occurredAt"`
}
