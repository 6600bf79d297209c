package domain

import "time"

// SyncStatus represents the current phase of the sync state machine
type SyncStatus string

const (
	SyncStatusIdle    SyncStatus = "idle"
	SyncStatusSyncing SyncStatus = "syncing"
	SyncStatusError   SyncStatus = "error"
)

// SyncState is the singleton resume point for the incremental sync.
// LastCursor is the opaque upstream pagination token; LastSyncAt is the lower
// bound (updatedAfter) for the next sync cycle. TotalSynced is recomputed
// from the documents table after every page, never accumulated.
type SyncState struct {
	ID          string     `json:"id" gorm:"primaryKey"`
	Status      SyncStatus `json:"status" gorm:"default:idle"`
	LastCursor  string     `json:"last_cursor"`
	LastSyncAt  *time.Time `json:"last_sync_at,omitempty"`
	TotalSynced int64      `json:"total_synced"`
	ErrorMsg    string     `json:"error_msg,omitempty" gorm:"type:text"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
