package dto

import (
	"time"

	"readerdash/internal/document/domain"
)

// SyncProgress is reported to the caller after every sync step.
type SyncProgress struct {
	Status           domain.SyncStatus `json:"status"`
	TotalSynced      int64             `json:"total_synced"`
	CurrentBatchSize int               `json:"current_batch_size"`
	HasMore          bool              `json:"has_more"`
	LastSyncAt       *time.Time        `json:"last_sync_at,omitempty"`
	Error            string            `json:"error,omitempty"`
}

type DocumentsResponse struct {
	Documents []*domain.Document `json:"documents"`
	Limit     int                `json:"limit"`
	Offset    int                `json:"offset"`
	Total     int64              `json:"total"`
}

type ArchiveRequest struct {
	IDs []string `json:"ids" binding:"required,min=1"`
}

type ArchiveCriteriaRequest struct {
	OlderThanDays int    `json:"older_than_days" binding:"required,min=1"`
	Category      string `json:"category,omitempty"`
	Location      string `json:"location,omitempty"`
	Site          string `json:"site,omitempty"`
}

// ArchiveFailure is one document the upstream rejected during a batch.
type ArchiveFailure struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// ArchiveResult is the per-batch outcome: best effort, never all-or-nothing.
type ArchiveResult struct {
	Success  int              `json:"success"`
	Failed   int              `json:"failed"`
	Failures []ArchiveFailure `json:"failures,omitempty"`
}

type OverviewStats struct {
	TotalDocuments int64                       `json:"total_documents"`
	ByLocation     map[domain.Location]int64   `json:"by_location"`
	ByCategory     map[domain.Category]int64   `json:"by_category"`
	LastSyncAt     *time.Time                  `json:"last_sync_at,omitempty"`
}
