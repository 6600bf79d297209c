package repository

import "readerdash/internal/document/domain"

// SyncStateRepository defines the interface for the singleton sync state row
type SyncStateRepository interface {
	// Get returns the singleton state, creating an idle one on first use.
	Get() (*domain.SyncState, error)
	Save(state *domain.SyncState) error
}
