package repository

import (
	"errors"
	"time"

	"readerdash/internal/document/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// syncStateRepository implements SyncStateRepository interface
type syncStateRepository struct {
	db *gorm.DB
}

// NewSyncStateRepository creates a new instance of syncStateRepository
func NewSyncStateRepository(db *gorm.DB) SyncStateRepository {
	return &syncStateRepository{
		db: db,
	}
}

func (r *syncStateRepository) Get() (*domain.SyncState, error) {
	var state domain.SyncState
	err := r.db.Order("created_at ASC").First(&state).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			now := time.Now()
			state = domain.SyncState{
				ID:        uuid.New().String(),
				Status:    domain.SyncStatusIdle,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := r.db.Create(&state).Error; err != nil {
				return nil, err
			}
			return &state, nil
		}
		return nil, err
	}
	return &state, nil
}

func (r *syncStateRepository) Save(state *domain.SyncState) error {
	state.UpdatedAt = time.Now()
	return r.db.Save(state).Error
}
