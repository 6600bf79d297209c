package scheduler

import (
	"context"
	"errors"
	"log"
	"time"

	"readerdash/internal/document/usecase"
)

// SyncScheduler runs an unattended full sync on a fixed interval.
type SyncScheduler struct {
	syncUsecase usecase.SyncUsecase
	interval    time.Duration
	stopChan    chan struct{}
}

// NewSyncScheduler creates a new scheduler
func NewSyncScheduler(syncUsecase usecase.SyncUsecase, interval time.Duration) *SyncScheduler {
	return &SyncScheduler{
		syncUsecase: syncUsecase,
		interval:    interval,
		stopChan:    make(chan struct{}),
	}
}

// Start begins the scheduler loop
func (s *SyncScheduler) Start() {
	log.Printf("[SyncScheduler] Starting scheduled sync (interval: %s)", s.interval)

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.runOnce()
			case <-s.stopChan:
				log.Println("[SyncScheduler] Scheduler stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the scheduler
func (s *SyncScheduler) Stop() {
	close(s.stopChan)
}

func (s *SyncScheduler) runOnce() {
	progress, err := s.syncUsecase.RunFullSync(context.Background())
	if err != nil {
		if errors.Is(err, usecase.ErrSyncInProgress) {
			log.Println("[SyncScheduler] Sync already running, skipping this round")
			return
		}
		log.Printf("[SyncScheduler] Scheduled sync failed: %v", err)
		return
	}

	if progress.Error != "" {
		log.Printf("[SyncScheduler] Sync needs attention: %s", progress.Error)
		return
	}
	log.Printf("[SyncScheduler] Scheduled sync done, %d documents in store", progress.TotalSynced)
}
