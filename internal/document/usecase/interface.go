package usecase

import (
	"context"

	"readerdash/internal/document/domain"
	"readerdash/internal/document/dto"
)

// TokenSource supplies the Readwise API token. Settings is the only
// implementation; the sync engine never stores or logs the token itself.
type TokenSource interface {
	ReadwiseToken() (string, error)
}

// SyncUsecase drives the resumable incremental sync, one page per Advance.
type SyncUsecase interface {
	StartSync() (*dto.SyncProgress, error)
	Advance(ctx context.Context) (*dto.SyncProgress, error)
	RetrySamePage() (*dto.SyncProgress, error)
	SkipCursor() (*dto.SyncProgress, error)
	Reset() (*dto.SyncProgress, error)
	Status() (*dto.SyncProgress, error)
	// RunFullSync loops Advance to a terminal state; the scheduled entry point.
	RunFullSync(ctx context.Context) (*dto.SyncProgress, error)
}

// ArchiveUsecase applies archive batches upstream and reconciles the local
// store with the subset that succeeded.
type ArchiveUsecase interface {
	ArchiveDocuments(ctx context.Context, ids []string) (*dto.ArchiveResult, error)
	ArchiveByCriteria(ctx context.Context, criteria domain.ArchiveCriteria) (*dto.ArchiveResult, error)
}

// StatsUsecase serves the read-only dashboard aggregations.
type StatsUsecase interface {
	Overview() (*dto.OverviewStats, error)
	DailyActivity(days int) ([]domain.DailyCount, error)
	StaleDocuments(limit int) ([]*domain.Document, error)
	SourceEngagement(limit int) ([]domain.SourceStat, error)
	ReadingVelocity(days int) (*domain.VelocityStat, error)
}
