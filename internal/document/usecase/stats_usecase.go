package usecase

import (
	"time"

	"readerdash/internal/document/domain"
	"readerdash/internal/document/dto"
	"readerdash/internal/document/repository"
)

// staleAfter is the per-category age threshold for triage. Feeds and tweets
// go stale quickly; books and PDFs get much longer.
var staleAfter = map[domain.Category]time.Duration{
	domain.CategoryArticle: 30 * 24 * time.Hour,
	domain.CategoryEmail:   14 * 24 * time.Hour,
	domain.CategoryRSS:     7 * 24 * time.Hour,
	domain.CategoryTweet:   7 * 24 * time.Hour,
	domain.CategoryVideo:   30 * 24 * time.Hour,
	domain.CategoryPDF:     90 * 24 * time.Hour,
	domain.CategoryEPUB:    90 * 24 * time.Hour,
}

// statsUsecase implements StatsUsecase
type statsUsecase struct {
	docRepo   repository.DocumentRepository
	stateRepo repository.SyncStateRepository
	now       func() time.Time
}

// NewStatsUsecase creates a new instance of statsUsecase
func NewStatsUsecase(docRepo repository.DocumentRepository, stateRepo repository.SyncStateRepository) StatsUsecase {
	return &statsUsecase{
		docRepo:   docRepo,
		stateRepo: stateRepo,
		now:       time.Now,
	}
}

func (u *statsUsecase) Overview() (*dto.OverviewStats, error) {
	total, err := u.docRepo.Count()
	if err != nil {
		return nil, err
	}
	byLocation, err := u.docRepo.CountByLocation()
	if err != nil {
		return nil, err
	}
	byCategory, err := u.docRepo.CountByCategory()
	if err != nil {
		return nil, err
	}
	state, err := u.stateRepo.Get()
	if err != nil {
		return nil, err
	}

	return &dto.OverviewStats{
		TotalDocuments: total,
		ByLocation:     byLocation,
		ByCategory:     byCategory,
		LastSyncAt:     state.LastSyncAt,
	}, nil
}

func (u *statsUsecase) DailyActivity(days int) ([]domain.DailyCount, error) {
	if days <= 0 {
		days = 30
	}
	since := u.now().AddDate(0, 0, -days)
	return u.docRepo.DailyActivity(since)
}

func (u *statsUsecase) StaleDocuments(limit int) ([]*domain.Document, error) {
	now := u.now()
	cutoffs := make(map[domain.Category]time.Time, len(staleAfter))
	for category, age := range staleAfter {
		cutoffs[category] = now.Add(-age)
	}
	return u.docRepo.StaleDocuments(cutoffs, limit)
}

func (u *statsUsecase) SourceEngagement(limit int) ([]domain.SourceStat, error) {
	return u.docRepo.SourceEngagement(limit)
}

func (u *statsUsecase) ReadingVelocity(days int) (*domain.VelocityStat, error) {
	if days <= 0 {
		days = 7
	}
	since := u.now().AddDate(0, 0, -days)
	return u.docRepo.ReadingVelocity(since)
}
