package usecase

import (
	"testing"
	"time"

	"readerdash/internal/document/domain"
)

// recordingDocRepo captures the arguments the stats usecase derives.
type recordingDocRepo struct {
	fakeDocRepo
	activitySince time.Time
	staleCutoffs  map[domain.Category]time.Time
	velocitySince time.Time
}

func (r *recordingDocRepo) DailyActivity(since time.Time) ([]domain.DailyCount, error) {
	r.activitySince = since
	return nil, nil
}

func (r *recordingDocRepo) StaleDocuments(cutoffs map[domain.Category]time.Time, limit int) ([]*domain.Document, error) {
	r.staleCutoffs = cutoffs
	return nil, nil
}

func (r *recordingDocRepo) ReadingVelocity(since time.Time) (*domain.VelocityStat, error) {
	r.velocitySince = since
	return &domain.VelocityStat{}, nil
}

func newTestStats(docRepo *recordingDocRepo, stateRepo *fakeStateRepo) (*statsUsecase, time.Time) {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	docRepo.docs = make(map[string]*domain.Document)
	uc := NewStatsUsecase(docRepo, stateRepo).(*statsUsecase)
	uc.now = func() time.Time { return fixed }
	return uc, fixed
}

func TestOverviewCombinesCountsAndSyncTime(t *testing.T) {
	docRepo := &recordingDocRepo{}
	stateRepo := newFakeStateRepo()
	lastSync := time.Date(2026, 2, 28, 6, 0, 0, 0, time.UTC)
	stateRepo.state.LastSyncAt = &lastSync
	uc, _ := newTestStats(docRepo, stateRepo)

	docRepo.docs["d1"] = &domain.Document{ReadwiseID: "d1", Location: domain.LocationNew, Category: domain.CategoryArticle}
	docRepo.docs["d2"] = &domain.Document{ReadwiseID: "d2", Location: domain.LocationNew, Category: domain.CategoryRSS}
	docRepo.docs["d3"] = &domain.Document{ReadwiseID: "d3", Location: domain.LocationArchive, Category: domain.CategoryArticle}

	stats, err := uc.Overview()
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if stats.TotalDocuments != 3 {
		t.Errorf("total = %d, want 3", stats.TotalDocuments)
	}
	if stats.ByLocation[domain.LocationNew] != 2 || stats.ByLocation[domain.LocationArchive] != 1 {
		t.Errorf("byLocation = %v", stats.ByLocation)
	}
	if stats.ByCategory[domain.CategoryArticle] != 2 {
		t.Errorf("byCategory = %v", stats.ByCategory)
	}
	if stats.LastSyncAt == nil || !stats.LastSyncAt.Equal(lastSync) {
		t.Errorf("lastSyncAt = %v, want %v", stats.LastSyncAt, lastSync)
	}
}

func TestDailyActivityWindow(t *testing.T) {
	docRepo := &recordingDocRepo{}
	uc, fixed := newTestStats(docRepo, newFakeStateRepo())

	if _, err := uc.DailyActivity(7); err != nil {
		t.Fatalf("DailyActivity: %v", err)
	}
	if want := fixed.AddDate(0, 0, -7); !docRepo.activitySince.Equal(want) {
		t.Errorf("since = %v, want %v", docRepo.activitySince, want)
	}

	// Zero and negative fall back to 30 days.
	if _, err := uc.DailyActivity(0); err != nil {
		t.Fatalf("DailyActivity: %v", err)
	}
	if want := fixed.AddDate(0, 0, -30); !docRepo.activitySince.Equal(want) {
		t.Errorf("default since = %v, want %v", docRepo.activitySince, want)
	}
}

func TestStaleCutoffsPerCategory(t *testing.T) {
	docRepo := &recordingDocRepo{}
	uc, fixed := newTestStats(docRepo, newFakeStateRepo())

	if _, err := uc.StaleDocuments(20); err != nil {
		t.Fatalf("StaleDocuments: %v", err)
	}
	wants := map[domain.Category]time.Duration{
		domain.CategoryRSS:     7 * 24 * time.Hour,
		domain.CategoryArticle: 30 * 24 * time.Hour,
		domain.CategoryEPUB:    90 * 24 * time.Hour,
	}
	for category, age := range wants {
		if got := docRepo.staleCutoffs[category]; !got.Equal(fixed.Add(-age)) {
			t.Errorf("%s cutoff = %v, want %v", category, got, fixed.Add(-age))
		}
	}
	if _, ok := docRepo.staleCutoffs[domain.CategoryHighlight]; ok {
		t.Error("highlights have no stale threshold")
	}
}

func TestReadingVelocityWindow(t *testing.T) {
	docRepo := &recordingDocRepo{}
	uc, fixed := newTestStats(docRepo, newFakeStateRepo())

	if _, err := uc.ReadingVelocity(-1); err != nil {
		t.Fatalf("ReadingVelocity: %v", err)
	}
	if want := fixed.AddDate(0, 0, -7); !docRepo.velocitySince.Equal(want) {
		t.Errorf("default since = %v, want %v", docRepo.velocitySince, want)
	}
}
