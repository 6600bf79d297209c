package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"readerdash/internal/document/domain"
)

// fakeDocRepo keeps documents in a map keyed by readwise_id, which makes the
// upsert naturally idempotent like the real thing.
type fakeDocRepo struct {
	docs       map[string]*domain.Document
	upsertErr  error
	criteriaID []string
	archived   []string
	archivedAt time.Time
}

func newFakeDocRepo() *fakeDocRepo {
	return &fakeDocRepo{docs: make(map[string]*domain.Document)}
}

func (f *fakeDocRepo) UpsertBatch(docs []*domain.Document) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	for _, doc := range docs {
		f.docs[doc.ReadwiseID] = doc
	}
	return nil
}

func (f *fakeDocRepo) Count() (int64, error) { return int64(len(f.docs)), nil }

func (f *fakeDocRepo) GetByID(id string) (*domain.Document, error) { return f.docs[id], nil }

func (f *fakeDocRepo) List(domain.ListFilter) ([]*domain.Document, int64, error) {
	return nil, 0, nil
}

func (f *fakeDocRepo) FindIDsByCriteria(domain.ArchiveCriteria) ([]string, error) {
	return f.criteriaID, nil
}

func (f *fakeDocRepo) MarkArchived(ids []string, movedAt time.Time) error {
	f.archived = append(f.archived, ids...)
	f.archivedAt = movedAt
	for _, id := range ids {
		if doc, ok := f.docs[id]; ok {
			doc.Location = domain.LocationArchive
			at := movedAt
			doc.LastMovedAt = &at
		}
	}
	return nil
}

func (f *fakeDocRepo) DeleteAll() error {
	f.docs = make(map[string]*domain.Document)
	return nil
}

func (f *fakeDocRepo) CountByLocation() (map[domain.Location]int64, error) {
	counts := make(map[domain.Location]int64)
	for _, doc := range f.docs {
		counts[doc.Location]++
	}
	return counts, nil
}

func (f *fakeDocRepo) CountByCategory() (map[domain.Category]int64, error) {
	counts := make(map[domain.Category]int64)
	for _, doc := range f.docs {
		counts[doc.Category]++
	}
	return counts, nil
}

func (f *fakeDocRepo) DailyActivity(time.Time) ([]domain.DailyCount, error) { return nil, nil }

func (f *fakeDocRepo) StaleDocuments(map[domain.Category]time.Time, int) ([]*domain.Document, error) {
	return nil, nil
}

func (f *fakeDocRepo) SourceEngagement(int) ([]domain.SourceStat, error) { return nil, nil }

func (f *fakeDocRepo) ReadingVelocity(time.Time) (*domain.VelocityStat, error) {
	return &domain.VelocityStat{}, nil
}

// fakeStateRepo copies on Get and Save so state mutations only stick when
// explicitly persisted, like a real row.
type fakeStateRepo struct {
	state domain.SyncState
	saves int
}

func newFakeStateRepo() *fakeStateRepo {
	return &fakeStateRepo{state: domain.SyncState{ID: "state-1", Status: domain.SyncStatusIdle}}
}

func (f *fakeStateRepo) Get() (*domain.SyncState, error) {
	copied := f.state
	return &copied, nil
}

func (f *fakeStateRepo) Save(state *domain.SyncState) error {
	f.state = *state
	f.saves++
	return nil
}

type fetchCall struct {
	cursor       string
	updatedAfter *time.Time
}

// fakeProvider replays a queue of pages or errors and records every fetch.
type fakeProvider struct {
	pages      []any // *domain.Page or error
	calls      []fetchCall
	updates    []string
	updateErrs map[string]error
}

func (f *fakeProvider) FetchPage(_ context.Context, _ string, cursor string, updatedAfter *time.Time) (*domain.Page, error) {
	f.calls = append(f.calls, fetchCall{cursor: cursor, updatedAfter: updatedAfter})
	if len(f.pages) == 0 {
		return &domain.Page{}, nil
	}
	next := f.pages[0]
	f.pages = f.pages[1:]
	if err, ok := next.(error); ok {
		return nil, err
	}
	return next.(*domain.Page), nil
}

func (f *fakeProvider) ValidateToken(context.Context, string) bool { return true }

func (f *fakeProvider) UpdateLocation(_ context.Context, _ string, id string, _ domain.Location) error {
	if err := f.updateErrs[id]; err != nil {
		return err
	}
	f.updates = append(f.updates, id)
	return nil
}

type fakeTokens struct {
	token string
	err   error
}

func (f *fakeTokens) ReadwiseToken() (string, error) { return f.token, f.err }

func pageOf(prefix string, n int, nextCursor string) *domain.Page {
	page := &domain.Page{NextCursor: nextCursor, Count: n}
	for i := 0; i < n; i++ {
		page.Documents = append(page.Documents, &domain.Document{
			ReadwiseID: prefix + string(rune('a'+i%26)) + string(rune('0'+i/26)),
			Location:   domain.LocationNew,
			Category:   domain.CategoryArticle,
		})
	}
	return page
}

func newTestSync(docRepo *fakeDocRepo, stateRepo *fakeStateRepo, provider *fakeProvider) (*syncUsecase, *time.Time) {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	uc := NewSyncUsecase(docRepo, stateRepo, provider, &fakeTokens{token: "tok"}).(*syncUsecase)
	uc.now = func() time.Time { return fixed }
	return uc, &fixed
}

func TestStartSyncFromIdle(t *testing.T) {
	uc, _ := newTestSync(newFakeDocRepo(), newFakeStateRepo(), &fakeProvider{})

	progress, err := uc.StartSync()
	if err != nil {
		t.Fatalf("StartSync: %v", err)
	}
	if progress.Status != domain.SyncStatusSyncing {
		t.Errorf("status = %s, want syncing", progress.Status)
	}
	if progress.TotalSynced != 0 {
		t.Errorf("totalSynced = %d, want 0", progress.TotalSynced)
	}
}

func TestStartSyncIdempotentWhileSyncing(t *testing.T) {
	stateRepo := newFakeStateRepo()
	stateRepo.state.Status = domain.SyncStatusSyncing
	stateRepo.state.LastCursor = "C3"
	stateRepo.state.TotalSynced = 120
	uc, _ := newTestSync(newFakeDocRepo(), stateRepo, &fakeProvider{})

	progress, err := uc.StartSync()
	if err != nil {
		t.Fatalf("StartSync: %v", err)
	}
	if progress.Status != domain.SyncStatusSyncing || progress.TotalSynced != 120 {
		t.Errorf("progress = %+v, want current progress reported", progress)
	}
	if stateRepo.state.LastCursor != "C3" {
		t.Errorf("cursor = %q, a second StartSync must not restart", stateRepo.state.LastCursor)
	}
}

// Fresh sync, one full page, then an empty page that still carries a cursor:
// the empty page completes the sync instead of looping.
func TestAdvanceThroughCompletion(t *testing.T) {
	docRepo := newFakeDocRepo()
	stateRepo := newFakeStateRepo()
	provider := &fakeProvider{pages: []any{
		pageOf("p1-", 50, "C2"),
		&domain.Page{NextCursor: "C3"}, // empty results, non-null cursor
	}}
	uc, fixed := newTestSync(docRepo, stateRepo, provider)

	if _, err := uc.StartSync(); err != nil {
		t.Fatalf("StartSync: %v", err)
	}

	progress, err := uc.Advance(context.Background())
	if err != nil {
		t.Fatalf("Advance 1: %v", err)
	}
	if progress.Status != domain.SyncStatusSyncing || !progress.HasMore {
		t.Errorf("after page 1: %+v, want syncing/hasMore", progress)
	}
	if progress.TotalSynced != 50 || progress.CurrentBatchSize != 50 {
		t.Errorf("after page 1: total=%d batch=%d, want 50/50", progress.TotalSynced, progress.CurrentBatchSize)
	}

	progress, err = uc.Advance(context.Background())
	if err != nil {
		t.Fatalf("Advance 2: %v", err)
	}
	if progress.Status != domain.SyncStatusIdle || progress.HasMore {
		t.Errorf("after empty page: %+v, want idle despite non-null cursor", progress)
	}
	if progress.LastSyncAt == nil || !progress.LastSyncAt.Equal(*fixed) {
		t.Errorf("lastSyncAt = %v, want %v", progress.LastSyncAt, fixed)
	}
	if stateRepo.state.LastCursor != "" {
		t.Errorf("cursor = %q, want cleared on completion", stateRepo.state.LastCursor)
	}
}

func TestAdvanceTerminalOnNullCursor(t *testing.T) {
	docRepo := newFakeDocRepo()
	stateRepo := newFakeStateRepo()
	provider := &fakeProvider{pages: []any{pageOf("p1-", 10, "")}}
	uc, _ := newTestSync(docRepo, stateRepo, provider)

	uc.StartSync()
	progress, err := uc.Advance(context.Background())
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if progress.Status != domain.SyncStatusIdle || progress.HasMore {
		t.Errorf("progress = %+v, want terminal on null cursor", progress)
	}
	if progress.TotalSynced != 10 {
		t.Errorf("totalSynced = %d, want 10", progress.TotalSynced)
	}
}

func TestAdvanceNoOpWhenNotSyncing(t *testing.T) {
	provider := &fakeProvider{}
	uc, _ := newTestSync(newFakeDocRepo(), newFakeStateRepo(), provider)

	progress, err := uc.Advance(context.Background())
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if progress.Status != domain.SyncStatusIdle {
		t.Errorf("status = %s, want idle", progress.Status)
	}
	if len(provider.calls) != 0 {
		t.Errorf("fetches = %d, a non-syncing state must not fetch", len(provider.calls))
	}
}

func TestUpdatedAfterOnlyOnFirstPage(t *testing.T) {
	lastSync := time.Date(2026, 2, 20, 8, 0, 0, 0, time.UTC)
	stateRepo := newFakeStateRepo()
	stateRepo.state.LastSyncAt = &lastSync
	provider := &fakeProvider{pages: []any{
		pageOf("p1-", 5, "C2"),
		pageOf("p2-", 5, ""),
	}}
	uc, _ := newTestSync(newFakeDocRepo(), stateRepo, provider)

	uc.StartSync()
	uc.Advance(context.Background())
	uc.Advance(context.Background())

	if len(provider.calls) != 2 {
		t.Fatalf("fetches = %d, want 2", len(provider.calls))
	}
	first, second := provider.calls[0], provider.calls[1]
	if first.cursor != "" || first.updatedAfter == nil || !first.updatedAfter.Equal(lastSync) {
		t.Errorf("first fetch = %+v, want no cursor + lastSyncAt bound", first)
	}
	if second.cursor != "C2" || second.updatedAfter != nil {
		t.Errorf("second fetch = %+v, want cursor C2 and no bound", second)
	}
}

func TestAdvanceFailureKeepsCursor(t *testing.T) {
	docRepo := newFakeDocRepo()
	stateRepo := newFakeStateRepo()
	provider := &fakeProvider{pages: []any{
		pageOf("p1-", 30, "C7"),
		errors.New("status 500 after retries"),
	}}
	uc, _ := newTestSync(docRepo, stateRepo, provider)

	uc.StartSync()
	uc.Advance(context.Background())

	progress, err := uc.Advance(context.Background())
	if err != nil {
		t.Fatalf("Advance should persist the failure, not raise: %v", err)
	}
	if progress.Status != domain.SyncStatusError {
		t.Fatalf("status = %s, want error", progress.Status)
	}
	if stateRepo.state.LastCursor != "C7" {
		t.Errorf("cursor = %q, want failed step's cursor C7 retained", stateRepo.state.LastCursor)
	}
	if !strings.Contains(progress.Error, "C7") {
		t.Errorf("error %q should reference the cursor", progress.Error)
	}
	if progress.TotalSynced != 30 {
		t.Errorf("totalSynced = %d, want documents from completed pages only", progress.TotalSynced)
	}
}

func TestAdvanceUpsertFailureKeepsCursor(t *testing.T) {
	docRepo := newFakeDocRepo()
	docRepo.upsertErr = errors.New("disk full")
	stateRepo := newFakeStateRepo()
	stateRepo.state.Status = domain.SyncStatusSyncing
	stateRepo.state.LastCursor = "C4"
	provider := &fakeProvider{pages: []any{pageOf("p4-", 10, "C5")}}
	uc, _ := newTestSync(docRepo, stateRepo, provider)

	progress, _ := uc.Advance(context.Background())
	if progress.Status != domain.SyncStatusError {
		t.Fatalf("status = %s, want error", progress.Status)
	}
	if stateRepo.state.LastCursor != "C4" {
		t.Errorf("cursor = %q, want C4 (not advanced to C5)", stateRepo.state.LastCursor)
	}
}

func TestAdvanceWithoutTokenFails(t *testing.T) {
	stateRepo := newFakeStateRepo()
	stateRepo.state.Status = domain.SyncStatusSyncing
	uc := NewSyncUsecase(newFakeDocRepo(), stateRepo, &fakeProvider{}, &fakeTokens{token: ""}).(*syncUsecase)

	progress, err := uc.Advance(context.Background())
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if progress.Status != domain.SyncStatusError || !strings.Contains(progress.Error, "token") {
		t.Errorf("progress = %+v, want error about missing token", progress)
	}
}

// A failed page is re-fetched at the same cursor and replayed without
// duplicating documents, because the upsert is keyed by readwise_id.
func TestRetryResumesSamePage(t *testing.T) {
	docRepo := newFakeDocRepo()
	stateRepo := newFakeStateRepo()
	provider := &fakeProvider{pages: []any{
		pageOf("p1-", 20, "C2"),
		errors.New("upstream hiccup"),
		pageOf("p2-", 20, ""),
	}}
	uc, _ := newTestSync(docRepo, stateRepo, provider)

	uc.StartSync()
	uc.Advance(context.Background()) // page 1 ok
	uc.Advance(context.Background()) // page 2 fails

	progress, err := uc.RetrySamePage()
	if err != nil {
		t.Fatalf("RetrySamePage: %v", err)
	}
	if progress.Status != domain.SyncStatusSyncing {
		t.Fatalf("status = %s, want syncing after retry", progress.Status)
	}

	progress, err = uc.Advance(context.Background())
	if err != nil {
		t.Fatalf("Advance after retry: %v", err)
	}
	if progress.Status != domain.SyncStatusIdle {
		t.Errorf("status = %s, want idle", progress.Status)
	}
	if progress.TotalSynced != 40 {
		t.Errorf("totalSynced = %d, want 40 without duplicates", progress.TotalSynced)
	}

	// Fetches 2 and 3 must target the same cursor.
	if provider.calls[1].cursor != "C2" || provider.calls[2].cursor != "C2" {
		t.Errorf("retry fetched %q then %q, want C2 both times", provider.calls[1].cursor, provider.calls[2].cursor)
	}
}

func TestSkipCursorSetsLowerBound(t *testing.T) {
	stateRepo := newFakeStateRepo()
	stateRepo.state.Status = domain.SyncStatusError
	stateRepo.state.LastCursor = "C9"
	stateRepo.state.ErrorMsg = "sync failed at cursor C9"
	uc, fixed := newTestSync(newFakeDocRepo(), stateRepo, &fakeProvider{})

	progress, err := uc.SkipCursor()
	if err != nil {
		t.Fatalf("SkipCursor: %v", err)
	}
	if progress.Status != domain.SyncStatusIdle || progress.Error != "" {
		t.Errorf("progress = %+v, want clean idle", progress)
	}
	if stateRepo.state.LastCursor != "" {
		t.Errorf("cursor = %q, want discarded", stateRepo.state.LastCursor)
	}
	if stateRepo.state.LastSyncAt == nil || !stateRepo.state.LastSyncAt.Equal(*fixed) {
		t.Errorf("lastSyncAt = %v, want skip time %v", stateRepo.state.LastSyncAt, fixed)
	}
}

func TestSkipOnlyFromError(t *testing.T) {
	uc, _ := newTestSync(newFakeDocRepo(), newFakeStateRepo(), &fakeProvider{})
	progress, err := uc.SkipCursor()
	if err != nil {
		t.Fatalf("SkipCursor: %v", err)
	}
	if progress.Status != domain.SyncStatusIdle || progress.LastSyncAt != nil {
		t.Errorf("progress = %+v, skip from idle must be a no-op", progress)
	}
}

func TestResetWipesEverything(t *testing.T) {
	docRepo := newFakeDocRepo()
	stateRepo := newFakeStateRepo()
	provider := &fakeProvider{pages: []any{pageOf("p1-", 15, "")}}
	uc, _ := newTestSync(docRepo, stateRepo, provider)

	uc.StartSync()
	uc.Advance(context.Background())

	progress, err := uc.Reset()
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if progress.Status != domain.SyncStatusIdle || progress.TotalSynced != 0 || progress.LastSyncAt != nil {
		t.Errorf("progress = %+v, want pristine state", progress)
	}
	if count, _ := docRepo.Count(); count != 0 {
		t.Errorf("stored documents = %d, want 0 after reset", count)
	}
}

func TestRunFullSyncToCompletion(t *testing.T) {
	docRepo := newFakeDocRepo()
	provider := &fakeProvider{pages: []any{
		pageOf("p1-", 25, "C2"),
		pageOf("p2-", 25, "C3"),
		pageOf("p3-", 10, ""),
	}}
	uc, _ := newTestSync(docRepo, newFakeStateRepo(), provider)

	progress, err := uc.RunFullSync(context.Background())
	if err != nil {
		t.Fatalf("RunFullSync: %v", err)
	}
	if progress.Status != domain.SyncStatusIdle {
		t.Errorf("status = %s, want idle", progress.Status)
	}
	if progress.TotalSynced != 60 {
		t.Errorf("totalSynced = %d, want 60", progress.TotalSynced)
	}
	if len(provider.calls) != 3 {
		t.Errorf("fetches = %d, want 3", len(provider.calls))
	}
}

func TestRunFullSyncRejectsConcurrent(t *testing.T) {
	stateRepo := newFakeStateRepo()
	stateRepo.state.Status = domain.SyncStatusSyncing
	uc, _ := newTestSync(newFakeDocRepo(), stateRepo, &fakeProvider{})

	if _, err := uc.RunFullSync(context.Background()); !errors.Is(err, ErrSyncInProgress) {
		t.Fatalf("err = %v, want ErrSyncInProgress", err)
	}
}

func TestRunFullSyncReportsErrorState(t *testing.T) {
	stateRepo := newFakeStateRepo()
	stateRepo.state.Status = domain.SyncStatusError
	stateRepo.state.ErrorMsg = "sync failed at cursor \"C7\""
	provider := &fakeProvider{}
	uc, _ := newTestSync(newFakeDocRepo(), stateRepo, provider)

	progress, err := uc.RunFullSync(context.Background())
	if err != nil {
		t.Fatalf("RunFullSync: %v", err)
	}
	if progress.Status != domain.SyncStatusError {
		t.Errorf("status = %s, want error reported untouched", progress.Status)
	}
	if len(provider.calls) != 0 {
		t.Errorf("fetches = %d, an error state needs operator action first", len(provider.calls))
	}
}
