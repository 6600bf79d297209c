package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"readerdash/internal/document/domain"
	"readerdash/internal/document/dto"
	"readerdash/internal/document/repository"
)

// ErrSyncInProgress is returned when a full sync is requested while another
// sync cycle is still running.
var ErrSyncInProgress = errors.New("sync already in progress")

// syncUsecase implements SyncUsecase. The mutex serializes in-process
// callers; cross-process writers are out of scope for a single-tenant
// deployment, so the persisted status check at the top of each step is the
// only cross-process guard.
type syncUsecase struct {
	docRepo   repository.DocumentRepository
	stateRepo repository.SyncStateRepository
	provider  domain.DocumentProvider
	tokens    TokenSource
	mu        sync.Mutex
	now       func() time.Time
}

// NewSyncUsecase creates a new instance of syncUsecase
func NewSyncUsecase(docRepo repository.DocumentRepository, stateRepo repository.SyncStateRepository, provider domain.DocumentProvider, tokens TokenSource) SyncUsecase {
	return &syncUsecase{
		docRepo:   docRepo,
		stateRepo: stateRepo,
		provider:  provider,
		tokens:    tokens,
		now:       time.Now,
	}
}

// StartSync moves the state machine from idle to syncing. When a sync is
// already running it is idempotent and just reports current progress. An
// error state is reported as-is: recovery goes through RetrySamePage or
// SkipCursor.
func (u *syncUsecase) StartSync() (*dto.SyncProgress, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	state, err := u.stateRepo.Get()
	if err != nil {
		return nil, err
	}

	if state.Status != domain.SyncStatusIdle {
		return progressFrom(state, 0, state.Status == domain.SyncStatusSyncing), nil
	}

	state.Status = domain.SyncStatusSyncing
	state.ErrorMsg = ""
	if err := u.stateRepo.Save(state); err != nil {
		return nil, err
	}
	log.Printf("[Sync] Started (cursor=%q, lastSyncAt=%v)", cursorPrefix(state.LastCursor), state.LastSyncAt)
	return progressFrom(state, 0, true), nil
}

// Advance executes one sync step: fetch a page at the persisted cursor,
// upsert its documents, recount storage, and persist the next state. A step
// failure never raises; it is converted into a persisted error status with
// the step's starting cursor retained.
func (u *syncUsecase) Advance(ctx context.Context) (*dto.SyncProgress, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	// Re-read persisted state; a stale caller racing a state change must not
	// advance.
	state, err := u.stateRepo.Get()
	if err != nil {
		return nil, err
	}
	if state.Status != domain.SyncStatusSyncing {
		return progressFrom(state, 0, false), nil
	}

	cursor := state.LastCursor

	token, err := u.tokens.ReadwiseToken()
	if err != nil {
		return u.failStep(state, cursor, err)
	}
	if token == "" {
		return u.failStep(state, cursor, errors.New("readwise token not configured"))
	}

	// The lastSyncAt lower bound applies only to the first page of a cycle;
	// a cursor already encodes the bound for the pages behind it.
	var updatedAfter *time.Time
	if cursor == "" {
		updatedAfter = state.LastSyncAt
	}

	page, err := u.provider.FetchPage(ctx, token, cursor, updatedAfter)
	if err != nil {
		return u.failStep(state, cursor, err)
	}

	if err := u.docRepo.UpsertBatch(page.Documents); err != nil {
		return u.failStep(state, cursor, err)
	}

	// Authoritative recount. An accumulator would double-count replayed
	// pages after a partial failure; a count never drifts because the upsert
	// is idempotent per document.
	total, err := u.docRepo.Count()
	if err != nil {
		return u.failStep(state, cursor, err)
	}
	state.TotalSynced = total

	pageSize := len(page.Documents)
	// Terminal on a missing next cursor OR an empty page. An empty page that
	// still carries a cursor must complete the sync, not loop on it.
	hasMore := page.NextCursor != "" && pageSize > 0
	if hasMore {
		state.LastCursor = page.NextCursor
	} else {
		state.LastCursor = ""
		state.Status = domain.SyncStatusIdle
		completedAt := u.now()
		state.LastSyncAt = &completedAt
		log.Printf("[Sync] Completed, %d documents in store", total)
	}
	state.ErrorMsg = ""

	if err := u.stateRepo.Save(state); err != nil {
		return nil, err
	}
	return progressFrom(state, pageSize, hasMore), nil
}

// RetrySamePage clears the error and re-enters syncing at the retained
// cursor, so the failed page is fetched again.
func (u *syncUsecase) RetrySamePage() (*dto.SyncProgress, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	state, err := u.stateRepo.Get()
	if err != nil {
		return nil, err
	}
	if state.Status != domain.SyncStatusError {
		return progressFrom(state, 0, state.Status == domain.SyncStatusSyncing), nil
	}

	state.Status = domain.SyncStatusSyncing
	state.ErrorMsg = ""
	if err := u.stateRepo.Save(state); err != nil {
		return nil, err
	}
	log.Printf("[Sync] Retrying at cursor %q", cursorPrefix(state.LastCursor))
	return progressFrom(state, 0, true), nil
}

// SkipCursor abandons an unfetchable page: the cursor is discarded and the
// next cycle's lower bound becomes now, so documents behind the skipped
// cursor stay out until they change upstream again. Deliberate, operator-
// invoked data loss.
func (u *syncUsecase) SkipCursor() (*dto.SyncProgress, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	state, err := u.stateRepo.Get()
	if err != nil {
		return nil, err
	}
	if state.Status != domain.SyncStatusError {
		return progressFrom(state, 0, state.Status == domain.SyncStatusSyncing), nil
	}

	log.Printf("[Sync] Skipping cursor %q", cursorPrefix(state.LastCursor))
	state.Status = domain.SyncStatusIdle
	state.LastCursor = ""
	state.ErrorMsg = ""
	skippedAt := u.now()
	state.LastSyncAt = &skippedAt
	if err := u.stateRepo.Save(state); err != nil {
		return nil, err
	}
	return progressFrom(state, 0, false), nil
}

// Reset clears all sync state and deletes every synced document, forcing the
// next sync to rebuild the library from scratch.
func (u *syncUsecase) Reset() (*dto.SyncProgress, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	state, err := u.stateRepo.Get()
	if err != nil {
		return nil, err
	}

	if err := u.docRepo.DeleteAll(); err != nil {
		return nil, err
	}

	state.Status = domain.SyncStatusIdle
	state.LastCursor = ""
	state.LastSyncAt = nil
	state.TotalSynced = 0
	state.ErrorMsg = ""
	if err := u.stateRepo.Save(state); err != nil {
		return nil, err
	}
	log.Printf("[Sync] Reset, local documents deleted")
	return progressFrom(state, 0, false), nil
}

func (u *syncUsecase) Status() (*dto.SyncProgress, error) {
	state, err := u.stateRepo.Get()
	if err != nil {
		return nil, err
	}
	return progressFrom(state, 0, state.Status == domain.SyncStatusSyncing), nil
}

// RunFullSync drives the state machine to a terminal state in one call.
// Rejects concurrent execution; an error state is reported without looping,
// since recovery needs an operator decision.
func (u *syncUsecase) RunFullSync(ctx context.Context) (*dto.SyncProgress, error) {
	progress, err := u.Status()
	if err != nil {
		return nil, err
	}
	if progress.Status == domain.SyncStatusSyncing {
		return nil, ErrSyncInProgress
	}
	if progress.Status == domain.SyncStatusError {
		return progress, nil
	}

	if progress, err = u.StartSync(); err != nil {
		return nil, err
	}

	for progress.Status == domain.SyncStatusSyncing {
		if err := ctx.Err(); err != nil {
			return progress, err
		}
		if progress, err = u.Advance(ctx); err != nil {
			return nil, err
		}
	}
	return progress, nil
}

// failStep converts a step failure into a persisted error state. The cursor
// in effect at the start of the step is kept so a retry resumes at the same
// page.
func (u *syncUsecase) failStep(state *domain.SyncState, cursor string, cause error) (*dto.SyncProgress, error) {
	log.Printf("[Sync] Step failed at cursor %q: %v", cursorPrefix(cursor), cause)

	state.Status = domain.SyncStatusError
	state.LastCursor = cursor
	state.ErrorMsg = fmt.Sprintf("sync failed at cursor %q: %v", cursorPrefix(cursor), cause)
	if err := u.stateRepo.Save(state); err != nil {
		return nil, err
	}
	return progressFrom(state, 0, false), nil
}

// cursorPrefix shortens opaque cursors for logs and error messages.
func cursorPrefix(cursor string) string {
	if cursor == "" {
		return "<start>"
	}
	if len(cursor) > 12 {
		return cursor[:12] + "..."
	}
	return cursor
}

func progressFrom(state *domain.SyncState, pageSize int, hasMore bool) *dto.SyncProgress {
	return &dto.SyncProgress{
		Status:           state.Status,
		TotalSynced:      state.TotalSynced,
		CurrentBatchSize: pageSize,
		HasMore:          hasMore,
		LastSyncAt:       state.LastSyncAt,
		Error:            state.ErrorMsg,
	}
}
