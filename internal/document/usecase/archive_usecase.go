package usecase

import (
	"context"
	"errors"
	"log"
	"time"

	"readerdash/internal/document/domain"
	"readerdash/internal/document/dto"
	"readerdash/internal/document/repository"
)

// archiveUsecase implements ArchiveUsecase
type archiveUsecase struct {
	docRepo  repository.DocumentRepository
	provider domain.DocumentProvider
	tokens   TokenSource
	now      func() time.Time
}

// NewArchiveUsecase creates a new instance of archiveUsecase
func NewArchiveUsecase(docRepo repository.DocumentRepository, provider domain.DocumentProvider, tokens TokenSource) ArchiveUsecase {
	return &archiveUsecase{
		docRepo:  docRepo,
		provider: provider,
		tokens:   tokens,
		now:      time.Now,
	}
}

// ArchiveDocuments pushes location=archive upstream for each ID in turn,
// then applies one bulk local update for the subset that succeeded. A
// rejected ID is recorded and does not block the rest of the batch.
func (u *archiveUsecase) ArchiveDocuments(ctx context.Context, ids []string) (*dto.ArchiveResult, error) {
	token, err := u.tokens.ReadwiseToken()
	if err != nil {
		return nil, err
	}
	// A missing token fails the whole call up front; without the check every
	// ID would burn a rate-limited upstream call just to collect a 401.
	if token == "" {
		return nil, errors.New("readwise token not configured")
	}

	result := &dto.ArchiveResult{}
	var succeeded []string
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := u.provider.UpdateLocation(ctx, token, id, domain.LocationArchive); err != nil {
			log.Printf("[Archive] Upstream rejected %s: %v", id, err)
			result.Failed++
			result.Failures = append(result.Failures, dto.ArchiveFailure{ID: id, Reason: err.Error()})
			continue
		}
		succeeded = append(succeeded, id)
	}

	if len(succeeded) > 0 {
		if err := u.docRepo.MarkArchived(succeeded, u.now()); err != nil {
			return nil, err
		}
	}
	result.Success = len(succeeded)
	log.Printf("[Archive] Batch done: %d archived, %d failed", result.Success, result.Failed)
	return result, nil
}

// ArchiveByCriteria resolves matching document IDs locally and archives them
// as a regular batch.
func (u *archiveUsecase) ArchiveByCriteria(ctx context.Context, criteria domain.ArchiveCriteria) (*dto.ArchiveResult, error) {
	ids, err := u.docRepo.FindIDsByCriteria(criteria)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return &dto.ArchiveResult{}, nil
	}
	log.Printf("[Archive] Criteria matched %d documents", len(ids))
	return u.ArchiveDocuments(ctx, ids)
}
