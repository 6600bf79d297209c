package domain

import (
	"context"
	"time"
)

// Page is one fetched slice of the upstream listing. NextCursor is empty when
// the upstream reports no further pages.
type Page struct {
	Documents  []*Document
	NextCursor string
	Count      int
}

// DocumentProvider is the upstream Reader API surface the sync engine and the
// archive executor talk to. Implementations own rate limiting and retries.
type DocumentProvider interface {
	FetchPage(ctx context.Context, token, cursor string, updatedAfter *time.Time) (*Page, error)
	ValidateToken(ctx context.Context, token string) bool
	UpdateLocation(ctx context.Context, token, id string, location Location) error
}
