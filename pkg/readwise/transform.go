package readwise

import (
	"readerdash/internal/document/domain"
)

// convertWireDocument maps one API document into the persisted shape. Pure:
// missing optional timestamps stay nil, a missing reading_progress becomes 0.
func convertWireDocument(w *wireDocument) *domain.Document {
	progress := 0.0
	if w.ReadingProgress != nil {
		progress = *w.ReadingProgress
	}

	doc := &domain.Document{
		ReadwiseID:      w.ID,
		Title:           w.Title,
		Author:          w.Author,
		URL:             w.URL,
		SourceURL:       w.SourceURL,
		Summary:         w.Summary,
		Category:        domain.Category(w.Category),
		Location:        domain.Location(w.Location),
		SiteName:        w.SiteName,
		WordCount:       w.WordCount,
		Tags:            domain.StringArray(w.Tags),
		ReadingProgress: progress,
		PublishedDate:   w.PublishedDate.t,
		FirstOpenedAt:   w.FirstOpenedAt.t,
		LastOpenedAt:    w.LastOpenedAt.t,
		LastMovedAt:     w.LastMovedAt.t,
		ParentID:        w.ParentID,
	}
	if doc.Tags == nil {
		doc.Tags = domain.StringArray{}
	}

	// created_at/updated_at mirror upstream bookkeeping, not local insert
	// time; an absent value stays zero.
	if w.CreatedAt.t != nil {
		doc.CreatedAt = *w.CreatedAt.t
	}
	if w.UpdatedAt.t != nil {
		doc.UpdatedAt = *w.UpdatedAt.t
	}

	return doc
}
