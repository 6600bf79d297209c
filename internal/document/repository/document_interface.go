package repository

import (
	"time"

	"readerdash/internal/document/domain"
)

// DocumentRepository defines the interface for document storage operations
type DocumentRepository interface {
	UpsertBatch(docs []*domain.Document) error
	Count() (int64, error)
	GetByID(id string) (*domain.Document, error)
	List(filter domain.ListFilter) ([]*domain.Document, int64, error)
	FindIDsByCriteria(criteria domain.ArchiveCriteria) ([]string, error)
	MarkArchived(ids []string, movedAt time.Time) error
	DeleteAll() error

	CountByLocation() (map[domain.Location]int64, error)
	CountByCategory() (map[domain.Category]int64, error)
	DailyActivity(since time.Time) ([]domain.DailyCount, error)
	StaleDocuments(cutoffs map[domain.Category]time.Time, limit int) ([]*domain.Document, error)
	SourceEngagement(limit int) ([]domain.SourceStat, error)
	ReadingVelocity(since time.Time) (*domain.VelocityStat, error)
}
