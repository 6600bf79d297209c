package repository

import (
	"errors"
	"time"

	"readerdash/internal/document/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// documentRepository implements DocumentRepository interface
type documentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository creates a new instance of documentRepository
func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{
		db: db,
	}
}

// UpsertBatch inserts or fully replaces documents keyed by readwise_id.
// Replaying a page is safe: the second write wins field-for-field.
func (r *documentRepository) UpsertBatch(docs []*domain.Document) error {
	if len(docs) == 0 {
		return nil
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "readwise_id"}},
		UpdateAll: true,
	}).Create(&docs).Error
}

func (r *documentRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&domain.Document{}).Count(&count).Error
	return count, err
}

func (r *documentRepository) GetByID(id string) (*domain.Document, error) {
	var doc domain.Document
	err := r.db.Where("readwise_id = ?", id).First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepository) List(filter domain.ListFilter) ([]*domain.Document, int64, error) {
	query := r.db.Model(&domain.Document{})
	if filter.Location != "" {
		query = query.Where("location = ?", filter.Location)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Site != "" {
		query = query.Where("site_name = ?", filter.Site)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	var docs []*domain.Document
	err := query.Order("created_at DESC").Limit(limit).Offset(filter.Offset).Find(&docs).Error
	if err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

func (r *documentRepository) FindIDsByCriteria(criteria domain.ArchiveCriteria) ([]string, error) {
	query := r.db.Model(&domain.Document{})
	if criteria.OlderThan != nil {
		query = query.Where("COALESCE(published_date, created_at) < ?", *criteria.OlderThan)
	}
	if criteria.Category != "" {
		query = query.Where("category = ?", criteria.Category)
	}
	if criteria.Location != "" {
		query = query.Where("location = ?", criteria.Location)
	} else {
		// Never re-archive what is already archived.
		query = query.Where("location <> ?", domain.LocationArchive)
	}
	if criteria.Site != "" {
		query = query.Where("site_name = ?", criteria.Site)
	}

	var ids []string
	err := query.Order("created_at ASC").Pluck("readwise_id", &ids).Error
	return ids, err
}

// MarkArchived applies the local half of a batch archive: location and
// last_moved_at only, other fields untouched.
func (r *documentRepository) MarkArchived(ids []string, movedAt time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.Model(&domain.Document{}).
		Where("readwise_id IN ?", ids).
		Updates(map[string]interface{}{
			"location":      domain.LocationArchive,
			"last_moved_at": movedAt,
		}).Error
}

func (r *documentRepository) DeleteAll() error {
	return r.db.Where("1 = 1").Delete(&domain.Document{}).Error
}

func (r *documentRepository) CountByLocation() (map[domain.Location]int64, error) {
	type row struct {
		Location domain.Location
		Total    int64
	}
	var rows []row
	err := r.db.Model(&domain.Document{}).
		Select("location, COUNT(*) AS total").
		Group("location").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[domain.Location]int64, len(rows))
	for _, rw := range rows {
		counts[rw.Location] = rw.Total
	}
	return counts, nil
}

func (r *documentRepository) CountByCategory() (map[domain.Category]int64, error) {
	type row struct {
		Category domain.Category
		Total    int64
	}
	var rows []row
	err := r.db.Model(&domain.Document{}).
		Select("category, COUNT(*) AS total").
		Group("category").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[domain.Category]int64, len(rows))
	for _, rw := range rows {
		counts[rw.Category] = rw.Total
	}
	return counts, nil
}

func (r *documentRepository) DailyActivity(since time.Time) ([]domain.DailyCount, error) {
	var rows []domain.DailyCount
	err := r.db.Model(&domain.Document{}).
		Select("DATE_TRUNC('day', created_at) AS day, COUNT(*) AS count").
		Where("created_at >= ?", since).
		Group("day").
		Order("day ASC").
		Scan(&rows).Error
	return rows, err
}

// StaleDocuments finds untouched documents past their category cutoff:
// zero progress, still in an actionable location, and older (by published
// date, falling back to created date) than the cutoff for their category.
func (r *documentRepository) StaleDocuments(cutoffs map[domain.Category]time.Time, limit int) ([]*domain.Document, error) {
	if len(cutoffs) == 0 {
		return nil, nil
	}

	age := r.db.Session(&gorm.Session{NewDB: true})
	for category, cutoff := range cutoffs {
		age = age.Or(r.db.Session(&gorm.Session{NewDB: true}).
			Where("category = ?", category).
			Where("COALESCE(published_date, created_at) < ?", cutoff))
	}

	if limit <= 0 {
		limit = 100
	}

	var docs []*domain.Document
	err := r.db.Model(&domain.Document{}).
		Where("reading_progress = 0").
		Where("location IN ?", []domain.Location{domain.LocationNew, domain.LocationLater, domain.LocationShortlist}).
		Where(age).
		Order("COALESCE(published_date, created_at) ASC").
		Limit(limit).
		Find(&docs).Error
	return docs, err
}

func (r *documentRepository) SourceEngagement(limit int) ([]domain.SourceStat, error) {
	if limit <= 0 {
		limit = 20
	}
	var rows []domain.SourceStat
	err := r.db.Model(&domain.Document{}).
		Select("site_name, COUNT(*) AS documents, COUNT(first_opened_at) AS opened, AVG(reading_progress) AS avg_progress").
		Where("site_name <> ''").
		Group("site_name").
		Order("documents DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *documentRepository) ReadingVelocity(since time.Time) (*domain.VelocityStat, error) {
	var stat domain.VelocityStat
	err := r.db.Model(&domain.Document{}).
		Select("COUNT(*) AS documents_opened, "+
			"COUNT(*) FILTER (WHERE reading_progress >= 1) AS documents_read, "+
			"COALESCE(SUM(word_count * reading_progress), 0) AS words_read").
		Where("last_opened_at >= ?", since).
		Scan(&stat).Error
	if err != nil {
		return nil, err
	}
	return &stat, nil
}
