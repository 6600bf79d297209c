package domain

import "time"

// ListFilter narrows the dashboard document listing.
type ListFilter struct {
	Location Location
	Category Category
	Site     string
	Limit    int
	Offset   int
}

// ArchiveCriteria selects documents for a bulk archive: everything older
// than OlderThan (by published date, falling back to created date) that
// matches the optional category/location/site filters.
type ArchiveCriteria struct {
	OlderThan *time.Time
	Category  Category
	Location  Location
	Site      string
}

// DailyCount is one day of save activity.
type DailyCount struct {
	Day   time.Time `json:"day"`
	Count int64     `json:"count"`
}

// SourceStat aggregates engagement per site.
type SourceStat struct {
	SiteName    string  `json:"site_name"`
	Documents   int64   `json:"documents"`
	Opened      int64   `json:"opened"`
	AvgProgress float64 `json:"avg_progress"`
}

// VelocityStat estimates reading throughput inside a window.
type VelocityStat struct {
	DocumentsOpened int64   `json:"documents_opened"`
	DocumentsRead   int64   `json:"documents_read"`
	WordsRead       float64 `json:"words_read"`
}
