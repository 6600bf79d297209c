package domain

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// Category is the Reader content type of a document
type Category string

const (
	CategoryArticle   Category = "article"
	CategoryEmail     Category = "email"
	CategoryRSS       Category = "rss"
	CategoryHighlight Category = "highlight"
	CategoryNote      Category = "note"
	CategoryPDF       Category = "pdf"
	CategoryEPUB      Category = "epub"
	CategoryTweet     Category = "tweet"
	CategoryVideo     Category = "video"
)

// Location is the Reader workflow bucket a document sits in
type Location string

const (
	LocationNew       Location = "new"
	LocationLater     Location = "later"
	LocationShortlist Location = "shortlist"
	LocationArchive   Location = "archive"
	LocationFeed      Location = "feed"
)

// StringArray is a custom type to handle JSON array in GORM
type StringArray []string

// Value implements driver.Valuer
func (a StringArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	return json.Marshal(a)
}

// Scan implements sql.Scanner
func (a *StringArray) Scan(value interface{}) error {
	if value == nil {
		*a = []string{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}
	if len(bytes) == 0 {
		*a = []string{}
		return nil
	}
	return json.Unmarshal(bytes, a)
}

// Document mirrors one Reader document. The Readwise ID is the upsert key;
// re-syncing the same ID replaces every field. CreatedAt/UpdatedAt carry the
// upstream values, so gorm's automatic timestamps are disabled.
type Document struct {
	ReadwiseID      string      `json:"readwise_id" gorm:"primaryKey"`
	Title           string      `json:"title"`
	Author          string      `json:"author"`
	URL             string      `json:"url"`
	SourceURL       string      `json:"source_url"`
	Summary         string      `json:"summary"`
	Category        Category    `json:"category" gorm:"index"`
	Location        Location    `json:"location" gorm:"index"`
	SiteName        string      `json:"site_name" gorm:"index"`
	WordCount       int         `json:"word_count"`
	Tags            StringArray `json:"tags" gorm:"type:text"`
	ReadingProgress float64     `json:"reading_progress"`
	PublishedDate   *time.Time  `json:"published_date,omitempty"`
	FirstOpenedAt   *time.Time  `json:"first_opened_at,omitempty"`
	LastOpenedAt    *time.Time  `json:"last_opened_at,omitempty"`
	LastMovedAt     *time.Time  `json:"last_moved_at,omitempty"`
	ParentID        string      `json:"parent_id,omitempty" gorm:"index"`
	CreatedAt       time.Time   `json:"created_at" gorm:"autoCreateTime:false;index"`
	UpdatedAt       time.Time   `json:"updated_at" gorm:"autoUpdateTime:false"`
}
