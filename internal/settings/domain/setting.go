package domain

import "time"

// Setting is one persisted key-value configuration entry. The Readwise API
// token lives here and nowhere else.
type Setting struct {
	Key       string    `json:"key" gorm:"primaryKey"`
	Value     string    `json:"-"`
	UpdatedAt time.Time `json:"updated_at"`
}

const KeyReadwiseToken = "readwise_token"
