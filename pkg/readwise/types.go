package readwise

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// UpstreamError is returned for non-success responses from the Reader API.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("readwise: status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("readwise: status %d", e.StatusCode)
}

type listResponse struct {
	Count          int            `json:"count"`
	NextPageCursor *string        `json:"nextPageCursor"`
	Results        []wireDocument `json:"results"`
}

// wireTag is a single tag object as the Reader API ships it.
type wireTag struct {
	Name string `json:"name"`
}

// tagSet absorbs both wire encodings of the tag collection: a plain array of
// tag objects, or a map of tag key to tag object. Either way it normalizes to
// a deduplicated, ordered list of tag names.
type tagSet []string

func (t *tagSet) UnmarshalJSON(data []byte) error {
	*t = nil

	var asList []wireTag
	if err := json.Unmarshal(data, &asList); err == nil {
		seen := make(map[string]struct{}, len(asList))
		for _, tag := range asList {
			if tag.Name == "" {
				continue
			}
			if _, ok := seen[tag.Name]; ok {
				continue
			}
			seen[tag.Name] = struct{}{}
			*t = append(*t, tag.Name)
		}
		return nil
	}

	var asMap map[string]wireTag
	if err := json.Unmarshal(data, &asMap); err != nil {
		return fmt.Errorf("unsupported tag encoding: %w", err)
	}
	// A key-fallback name can collide with another entry's name, so the map
	// branch dedupes too.
	seen := make(map[string]struct{}, len(asMap))
	for key, tag := range asMap {
		name := tag.Name
		if name == "" {
			name = key
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		*t = append(*t, name)
	}
	// Map iteration order is random; sort so the result is stable.
	sort.Strings(*t)
	return nil
}

// wireTime tolerates the timestamp shapes the API mixes: RFC3339 with or
// without sub-seconds, bare dates, and epoch milliseconds (published_date).
type wireTime struct {
	t *time.Time
}

func (w *wireTime) UnmarshalJSON(data []byte) error {
	w.t = nil
	if string(data) == "null" {
		return nil
	}

	var millis int64
	if err := json.Unmarshal(data, &millis); err == nil {
		parsed := time.UnixMilli(millis).UTC()
		w.t = &parsed
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			w.t = &parsed
			return nil
		}
	}
	return fmt.Errorf("unsupported timestamp %q", raw)
}

type wireDocument struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Author          string   `json:"author"`
	URL             string   `json:"url"`
	SourceURL       string   `json:"source_url"`
	Summary         string   `json:"summary"`
	Category        string   `json:"category"`
	Location        string   `json:"location"`
	SiteName        string   `json:"site_name"`
	WordCount       int      `json:"word_count"`
	Tags            tagSet   `json:"tags"`
	ReadingProgress *float64 `json:"reading_progress"`
	PublishedDate   wireTime `json:"published_date"`
	FirstOpenedAt   wireTime `json:"first_opened_at"`
	LastOpenedAt    wireTime `json:"last_opened_at"`
	LastMovedAt     wireTime `json:"last_moved_at"`
	ParentID        string   `json:"parent_id"`
	CreatedAt       wireTime `json:"created_at"`
	UpdatedAt       wireTime `json:"updated_at"`
}
