package feed

import (
	"time"
)

// Post is a single forum post as seen in the latest-posts feed.
// Immutable once fetched; posts are not retained beyond the current cycle.
type Post struct {
	ID           string // source-assigned identifier, extracted from the entry GUID
	NumericID    int64  // numeric form of ID, 0 when the GUID carries no number
	Title        string
	Excerpt      string // preview with HTML stripped and whitespace collapsed
	RawExcerpt   string // preview as published, HTML included
	Author       string // display name
	Link         string
	ThumbnailURL string // first image in the preview, if any
	PublishedAt  *time.Time
}
