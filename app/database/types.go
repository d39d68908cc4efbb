package database

import (
	"time"
)

// Post is a piece of site content published through feeds
type Post struct {
	ID          int64
	GUID        string
	Title       string
	Link        string
	Description string
	Content     string
	AuthorName  string
	AuthorEmail string
	Category    string
	PublishedAt time.Time
	UpdatedAt   *time.Time
	Draft       bool
}
