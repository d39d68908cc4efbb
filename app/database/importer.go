package database

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"
)

// postRecord is one entry of a posts import file
type postRecord struct {
	GUID        string     `yaml:"guid"`
	Title       string     `yaml:"title"`
	Link        string     `yaml:"link"`
	Description string     `yaml:"description"`
	Content     string     `yaml:"content"`
	Author      postAuthor `yaml:"author"`
	Category    string     `yaml:"category"`
	PublishedAt time.Time  `yaml:"published_at"`
	UpdatedAt   *time.Time `yaml:"updated_at"`
	Draft       bool       `yaml:"draft"`
}

type postAuthor struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

// ImportPosts upserts every post of a YAML list and returns how many were written.
// The GUID defaults to the link.
func ImportPosts(ctx context.Context, r io.Reader, w PostWriter) (int, error) {
	var records []postRecord
	if err := yaml.NewDecoder(r).Decode(&records); err != nil && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("failed to parse posts: %w", err)
	}

	for i, rec := range records {
		guid := rec.GUID
		if guid == "" {
			guid = rec.Link
		}
		if guid == "" {
			return i, fmt.Errorf("post at index %d has neither guid nor link", i)
		}
		if rec.PublishedAt.IsZero() {
			return i, fmt.Errorf("post %s: published_at is required", guid)
		}

		_, err := w.UpsertPost(ctx, Post{
			GUID:        guid,
			Title:       rec.Title,
			Link:        rec.Link,
			Description: rec.Description,
			Content:     rec.Content,
			AuthorName:  rec.Author.Name,
			AuthorEmail: rec.Author.Email,
			Category:    rec.Category,
			PublishedAt: rec.PublishedAt,
			UpdatedAt:   rec.UpdatedAt,
			Draft:       rec.Draft,
		})
		if err != nil {
			return i, fmt.Errorf("post %s: %w", guid, err)
		}
	}

	return len(records), nil
}
