package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// PostRepository handles database operations for posts
type PostRepository struct {
	db *DB
}

var (
	_ PostReader = (*PostRepository)(nil)
	_ PostWriter = (*PostRepository)(nil)
)

// NewPostRepository creates a new post repository
func NewPostRepository(db *DB) *PostRepository {
	return &PostRepository{db: db}
}

// UpsertPost inserts a post or updates the existing one with the same GUID
func (r *PostRepository) UpsertPost(ctx context.Context, post Post) (int64, error) {
	var updatedAt sql.NullInt64
	if post.UpdatedAt != nil {
		updatedAt = sql.NullInt64{Int64: post.UpdatedAt.Unix(), Valid: true}
	}

	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO posts (
			guid, title, link, description, content,
			author_name, author_email, category,
			published_at, updated_at, draft
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (guid) DO UPDATE SET
			title = excluded.title,
			link = excluded.link,
			description = excluded.description,
			content = excluded.content,
			author_name = excluded.author_name,
			author_email = excluded.author_email,
			category = excluded.category,
			published_at = excluded.published_at,
			updated_at = excluded.updated_at,
			draft = excluded.draft
		RETURNING id
	`, post.GUID, post.Title, post.Link, post.Description, post.Content,
		post.AuthorName, post.AuthorEmail, post.Category,
		post.PublishedAt.Unix(), updatedAt, post.Draft).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("failed to upsert post: %w", err)
	}

	return id, nil
}

// GetRecentPosts returns published posts newest first, optionally limited to one
// category, skipping the first offset rows
func (r *PostRepository) GetRecentPosts(ctx context.Context, category string, limit, offset int) ([]Post, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, guid, title, link, description, content,
		       author_name, author_email, category,
		       published_at, updated_at, draft
		FROM posts
		WHERE draft = 0
		  AND (? = '' OR category = ?)
		ORDER BY published_at DESC, id DESC
		LIMIT ? OFFSET ?
	`, category, category, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent posts: %w", err)
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		var post Post
		var publishedAt int64
		var updatedAt sql.NullInt64

		err := rows.Scan(
			&post.ID, &post.GUID, &post.Title, &post.Link, &post.Description, &post.Content,
			&post.AuthorName, &post.AuthorEmail, &post.Category,
			&publishedAt, &updatedAt, &post.Draft,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post row: %w", err)
		}

		post.PublishedAt = time.Unix(publishedAt, 0).UTC()
		if updatedAt.Valid {
			t := time.Unix(updatedAt.Int64, 0).UTC()
			post.UpdatedAt = &t
		}

		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating post rows: %w", err)
	}

	return posts, nil
}

// GetPostCount returns the number of published posts
func (r *PostRepository) GetPostCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM posts WHERE draft = 0").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get post count: %w", err)
	}
	return count, nil
}
