package source

import (
	"context"
	"fmt"

	"github.com/lysyi3m/feedcast/app/config"
	"github.com/lysyi3m/feedcast/app/database"
)

const defaultPostsLimit = 50

// Posts publishes the newest posts from the site database. Filters are applied
// page by page so that limit counts matching posts only.
type Posts struct {
	repo     database.PostReader
	filterer *Filterer
	category string
	limit    int
	filters  []config.Filter
}

func NewPosts(repo database.PostReader, category string, limit int, filters []config.Filter) *Posts {
	if limit <= 0 {
		limit = defaultPostsLimit
	}
	return &Posts{
		repo:     repo,
		filterer: NewFilterer(),
		category: category,
		limit:    limit,
		filters:  filters,
	}
}

func (p *Posts) Fetch(ctx context.Context) (*Metadata, []Item, error) {
	var items []Item

	for offset := 0; len(items) < p.limit; offset += p.limit {
		posts, err := p.repo.GetRecentPosts(ctx, p.category, p.limit, offset)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load posts: %w", err)
		}

		page := make([]Item, 0, len(posts))
		for _, post := range posts {
			page = append(page, postItem(post))
		}
		items = append(items, p.filterer.Run(page, p.filters)...)

		if len(posts) < p.limit {
			break
		}
	}

	if len(items) > p.limit {
		items = items[:p.limit]
	}

	return nil, items, nil
}

func postItem(post database.Post) Item {
	return Item{
		GUID:        post.GUID,
		Title:       post.Title,
		Link:        post.Link,
		Description: post.Description,
		Content:     post.Content,
		PublishedAt: post.PublishedAt,
		UpdatedAt:   post.UpdatedAt,
		AuthorName:  post.AuthorName,
		AuthorEmail: post.AuthorEmail,
		Categories:  nonEmpty(post.Category),
	}
}

func nonEmpty(values ...string) []string {
	var out []string
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
