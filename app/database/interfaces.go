package database

import "context"

type PostReader interface {
	GetRecentPosts(ctx context.Context, category string, limit, offset int) ([]Post, error)
	GetPostCount(ctx context.Context) (int, error)
}

type PostWriter interface {
	UpsertPost(ctx context.Context, post Post) (int64, error)
}
