package api

import (
	"context"

	"github.com/lysyi3m/feedcast/app/feed"
)

type FeedCache interface {
	Get(ctx context.Context, index int) (string, error)
	Definitions() []feed.Definition
	Cached() int
}

var _ FeedCache = (*feed.Cache)(nil)

type Handler struct {
	cache FeedCache
}
