package feed

import (
	"context"
	"time"

	"github.com/gorilla/feeds"
)

type Type string

const (
	TypeRSS2  Type = "rss2"
	TypeAtom1 Type = "atom1"
	TypeJSON1 Type = "json1"
)

func (t Type) Known() bool {
	switch t {
	case TypeRSS2, TypeAtom1, TypeJSON1:
		return true
	}
	return false
}

const (
	DefaultPath      = "/feed.xml"
	DefaultCacheTime = 15 * time.Minute
)

// BuildFunc fills a freshly created Model. It may block; nothing cancels it on
// behalf of the callers waiting for its result.
type BuildFunc func(ctx context.Context, m *Model) error

// Options is a single raw feed entry as supplied by the caller. Zero values are
// replaced by defaults during normalization; a nil CacheTime means "not set".
type Options struct {
	Path      string
	Type      Type
	CacheTime *time.Duration
	Build     BuildFunc
}

// Definition is a normalized feed. Index is its position in the registry and
// the key of its cache slot.
type Definition struct {
	Index     int
	Path      string
	Type      Type
	CacheTime time.Duration
	Build     BuildFunc
}

// Model accumulates feed metadata and items for a single build attempt.
type Model struct {
	*feeds.Feed

	// SelfLink is the public URL of the rendered feed (atom:link rel="self"
	// for RSS, feed_url for JSON Feed).
	SelfLink string
}

func NewModel() *Model {
	return &Model{Feed: &feeds.Feed{Link: &feeds.Link{}}}
}

func (m *Model) IsEmpty() bool {
	return m == nil || m.Feed == nil
}

var emptyModel = &Model{}

func CacheTime(d time.Duration) *time.Duration {
	return &d
}
