package source

import (
	"cmp"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gorilla/feeds"

	"github.com/lysyi3m/feedcast/app/config"
	"github.com/lysyi3m/feedcast/app/database"
	"github.com/lysyi3m/feedcast/app/feed"
)

// Deps are the shared services handed to every build function.
type Deps struct {
	Fetcher *Fetcher
	Posts   database.PostReader
	BaseURL string
}

// NewFactory returns a registry configuration that reads the feed files on
// first use.
func NewFactory(loader *config.Loader, deps Deps) feed.Factory {
	return func(ctx context.Context) (feed.Config, error) {
		configs, err := loader.LoadAll()
		if err != nil {
			return nil, err
		}

		options := make(feed.Many, 0, len(configs))
		for _, c := range configs {
			build, err := NewBuildFunc(c, deps)
			if err != nil {
				return nil, fmt.Errorf("feed %s: %w", c.Name, err)
			}

			options = append(options, feed.Options{
				Path:      c.Path,
				Type:      feed.Type(c.Type),
				CacheTime: c.GetCacheTime(),
				Build:     build,
			})
		}

		return options, nil
	}
}

type contentEnricher interface {
	Enrich(ctx context.Context, items []Item)
}

// NewBuildFunc binds a feed file to its item source.
func NewBuildFunc(c *config.FeedConfig, deps Deps) (feed.BuildFunc, error) {
	var itemSource ItemSource

	switch c.Source.Kind {
	case config.SourceUpstream:
		fetcher := deps.Fetcher
		if fetcher == nil {
			fetcher = NewFetcher(nil, "")
		}
		itemSource = NewUpstream(fetcher, c.Source)
	case config.SourcePosts:
		if deps.Posts == nil {
			return nil, fmt.Errorf("posts source requires a database")
		}
		itemSource = NewPosts(deps.Posts, c.Source.Category, c.Source.MaxItems, c.Filters)
	case config.SourceNone, "":
	default:
		return nil, fmt.Errorf("unknown source kind: %s", c.Source.Kind)
	}

	info := c.Feed
	selfLink := info.SelfLink
	if selfLink == "" && deps.BaseURL != "" {
		selfLink = strings.TrimRight(deps.BaseURL, "/") + cmp.Or(c.Path, feed.DefaultPath)
	}
	filters := c.Filters
	maxItems := c.Source.MaxItems
	filterer := NewFilterer()

	return func(ctx context.Context, m *feed.Model) error {
		applyInfo(m, info, selfLink)

		if itemSource == nil {
			return nil
		}

		metadata, items, err := itemSource.Fetch(ctx)
		if err != nil {
			return err
		}
		applyMetadata(m, metadata)

		items = filterer.Run(items, filters)
		if maxItems > 0 && len(items) > maxItems {
			items = items[:maxItems]
		}

		if enricher, ok := itemSource.(contentEnricher); ok {
			enricher.Enrich(ctx, items)
		}

		for _, item := range items {
			m.Add(item.feedItem())
			m.Updated = latest(m.Updated, item.PublishedAt, item.UpdatedAt)
		}

		return nil
	}, nil
}

func applyInfo(m *feed.Model, info config.FeedInfo, selfLink string) {
	m.Title = info.Title
	m.Link = &feeds.Link{Href: info.Link}
	m.Description = info.Description
	m.Copyright = info.Copyright
	m.SelfLink = selfLink

	if info.Image != "" {
		m.Image = &feeds.Image{Url: info.Image, Title: info.Title, Link: info.Link}
	}
	if info.Author != nil {
		m.Author = &feeds.Author{Name: info.Author.Name, Email: info.Author.Email}
	}
}

// applyMetadata fills channel fields the feed file leaves blank.
func applyMetadata(m *feed.Model, metadata *Metadata) {
	if metadata == nil {
		return
	}

	m.Title = cmp.Or(m.Title, metadata.Title)
	m.Description = cmp.Or(m.Description, metadata.Description)
	if m.Link == nil || m.Link.Href == "" {
		m.Link = &feeds.Link{Href: metadata.Link}
	}
	if m.Image == nil && metadata.ImageURL != "" {
		m.Image = &feeds.Image{Url: metadata.ImageURL, Title: m.Title, Link: m.Link.Href}
	}
	if metadata.PublishedAt != nil && m.Created.IsZero() {
		m.Created = *metadata.PublishedAt
	}
}

func latest(current time.Time, published time.Time, updated *time.Time) time.Time {
	if published.After(current) {
		current = published
	}
	if updated != nil && updated.After(current) {
		current = *updated
	}
	return current
}
