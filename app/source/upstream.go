package source

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lysyi3m/feedcast/app/config"
)

// Upstream mirrors the items of a remote RSS, Atom or JSON feed.
type Upstream struct {
	fetcher   *Fetcher
	parser    *Parser
	extractor *ContentExtractor
	settings  config.SourceConfig
}

func NewUpstream(fetcher *Fetcher, settings config.SourceConfig) *Upstream {
	return &Upstream{
		fetcher:   fetcher,
		parser:    NewParser(),
		extractor: NewContentExtractor(),
		settings:  settings,
	}
}

func (u *Upstream) Fetch(ctx context.Context) (*Metadata, []Item, error) {
	data, _, err := u.fetcher.Fetch(ctx, u.settings.URL, u.settings.GetTimeout())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch upstream feed %s: %w", u.settings.URL, err)
	}

	metadata, items, err := u.parser.Run(data)
	if err != nil {
		return nil, nil, fmt.Errorf("upstream feed %s: %w", u.settings.URL, err)
	}

	slog.Debug("Upstream feed fetched", "url", u.settings.URL, "items", len(items))

	return metadata, items, nil
}

// Enrich replaces item content with the readable text of the linked page when
// content extraction is enabled. Failures keep the original content.
func (u *Upstream) Enrich(ctx context.Context, items []Item) {
	if !u.settings.ExtractContent {
		return
	}

	successCount := 0
	errorCount := 0

	for i := range items {
		if ctx.Err() != nil {
			return
		}

		content, err := u.extractContent(ctx, items[i].Link)
		if err != nil {
			slog.Error("Failed to extract content for item", "url", items[i].Link, "error", err)
			errorCount++
			continue
		}

		items[i].Content = content
		successCount++
	}

	slog.Debug("Content extraction completed", "url", u.settings.URL, "success", successCount, "errors", errorCount)
}

func (u *Upstream) extractContent(ctx context.Context, link string) (string, error) {
	if link == "" {
		return "", fmt.Errorf("item has no link")
	}

	data, contentType, err := u.fetcher.Fetch(ctx, link, u.settings.GetTimeout())
	if err != nil {
		return "", fmt.Errorf("failed to fetch article content: %w", err)
	}

	if !strings.Contains(strings.ToLower(contentType), "text/html") {
		return "", fmt.Errorf("content type is not HTML: %s", contentType)
	}

	return u.extractor.Run(data, link)
}
