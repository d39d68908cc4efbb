package source

import (
	"context"
	"strconv"
	"time"

	"github.com/gorilla/feeds"
)

type Metadata struct {
	Title       string
	Link        string
	Description string
	ImageURL    string
	PublishedAt *time.Time
}

type Item struct {
	GUID        string
	Title       string
	Link        string
	Description string
	Content     string
	PublishedAt time.Time
	UpdatedAt   *time.Time
	AuthorName  string
	AuthorEmail string
	Categories  []string

	EnclosureURL    string
	EnclosureLength int64
	EnclosureType   string
}

// ItemSource supplies the items of one feed build.
type ItemSource interface {
	Fetch(ctx context.Context) (*Metadata, []Item, error)
}

func (i Item) feedItem() *feeds.Item {
	item := &feeds.Item{
		Id:          i.GUID,
		Title:       i.Title,
		Link:        &feeds.Link{Href: i.Link},
		Description: i.Description,
		Content:     i.Content,
		Created:     i.PublishedAt,
	}

	if i.UpdatedAt != nil {
		item.Updated = *i.UpdatedAt
	}

	if i.AuthorName != "" || i.AuthorEmail != "" {
		item.Author = &feeds.Author{Name: i.AuthorName, Email: i.AuthorEmail}
	}

	if i.EnclosureURL != "" && i.EnclosureType != "" {
		item.Enclosure = &feeds.Enclosure{
			Url:    i.EnclosureURL,
			Length: strconv.FormatInt(i.EnclosureLength, 10),
			Type:   i.EnclosureType,
		}
	}

	return item
}
