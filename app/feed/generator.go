package feed

import (
	"encoding/json"
	"encoding/xml"
	"fmt"

	"github.com/gorilla/feeds"
)

const (
	rssVersion       = "2.0"
	contentNamespace = "http://purl.org/rss/1.0/modules/content/"
	atomNamespace    = "http://www.w3.org/2005/Atom"
)

var contentTypes = map[Type]string{
	TypeRSS2:  "application/rss+xml",
	TypeAtom1: "application/atom+xml",
	TypeJSON1: "application/json",
}

func ContentType(t Type) string {
	if ct, ok := contentTypes[t]; ok {
		return ct
	}
	return "application/xml"
}

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) Run(m *Model, t Type) (string, error) {
	if m.IsEmpty() {
		return "", nil
	}

	switch t {
	case TypeRSS2:
		return feeds.ToXML(&rssWithSelfLink{model: m})
	case TypeAtom1:
		return feeds.ToXML(&feeds.Atom{Feed: m.Feed})
	case TypeJSON1:
		return g.json(m)
	}

	return "", fmt.Errorf("unsupported feed type %q", t)
}

func (g *Generator) json(m *Model) (string, error) {
	jsonFeed := (&feeds.JSON{Feed: m.Feed}).JSONFeed()
	if m.SelfLink != "" {
		jsonFeed.FeedUrl = m.SelfLink
	}

	data, err := json.MarshalIndent(jsonFeed, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode JSON feed: %w", err)
	}

	return string(data), nil
}

// rssWithSelfLink renders the gorilla/feeds RSS channel with the Atom
// namespace and a self link, which the library channel does not carry.
type rssWithSelfLink struct {
	model *Model
}

type rssDocument struct {
	XMLName          xml.Name    `xml:"rss"`
	Version          string      `xml:"version,attr"`
	ContentNamespace string      `xml:"xmlns:content,attr"`
	AtomNamespace    string      `xml:"xmlns:atom,attr"`
	Channel          *rssChannel `xml:"channel"`
}

type rssChannel struct {
	*feeds.RssFeed
	AtomLink *rssAtomLink `xml:"atom:link,omitempty"`
}

type rssAtomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

func (r *rssWithSelfLink) FeedXml() interface{} {
	channel := &rssChannel{
		RssFeed: (&feeds.Rss{Feed: r.model.Feed}).RssFeed(),
	}
	if r.model.SelfLink != "" {
		channel.AtomLink = &rssAtomLink{
			Href: r.model.SelfLink,
			Rel:  "self",
			Type: ContentType(TypeRSS2),
		}
	}

	return &rssDocument{
		Version:          rssVersion,
		ContentNamespace: contentNamespace,
		AtomNamespace:    atomNamespace,
		Channel:          channel,
	}
}
