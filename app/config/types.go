package config

// FeedConfig is one feed file from the feeds directory
type FeedConfig struct {
	Name      string       `yaml:"-"` // Derived from filename (without extension)
	Path      string       `yaml:"path"`
	Type      string       `yaml:"type"`
	CacheTime *int         `yaml:"cache_time"` // seconds
	Feed      FeedInfo     `yaml:"feed"`
	Source    SourceConfig `yaml:"source"`
	Filters   []Filter     `yaml:"filters"`
}

// FeedInfo contains channel metadata written into every build
type FeedInfo struct {
	Title       string  `yaml:"title"`
	Link        string  `yaml:"link"`
	Description string  `yaml:"description"`
	SelfLink    string  `yaml:"self_link"`
	Image       string  `yaml:"image"`
	Copyright   string  `yaml:"copyright"`
	Author      *Author `yaml:"author"`
}

type Author struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

const (
	SourceNone     = "none"
	SourceUpstream = "upstream"
	SourcePosts    = "posts"
)

// SourceConfig selects where feed items come from
type SourceConfig struct {
	Kind           string `yaml:"kind"`
	URL            string `yaml:"url"`
	Category       string `yaml:"category"`
	MaxItems       int    `yaml:"max_items"`
	Timeout        int    `yaml:"timeout"` // seconds
	ExtractContent bool   `yaml:"extract_content"`
}

// Filter represents a content filter rule
type Filter struct {
	Field    string   `yaml:"field"`
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}
