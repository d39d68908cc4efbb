package config

import (
	"time"
)

// GetCacheTime returns the configured cache time, or nil when the file does not set one
func (c *FeedConfig) GetCacheTime() *time.Duration {
	if c.CacheTime == nil {
		return nil
	}
	d := time.Duration(*c.CacheTime) * time.Second
	return &d
}

// GetTimeout returns the upstream fetch timeout as time.Duration
func (s *SourceConfig) GetTimeout() time.Duration {
	if s.Timeout <= 0 {
		return 30 * time.Second // default 30 seconds
	}
	return time.Duration(s.Timeout) * time.Second
}
