package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Loader handles loading and validation of feed configurations
type Loader struct {
	feedsDir string
}

// NewLoader creates a new configuration loader
func NewLoader(feedsDir string) *Loader {
	return &Loader{feedsDir: feedsDir}
}

// LoadAll loads every YAML feed file, ordered by file name
func (l *Loader) LoadAll() ([]*FeedConfig, error) {
	if _, err := os.Stat(l.feedsDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("feeds directory %s does not exist", l.feedsDir)
	}

	files, err := filepath.Glob(filepath.Join(l.feedsDir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to find YAML files: %w", err)
	}

	ymlFiles, err := filepath.Glob(filepath.Join(l.feedsDir, "*.yml"))
	if err != nil {
		return nil, fmt.Errorf("failed to find YML files: %w", err)
	}
	files = append(files, ymlFiles...)
	sort.Strings(files)

	configs := make([]*FeedConfig, 0, len(files))
	for _, file := range files {
		config, err := l.loadFile(file)
		if err != nil {
			return nil, fmt.Errorf("error loading %s: %w", file, err)
		}

		if err := l.validate(config); err != nil {
			return nil, fmt.Errorf("invalid config %s: %w", file, err)
		}

		configs = append(configs, config)
		slog.Debug("Configuration loaded", "feed", config.Name, "path", config.Path, "type", config.Type, "source", config.Source.Kind)
	}

	return configs, nil
}

// loadFile loads a single YAML configuration file
func (l *Loader) loadFile(path string) (*FeedConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var config FeedConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	fileName := filepath.Base(path)
	config.Name = strings.TrimSuffix(fileName, filepath.Ext(fileName))

	l.setDefaults(&config)

	return &config, nil
}

// setDefaults applies default values to configuration
func (l *Loader) setDefaults(config *FeedConfig) {
	if config.Source.Kind == "" {
		config.Source.Kind = SourceNone
	}
	if config.Source.MaxItems == 0 {
		config.Source.MaxItems = 50
	}
	if config.Source.Timeout == 0 {
		config.Source.Timeout = 30 // seconds
	}
}

// validate validates the configuration
func (l *Loader) validate(config *FeedConfig) error {
	if config.Path != "" && !strings.HasPrefix(config.Path, "/") {
		return fmt.Errorf("path must start with '/': %s", config.Path)
	}

	if config.CacheTime != nil && *config.CacheTime < 0 {
		return fmt.Errorf("cache time must be non-negative")
	}

	nonNegativeFields := map[string]int{
		"max items": config.Source.MaxItems,
		"timeout":   config.Source.Timeout,
	}

	for fieldName, fieldValue := range nonNegativeFields {
		if fieldValue < 0 {
			return fmt.Errorf("%s must be non-negative", fieldName)
		}
	}

	switch config.Source.Kind {
	case SourceNone, SourcePosts:
	case SourceUpstream:
		if config.Source.URL == "" {
			return fmt.Errorf("source URL is required for upstream feeds")
		}
	default:
		return fmt.Errorf("unknown source kind: %s", config.Source.Kind)
	}

	validFields := map[string]bool{
		"title":       true,
		"description": true,
		"content":     true,
		"authors":     true,
		"link":        true,
		"categories":  true,
	}

	for i, filter := range config.Filters {
		if !validFields[filter.Field] {
			return fmt.Errorf("invalid filter field at index %d: %s", i, filter.Field)
		}
		if len(filter.Includes) == 0 && len(filter.Excludes) == 0 {
			return fmt.Errorf("filter at index %d must have at least one include or exclude rule", i)
		}
	}

	return nil
}
