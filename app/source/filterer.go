package source

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/lysyi3m/feedcast/app/config"
)

type Filterer struct{}

func NewFilterer() *Filterer {
	return &Filterer{}
}

// Run returns the items that pass every filter, keeping their order.
func (f *Filterer) Run(items []Item, filters []config.Filter) []Item {
	if len(filters) == 0 {
		return items
	}

	kept := make([]Item, 0, len(items))
	for _, item := range items {
		if reason, filtered := f.applyFilters(item, filters); filtered {
			slog.Debug("Item filtered", "guid", item.GUID, "reason", reason)
			continue
		}
		kept = append(kept, item)
	}

	return kept
}

func (f *Filterer) applyFilters(item Item, filters []config.Filter) (string, bool) {
	for _, filter := range filters {
		value := f.getFieldValue(item, filter.Field)

		for _, exclude := range filter.Excludes {
			if f.matchesFilter(value, exclude) {
				return fmt.Sprintf("Excluded by %s filter: contains '%s'", filter.Field, exclude), true
			}
		}

		if len(filter.Includes) > 0 {
			matched := false
			for _, include := range filter.Includes {
				if f.matchesFilter(value, include) {
					matched = true
					break
				}
			}
			if !matched {
				return fmt.Sprintf("Excluded by %s filter: does not contain any of %v", filter.Field, filter.Includes), true
			}
		}
	}

	return "", false
}

func (f *Filterer) matchesFilter(value, pattern string) bool {
	return strings.Contains(strings.ToLower(value), strings.ToLower(pattern))
}

func (f *Filterer) getFieldValue(item Item, field string) string {
	switch field {
	case "title":
		return item.Title
	case "description":
		return item.Description
	case "content":
		return item.Content
	case "authors":
		return strings.TrimSpace(item.AuthorName + " " + item.AuthorEmail)
	case "link":
		return item.Link
	case "categories":
		return strings.Join(item.Categories, " ")
	default:
		return ""
	}
}
