package feed

import (
	"context"
	"fmt"
)

// Config is one of Single, Many or Factory.
type Config interface {
	options(ctx context.Context, resolveFactory bool) ([]Options, error)
}

type Single Options

type Many []Options

// Factory produces a Single or Many when the registry is created.
type Factory func(ctx context.Context) (Config, error)

func (s Single) options(context.Context, bool) ([]Options, error) {
	return []Options{Options(s)}, nil
}

func (m Many) options(context.Context, bool) ([]Options, error) {
	return append([]Options(nil), m...), nil
}

func (f Factory) options(ctx context.Context, resolveFactory bool) ([]Options, error) {
	if !resolveFactory {
		return nil, fmt.Errorf("factory must resolve to a single feed or a list of feeds")
	}
	if f == nil {
		return nil, fmt.Errorf("factory is nil")
	}

	cfg, err := f(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve feed factory: %w", err)
	}
	if cfg == nil {
		return nil, fmt.Errorf("feed factory returned no configuration")
	}

	return cfg.options(ctx, false)
}

// Registry is the ordered, immutable list of feed definitions.
type Registry struct {
	definitions []Definition
}

func NewRegistry(ctx context.Context, cfg Config) (*Registry, error) {
	if cfg == nil {
		return nil, &ConfigurationError{Err: fmt.Errorf("no feeds configured")}
	}

	raw, err := cfg.options(ctx, true)
	if err != nil {
		return nil, &ConfigurationError{Err: err}
	}

	definitions := make([]Definition, 0, len(raw))
	seen := make(map[string]int, len(raw))

	for i, o := range raw {
		def := normalize(i, o)

		if def.CacheTime < 0 {
			return nil, &ConfigurationError{Err: fmt.Errorf("feed %s: cache time must be non-negative", def.Path)}
		}
		if prev, ok := seen[def.Path]; ok {
			return nil, &ConfigurationError{Err: fmt.Errorf("feed %s: path already used by feed %d", def.Path, prev)}
		}
		seen[def.Path] = i

		definitions = append(definitions, def)
	}

	return &Registry{definitions: definitions}, nil
}

func normalize(index int, o Options) Definition {
	def := Definition{
		Index:     index,
		Path:      o.Path,
		Type:      o.Type,
		CacheTime: DefaultCacheTime,
		Build:     o.Build,
	}

	if def.Path == "" {
		def.Path = DefaultPath
	}
	if o.CacheTime != nil {
		def.CacheTime = *o.CacheTime
	}
	if def.Build == nil {
		def.Build = func(context.Context, *Model) error { return nil }
	}

	return def
}

func (r *Registry) Len() int {
	return len(r.definitions)
}

func (r *Registry) Definition(index int) (Definition, error) {
	if index < 0 || index >= len(r.definitions) {
		return Definition{}, fmt.Errorf("feed %d: %w", index, ErrFeedNotFound)
	}
	return r.definitions[index], nil
}

func (r *Registry) Definitions() []Definition {
	return append([]Definition(nil), r.definitions...)
}
