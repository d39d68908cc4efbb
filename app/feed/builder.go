package feed

import (
	"context"
	"log/slog"
)

// LevelFatal marks conditions that make a feed unusable without stopping the
// process.
const LevelFatal = slog.Level(12)

type Builder struct{}

func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) Run(ctx context.Context, def Definition) (*Model, error) {
	if !def.Type.Known() {
		err := &UnknownFeedTypeError{Path: def.Path, Type: def.Type}
		slog.Log(ctx, LevelFatal, "Could not create feed", "feed", def.Path, "type", string(def.Type), "error", err)
		return emptyModel, nil
	}

	model := NewModel()
	if err := def.Build(ctx, model); err != nil {
		return nil, err
	}

	return model, nil
}
