package static

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/lysyi3m/feedcast/app/feed"
)

type FeedCache interface {
	Get(ctx context.Context, index int) (string, error)
	Definitions() []feed.Definition
}

// EmitError aborts a generation pass.
type EmitError struct {
	Path string
	Err  error
}

func (e *EmitError) Error() string {
	return fmt.Sprintf("failed to emit feed %s: %v", e.Path, e.Err)
}

func (e *EmitError) Unwrap() error {
	return e.Err
}

// Emitter writes every feed into the static assets directory.
type Emitter struct {
	cache FeedCache
	root  string
}

func NewEmitter(cache FeedCache, root string) *Emitter {
	return &Emitter{
		cache: cache,
		root:  root,
	}
}

// Run emits all feeds and returns the first failure. A feed file is replaced
// only after its new content has been fully written.
func (e *Emitter) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, def := range e.cache.Definitions() {
		g.Go(func() error {
			return e.emit(ctx, def)
		})
	}

	return g.Wait()
}

func (e *Emitter) OutputPath(def feed.Definition) string {
	return filepath.Join(e.root, filepath.FromSlash(strings.TrimPrefix(def.Path, "/")))
}

func (e *Emitter) emit(ctx context.Context, def feed.Definition) error {
	target := e.OutputPath(def)
	if rel, err := filepath.Rel(e.root, target); err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return &EmitError{Path: target, Err: fmt.Errorf("path escapes static directory %s", e.root)}
	}

	body, err := e.cache.Get(ctx, def.Index)
	if err != nil {
		return &EmitError{Path: target, Err: err}
	}

	if err := writeFile(target, body); err != nil {
		return &EmitError{Path: target, Err: err}
	}

	slog.Info("Feed emitted", "feed", def.Path, "file", target, "bytes", len(body))
	return nil
}

func writeFile(target, body string) error {
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(target)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(body); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("failed to replace %s: %w", target, err)
	}

	return nil
}
