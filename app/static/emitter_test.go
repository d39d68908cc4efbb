package static

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/feeds"
	"github.com/lysyi3m/feedcast/app/feed"
)

func newCache(t *testing.T, cfg feed.Config) *feed.Cache {
	t.Helper()

	registry, err := feed.NewRegistry(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	return feed.NewCache(registry)
}

func titled(title string) feed.BuildFunc {
	return func(ctx context.Context, m *feed.Model) error {
		m.Title = title
		m.Link = &feeds.Link{Href: "http://example.com/"}
		return nil
	}
}

func TestEmitterWritesAllFeeds(t *testing.T) {
	root := t.TempDir()

	cache := newCache(t, feed.Many{
		{Path: "/feed.xml", Type: feed.TypeRSS2, Build: titled("Main")},
		{Path: "/blog/atom.xml", Type: feed.TypeAtom1, Build: titled("Blog")},
		{Path: "/empty.xml", Type: "unknown"},
	})

	if err := NewEmitter(cache, root).Run(context.Background()); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	tests := []struct {
		file     string
		contains string
	}{
		{"feed.xml", "<title>Main</title>"},
		{filepath.Join("blog", "atom.xml"), "<title>Blog</title>"},
	}

	for _, tt := range tests {
		data, err := os.ReadFile(filepath.Join(root, tt.file))
		if err != nil {
			t.Fatalf("Expected %s to be written: %v", tt.file, err)
		}
		if !strings.Contains(string(data), tt.contains) {
			t.Errorf("%s: expected to contain %s, got:\n%s", tt.file, tt.contains, data)
		}
	}

	data, err := os.ReadFile(filepath.Join(root, "empty.xml"))
	if err != nil {
		t.Fatalf("Expected empty.xml to be written: %v", err)
	}
	if len(data) != 0 {
		t.Errorf("Expected empty file for unknown type, got %d bytes", len(data))
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatal(err)
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") {
			t.Errorf("Temporary file left behind: %s", entry.Name())
		}
	}
}

func TestEmitterReplacesExistingFile(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "feed.xml")

	if err := os.WriteFile(target, []byte("stale content that is longer than the new feed body"), 0644); err != nil {
		t.Fatal(err)
	}

	cache := newCache(t, feed.Single{Path: "/feed.xml", Type: feed.TypeJSON1, Build: titled("New")})

	if err := NewEmitter(cache, root).Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "stale") {
		t.Error("Expected existing file to be replaced")
	}
	if !strings.Contains(string(data), `"title": "New"`) {
		t.Errorf("Expected new feed content, got:\n%s", data)
	}
}

func TestEmitterFailureKeepsPreviousFile(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "feed.xml")
	buildErr := errors.New("content source unavailable")

	if err := os.WriteFile(target, []byte("previous"), 0644); err != nil {
		t.Fatal(err)
	}

	cache := newCache(t, feed.Single{
		Path: "/feed.xml",
		Type: feed.TypeRSS2,
		Build: func(ctx context.Context, m *feed.Model) error {
			return buildErr
		},
	})

	err := NewEmitter(cache, root).Run(context.Background())
	if err == nil {
		t.Fatal("Expected generation to fail")
	}

	var emitErr *EmitError
	if !errors.As(err, &emitErr) {
		t.Errorf("Expected EmitError, got %T", err)
	}
	if !errors.Is(err, buildErr) {
		t.Errorf("Expected build error to be wrapped, got: %v", err)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("Expected previous file to survive a failed build: %v", err)
	}
	if string(data) != "previous" {
		t.Errorf("Expected previous content, got '%s'", data)
	}
}

func TestEmitterWriteFailure(t *testing.T) {
	root := t.TempDir()

	// A regular file where a directory is needed makes the write fail.
	if err := os.WriteFile(filepath.Join(root, "blog"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	cache := newCache(t, feed.Single{Path: "/blog/feed.xml", Type: feed.TypeRSS2, Build: titled("Blog")})

	err := NewEmitter(cache, root).Run(context.Background())

	var emitErr *EmitError
	if !errors.As(err, &emitErr) {
		t.Fatalf("Expected EmitError, got: %v", err)
	}
	if emitErr.Path != filepath.Join(root, "blog", "feed.xml") {
		t.Errorf("Expected error path to be the output file, got '%s'", emitErr.Path)
	}
}

func TestOutputPath(t *testing.T) {
	emitter := NewEmitter(nil, "/srv/site/static")

	tests := []struct {
		path     string
		expected string
	}{
		{"/feed.xml", filepath.Join("/srv/site/static", "feed.xml")},
		{"/blog/rss.xml", filepath.Join("/srv/site/static", "blog", "rss.xml")},
		{"feed.json", filepath.Join("/srv/site/static", "feed.json")},
	}

	for _, tt := range tests {
		if got := emitter.OutputPath(feed.Definition{Path: tt.path}); got != tt.expected {
			t.Errorf("OutputPath(%s): expected '%s', got '%s'", tt.path, tt.expected, got)
		}
	}
}

func TestEmitterRejectsEscapingPath(t *testing.T) {
	root := t.TempDir()

	cache := newCache(t, feed.Single{Path: "/../outside.xml", Type: feed.TypeRSS2, Build: titled("Out")})

	err := NewEmitter(cache, filepath.Join(root, "static")).Run(context.Background())

	var emitErr *EmitError
	if !errors.As(err, &emitErr) {
		t.Fatalf("Expected EmitError, got: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "outside.xml")); !os.IsNotExist(err) {
		t.Error("File outside the static directory must not be written")
	}
}

func TestEmitterAcceptsDotPrefixedNames(t *testing.T) {
	root := t.TempDir()

	cache := newCache(t, feed.Many{
		{Path: "/..feed.xml", Type: feed.TypeRSS2, Build: titled("Dots")},
		{Path: "/..hidden/feed.xml", Type: feed.TypeRSS2, Build: titled("Hidden")},
	})

	if err := NewEmitter(cache, root).Run(context.Background()); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	for _, file := range []string{"..feed.xml", filepath.Join("..hidden", "feed.xml")} {
		if _, err := os.Stat(filepath.Join(root, file)); err != nil {
			t.Errorf("Expected %s to be written: %v", file, err)
		}
	}
}
