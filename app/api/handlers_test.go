package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/feeds"
	"github.com/lysyi3m/feedcast/app/feed"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockCache struct {
	definitions []feed.Definition
	bodies      map[int]string
	err         error
	calls       []int
}

func (m *mockCache) Get(ctx context.Context, index int) (string, error) {
	m.calls = append(m.calls, index)
	if m.err != nil {
		return "", m.err
	}
	return m.bodies[index], nil
}

func (m *mockCache) Definitions() []feed.Definition {
	return m.definitions
}

func (m *mockCache) Cached() int {
	return len(m.bodies)
}

func doGet(t *testing.T, engine http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestGetFeedContentTypes(t *testing.T) {
	cache := &mockCache{
		definitions: []feed.Definition{
			{Index: 0, Path: "/feed.xml", Type: feed.TypeRSS2},
			{Index: 1, Path: "/atom.xml", Type: feed.TypeAtom1},
			{Index: 2, Path: "/feed.json", Type: feed.TypeJSON1},
			{Index: 3, Path: "/unknown.xml", Type: "rss"},
		},
		bodies: map[int]string{0: "<rss/>", 1: "<feed/>", 2: "{}", 3: ""},
	}

	engine := NewServer(NewHandler(cache))

	tests := []struct {
		path        string
		contentType string
		body        string
	}{
		{"/feed.xml", "application/rss+xml", "<rss/>"},
		{"/atom.xml", "application/atom+xml", "<feed/>"},
		{"/feed.json", "application/json", "{}"},
		{"/unknown.xml", "application/xml", ""},
	}

	for _, tt := range tests {
		w := doGet(t, engine, tt.path)

		if w.Code != http.StatusOK {
			t.Errorf("%s: expected status 200, got %d", tt.path, w.Code)
		}
		if got := w.Header().Get("Content-Type"); got != tt.contentType {
			t.Errorf("%s: expected content type '%s', got '%s'", tt.path, tt.contentType, got)
		}
		if w.Body.String() != tt.body {
			t.Errorf("%s: expected body '%s', got '%s'", tt.path, tt.body, w.Body.String())
		}
	}

	expectedCalls := []int{0, 1, 2, 3}
	if fmt.Sprint(cache.calls) != fmt.Sprint(expectedCalls) {
		t.Errorf("Expected cache calls %v, got %v", expectedCalls, cache.calls)
	}
}

func TestGetFeedErrorUsesGenericResponse(t *testing.T) {
	cache := &mockCache{
		definitions: []feed.Definition{{Index: 0, Path: "/feed.xml", Type: feed.TypeRSS2}},
		err:         &feed.BuildError{Path: "/feed.xml", Err: errors.New("secret connection string leaked")},
	}

	engine := NewServer(NewHandler(cache))
	w := doGet(t, engine, "/feed.xml")

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "secret") {
		t.Error("Response must not expose the build error")
	}
	if strings.Contains(w.Header().Get("Content-Type"), "rss") {
		t.Error("Response must not carry the feed content type on failure")
	}
}

func TestGetHealth(t *testing.T) {
	cache := &mockCache{
		definitions: []feed.Definition{{Index: 0, Path: "/feed.xml", Type: feed.TypeRSS2}},
		bodies:      map[int]string{0: "<rss/>"},
	}

	engine := NewServer(NewHandler(cache))
	w := doGet(t, engine, "/health")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var health map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &health); err != nil {
		t.Fatal(err)
	}

	if health["feeds"] != float64(1) {
		t.Errorf("Expected 1 feed, got %v", health["feeds"])
	}
	if health["cached"] != float64(1) {
		t.Errorf("Expected 1 cached feed, got %v", health["cached"])
	}
	if _, ok := health["timestamp"]; !ok {
		t.Error("Expected timestamp in health response")
	}
}

func TestUnknownPathNotFound(t *testing.T) {
	cache := &mockCache{
		definitions: []feed.Definition{{Index: 0, Path: "/feed.xml", Type: feed.TypeRSS2}},
	}

	engine := NewServer(NewHandler(cache))
	w := doGet(t, engine, "/other.xml")

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
	if len(cache.calls) != 0 {
		t.Error("Cache should not be consulted for unknown paths")
	}
}

func TestFeedsNeverCrossContaminate(t *testing.T) {
	registry, err := feed.NewRegistry(context.Background(), feed.Many{
		{Path: "/feed.xml", Type: feed.TypeRSS2, CacheTime: feed.CacheTime(feed.DefaultCacheTime), Build: titled("Feed 0")},
		{Path: "/feed1.xml", Type: feed.TypeRSS2, CacheTime: feed.CacheTime(feed.DefaultCacheTime), Build: titled("Feed 1")},
	})
	if err != nil {
		t.Fatal(err)
	}

	engine := NewServer(NewHandler(feed.NewCache(registry)))

	for round := 0; round < 2; round++ {
		for i, path := range []string{"/feed.xml", "/feed1.xml"} {
			w := doGet(t, engine, path)
			if w.Code != http.StatusOK {
				t.Fatalf("%s: expected status 200, got %d", path, w.Code)
			}

			own := fmt.Sprintf("<title>Feed %d</title>", i)
			other := fmt.Sprintf("<title>Feed %d</title>", 1-i)

			if !strings.Contains(w.Body.String(), own) {
				t.Errorf("%s: expected %s in body", path, own)
			}
			if strings.Contains(w.Body.String(), other) {
				t.Errorf("%s: body contains the other feed's title", path)
			}
		}
	}
}

func titled(title string) feed.BuildFunc {
	return func(ctx context.Context, m *feed.Model) error {
		m.Title = title
		m.Link = &feeds.Link{Href: "http://example.com/"}
		m.Description = "This is my personal feed!"
		return nil
	}
}
