package database

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewConnection(filepath.Join(t.TempDir(), "posts.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

func TestMigrationsAreIdempotent(t *testing.T) {
	db := newTestDB(t)

	version, dirty, err := RunMigrations(db)
	if err != nil {
		t.Fatalf("Expected second migration run to succeed, got: %v", err)
	}
	if version != 1 {
		t.Errorf("Expected schema version 1, got %d", version)
	}
	if dirty {
		t.Error("Expected clean schema")
	}
}

func TestUpsertAndGetRecentPosts(t *testing.T) {
	ctx := context.Background()
	repo := NewPostRepository(newTestDB(t))
	base := time.Date(2023, 7, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		category := "news"
		if i%2 == 1 {
			category = "notes"
		}
		_, err := repo.UpsertPost(ctx, Post{
			GUID:        fmt.Sprintf("post-%d", i),
			Title:       fmt.Sprintf("Post %d", i),
			Link:        fmt.Sprintf("https://example.com/posts/%d", i),
			Category:    category,
			PublishedAt: base.Add(time.Duration(i) * time.Hour),
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	_, err := repo.UpsertPost(ctx, Post{
		GUID:        "draft",
		Title:       "Draft",
		Link:        "https://example.com/posts/draft",
		PublishedAt: base.Add(24 * time.Hour),
		Draft:       true,
	})
	if err != nil {
		t.Fatal(err)
	}

	posts, err := repo.GetRecentPosts(ctx, "", 3, 0)
	if err != nil {
		t.Fatal(err)
	}

	expected := []string{"Post 4", "Post 3", "Post 2"}
	if len(posts) != len(expected) {
		t.Fatalf("Expected %d posts, got %d", len(expected), len(posts))
	}
	for i, title := range expected {
		if posts[i].Title != title {
			t.Errorf("Position %d: expected '%s', got '%s'", i, title, posts[i].Title)
		}
	}
	if !posts[0].PublishedAt.Equal(base.Add(4 * time.Hour)) {
		t.Errorf("Expected published time %v, got %v", base.Add(4*time.Hour), posts[0].PublishedAt)
	}

	news, err := repo.GetRecentPosts(ctx, "news", 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(news) != 3 {
		t.Errorf("Expected 3 news posts, got %d", len(news))
	}
	for _, post := range news {
		if post.Category != "news" {
			t.Errorf("Expected only news posts, got category '%s'", post.Category)
		}
	}

	count, err := repo.GetPostCount(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != 5 {
		t.Errorf("Expected 5 published posts, got %d", count)
	}
}

func TestUpsertPostUpdatesExisting(t *testing.T) {
	ctx := context.Background()
	repo := NewPostRepository(newTestDB(t))
	published := time.Date(2023, 7, 1, 12, 0, 0, 0, time.UTC)
	updated := published.Add(time.Hour)

	firstID, err := repo.UpsertPost(ctx, Post{GUID: "same", Title: "Original", Link: "https://example.com/a", PublishedAt: published})
	if err != nil {
		t.Fatal(err)
	}

	secondID, err := repo.UpsertPost(ctx, Post{GUID: "same", Title: "Edited", Link: "https://example.com/a", PublishedAt: published, UpdatedAt: &updated})
	if err != nil {
		t.Fatal(err)
	}

	if firstID != secondID {
		t.Errorf("Expected same ID on update, got %d and %d", firstID, secondID)
	}

	posts, err := repo.GetRecentPosts(ctx, "", 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(posts) != 1 {
		t.Fatalf("Expected 1 post, got %d", len(posts))
	}
	if posts[0].Title != "Edited" {
		t.Errorf("Expected title 'Edited', got '%s'", posts[0].Title)
	}
	if posts[0].UpdatedAt == nil || !posts[0].UpdatedAt.Equal(updated) {
		t.Errorf("Expected updated time %v, got %v", updated, posts[0].UpdatedAt)
	}
}

func TestGetRecentPostsOffset(t *testing.T) {
	ctx := context.Background()
	repo := NewPostRepository(newTestDB(t))
	base := time.Date(2023, 7, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		_, err := repo.UpsertPost(ctx, Post{
			GUID:        fmt.Sprintf("post-%d", i),
			Title:       fmt.Sprintf("Post %d", i),
			PublishedAt: base.Add(time.Duration(i) * time.Hour),
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	posts, err := repo.GetRecentPosts(ctx, "", 2, 2)
	if err != nil {
		t.Fatal(err)
	}

	expected := []string{"Post 2", "Post 1"}
	if len(posts) != len(expected) {
		t.Fatalf("Expected %d posts, got %d", len(expected), len(posts))
	}
	for i, title := range expected {
		if posts[i].Title != title {
			t.Errorf("Position %d: expected '%s', got '%s'", i, title, posts[i].Title)
		}
	}
}

func TestGetRecentPostsCanceledContext(t *testing.T) {
	repo := NewPostRepository(newTestDB(t))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := repo.GetRecentPosts(ctx, "", 10, 0); err == nil {
		t.Error("Expected error for canceled context")
	}
}
