package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/feedcast/app/api"
	"github.com/lysyi3m/feedcast/app/cfg"
	"github.com/lysyi3m/feedcast/app/config"
	"github.com/lysyi3m/feedcast/app/database"
	"github.com/lysyi3m/feedcast/app/feed"
	"github.com/lysyi3m/feedcast/app/scheduler"
	"github.com/lysyi3m/feedcast/app/source"
	"github.com/lysyi3m/feedcast/app/static"
)

func main() {
	appCfg, err := cfg.Load()
	if errors.Is(err, cfg.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	setupLogger(appCfg.Debug)
	gin.SetMode(gin.ReleaseMode)

	slog.Info("Starting Feedcast", "version", appCfg.Version, "command", appCfg.Command)

	ctx := context.Background()

	var postRepo *database.PostRepository
	if appCfg.DBPath != "" {
		db, err := database.NewConnection(appCfg.DBPath)
		if err != nil {
			fatal("Failed to open database", "path", appCfg.DBPath, "error", err)
		}
		defer db.Close()

		postRepo = database.NewPostRepository(db)
		logPostCount(ctx, postRepo, appCfg.DBPath)
	}

	if appCfg.Command == cfg.CommandImport {
		importPosts(ctx, postRepo)
		return
	}

	registry, err := feed.NewRegistry(ctx, source.NewFactory(config.NewLoader(appCfg.FeedsDir), newSourceDeps(postRepo)))
	if err != nil {
		fatal("Failed to load feed configurations", "feeds_dir", appCfg.FeedsDir, "error", err)
	}
	slog.Info("Feeds registered", "count", registry.Len())

	cache := feed.NewCache(registry)

	switch appCfg.Command {
	case cfg.CommandGenerate:
		generate(ctx, cache)
	default:
		serve(cache)
	}
}

func newSourceDeps(postRepo *database.PostRepository) source.Deps {
	appCfg := cfg.Get()

	deps := source.Deps{
		Fetcher: source.NewFetcher(&http.Client{}, appCfg.UserAgent),
		BaseURL: appCfg.BaseURL,
	}
	if postRepo != nil {
		deps.Posts = postRepo
	}
	return deps
}

func logPostCount(ctx context.Context, posts database.PostReader, path string) {
	count, err := posts.GetPostCount(ctx)
	if err != nil {
		slog.Warn("Failed to count posts", "path", path, "error", err)
		return
	}
	slog.Info("Database opened", "path", path, "posts", count)
}

func importPosts(ctx context.Context, postRepo *database.PostRepository) {
	file := cfg.Get().ImportFile
	if postRepo == nil {
		fatal("Importing posts requires --db-path")
	}

	in := os.Stdin
	if file != "-" {
		f, err := os.Open(file)
		if err != nil {
			fatal("Failed to open posts file", "file", file, "error", err)
		}
		defer f.Close()
		in = f
	}

	count, err := database.ImportPosts(ctx, in, postRepo)
	if err != nil {
		fatal("Failed to import posts", "file", file, "imported", count, "error", err)
	}

	slog.Info("Posts imported", "file", file, "count", count)
}

func generate(ctx context.Context, cache *feed.Cache) {
	staticDir := cfg.Get().StaticDir
	start := time.Now()

	if err := static.NewEmitter(cache, staticDir).Run(ctx); err != nil {
		fatal("Failed to generate feeds", "static_dir", staticDir, "error", err)
	}

	slog.Info("Feeds generated", "static_dir", staticDir, "duration", time.Since(start).String())
}

func serve(cache *feed.Cache) {
	appCfg := cfg.Get()

	if appCfg.WarmSchedule != "" {
		warmer, err := scheduler.NewWarmer(cache, appCfg.WarmSchedule, scheduler.DefaultWorkerCount)
		if err != nil {
			fatal("Failed to create feed warmer", "error", err)
		}
		slog.Info("Starting feed warmer", "schedule", appCfg.WarmSchedule)
		warmer.Start()
		defer warmer.Stop()
	}

	server := api.NewServer(api.NewHandler(cache))

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		for _, def := range cache.Definitions() {
			slog.Info("Feed available", "url", fmt.Sprintf("http://localhost:%s%s", appCfg.Port, def.Path), "type", string(def.Type))
		}

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == feed.LevelFatal {
					a.Value = slog.StringValue("FATAL")
				}
			}
			return a
		},
	})
	slog.SetDefault(slog.New(handler))
}

func fatal(msg string, args ...any) {
	slog.Log(context.Background(), feed.LevelFatal, msg, args...)
	os.Exit(1)
}
