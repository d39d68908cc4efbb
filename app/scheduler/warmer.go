package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/lysyi3m/feedcast/app/feed"
)

const DefaultWorkerCount = 4

type FeedCache interface {
	Get(ctx context.Context, index int) (string, error)
	Definitions() []feed.Definition
}

// Warmer rebuilds every feed through the cache on a cron schedule so that
// readers rarely wait for a build.
type Warmer struct {
	cache       FeedCache
	cron        *cron.Cron
	workerCount int
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
}

func NewWarmer(cache FeedCache, schedule string, workerCount int) (*Warmer, error) {
	if workerCount <= 0 {
		workerCount = DefaultWorkerCount
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Warmer{
		cache:       cache,
		cron:        cron.New(cron.WithLocation(time.Local)),
		workerCount: workerCount,
		ctx:         ctx,
		cancel:      cancel,
	}

	if _, err := w.cron.AddFunc(schedule, w.warm); err != nil {
		cancel()
		return nil, fmt.Errorf("invalid warm schedule %q: %w", schedule, err)
	}

	return w, nil
}

// Start warms every feed once and then follows the schedule.
func (w *Warmer) Start() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.warm()
	}()

	w.cron.Start()
}

func (w *Warmer) Stop() {
	w.cancel()
	<-w.cron.Stop().Done()
	w.wg.Wait()
}

func (w *Warmer) warm() {
	start := time.Now()

	if err := w.Run(w.ctx); err != nil {
		slog.Warn("Feed warm-up finished with errors", "duration", time.Since(start).String(), "error", err)
		return
	}

	slog.Debug("Feed warm-up finished", "duration", time.Since(start).String())
}

// Run requests every feed from the cache and returns the joined build errors.
func (w *Warmer) Run(ctx context.Context) error {
	defs := w.cache.Definitions()
	errs := make([]error, len(defs))

	g := new(errgroup.Group)
	g.SetLimit(w.workerCount)

	for _, def := range defs {
		g.Go(func() error {
			if ctx.Err() != nil {
				errs[def.Index] = ctx.Err()
				return nil
			}
			if _, err := w.cache.Get(ctx, def.Index); err != nil {
				slog.Error("Failed to warm feed", "feed", def.Path, "error", err)
				errs[def.Index] = err
			}
			return nil
		})
	}
	_ = g.Wait()

	return errors.Join(errs...)
}
