package service

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ansindait/aci-system-sub001/internal/models"
)

// CachedSource memoizes task and BOQ lookups for one rendering pass. Concurrent
// lookups of the same key share a single read; failed reads are not remembered.
// The shared read is detached from the caller that started it and bounded by
// QueryTimeout; each caller still stops waiting when its own context ends.
type CachedSource struct {
	Source       Source
	QueryTimeout time.Duration

	mu    sync.Mutex
	tasks map[string][]models.TaskRecord
	boq   map[string][]models.BoqDocument
	group singleflight.Group
}

var _ Source = (*CachedSource)(nil)

func NewCachedSource(src Source, queryTimeout time.Duration) *CachedSource {
	return &CachedSource{
		Source:       src,
		QueryTimeout: queryTimeout,
		tasks:        map[string][]models.TaskRecord{},
		boq:          map[string][]models.BoqDocument{},
	}
}

func (c *CachedSource) QueryTasksBySiteID(ctx context.Context, siteID string) ([]models.TaskRecord, error) {
	return cachedRead(ctx, c, c.tasks, "tasks/id/"+siteID, func(ctx context.Context) ([]models.TaskRecord, error) {
		return c.Source.QueryTasksBySiteID(ctx, siteID)
	})
}

func (c *CachedSource) QueryTasksBySiteName(ctx context.Context, siteName string) ([]models.TaskRecord, error) {
	return cachedRead(ctx, c, c.tasks, "tasks/name/"+siteName, func(ctx context.Context) ([]models.TaskRecord, error) {
		return c.Source.QueryTasksBySiteName(ctx, siteName)
	})
}

func (c *CachedSource) QueryBoqBySiteID(ctx context.Context, siteID string) ([]models.BoqDocument, error) {
	return cachedRead(ctx, c, c.boq, "boq/id/"+siteID, func(ctx context.Context) ([]models.BoqDocument, error) {
		return c.Source.QueryBoqBySiteID(ctx, siteID)
	})
}

func (c *CachedSource) QueryBoqBySiteName(ctx context.Context, siteName string) ([]models.BoqDocument, error) {
	return cachedRead(ctx, c, c.boq, "boq/name/"+siteName, func(ctx context.Context) ([]models.BoqDocument, error) {
		return c.Source.QueryBoqBySiteName(ctx, siteName)
	})
}

func cachedRead[T any](ctx context.Context, c *CachedSource, cache map[string]T, key string, read func(context.Context) (T, error)) (T, error) {
	c.mu.Lock()
	if v, ok := cache[key]; ok {
		c.mu.Unlock()
		return v, nil
	}
	c.mu.Unlock()

	readCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		c.mu.Lock()
		if v, ok := cache[key]; ok {
			c.mu.Unlock()
			return v, nil
		}
		c.mu.Unlock()
		out, err := readWithTimeout(readCtx, c.QueryTimeout, read)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		cache[key] = out
		c.mu.Unlock()
		return out, nil
	})

	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}
