package service

import (
	"context"
	"time"

	"github.com/ansindait/aci-system-sub001/internal/models"
)

type TaskSource interface {
	QueryTasksBySiteID(ctx context.Context, siteID string) ([]models.TaskRecord, error)
	QueryTasksBySiteName(ctx context.Context, siteName string) ([]models.TaskRecord, error)
}

type BoqSource interface {
	QueryBoqBySiteID(ctx context.Context, siteID string) ([]models.BoqDocument, error)
	QueryBoqBySiteName(ctx context.Context, siteName string) ([]models.BoqDocument, error)
}

// Source is everything the progress computation reads.
type Source interface {
	TaskSource
	BoqSource
}

type ActivitySource interface {
	QueryTasksBySiteNameFold(ctx context.Context, siteName string) ([]models.TaskRecord, error)
}

func readWithTimeout[T any](ctx context.Context, timeout time.Duration, read func(context.Context) (T, error)) (T, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return read(ctx)
}
