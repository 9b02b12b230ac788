package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/ansindait/aci-system-sub001/internal/models"
)

type SiteProgressRow struct {
	SiteID   string                `json:"site_id"`
	SiteName string                `json:"site_name"`
	City     string                `json:"city,omitempty"`
	Progress models.ProgressResult `json:"progress"`
	Status   string                `json:"status"`
}

// Batch computes progress for many sites in one pass. Lookups are shared through a
// CachedSource, so sites listed twice or sharing BOQ documents read the store once.
func (s *ProgressService) Batch(ctx context.Context, sites []models.SiteRef, concurrency int) []SiteProgressRow {
	if concurrency <= 0 {
		concurrency = 1
	}
	pass := &ProgressService{
		Source:       NewCachedSource(s.Source, s.QueryTimeout),
		Logger:       s.Logger,
		QueryTimeout: s.QueryTimeout,
	}

	rows := make([]SiteProgressRow, len(sites))
	var g errgroup.Group
	g.SetLimit(concurrency)
	for i, site := range sites {
		g.Go(func() error {
			progress := pass.SiteProgress(ctx, site.SiteID, site.SiteName)
			rows[i] = SiteProgressRow{
				SiteID:   site.SiteID,
				SiteName: site.SiteName,
				City:     site.City,
				Progress: progress,
				Status:   DeriveSiteStatus(progress),
			}
			return nil
		})
	}
	_ = g.Wait()
	return rows
}
