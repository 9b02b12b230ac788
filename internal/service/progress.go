package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ansindait/aci-system-sub001/internal/checklist"
	"github.com/ansindait/aci-system-sub001/internal/models"
)

var (
	ErrNoSiteIdentifier = errors.New("site id or site name is required")
	ErrSiteNotFound     = errors.New("no task records for site")
)

type ProgressService struct {
	Source       Source
	Logger       zerolog.Logger
	QueryTimeout time.Duration
}

// SiteProgress never fails: every error is logged and reported as the zero result,
// so a table of sites always renders.
func (s *ProgressService) SiteProgress(ctx context.Context, siteID, siteName string) models.ProgressResult {
	result, err := s.Compute(ctx, siteID, siteName)
	if err == nil {
		return result
	}
	if errors.Is(err, ErrNoSiteIdentifier) || errors.Is(err, ErrSiteNotFound) {
		s.Logger.Debug().Err(err).Str("site_id", siteID).Str("site_name", siteName).Msg("no progress data")
	} else {
		s.Logger.Error().Err(err).Str("site_id", siteID).Str("site_name", siteName).Msg("site progress failed")
	}
	return models.ZeroProgress()
}

// Compute reads the site's task records and BOQ concurrently and aggregates them.
// A failed BOQ read only drops the BOQ targets; a failed task read is returned.
func (s *ProgressService) Compute(ctx context.Context, siteID, siteName string) (models.ProgressResult, error) {
	siteID = strings.TrimSpace(siteID)
	siteName = strings.TrimSpace(siteName)
	if siteID == "" && siteName == "" {
		return models.ZeroProgress(), ErrNoSiteIdentifier
	}

	var (
		tasks  []models.TaskRecord
		docs   []models.BoqDocument
		boqErr error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tasks, err = s.fetchTasks(gctx, siteID, siteName)
		return err
	})
	g.Go(func() error {
		docs, boqErr = s.fetchBoq(gctx, siteID, siteName)
		return nil
	})
	if err := g.Wait(); err != nil {
		return models.ZeroProgress(), err
	}
	if len(tasks) == 0 {
		return models.ZeroProgress(), ErrSiteNotFound
	}

	var boq *models.MergedBoq
	if boqErr != nil {
		s.Logger.Warn().Err(boqErr).Str("site_id", siteID).Str("site_name", siteName).Str("query", "boq").Msg("boq lookup failed, using default targets")
	} else {
		boq = SelectBoq(docs)
	}
	return Aggregate(tasks, boq), nil
}

// Boq returns the merged BOQ record used for the site's targets, or nil.
func (s *ProgressService) Boq(ctx context.Context, siteID, siteName string) (*models.MergedBoq, error) {
	siteID = strings.TrimSpace(siteID)
	siteName = strings.TrimSpace(siteName)
	if siteID == "" && siteName == "" {
		return nil, ErrNoSiteIdentifier
	}
	docs, err := s.fetchBoq(ctx, siteID, siteName)
	if err != nil {
		return nil, err
	}
	return SelectBoq(docs), nil
}

// Tasks returns the task records the progress computation would read.
func (s *ProgressService) Tasks(ctx context.Context, siteID, siteName string) ([]models.TaskRecord, error) {
	siteID = strings.TrimSpace(siteID)
	siteName = strings.TrimSpace(siteName)
	if siteID == "" && siteName == "" {
		return nil, ErrNoSiteIdentifier
	}
	return s.fetchTasks(ctx, siteID, siteName)
}

func (s *ProgressService) fetchTasks(ctx context.Context, siteID, siteName string) ([]models.TaskRecord, error) {
	if siteID != "" {
		tasks, err := readWithTimeout(ctx, s.QueryTimeout, func(ctx context.Context) ([]models.TaskRecord, error) {
			return s.Source.QueryTasksBySiteID(ctx, siteID)
		})
		if err != nil {
			return nil, fmt.Errorf("query tasks by site id: %w", err)
		}
		return tasks, nil
	}
	tasks, err := readWithTimeout(ctx, s.QueryTimeout, func(ctx context.Context) ([]models.TaskRecord, error) {
		return s.Source.QueryTasksBySiteName(ctx, siteName)
	})
	if err != nil {
		return nil, fmt.Errorf("query tasks by site name: %w", err)
	}
	return tasks, nil
}

// fetchBoq runs the by-id and by-name lookups side by side and unions them.
func (s *ProgressService) fetchBoq(ctx context.Context, siteID, siteName string) ([]models.BoqDocument, error) {
	var (
		byID, byName   []models.BoqDocument
		idErr, nameErr error
		g              errgroup.Group
	)
	if siteID != "" {
		g.Go(func() error {
			byID, idErr = readWithTimeout(ctx, s.QueryTimeout, func(ctx context.Context) ([]models.BoqDocument, error) {
				return s.Source.QueryBoqBySiteID(ctx, siteID)
			})
			return nil
		})
	}
	if siteName != "" {
		g.Go(func() error {
			byName, nameErr = readWithTimeout(ctx, s.QueryTimeout, func(ctx context.Context) ([]models.BoqDocument, error) {
				return s.Source.QueryBoqBySiteName(ctx, siteName)
			})
			return nil
		})
	}
	_ = g.Wait()

	var errs []error
	if idErr != nil {
		errs = append(errs, fmt.Errorf("query boq by site id: %w", idErr))
	}
	if nameErr != nil {
		errs = append(errs, fmt.Errorf("query boq by site name: %w", nameErr))
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return UnionBoq(byID, byName), nil
}

type divisionTally struct {
	uploaded int
	target   int
	rejected bool
	reasons  []string
}

// Aggregate computes the per-division "uploaded/target" ratios. Uploads match a
// checklist entry by exact section name and are never deduplicated. A division's
// targets only count once the site has work in that division: a task record or
// upload event of that division, or an upload matching one of its entries.
func Aggregate(tasks []models.TaskRecord, boq *models.MergedBoq) models.ProgressResult {
	var all []models.UploadEvent
	active := map[models.Division]bool{}
	for _, t := range tasks {
		if d, ok := models.ParseDivision(t.Division); ok {
			active[d] = true
		}
		for _, ev := range t.Sections {
			if d, ok := models.ParseDivision(ev.Division); ok {
				active[d] = true
			}
		}
		all = append(all, t.Sections...)
	}

	tallies := map[models.Division]*divisionTally{}
	for _, d := range models.Divisions() {
		tallies[d] = &divisionTally{}
	}

	for _, entry := range checklist.Entries() {
		tally := tallies[entry.Division]
		name := entry.SectionName()
		for _, ev := range all {
			if ev.Section != name {
				continue
			}
			tally.uploaded++
			if ev.Rejected() {
				tally.rejected = true
				if ev.RejectReason != "" {
					tally.reasons = append(tally.reasons, ev.RejectReason)
				}
			}
		}
		tally.target += EntryTarget(entry.Title, boq)
	}

	result := models.ZeroProgress()
	for _, d := range models.Divisions() {
		t := tallies[d]
		target := t.target
		if !active[d] && t.uploaded == 0 {
			target = 0
		}
		result.SetDivision(d, fmt.Sprintf("%d/%d", t.uploaded, target), t.rejected, strings.Join(t.reasons, "; "))
	}
	return result
}

// EntryTarget is the After DRM BOQ quantity for entries mapped to a material code,
// falling back to the entry's default target.
func EntryTarget(title string, boq *models.MergedBoq) int {
	code, ok := checklist.MaterialCode(title)
	if ok && boq != nil {
		field := models.BoqAfterDrm.QuantityField()
		for _, item := range boq.AfterDrmBoq {
			if item.MaterialCode != code {
				continue
			}
			if n, ok := item.Quantity(field); ok {
				return n
			}
			break
		}
	}
	return checklist.TargetOrFallback(title)
}
