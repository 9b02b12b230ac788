package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ansindait/aci-system-sub001/internal/models"
)

const (
	NoActivity     = "-"
	activityLayout = "02/01/06, 15.04"
)

type ActivityService struct {
	Tasks        ActivitySource
	Logger       zerolog.Logger
	Location     *time.Location
	QueryTimeout time.Duration
}

// LastActivity formats the newest upload across the site's task records as
// "DD/MM/YY, HH.MM", or "-" when there is nothing to show.
func (s *ActivityService) LastActivity(ctx context.Context, siteName string) string {
	siteName = strings.TrimSpace(siteName)
	if siteName == "" {
		return NoActivity
	}
	tasks, err := readWithTimeout(ctx, s.QueryTimeout, func(ctx context.Context) ([]models.TaskRecord, error) {
		return s.Tasks.QueryTasksBySiteNameFold(ctx, siteName)
	})
	if err != nil {
		s.Logger.Error().Err(err).Str("site_name", siteName).Str("query", "tasks_by_site_name").Msg("last activity lookup failed")
		return NoActivity
	}
	for _, t := range tasks {
		for _, ev := range t.Sections {
			if ev.UploadedAt.Unreadable() {
				s.Logger.Warn().Str("site_name", siteName).Str("task_id", t.ID).Str("section", ev.Section).Str("uploaded_at", ev.UploadedAt.Raw).Msg("unreadable upload time skipped")
			}
		}
	}
	latest, ok := LatestUpload(siteName, tasks)
	if !ok {
		return NoActivity
	}
	return FormatActivity(latest.UploadedAt.Time, s.Location)
}

// LatestUpload picks the event with the greatest upload time among records whose
// site name matches case-insensitively. The first event seen at that time wins.
func LatestUpload(siteName string, tasks []models.TaskRecord) (models.UploadEvent, bool) {
	var (
		latest models.UploadEvent
		found  bool
	)
	for _, t := range tasks {
		if !strings.EqualFold(strings.TrimSpace(t.SiteName), siteName) {
			continue
		}
		for _, ev := range t.Sections {
			if ev.UploadedAt.IsZero() {
				continue
			}
			if !found || ev.UploadedAt.After(latest.UploadedAt.Time) {
				latest = ev
				found = true
			}
		}
	}
	return latest, found
}

func FormatActivity(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(activityLayout)
}
