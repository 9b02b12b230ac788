package service

import (
	"context"
	"strings"
	"sync"

	"github.com/ansindait/aci-system-sub001/internal/models"
)

type fakeSource struct {
	mu sync.Mutex

	allTasks    []models.TaskRecord
	tasksByID   map[string][]models.TaskRecord
	tasksByName map[string][]models.TaskRecord
	boqByID     map[string][]models.BoqDocument
	boqByName   map[string][]models.BoqDocument

	taskErr error
	boqErr  error
	calls   map[string]int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		tasksByID:   map[string][]models.TaskRecord{},
		tasksByName: map[string][]models.TaskRecord{},
		boqByID:     map[string][]models.BoqDocument{},
		boqByName:   map[string][]models.BoqDocument{},
		calls:       map[string]int{},
	}
}

func (f *fakeSource) addTask(t models.TaskRecord) {
	f.allTasks = append(f.allTasks, t)
	if t.SiteID != "" {
		f.tasksByID[t.SiteID] = append(f.tasksByID[t.SiteID], t)
	}
	f.tasksByName[t.SiteName] = append(f.tasksByName[t.SiteName], t)
}

func (f *fakeSource) addBoq(d models.BoqDocument) {
	if d.SiteID != "" {
		f.boqByID[d.SiteID] = append(f.boqByID[d.SiteID], d)
	}
	f.boqByName[d.SiteName] = append(f.boqByName[d.SiteName], d)
}

func (f *fakeSource) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeSource) record(name string) {
	f.mu.Lock()
	f.calls[name]++
	f.mu.Unlock()
}

func (f *fakeSource) QueryTasksBySiteID(_ context.Context, siteID string) ([]models.TaskRecord, error) {
	f.record("tasks_by_id")
	if f.taskErr != nil {
		return nil, f.taskErr
	}
	return f.tasksByID[siteID], nil
}

func (f *fakeSource) QueryTasksBySiteName(_ context.Context, siteName string) ([]models.TaskRecord, error) {
	f.record("tasks_by_name")
	if f.taskErr != nil {
		return nil, f.taskErr
	}
	return f.tasksByName[siteName], nil
}

func (f *fakeSource) QueryTasksBySiteNameFold(_ context.Context, siteName string) ([]models.TaskRecord, error) {
	f.record("tasks_by_name_fold")
	if f.taskErr != nil {
		return nil, f.taskErr
	}
	var out []models.TaskRecord
	for _, t := range f.allTasks {
		if strings.EqualFold(t.SiteName, siteName) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeSource) QueryBoqBySiteID(_ context.Context, siteID string) ([]models.BoqDocument, error) {
	f.record("boq_by_id")
	if f.boqErr != nil {
		return nil, f.boqErr
	}
	return f.boqByID[siteID], nil
}

func (f *fakeSource) QueryBoqBySiteName(_ context.Context, siteName string) ([]models.BoqDocument, error) {
	f.record("boq_by_name")
	if f.boqErr != nil {
		return nil, f.boqErr
	}
	return f.boqByName[siteName], nil
}
