package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ansindait/aci-system-sub001/internal/models"
	"github.com/ansindait/aci-system-sub001/internal/service"
)

// memStore keeps everything in slices and answers every query the handlers and
// services issue.
type memStore struct {
	mu       sync.Mutex
	tasks    []models.TaskRecord
	boq      []models.BoqDocument
	pingErr  error
	writeErr error
}

func (m *memStore) Ping(ctx context.Context) error { return m.pingErr }

func (m *memStore) ListSites(ctx context.Context, q string, limit, offset int) ([]models.SiteRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := map[string]bool{}
	var out []models.SiteRef
	for _, t := range m.tasks {
		if seen[t.SiteName] {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(t.SiteName), strings.ToLower(q)) {
			continue
		}
		seen[t.SiteName] = true
		out = append(out, models.SiteRef{SiteID: t.SiteID, SiteName: t.SiteName, City: t.City})
	}
	return out, nil
}

func (m *memStore) InsertTasks(ctx context.Context, tasks []models.TaskRecord) (int64, error) {
	if m.writeErr != nil {
		return 0, m.writeErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = append(m.tasks, tasks...)
	return int64(len(tasks)), nil
}

func (m *memStore) ReplaceBoqDocuments(ctx context.Context, docs []models.BoqDocument) (int64, error) {
	if m.writeErr != nil {
		return 0, m.writeErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.boq = append(m.boq, docs...)
	return int64(len(docs)), nil
}

func (m *memStore) filterTasks(match func(models.TaskRecord) bool) []models.TaskRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.TaskRecord
	for _, t := range m.tasks {
		if match(t) {
			out = append(out, t)
		}
	}
	return out
}

func (m *memStore) filterBoq(match func(models.BoqDocument) bool) []models.BoqDocument {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.BoqDocument
	for _, d := range m.boq {
		if match(d) {
			out = append(out, d)
		}
	}
	return out
}

func (m *memStore) QueryTasksBySiteID(ctx context.Context, siteID string) ([]models.TaskRecord, error) {
	return m.filterTasks(func(t models.TaskRecord) bool { return t.SiteID == siteID }), nil
}

func (m *memStore) QueryTasksBySiteName(ctx context.Context, siteName string) ([]models.TaskRecord, error) {
	return m.filterTasks(func(t models.TaskRecord) bool { return t.SiteName == siteName }), nil
}

func (m *memStore) QueryTasksBySiteNameFold(ctx context.Context, siteName string) ([]models.TaskRecord, error) {
	return m.filterTasks(func(t models.TaskRecord) bool { return strings.EqualFold(t.SiteName, siteName) }), nil
}

func (m *memStore) QueryBoqBySiteID(ctx context.Context, siteID string) ([]models.BoqDocument, error) {
	return m.filterBoq(func(d models.BoqDocument) bool { return d.SiteID == siteID }), nil
}

func (m *memStore) QueryBoqBySiteName(ctx context.Context, siteName string) ([]models.BoqDocument, error) {
	return m.filterBoq(func(d models.BoqDocument) bool { return d.SiteName == siteName }), nil
}

func newTestHandler(store *memStore) *Handler {
	return &Handler{
		Store:            store,
		Progress:         &service.ProgressService{Source: store, Logger: zerolog.Nop(), QueryTimeout: time.Second},
		Activity:         &service.ActivityService{Tasks: store, Logger: zerolog.Nop(), Location: time.UTC, QueryTimeout: time.Second},
		Validator:        validator.New(),
		Logger:           zerolog.Nop(),
		BatchConcurrency: 4,
		BatchMaxSites:    3,
	}
}

func newTestRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/healthz", h.Healthz)
	r.GET("/api/checklist", h.Checklist)
	r.GET("/api/sites", h.SitesList)
	r.GET("/api/sites/progress", h.SiteProgress)
	r.POST("/api/sites/progress/batch", h.ProgressBatch)
	r.GET("/api/sites/last-activity", h.LastActivity)
	r.GET("/api/tasks", h.TasksList)
	r.GET("/api/boq", h.BoqGet)
	r.POST("/api/import/tasks", h.ImportTasks)
	r.POST("/api/import/boq", h.ImportBoq)
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error.Code
}

func TestHealthzReportsStoreFailure(t *testing.T) {
	r := newTestRouter(newTestHandler(&memStore{pingErr: errors.New("down")}))

	w := doJSON(t, r, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "DB_UNAVAILABLE", errorCode(t, w))
}

func TestChecklistListsEveryEntry(t *testing.T) {
	r := newTestRouter(newTestHandler(&memStore{}))

	w := doJSON(t, r, http.MethodGet, "/api/checklist", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Items     []map[string]any `json:"items"`
		Divisions []string         `json:"divisions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Items, 22)
	assert.Equal(t, []string{"PERMIT", "SND", "CW", "EL", "Document"}, body.Divisions)
}

func makeMultipartFile(t *testing.T, fieldName, filename, content string) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(fieldName, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("write content: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	reader := multipart.NewReader(&buf, writer.Boundary())
	form, err := reader.ReadForm(int64(buf.Len()))
	if err != nil {
		t.Fatalf("read form: %v", err)
	}
	files := form.File[fieldName]
	if len(files) == 0 {
		t.Fatalf("no file headers found")
	}
	return files[0]
}
