package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ansindait/aci-system-sub001/internal/models"
)

func TestParseBoqCSVGroupsByMilestone(t *testing.T) {
	content := "\ufeffCity,Site ID,Site Name,BOQ Type,Material Code,Description,Qty\n" +
		"Bandung,ID-1,BDG-001,After DRM BOQ,200000690,Galian,25\n" +
		"Bandung,ID-1,BDG-001,afterDrmBoq,200000691,Tiang,12 pcs\n" +
		"Bandung,,BDG-001,ABD,200000690,Galian,24\n" +
		"Bandung,ID-1,,After DRM,200000964,Closure,3\n" +
		"Bandung,ID-1,BDG-001,Someday BOQ,200001034,ODP,2\n"
	fh := makeMultipartFile(t, "boq", "boq.csv", content)

	docs, rows, errs := parseBoqCSV(fh, "")
	assert.Equal(t, 3, rows)
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0], "line 5")
	assert.Contains(t, errs[1], "Someday BOQ")

	require.Len(t, docs, 2)
	after := docs[0]
	assert.Equal(t, models.BoqAfterDrm, after.BoqType)
	assert.Equal(t, "ID-1", after.SiteID)
	require.Len(t, after.Items, 2)
	q, ok := after.Items[1].Quantity(models.BoqAfterDrm.QuantityField())
	assert.True(t, ok)
	assert.Equal(t, 12, q)

	abd := docs[1]
	assert.Equal(t, models.BoqAbd, abd.BoqType)
	assert.Empty(t, abd.SiteID)
	q, ok = abd.Items[0].Quantity(models.BoqAbd.QuantityField())
	assert.True(t, ok)
	assert.Equal(t, 24, q)
}

func TestParseBoqCSVDefaultType(t *testing.T) {
	content := "site_name,material_code,quantity\nBDG-002,200000690,10\n"

	docs, rows, errs := parseBoqCSV(makeMultipartFile(t, "boq", "boq.csv", content), "")
	assert.Zero(t, rows)
	assert.Empty(t, docs)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "boq_type required")

	docs, rows, errs = parseBoqCSV(makeMultipartFile(t, "boq", "boq.csv", content), models.BoqBeforeDrm)
	assert.Equal(t, 1, rows)
	assert.Empty(t, errs)
	require.Len(t, docs, 1)
	assert.Equal(t, models.BoqBeforeDrm, docs[0].BoqType)
}

func boqUpload(t *testing.T, filename, content string, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("boq", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/import/boq", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestImportBoqEndpoint(t *testing.T) {
	store := &memStore{}
	r := newTestRouter(newTestHandler(store))

	content := "site_name,material_code,quantity\nBDG-003,200000691,40\nBDG-003,200000690,\n"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, boqUpload(t, "boq.csv", content, map[string]string{"boq_type": "After DRM"}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var summary ImportSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, 2, summary.Parsed)
	assert.EqualValues(t, 1, summary.Inserted)
	assert.Empty(t, summary.Errors)
	require.Len(t, store.boq, 1)

	store.tasks = append(store.tasks, models.TaskRecord{SiteName: "BDG-003", Division: "cw"})
	w = doJSON(t, r, http.MethodGet, "/api/sites/progress?site_name=BDG-003", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp SiteProgressResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	// Install Pole drops from 50 to 40; Digging Hole has no quantity and keeps 50.
	assert.Equal(t, "0/140", resp.Progress.CW)
}

func TestImportBoqRejectsBadInput(t *testing.T) {
	r := newTestRouter(newTestHandler(&memStore{}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, boqUpload(t, "boq.xlsx", "site_name\n", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_REQUEST", errorCode(t, w))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, boqUpload(t, "boq.csv", "site_name,material_code\nBDG-001,1\n", map[string]string{"boq_type": "nope"}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, w))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, boqUpload(t, "boq.csv", "site_name,material_code\n", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestImportTasks(t *testing.T) {
	store := &memStore{}
	r := newTestRouter(newTestHandler(store))

	body := map[string]any{"tasks": []map[string]any{{
		"siteId":   "ID-9",
		"siteName": " BDG-009 ",
		"division": "Permit",
		"sections": []map[string]any{{"section": "Visit", "uploadedAt": map[string]any{"_seconds": 1709622540, "_nanoseconds": 0}}},
	}}}
	w := doJSON(t, r, http.MethodPost, "/api/import/tasks", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Len(t, store.tasks, 1)
	assert.Equal(t, "permit", store.tasks[0].Division)
	assert.Equal(t, "BDG-009", store.tasks[0].SiteName)
	assert.Equal(t, int64(1709622540), store.tasks[0].Sections[0].UploadedAt.Unix())

	w = doJSON(t, r, http.MethodGet, "/api/sites/progress?site_id=ID-9", nil)
	var resp SiteProgressResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "1/3", resp.Progress.Permit)
}

func TestImportTasksValidation(t *testing.T) {
	store := &memStore{}
	r := newTestRouter(newTestHandler(store))

	w := doJSON(t, r, http.MethodPost, "/api/import/tasks", map[string]any{"tasks": []map[string]any{{"siteName": "BDG-1", "division": "marketing"}}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, w))

	w = doJSON(t, r, http.MethodPost, "/api/import/tasks", map[string]any{"tasks": []map[string]any{{"division": "cw"}}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/import/tasks", map[string]any{"tasks": []map[string]any{{
		"siteName": "BDG-1", "division": "cw", "sections": []map[string]any{{"section": " "}},
	}}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, store.tasks)

	store.writeErr = errors.New("disk full")
	w = doJSON(t, r, http.MethodPost, "/api/import/tasks", map[string]any{"tasks": []map[string]any{{"siteName": "BDG-1", "division": "cw"}}})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "DB_ERROR", errorCode(t, w))
}
