package handlers

import (
	"encoding/csv"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ansindait/aci-system-sub001/internal/models"
)

type ImportSummary struct {
	Parsed   int      `json:"parsed"`
	Inserted int64    `json:"inserted"`
	Errors   []string `json:"errors"`
}

type TaskInput struct {
	SiteID   string               `json:"siteId"`
	SiteName string               `json:"siteName" validate:"required"`
	City     string               `json:"city"`
	Division string               `json:"division" validate:"required"`
	Sections []models.UploadEvent `json:"sections"`
}

type ImportTasksRequest struct {
	Tasks []TaskInput `json:"tasks" validate:"required,min=1,dive"`
}

// @Summary Import task records
// @Description Insert site task records with their upload events
// @Tags import
// @Accept json
// @Produce json
// @Param request body ImportTasksRequest true "Task records"
// @Success 200 {object} ImportSummary
// @Failure 400 {object} map[string]any
// @Router /api/import/tasks [post]
func (h *Handler) ImportTasks(c *gin.Context) {
	var req ImportTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	tasks, errs := tasksFromInput(req.Tasks)
	if len(errs) > 0 {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", errs)
		return
	}

	inserted, err := h.Store.InsertTasks(c.Request.Context(), tasks)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to insert tasks", err.Error())
		return
	}
	h.Logger.Info().Int("parsed", len(tasks)).Int64("inserted", inserted).Msg("tasks imported")
	c.JSON(http.StatusOK, ImportSummary{Parsed: len(tasks), Inserted: inserted, Errors: []string{}})
}

func tasksFromInput(in []TaskInput) ([]models.TaskRecord, []string) {
	var errs []string
	out := make([]models.TaskRecord, 0, len(in))
	for i, t := range in {
		div, ok := models.ParseDivision(t.Division)
		if !ok {
			errs = append(errs, fmt.Sprintf("tasks[%d]: unknown division %q", i, t.Division))
			continue
		}
		for j, ev := range t.Sections {
			if strings.TrimSpace(ev.Section) == "" {
				errs = append(errs, fmt.Sprintf("tasks[%d].sections[%d]: section required", i, j))
			}
		}
		out = append(out, models.TaskRecord{
			SiteID:   strings.TrimSpace(t.SiteID),
			SiteName: strings.TrimSpace(t.SiteName),
			City:     strings.TrimSpace(t.City),
			Division: div.Key(),
			Sections: t.Sections,
		})
	}
	return out, errs
}

// @Summary Import BOQ lines
// @Description Upload a BOQ CSV; each (city, site, milestone) replaces the stored document
// @Tags import
// @Accept multipart/form-data
// @Produce json
// @Param boq formData file true "boq.csv"
// @Param boq_type formData string false "Milestone for rows without a boq_type column"
// @Success 200 {object} ImportSummary
// @Failure 400 {object} map[string]any
// @Router /api/import/boq [post]
func (h *Handler) ImportBoq(c *gin.Context) {
	file, err := c.FormFile("boq")
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "boq file required", nil)
		return
	}
	if !validateExt(file.Filename) {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "file must be .csv", nil)
		return
	}

	var defaultType models.BoqType
	if raw := strings.TrimSpace(c.PostForm("boq_type")); raw != "" {
		t, ok := models.ParseBoqType(raw)
		if !ok {
			writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "unknown boq_type", raw)
			return
		}
		defaultType = t
	}

	docs, rows, errs := parseBoqCSV(file, defaultType)
	summary := ImportSummary{Parsed: rows, Errors: errs}
	if summary.Errors == nil {
		summary.Errors = []string{}
	}
	if len(docs) == 0 {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "no valid BOQ rows", summary.Errors)
		return
	}

	inserted, err := h.Store.ReplaceBoqDocuments(c.Request.Context(), docs)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to store BOQ", err.Error())
		return
	}
	summary.Inserted = inserted
	h.Logger.Info().Int("rows", rows).Int("documents", len(docs)).Int("errors", len(errs)).Msg("boq imported")
	c.JSON(http.StatusOK, summary)
}

// parseBoqCSV groups rows into one document per (city, site, milestone), in first-seen
// order. It returns the number of rows accepted.
func parseBoqCSV(file *multipart.FileHeader, defaultType models.BoqType) ([]models.BoqDocument, int, []string) {
	f, err := file.Open()
	if err != nil {
		return nil, 0, []string{err.Error()}
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	headers, err := reader.Read()
	if err != nil {
		return nil, 0, []string{"failed to read header"}
	}
	index := headerIndex(headers)

	type docKey struct {
		city, siteName string
		boqType        models.BoqType
	}
	var (
		errors []string
		out    []models.BoqDocument
		rows   int
	)
	positions := map[docKey]int{}
	line := 1
	for {
		rec, err := reader.Read()
		line++
		if err == io.EOF {
			break
		}
		if err != nil {
			errors = append(errors, err.Error())
			continue
		}

		city := getFieldAny(rec, index, "city", "kota")
		siteID := getFieldAny(rec, index, "site_id", "site id", "siteid")
		siteName := getFieldAny(rec, index, "site_name", "site name", "sitename", "nama site")
		rawType := getFieldAny(rec, index, "boq_type", "boq type", "milestone")
		code := getFieldAny(rec, index, "material_code", "material code", "materialcode", "kode material")
		desc := getFieldAny(rec, index, "description", "material description", "deskripsi")
		qty := getFieldAny(rec, index, "quantity", "qty", "volume")

		if siteName == "" || code == "" {
			errors = append(errors, fmt.Sprintf("line %d: site_name and material_code required", line))
			continue
		}
		boqType := defaultType
		if rawType != "" {
			t, ok := models.ParseBoqType(rawType)
			if !ok {
				errors = append(errors, fmt.Sprintf("line %d: unknown boq_type %q", line, rawType))
				continue
			}
			boqType = t
		}
		if boqType == "" {
			errors = append(errors, fmt.Sprintf("line %d: boq_type required", line))
			continue
		}

		key := docKey{city: city, siteName: siteName, boqType: boqType}
		pos, ok := positions[key]
		if !ok {
			pos = len(out)
			positions[key] = pos
			out = append(out, models.BoqDocument{City: city, SiteID: siteID, SiteName: siteName, BoqType: boqType})
		}
		if out[pos].SiteID == "" {
			out[pos].SiteID = siteID
		}
		out[pos].Items = append(out[pos].Items, models.NewBoqItem(code, desc, boqType, qty))
		rows++
	}
	return out, rows, errors
}

func validateExt(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".csv")
}

func headerIndex(headers []string) map[string]int {
	idx := map[string]int{}
	for i, h := range headers {
		idx[normalizeHeader(h)] = i
	}
	return idx
}

func getField(rec []string, idx map[string]int, name string) string {
	pos, ok := idx[name]
	if !ok || pos >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[pos])
}

func getFieldAny(rec []string, idx map[string]int, names ...string) string {
	for _, name := range names {
		if v := getField(rec, idx, normalizeHeader(name)); v != "" {
			return v
		}
	}
	return ""
}

func normalizeHeader(h string) string {
	h = strings.ReplaceAll(h, "\ufeff", "")
	return strings.ToLower(strings.TrimSpace(h))
}
