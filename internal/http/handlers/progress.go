package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ansindait/aci-system-sub001/internal/models"
	"github.com/ansindait/aci-system-sub001/internal/service"
)

type SiteProgressResponse struct {
	SiteID       string                `json:"site_id"`
	SiteName     string                `json:"site_name"`
	Progress     models.ProgressResult `json:"progress"`
	Status       string                `json:"status"`
	LastActivity string                `json:"last_activity"`
}

// @Summary Site progress
// @Description Per-division uploaded/target ratios, rejection flags and derived status
// @Tags sites
// @Produce json
// @Param site_id query string false "Site ID"
// @Param site_name query string false "Site name"
// @Success 200 {object} SiteProgressResponse
// @Failure 400 {object} map[string]any
// @Router /api/sites/progress [get]
func (h *Handler) SiteProgress(c *gin.Context) {
	siteID := strings.TrimSpace(c.Query("site_id"))
	siteName := strings.TrimSpace(c.Query("site_name"))
	if siteID == "" && siteName == "" {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "site_id or site_name is required", nil)
		return
	}

	ctx := c.Request.Context()
	progress := h.Progress.SiteProgress(ctx, siteID, siteName)
	resp := SiteProgressResponse{
		SiteID:       siteID,
		SiteName:     siteName,
		Progress:     progress,
		Status:       service.DeriveSiteStatus(progress),
		LastActivity: service.NoActivity,
	}
	if siteName != "" {
		resp.LastActivity = h.Activity.LastActivity(ctx, siteName)
	}
	c.JSON(http.StatusOK, resp)
}

type ProgressBatchRequest struct {
	Sites []models.SiteRef `json:"sites" validate:"required,min=1,dive"`
}

// @Summary Progress for many sites
// @Description Computes progress for every listed site in one pass with shared lookups
// @Tags sites
// @Accept json
// @Produce json
// @Param request body ProgressBatchRequest true "Sites"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Router /api/sites/progress/batch [post]
func (h *Handler) ProgressBatch(c *gin.Context) {
	var req ProgressBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}
	if h.BatchMaxSites > 0 && len(req.Sites) > h.BatchMaxSites {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", fmt.Sprintf("at most %d sites per request", h.BatchMaxSites), nil)
		return
	}

	rows := h.Progress.Batch(c.Request.Context(), req.Sites, h.BatchConcurrency)
	c.JSON(http.StatusOK, gin.H{"items": rows})
}

// @Summary Sites table
// @Description Sites with task records, each with progress and status
// @Tags sites
// @Produce json
// @Param q query string false "Filter by site name or id"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} map[string]any
// @Router /api/sites [get]
func (h *Handler) SitesList(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	sites, err := h.Store.ListSites(c.Request.Context(), q, limit, offset)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list sites", err.Error())
		return
	}
	rows := h.Progress.Batch(c.Request.Context(), sites, h.BatchConcurrency)
	c.JSON(http.StatusOK, gin.H{"items": rows, "limit": limit, "offset": offset})
}

// @Summary Last activity
// @Tags sites
// @Produce json
// @Param site_name query string true "Site name"
// @Success 200 {object} map[string]any
// @Router /api/sites/last-activity [get]
func (h *Handler) LastActivity(c *gin.Context) {
	siteName := strings.TrimSpace(c.Query("site_name"))
	c.JSON(http.StatusOK, gin.H{
		"site_name":     siteName,
		"last_activity": h.Activity.LastActivity(c.Request.Context(), siteName),
	})
}

// @Summary Task records
// @Description Raw task records the progress computation reads for a site
// @Tags sites
// @Produce json
// @Param site_id query string false "Site ID"
// @Param site_name query string false "Site name"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Router /api/tasks [get]
func (h *Handler) TasksList(c *gin.Context) {
	siteID := strings.TrimSpace(c.Query("site_id"))
	siteName := strings.TrimSpace(c.Query("site_name"))

	tasks, err := h.Progress.Tasks(c.Request.Context(), siteID, siteName)
	if err != nil {
		if errors.Is(err, service.ErrNoSiteIdentifier) {
			writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "site_id or site_name is required", nil)
			return
		}
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list tasks", err.Error())
		return
	}
	if tasks == nil {
		tasks = []models.TaskRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"items": tasks})
}

// @Summary Merged BOQ
// @Description BOQ milestones of a site merged into one record
// @Tags sites
// @Produce json
// @Param site_id query string false "Site ID"
// @Param site_name query string false "Site name"
// @Success 200 {object} models.MergedBoq
// @Failure 400 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /api/boq [get]
func (h *Handler) BoqGet(c *gin.Context) {
	siteID := strings.TrimSpace(c.Query("site_id"))
	siteName := strings.TrimSpace(c.Query("site_name"))

	boq, err := h.Progress.Boq(c.Request.Context(), siteID, siteName)
	if err != nil {
		if errors.Is(err, service.ErrNoSiteIdentifier) {
			writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "site_id or site_name is required", nil)
			return
		}
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load BOQ", err.Error())
		return
	}
	if boq == nil {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "BOQ not found", nil)
		return
	}
	c.JSON(http.StatusOK, boq)
}
