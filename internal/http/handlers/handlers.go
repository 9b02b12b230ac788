package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/ansindait/aci-system-sub001/internal/checklist"
	"github.com/ansindait/aci-system-sub001/internal/models"
	"github.com/ansindait/aci-system-sub001/internal/service"
)

// Store is the part of the database the handlers touch directly. Progress reads go
// through the services.
type Store interface {
	Ping(ctx context.Context) error
	ListSites(ctx context.Context, q string, limit, offset int) ([]models.SiteRef, error)
	InsertTasks(ctx context.Context, tasks []models.TaskRecord) (int64, error)
	ReplaceBoqDocuments(ctx context.Context, docs []models.BoqDocument) (int64, error)
}

type Handler struct {
	Store            Store
	Progress         *service.ProgressService
	Activity         *service.ActivityService
	Validator        *validator.Validate
	Logger           zerolog.Logger
	AdminKey         string
	BatchConcurrency int
	BatchMaxSites    int
}

// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 503 {object} map[string]any
// @Router /healthz [get]
func (h *Handler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		writeError(c, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "Database unavailable", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary Upload checklist
// @Description Checklist entries per division with default targets and BOQ material codes
// @Tags checklist
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/checklist [get]
func (h *Handler) Checklist(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": checklist.Describe(), "divisions": models.Divisions()})
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}
