package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/ansindait/aci-system-sub001/internal/config"
	"github.com/ansindait/aci-system-sub001/internal/db"
	"github.com/ansindait/aci-system-sub001/internal/http/handlers"
	"github.com/ansindait/aci-system-sub001/internal/http/middleware"
	"github.com/ansindait/aci-system-sub001/internal/service"

	_ "github.com/ansindait/aci-system-sub001/docs"
)

func Router(cfg config.Config, store *db.Store, loc *time.Location, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.MaxMultipartMemory = cfg.MaxUploadSizeMB << 20

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.AdminKeyHeader, middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.CORSAllowed == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = []string{cfg.CORSAllowed}
	}
	r.Use(cors.New(corsCfg))

	h := &handlers.Handler{
		Store: store,
		Progress: &service.ProgressService{
			Source:       store,
			Logger:       logger.With().Str("component", "progress").Logger(),
			QueryTimeout: cfg.QueryTimeout,
		},
		Activity: &service.ActivityService{
			Tasks:        store,
			Logger:       logger.With().Str("component", "activity").Logger(),
			Location:     loc,
			QueryTimeout: cfg.QueryTimeout,
		},
		Validator:        validator.New(),
		Logger:           logger,
		AdminKey:         cfg.AdminKey,
		BatchConcurrency: cfg.BatchConcurrency,
		BatchMaxSites:    cfg.BatchMaxSites,
	}

	r.GET("/healthz", h.Healthz)

	api := r.Group("/api")
	{
		api.GET("/checklist", h.Checklist)
		api.GET("/sites", h.SitesList)
		api.GET("/sites/progress", h.SiteProgress)
		api.POST("/sites/progress/batch", h.ProgressBatch)
		api.GET("/sites/last-activity", h.LastActivity)
		api.GET("/tasks", h.TasksList)
		api.GET("/boq", h.BoqGet)
	}

	admin := api.Group("/import")
	admin.Use(middleware.AdminKey(cfg.AdminKey))
	{
		admin.POST("/tasks", h.ImportTasks)
		admin.POST("/boq", h.ImportBoq)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
