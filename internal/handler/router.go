package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// Routes groups every handler mounted by the API server.
type Routes struct {
	Sessions       *SessionHandler
	Schedule       *ScheduleHandler
	Catalog        *CatalogHandler
	SavedSchedules *SavedScheduleHandler
	ExportLinks    *ExportLinkHandler
	Metrics        *MetricsHandler
}

// Register mounts system routes at the root and the planner API under prefix.
// Schedule and saved-schedule routes sit behind the session middleware.
func (r Routes) Register(engine *gin.Engine, prefix string, session gin.HandlerFunc) {
	if r.Metrics != nil {
		engine.GET("/health", r.Metrics.Health)
		engine.GET("/ready", r.Metrics.Ready)
		engine.GET("/metrics", r.Metrics.Prometheus)
	}

	api := engine.Group("/" + strings.Trim(prefix, "/"))
	if r.Metrics != nil {
		api.GET("/metrics/summary", r.Metrics.Summary)
	}
	if r.Sessions != nil {
		api.POST("/sessions", r.Sessions.Create)
	}
	if r.Catalog != nil {
		catalog := api.Group("/catalog")
		catalog.GET("/courses", r.Catalog.Courses)
		catalog.GET("/courses/:code", r.Catalog.Course)
		catalog.GET("/search", r.Catalog.Search)
		catalog.GET("/gen-eds", r.Catalog.GenEds)
		catalog.GET("/professors", r.Catalog.Professors)
		catalog.GET("/professors/:name", r.Catalog.Professor)
	}
	if r.ExportLinks != nil {
		api.GET("/exports/:token", r.ExportLinks.Download)
	}

	secured := api.Group("")
	secured.Use(session)
	if r.Schedule != nil {
		schedule := secured.Group("/schedule")
		schedule.GET("", r.Schedule.View)
		schedule.DELETE("", r.Schedule.Clear)
		schedule.POST("/sections", r.Schedule.AddSection)
		schedule.DELETE("/sections/:sectionId", r.Schedule.RemoveSection)
		schedule.GET("/serialized", r.Schedule.Serialized)
		schedule.POST("/load", r.Schedule.Load)
		schedule.GET("/export", r.Schedule.Export)
		if r.ExportLinks != nil {
			schedule.POST("/export/link", r.ExportLinks.Create)
		}
	}
	if r.SavedSchedules != nil {
		saved := secured.Group("/saved-schedules")
		saved.POST("", r.SavedSchedules.Create)
		saved.GET("", r.SavedSchedules.List)
		saved.POST("/:id/restore", r.SavedSchedules.Restore)
		saved.DELETE("/:id", r.SavedSchedules.Delete)
	}
}
