package handler

import (
	"github.com/gin-gonic/gin"
)

// Handlers bundles every HTTP handler mounted by the API.
type Handlers struct {
	Generator *TimetableGeneratorHandler
	Timetable *TimetableHandler
	Conflict  *ConflictHandler
	Health    *HealthHandler
}

// RegisterOps mounts the probes and the metrics endpoint at the root.
func RegisterOps(r gin.IRouter, h Handlers) {
	r.GET("/health", h.Health.Health)
	r.GET("/ready", h.Health.Ready)
	r.GET("/metrics", h.Health.Prometheus)
}

// RegisterAPI mounts the versioned API.
func RegisterAPI(api gin.IRouter, h Handlers) {
	timetables := api.Group("/timetables")
	timetables.POST("/generate", h.Generator.Generate)
	timetables.POST("/generate/preview", h.Generator.Preview)
	timetables.POST("/generate/async", h.Generator.Submit)
	timetables.POST("/proposals/:id/commit", h.Generator.Commit)
	timetables.GET("", h.Timetable.List)
	timetables.GET("/active", h.Timetable.Active)
	timetables.GET("/:id", h.Timetable.Get)
	timetables.DELETE("/:id", h.Timetable.Delete)
	timetables.POST("/:id/activate", h.Timetable.Activate)
	timetables.POST("/:id/regenerate", h.Generator.Regenerate)
	timetables.GET("/:id/conflicts", h.Conflict.Timetable)

	api.GET("/generation-runs/:id", h.Generator.Run)
	api.POST("/conflicts/check", h.Conflict.Check)
}
