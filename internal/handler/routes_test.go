package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-api/internal/models"
)

func TestRegisterAPIMountsRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handlers := Handlers{
		Generator: &TimetableGeneratorHandler{generator: &timetableGeneratorMock{}, runner: &generationRunnerMock{}},
		Timetable: &TimetableHandler{service: &timetableServiceMock{items: map[int64]models.Timetable{1: {ID: 1}}}},
		Conflict:  &ConflictHandler{service: &conflictCheckerMock{}},
		Health:    NewHealthHandler(nil, nil),
	}
	RegisterOps(router, handlers)
	RegisterAPI(router.Group("/api/v1"), handlers)

	routes := map[string]bool{}
	for _, info := range router.Routes() {
		routes[info.Method+" "+info.Path] = true
	}
	for _, want := range []string{
		"POST /api/v1/timetables/generate",
		"POST /api/v1/timetables/generate/preview",
		"POST /api/v1/timetables/generate/async",
		"POST /api/v1/timetables/proposals/:id/commit",
		"GET /api/v1/timetables",
		"GET /api/v1/timetables/active",
		"GET /api/v1/timetables/:id",
		"DELETE /api/v1/timetables/:id",
		"POST /api/v1/timetables/:id/activate",
		"POST /api/v1/timetables/:id/regenerate",
		"GET /api/v1/timetables/:id/conflicts",
		"GET /api/v1/generation-runs/:id",
		"POST /api/v1/conflicts/check",
		"GET /health",
		"GET /ready",
		"GET /metrics",
	} {
		assert.True(t, routes[want], "missing route %s", want)
	}

	w := perform(router, http.MethodGet, "/api/v1/timetables/active", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	w = perform(router, http.MethodGet, "/api/v1/timetables/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
}
