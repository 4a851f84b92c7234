package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/scheduler"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

type conflictCheckerMock struct {
	captured dto.ConflictCheckRequest
}

func (m *conflictCheckerMock) Check(_ context.Context, req dto.ConflictCheckRequest) (*dto.ConflictCheckResponse, error) {
	m.captured = req
	report := scheduler.CheckConflicts(req.Classes)
	return &dto.ConflictCheckResponse{TimetableID: req.TimetableID, HasConflicts: report.HasConflicts(), Total: report.Total(), Conflicts: report}, nil
}

func (m *conflictCheckerMock) CheckTimetable(_ context.Context, id int64) (*dto.ConflictCheckResponse, error) {
	if id != 1 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
	}
	return &dto.ConflictCheckResponse{TimetableID: &id, Conflicts: scheduler.CheckConflicts(nil), Cached: true}, nil
}

func newConflictRouter(svc *conflictCheckerMock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := &ConflictHandler{service: svc}
	router := gin.New()
	router.GET("/timetables/:id/conflicts", h.Timetable)
	router.POST("/conflicts/check", h.Check)
	return router
}

func TestConflictHandlerTimetable(t *testing.T) {
	router := newConflictRouter(&conflictCheckerMock{})

	w := perform(router, http.MethodGet, "/timetables/1/conflicts", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeEnvelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, false, data["has_conflicts"])
	conflicts := data["conflicts"].(map[string]interface{})
	assert.Equal(t, []interface{}{}, conflicts["instructor_conflicts"])
	assert.NotContains(t, data, "Cached")
	meta := decodeEnvelope(t, w)["meta"].(map[string]interface{})
	assert.Equal(t, true, meta["cache_hit"])

	w = perform(router, http.MethodGet, "/timetables/2/conflicts", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestConflictHandlerCheckPayload(t *testing.T) {
	svc := &conflictCheckerMock{}
	router := newConflictRouter(svc)
	body := []byte(`{"classes":[
		{"course_id":1,"instructor_id":1,"classroom_id":10,"day":"Monday","start_time":"09:00","end_time":"10:00"},
		{"course_id":2,"instructor_id":2,"classroom_id":10,"day":"Monday","start_time":"09:00","end_time":"10:00"}
	]}`)

	w := perform(router, http.MethodPost, "/conflicts/check", body)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, svc.captured.Classes, 2)
	data := decodeEnvelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, true, data["has_conflicts"])
	rooms := data["conflicts"].(map[string]interface{})["classroom_conflicts"].([]interface{})
	require.Len(t, rooms, 1)
	assert.Equal(t, float64(10), rooms[0].(map[string]interface{})["classroom_id"])
}

func TestConflictHandlerCheckUsesSnakeCaseFields(t *testing.T) {
	svc := &conflictCheckerMock{}
	router := newConflictRouter(svc)

	w := perform(router, http.MethodPost, "/conflicts/check", []byte(`{"timetable_id":7}`))
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.captured.TimetableID)
	assert.Equal(t, int64(7), *svc.captured.TimetableID)

	data := decodeEnvelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, float64(7), data["timetable_id"])
	assert.Contains(t, data, "has_conflicts")
	assert.Contains(t, data, "checked_at")
	conflicts := data["conflicts"].(map[string]interface{})
	for _, key := range []string{"instructor_conflicts", "classroom_conflicts", "student_conflicts"} {
		assert.Contains(t, conflicts, key)
	}

	w = perform(router, http.MethodPost, "/conflicts/check", []byte(`{"timetableId":7}`))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, svc.captured.TimetableID)
}

func TestConflictHandlerCheckBadJSON(t *testing.T) {
	router := newConflictRouter(&conflictCheckerMock{})

	w := perform(router, http.MethodPost, "/conflicts/check", []byte(`[`))
	require.Equal(t, http.StatusBadRequest, w.Code)
}
