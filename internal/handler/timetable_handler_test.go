package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-api/internal/models"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

type timetableServiceMock struct {
	items   map[int64]models.Timetable
	deleted []int64
}

func (m *timetableServiceMock) List(context.Context) ([]models.Timetable, error) {
	out := make([]models.Timetable, 0, len(m.items))
	for _, item := range m.items {
		out = append(out, item)
	}
	return out, nil
}

func (m *timetableServiceMock) Get(_ context.Context, id int64) (*models.TimetableWithClasses, error) {
	item, ok := m.items[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
	}
	return &models.TimetableWithClasses{Timetable: item, Classes: []models.DetailedClass{}}, nil
}

func (m *timetableServiceMock) Active(context.Context) (*models.TimetableWithClasses, error) {
	for _, item := range m.items {
		if item.IsActive {
			return &models.TimetableWithClasses{Timetable: item, Classes: []models.DetailedClass{}}, nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "no active timetable")
}

func (m *timetableServiceMock) Activate(_ context.Context, id int64) (*models.Timetable, error) {
	item, ok := m.items[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
	}
	item.IsActive = true
	m.items[id] = item
	return &item, nil
}

func (m *timetableServiceMock) Delete(_ context.Context, id int64) error {
	if _, ok := m.items[id]; !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
	}
	delete(m.items, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func newTimetableRouter(svc *timetableServiceMock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := &TimetableHandler{service: svc}
	router := gin.New()
	router.GET("/timetables", h.List)
	router.GET("/timetables/active", h.Active)
	router.GET("/timetables/:id", h.Get)
	router.POST("/timetables/:id/activate", h.Activate)
	router.DELETE("/timetables/:id", h.Delete)
	return router
}

func TestTimetableHandlerListAndGet(t *testing.T) {
	svc := &timetableServiceMock{items: map[int64]models.Timetable{1: {ID: 1, Name: "Fall"}}}
	router := newTimetableRouter(svc)

	w := perform(router, http.MethodGet, "/timetables", nil)
	require.Equal(t, http.StatusOK, w.Code)
	envelope := decodeEnvelope(t, w)
	assert.Equal(t, float64(1), envelope["meta"].(map[string]interface{})["count"])

	w = perform(router, http.MethodGet, "/timetables/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeEnvelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "Fall", data["name"])
	assert.NotNil(t, data["classes"])

	w = perform(router, http.MethodGet, "/timetables/2", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = perform(router, http.MethodGet, "/timetables/0", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTimetableHandlerActivateThenActive(t *testing.T) {
	svc := &timetableServiceMock{items: map[int64]models.Timetable{3: {ID: 3}}}
	router := newTimetableRouter(svc)

	w := perform(router, http.MethodGet, "/timetables/active", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = perform(router, http.MethodPost, "/timetables/3/activate", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeEnvelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, true, data["timetable"].(map[string]interface{})["is_active"])

	w = perform(router, http.MethodGet, "/timetables/active", nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestTimetableHandlerDelete(t *testing.T) {
	svc := &timetableServiceMock{items: map[int64]models.Timetable{5: {ID: 5}}}
	router := newTimetableRouter(svc)

	w := perform(router, http.MethodDelete, "/timetables/5", nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []int64{5}, svc.deleted)

	w = perform(router, http.MethodDelete, "/timetables/5", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}
