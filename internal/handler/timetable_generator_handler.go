package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/service"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
	"github.com/noah-isme/timetable-api/pkg/response"
)

type timetableGenerator interface {
	Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error)
	Regenerate(ctx context.Context, timetableID int64, req dto.RegenerateTimetableRequest) (*dto.GenerateTimetableResponse, error)
	Preview(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error)
	Commit(ctx context.Context, proposalID string, req dto.CommitProposalRequest) (*dto.GenerateTimetableResponse, error)
}

type generationRunner interface {
	Submit(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerationRunResponse, error)
	Get(ctx context.Context, id string) (*dto.GenerationRunResponse, error)
}

// TimetableGeneratorHandler exposes generation endpoints.
type TimetableGeneratorHandler struct {
	generator timetableGenerator
	runner    generationRunner
}

// NewTimetableGeneratorHandler constructs the handler.
func NewTimetableGeneratorHandler(generator *service.TimetableGeneratorService, runner *service.GenerationRunner) *TimetableGeneratorHandler {
	return &TimetableGeneratorHandler{generator: generator, runner: runner}
}

// Generate godoc
// @Summary Generate and persist a timetable
// @Tags Generation
// @Accept json
// @Produce json
// @Param payload body dto.GenerateTimetableRequest true "Generate timetable payload"
// @Success 201 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /timetables/generate [post]
func (h *TimetableGeneratorHandler) Generate(c *gin.Context) {
	var req dto.GenerateTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generate payload"))
		return
	}
	result, err := h.generator.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Preview godoc
// @Summary Generate a timetable proposal without saving it
// @Tags Generation
// @Accept json
// @Produce json
// @Param payload body dto.GenerateTimetableRequest true "Generate timetable payload"
// @Success 200 {object} response.Envelope
// @Router /timetables/generate/preview [post]
func (h *TimetableGeneratorHandler) Preview(c *gin.Context) {
	var req dto.GenerateTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid preview payload"))
		return
	}
	result, err := h.generator.Preview(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, map[string]interface{}{"mode": "preview"})
}

// Commit godoc
// @Summary Persist a previewed proposal
// @Tags Generation
// @Accept json
// @Produce json
// @Param id path string true "Proposal ID"
// @Param payload body dto.CommitProposalRequest false "Commit options"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetables/proposals/{id}/commit [post]
func (h *TimetableGeneratorHandler) Commit(c *gin.Context) {
	var req dto.CommitProposalRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid commit payload"))
			return
		}
	}
	result, err := h.generator.Commit(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Regenerate godoc
// @Summary Replace the classes of an existing timetable
// @Tags Generation
// @Accept json
// @Produce json
// @Param id path int true "Timetable ID"
// @Param payload body dto.RegenerateTimetableRequest false "Regenerate options"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetables/{id}/regenerate [post]
func (h *TimetableGeneratorHandler) Regenerate(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.RegenerateTimetableRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid regenerate payload"))
			return
		}
	}
	result, err := h.generator.Regenerate(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Submit godoc
// @Summary Queue a timetable generation
// @Tags Generation
// @Accept json
// @Produce json
// @Param payload body dto.GenerateTimetableRequest true "Generate timetable payload"
// @Success 202 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /timetables/generate/async [post]
func (h *TimetableGeneratorHandler) Submit(c *gin.Context) {
	var req dto.GenerateTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generate payload"))
		return
	}
	run, err := h.runner.Submit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, run)
}

// Run godoc
// @Summary Poll an asynchronous generation
// @Tags Generation
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /generation-runs/{id} [get]
func (h *TimetableGeneratorHandler) Run(c *gin.Context) {
	run, err := h.runner.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, run)
}
