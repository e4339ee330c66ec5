package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/dept-timetable-api/internal/dto"
	appErrors "github.com/noah-isme/dept-timetable-api/pkg/errors"
	"github.com/noah-isme/dept-timetable-api/pkg/response"
)

type sessionMaterializer interface {
	Materialize(ctx context.Context) (*dto.MaterializeSummary, error)
}

type autoAssigner interface {
	Run(ctx context.Context) (*dto.AutoAssignSummary, error)
}

// AutoAssignJobQueue runs auto-assign passes in the background. A nil queue
// disables the job endpoints.
type AutoAssignJobQueue interface {
	Submit(ctx context.Context) (*dto.AutoAssignJob, error)
	Get(ctx context.Context, id string) (*dto.AutoAssignJob, error)
}

type sessionPlacer interface {
	Check(ctx context.Context, req dto.PlacementRequest) (*dto.PlacementCheckResponse, error)
	Place(ctx context.Context, req dto.PlacementRequest) (*dto.PlacementCheckResponse, error)
	Unplace(ctx context.Context, sessionID string) error
	ResetPlacements(ctx context.Context) (*dto.ResetSummary, error)
}

// TimetableHandler exposes session materialization and placement endpoints.
type TimetableHandler struct {
	materializer sessionMaterializer
	autoAssign   autoAssigner
	jobs         AutoAssignJobQueue
	placement    sessionPlacer
}

// NewTimetableHandler constructs the handler. jobs may be nil when
// asynchronous passes are disabled.
func NewTimetableHandler(materializer sessionMaterializer, autoAssign autoAssigner, jobs AutoAssignJobQueue, placement sessionPlacer) *TimetableHandler {
	return &TimetableHandler{materializer: materializer, autoAssign: autoAssign, jobs: jobs, placement: placement}
}

// Materialize godoc
// @Summary Materialize sessions from subject split patterns
// @Description Creates, updates and deletes sessions so every subject has one session per split block. Idempotent.
// @Tags Sessions
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /sessions/materialize [post]
func (h *TimetableHandler) Materialize(c *gin.Context) {
	summary, err := h.materializer.Materialize(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary)
}

// AutoAssign godoc
// @Summary Run the auto-assign pass
// @Description Places floating sessions greedily. Sessions that cannot be placed are reported, not treated as an error.
// @Tags Sessions
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /sessions/auto-assign [post]
func (h *TimetableHandler) AutoAssign(c *gin.Context) {
	summary, err := h.autoAssign.Run(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, map[string]interface{}{"complete": summary.Unplaced == 0 && !summary.Cancelled})
}

// SubmitAutoAssignJob godoc
// @Summary Queue an auto-assign pass
// @Tags Sessions
// @Produce json
// @Success 202 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /sessions/auto-assign/jobs [post]
func (h *TimetableHandler) SubmitAutoAssignJob(c *gin.Context) {
	if h.jobs == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "asynchronous auto-assign is disabled"))
		return
	}
	job, err := h.jobs.Submit(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, job)
}

// GetAutoAssignJob godoc
// @Summary Get the status of a queued auto-assign pass
// @Tags Sessions
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /sessions/auto-assign/jobs/{id} [get]
func (h *TimetableHandler) GetAutoAssignJob(c *gin.Context) {
	if h.jobs == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "asynchronous auto-assign is disabled"))
		return
	}
	job, err := h.jobs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job)
}

// CheckPlacement godoc
// @Summary Evaluate a manual placement without saving it
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.PlacementRequest true "Proposed placement"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /sessions/{id}/placement/check [post]
func (h *TimetableHandler) CheckPlacement(c *gin.Context) {
	req, ok := bindPlacement(c)
	if !ok {
		return
	}
	verdict, err := h.placement.Check(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, verdict)
}

// Place godoc
// @Summary Place a session manually
// @Description Rejected with 422 when a hard rule fails, 428 when a soft-constrained slot is touched without overrideSoft.
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.PlacementRequest true "Placement"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Failure 428 {object} response.Envelope
// @Router /sessions/{id}/placement [put]
func (h *TimetableHandler) Place(c *gin.Context) {
	req, ok := bindPlacement(c)
	if !ok {
		return
	}
	verdict, err := h.placement.Place(c.Request.Context(), req)
	if err != nil {
		if verdict != nil {
			response.ErrorWithData(c, err, verdict)
			return
		}
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, verdict)
}

// Unplace godoc
// @Summary Return a session to the unplaced pool
// @Tags Sessions
// @Param id path string true "Session ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /sessions/{id}/placement [delete]
func (h *TimetableHandler) Unplace(c *gin.Context) {
	if err := h.placement.Unplace(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ResetPlacements godoc
// @Summary Unplace every session of a non-fixed subject
// @Tags Sessions
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /sessions/placements [delete]
func (h *TimetableHandler) ResetPlacements(c *gin.Context) {
	summary, err := h.placement.ResetPlacements(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary)
}

func bindPlacement(c *gin.Context) (dto.PlacementRequest, bool) {
	var req dto.PlacementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid placement payload"))
		return req, false
	}
	req.SessionID = c.Param("id")
	return req, true
}
