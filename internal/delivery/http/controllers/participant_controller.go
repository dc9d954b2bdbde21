package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	h "planmeet/internal/delivery/http/helpers"
	"planmeet/internal/delivery/http/middleware"
	"planmeet/internal/domain"
)

// JoinEventRequest is the request body for POST /api/events/{id}/participants.
// Availability is the serialized array of available dates; an empty or
// missing value means "available on none yet".
type JoinEventRequest struct {
	Availability string `json:"availability"`
}

// UpdateAvailabilityRequest is the request body for PUT /api/events/{id}/availability.
type UpdateAvailabilityRequest struct {
	Availability string `json:"availability"`
}

// Validate implements Validator.
func (u UpdateAvailabilityRequest) Validate() []string {
	if u.Availability == "" {
		return []string{"availability is required"}
	}
	return nil
}

// JoinEventSuccessResponse is the success response envelope for POST /api/events/{id}/participants (200).
type JoinEventSuccessResponse struct {
	Data  *domain.Participant `json:"data"`
	Error *h.APIError         `json:"error"`
}

// ListParticipantsSuccessResponse is the success response envelope for GET /api/events/{id}/participants (200).
type ListParticipantsSuccessResponse struct {
	Data  []*domain.Participant `json:"data"`
	Error *h.APIError           `json:"error"`
}

type ParticipantController struct {
	Logger  *slog.Logger
	Service domain.ParticipantService
}

func NewParticipantController(logger *slog.Logger, svc domain.ParticipantService) *ParticipantController {
	return &ParticipantController{
		Logger:  logger,
		Service: svc,
	}
}

// Join godoc
// @Summary Join an event
// @Description Adds the caller as a participant with the given availability. Joining an event you already joined adds another participant row.
// @Tags participants
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Param body body JoinEventRequest true "Initial availability (may be empty)"
// @Success 200 {object} controllers.JoinEventSuccessResponse "data contains the participant row"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{id}/participants [post]
func (c *ParticipantController) Join(w http.ResponseWriter, r *http.Request) {
	id, ok := parseEventID(w, r)
	if !ok {
		return
	}
	var req JoinEventRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	if req.Availability == "" {
		req.Availability = "[]"
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	participant, err := c.Service.Join(r.Context(), id, userID, req.Availability)
	if err != nil {
		c.writeParticipantError(w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, participant)
}

// List godoc
// @Summary List event participants
// @Description Lists every participant row for the event with its submitted availability.
// @Tags participants
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {object} controllers.ListParticipantsSuccessResponse "data contains the participants"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{id}/participants [get]
func (c *ParticipantController) List(w http.ResponseWriter, r *http.Request) {
	id, ok := parseEventID(w, r)
	if !ok {
		return
	}
	participants, err := c.Service.ListByEvent(r.Context(), id)
	if err != nil {
		c.writeParticipantError(w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, participants)
}

// UpdateAvailability godoc
// @Summary Update my availability
// @Description Replaces the caller's availability for the event. Succeeds with empty data even when the caller never joined.
// @Tags participants
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Param body body UpdateAvailabilityRequest true "New availability"
// @Success 200 {object} helpers.APIResponse "data is null"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{id}/availability [put]
func (c *ParticipantController) UpdateAvailability(w http.ResponseWriter, r *http.Request) {
	id, ok := parseEventID(w, r)
	if !ok {
		return
	}
	var req UpdateAvailabilityRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.UpdateAvailability(r.Context(), id, userID, req.Availability); err != nil {
		c.writeParticipantError(w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, nil)
}

// Calendar godoc
// @Summary Export availability as iCalendar
// @Description Renders every participant's available days as an iCalendar feed of all-day events. Caller must be the planner or a participant.
// @Tags participants
// @Produce text/calendar
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {string} string "iCalendar document"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{id}/calendar.ics [get]
func (c *ParticipantController) Calendar(w http.ResponseWriter, r *http.Request) {
	id, ok := parseEventID(w, r)
	if !ok {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	ics, err := c.Service.BuildCalendar(r.Context(), id, userID)
	if err != nil {
		c.writeParticipantError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="availability.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(ics)
}

// writeParticipantError maps domain sentinels to their status codes and logs the rest.
func (c *ParticipantController) writeParticipantError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		h.WriteJSONError(w, http.StatusNotFound, h.ErrCodeNotFound, "event not found")
	case errors.Is(err, domain.ErrForbidden):
		h.WriteJSONError(w, http.StatusForbidden, h.ErrCodeForbidden, "forbidden")
	case errors.Is(err, domain.ErrInvalidInput):
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, err.Error())
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, err.Error())
	}
}
