package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"eventflow/internal/delivery/http/helpers"
	"eventflow/internal/delivery/http/middleware"
	"eventflow/internal/domain"
)

type RSVPController struct {
	Logger  *slog.Logger
	Service domain.AdmissionService
}

func NewRSVPController(logger *slog.Logger, svc domain.AdmissionService) *RSVPController {
	return &RSVPController{
		Logger:  logger,
		Service: svc,
	}
}

// JoinSuccessResponse is the success response envelope for POST /api/events/{eventID}/rsvp (200).
type JoinSuccessResponse struct {
	Data  *domain.RSVP      `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// Join godoc
// @Summary RSVP to an event
// @Description Reserves one of the event's seats for the authenticated user. Admission is atomic: when several users race for the last seat, exactly one wins and the rest see event_full.
// @Tags rsvp
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.JoinSuccessResponse "RSVP confirmed"
// @Failure 400 {object} helpers.APIResponse "error.code: event_full or not_rsvped"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: already_rsvped"
// @Failure 503 {object} helpers.APIResponse "error.code: conflict"
// @Router /events/{eventID}/rsvp [post]
func (c *RSVPController) Join(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	rsvp, err := c.Service.Join(r.Context(), eventID, userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
		case errors.Is(err, domain.ErrAlreadyJoined):
			helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeAlreadyRSVPed, "already rsvped")
		case errors.Is(err, domain.ErrEventFull):
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeEventFull, "event is full")
		case errors.Is(err, domain.ErrTxConflict):
			helpers.WriteJSONError(w, http.StatusServiceUnavailable, helpers.ErrCodeConflict, "could not complete rsvp, try again")
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		}
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, rsvp)
}

// Leave godoc
// @Summary Remove an RSVP
// @Description Releases the authenticated user's seat at the event. A repeated leave returns not_rsvped; the seat counter never goes below zero.
// @Tags rsvp
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "RSVP removed"
// @Failure 400 {object} helpers.APIResponse "error.code: not_rsvped"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 503 {object} helpers.APIResponse "error.code: conflict"
// @Router /events/{eventID}/rsvp [delete]
func (c *RSVPController) Leave(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	if err := c.Service.Leave(r.Context(), eventID, userID); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
		case errors.Is(err, domain.ErrNotJoined):
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeNotRSVPed, "not rsvped")
		case errors.Is(err, domain.ErrTxConflict):
			helpers.WriteJSONError(w, http.StatusServiceUnavailable, helpers.ErrCodeConflict, "could not remove rsvp, try again")
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		}
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"message": "rsvp removed"})
}
