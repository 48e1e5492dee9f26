package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"eventflow/internal/delivery/http/helpers"
	"eventflow/internal/domain"
)

type AIController struct {
	Logger  *slog.Logger
	Service domain.DescriptionService
}

func NewAIController(logger *slog.Logger, svc domain.DescriptionService) *AIController {
	return &AIController{
		Logger:  logger,
		Service: svc,
	}
}

// EnhanceDescriptionRequest is the request body for POST /ai/enhance-description
type EnhanceDescriptionRequest struct {
	Title string `json:"title"`
	Notes string `json:"notes"`
}

// Validate implements helpers.Validator.
func (req EnhanceDescriptionRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(req.Title) == "" {
		errs = append(errs, "title is required")
	}
	if strings.TrimSpace(req.Notes) == "" {
		errs = append(errs, "notes is required")
	}
	return errs
}

// EnhanceDescriptionResponse is the data payload of POST /ai/enhance-description
type EnhanceDescriptionResponse struct {
	Description string `json:"description"`
}

// EnhanceDescription godoc
// @Summary Generate a polished event description
// @Description Turns an event title and rough organizer notes into a polished description. Requires an AI provider to be configured.
// @Tags ai
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body EnhanceDescriptionRequest true "Title and rough notes"
// @Success 200 {object} helpers.APIResponse "data contains the generated description"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 501 {object} helpers.APIResponse "error.code: not_configured"
// @Failure 502 {object} helpers.APIResponse "error.code: upstream_error"
// @Router /ai/enhance-description [post]
func (c *AIController) EnhanceDescription(w http.ResponseWriter, r *http.Request) {
	var req EnhanceDescriptionRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	description, err := c.Service.EnhanceDescription(r.Context(), req.Title, req.Notes)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		case errors.Is(err, domain.ErrAINotConfigured):
			helpers.WriteJSONError(w, http.StatusNotImplemented, helpers.ErrCodeNotConfigured, "ai feature not configured")
		case errors.Is(err, domain.ErrAIUpstream):
			helpers.WriteJSONError(w, http.StatusBadGateway, helpers.ErrCodeUpstreamError, "ai provider request failed")
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		}
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, EnhanceDescriptionResponse{Description: description})
}
