package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"eventflow/internal/delivery/http/helpers"
	"eventflow/internal/delivery/http/middleware"
	"eventflow/internal/domain"
)

type UserController struct {
	Logger  *slog.Logger
	Service domain.UserService
}

func NewUserController(logger *slog.Logger, svc domain.UserService) *UserController {
	return &UserController{
		Logger:  logger,
		Service: svc,
	}
}

// GetMyEvents godoc
// @Summary Get the authenticated user's events
// @Description Returns the events the user created and the events they are attending.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains created_events and attending_events"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/me/events [get]
func (c *UserController) GetMyEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	myEvents, err := c.Service.GetMyEvents(r.Context(), userID)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, myEvents)
}

// UpdateMe godoc
// @Summary Update the authenticated user's profile
// @Description Update name, password, or avatar from a multipart form. All fields are optional but at least one must be supplied.
// @Tags users
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param name formData string false "Display name"
// @Param password formData string false "New password"
// @Param avatar formData file false "Avatar image"
// @Success 200 {object} helpers.APIResponse "data contains the updated user"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/me [put]
func (c *UserController) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := parseEventForm(r); err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid form data")
		return
	}

	var update domain.ProfileUpdate
	if v, ok := formValue(r, "name"); ok {
		update.Name = &v
	}
	if v, ok := formValue(r, "password"); ok {
		update.Password = &v
	}
	avatar, err := readImageFile(r, "avatar")
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "could not read avatar")
		return
	}
	update.AvatarImage = avatar

	user, err := c.Service.UpdateProfile(r.Context(), userID, update)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		case errors.Is(err, domain.ErrUserNotFound):
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "user not found")
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		}
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, user)
}
