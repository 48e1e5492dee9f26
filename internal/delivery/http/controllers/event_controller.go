package controllers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"eventflow/internal/delivery/http/helpers"
	"eventflow/internal/delivery/http/middleware"
	"eventflow/internal/domain"
)

// maxEventImageBytes caps uploaded image size at 5 MiB.
const maxEventImageBytes = 5 << 20

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

// EventListResponse is the data payload of GET /events.
type EventListResponse struct {
	Events     []*domain.Event        `json:"events"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// readImageFile reads the named multipart file, returning nil bytes when the
// part is absent.
func readImageFile(r *http.Request, field string) ([]byte, error) {
	file, _, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(io.LimitReader(file, maxEventImageBytes))
}

func parseEventForm(r *http.Request) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return r.ParseMultipartForm(maxEventImageBytes)
	}
	return r.ParseForm()
}

// Create godoc
// @Summary Create an event
// @Description Create an event from a multipart form. Required fields: title, description, date_time (RFC 3339, in the future), location, capacity (>= 1), image (file). Optional: category.
// @Tags events
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param title formData string true "Event title"
// @Param description formData string true "Event description"
// @Param date_time formData string true "Event date and time (RFC 3339)"
// @Param location formData string true "Event location"
// @Param capacity formData int true "Seat capacity"
// @Param category formData string false "Event category"
// @Param image formData file true "Event image"
// @Success 201 {object} helpers.APIResponse "data contains the created event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := parseEventForm(r); err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid form data")
		return
	}

	capacity, err := strconv.Atoi(r.FormValue("capacity"))
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "capacity must be an integer")
		return
	}
	dateTime, err := time.Parse(time.RFC3339, r.FormValue("date_time"))
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "date_time must be RFC 3339")
		return
	}
	imageData, err := readImageFile(r, "image")
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "could not read image")
		return
	}

	input := domain.CreateEventInput{
		Title:       strings.TrimSpace(r.FormValue("title")),
		Description: strings.TrimSpace(r.FormValue("description")),
		DateTime:    dateTime,
		Location:    strings.TrimSpace(r.FormValue("location")),
		Capacity:    capacity,
		ImageData:   imageData,
	}
	if cat := strings.TrimSpace(r.FormValue("category")); cat != "" {
		input.Category = &cat
	}

	event, err := c.Service.Create(r.Context(), userID, input)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// List godoc
// @Summary List upcoming events
// @Description List upcoming events, soonest first, with optional search, category, and date range filters.
// @Tags events
// @Produce json
// @Param search query string false "Match against title"
// @Param category query string false "Exact category"
// @Param from query string false "Earliest event date (RFC 3339)"
// @Param to query string false "Latest event date (RFC 3339)"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.APIResponse "data contains events and pagination"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.EventFilter{
		Search:   strings.TrimSpace(q.Get("search")),
		Category: strings.TrimSpace(q.Get("category")),
	}
	if s := q.Get("from"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "from must be RFC 3339")
			return
		}
		filter.From = &t
	}
	if s := q.Get("to"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "to must be RFC 3339")
			return
		}
		filter.To = &t
	}
	params := helpers.ParsePagination(r)

	events, total, err := c.Service.List(r.Context(), filter, params)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, EventListResponse{
		Events:     events,
		Pagination: helpers.NewPaginationMeta(params.Page, params.PageSize, total),
	})
}

// GetByID godoc
// @Summary Get an event
// @Description Get a single event. When the request carries a valid Bearer token, is_rsvped reflects the caller's membership.
// @Tags events
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the event and is_rsvped"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [get]
func (c *EventController) GetByID(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	callerID, _ := middleware.UserIDFromContext(r.Context())

	detail, err := c.Service.GetByID(r.Context(), eventID, callerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, detail)
}

// Update godoc
// @Summary Update an event
// @Description Update an event's fields from a multipart form. Only the owner may update. Omitted fields are left unchanged; capacity may not drop below the current RSVP count.
// @Tags events
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param title formData string false "Event title"
// @Param description formData string false "Event description"
// @Param date_time formData string false "Event date and time (RFC 3339)"
// @Param location formData string false "Event location"
// @Param capacity formData int false "Seat capacity"
// @Param category formData string false "Event category"
// @Param image formData file false "Replacement event image"
// @Success 200 {object} helpers.APIResponse "data contains the updated event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [put]
func (c *EventController) Update(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := parseEventForm(r); err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid form data")
		return
	}

	var update domain.EventUpdate
	if v, ok := formValue(r, "title"); ok {
		update.Title = &v
	}
	if v, ok := formValue(r, "description"); ok {
		update.Description = &v
	}
	if v, ok := formValue(r, "location"); ok {
		update.Location = &v
	}
	if v, ok := formValue(r, "category"); ok {
		update.Category = &v
	}
	if v, ok := formValue(r, "date_time"); ok {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "date_time must be RFC 3339")
			return
		}
		update.DateTime = &t
	}
	if v, ok := formValue(r, "capacity"); ok {
		capacity, err := strconv.Atoi(v)
		if err != nil {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "capacity must be an integer")
			return
		}
		update.Capacity = &capacity
	}
	imageData, err := readImageFile(r, "image")
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "could not read image")
		return
	}
	update.ImageData = imageData

	event, err := c.Service.Update(r.Context(), eventID, userID, update)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
		case errors.Is(err, domain.ErrForbidden):
			helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "only the event owner may update it")
		case errors.Is(err, domain.ErrInvalidInput):
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		}
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// Delete godoc
// @Summary Delete an event
// @Description Delete an event and all of its RSVPs. Only the owner may delete.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "event deleted"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [delete]
func (c *EventController) Delete(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	if err := c.Service.Delete(r.Context(), eventID, userID); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
		case errors.Is(err, domain.ErrForbidden):
			helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "only the event owner may delete it")
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		}
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"message": "event deleted"})
}

// formValue reports whether the form field was supplied, distinguishing an
// omitted field from one sent empty.
func formValue(r *http.Request, field string) (string, bool) {
	var values []string
	if r.MultipartForm != nil {
		values = r.MultipartForm.Value[field]
	}
	if values == nil {
		values = r.Form[field]
	}
	if len(values) == 0 {
		return "", false
	}
	return strings.TrimSpace(values[0]), true
}
