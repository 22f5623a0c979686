package controllers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"eventmanager/internal/delivery/http/helpers"
	"eventmanager/internal/domain"
)

// CreateEventRequest is the request body for POST /events.
type CreateEventRequest struct {
	Name            string    `json:"name"`
	MaxPlaces       int       `json:"max_places"`
	Date            time.Time `json:"date"`
	Cost            int       `json:"cost"`
	DurationMinutes int       `json:"duration_minutes"`
	LocationID      string    `json:"location_id"`
}

// Validate implements Validator.
func (c CreateEventRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, "name is required")
	}
	if c.MaxPlaces < 0 {
		errs = append(errs, "max_places must not be negative")
	}
	if c.Cost < 0 {
		errs = append(errs, "cost must not be negative")
	}
	if c.DurationMinutes < 30 {
		errs = append(errs, "duration_minutes must be at least 30")
	}
	if c.Date.IsZero() {
		errs = append(errs, "date is required")
	}
	if c.LocationID == "" {
		errs = append(errs, "location_id is required")
	}
	return errs
}

// UpdateEventRequest is the request body for PATCH /events/{eventID}. Omitted
// fields are left unchanged.
type UpdateEventRequest struct {
	Name            *string    `json:"name"`
	MaxPlaces       *int       `json:"max_places"`
	Date            *time.Time `json:"date"`
	Cost            *int       `json:"cost"`
	DurationMinutes *int       `json:"duration_minutes"`
	LocationID      *string    `json:"location_id"`
}

// Validate implements Validator.
func (u UpdateEventRequest) Validate() []string {
	var errs []string
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		errs = append(errs, "name must not be empty")
	}
	if u.MaxPlaces != nil && *u.MaxPlaces < 0 {
		errs = append(errs, "max_places must not be negative")
	}
	if u.Cost != nil && *u.Cost < 0 {
		errs = append(errs, "cost must not be negative")
	}
	if u.DurationMinutes != nil && *u.DurationMinutes < 30 {
		errs = append(errs, "duration_minutes must be at least 30")
	}
	if u.LocationID != nil && *u.LocationID == "" {
		errs = append(errs, "location_id must not be empty")
	}
	return errs
}

// EventListResponse is the paginated payload for GET /events.
type EventListResponse struct {
	Events     []*domain.Event        `json:"events"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

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

// CreateEvent godoc
// @Summary Create a new event
// @Description The authenticated user becomes the event owner. The event starts in WAIT_START with zero occupied places.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param event body CreateEventRequest true "Event data"
// @Success 201 {object} helpers.APIResponse "data contains the created event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (location)"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (insufficient seats)"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := actorID(w, r)
	if !ok {
		return
	}
	event := domain.NewEvent(req.Name, userID, req.LocationID, req.MaxPlaces, req.Cost, req.DurationMinutes, req.Date, time.Now())
	created, err := c.Service.CreateEvent(r.Context(), userID, event)
	if err != nil {
		writeDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, created)
}

// GetEvent godoc
// @Summary Get an event by id
// @Tags events
// @Produce json
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains the event"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := c.Service.GetEventByID(r.Context(), r.PathValue("eventID"))
	if err != nil {
		writeDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// SearchEvents godoc
// @Summary Search events
// @Description Filters: name (substring), location_id, owner_id, status, date_from, date_to (RFC3339). Paginated.
// @Tags events
// @Produce json
// @Param name query string false "Name substring"
// @Param location_id query string false "Location ID"
// @Param owner_id query string false "Owner ID"
// @Param status query string false "Event status"
// @Param date_from query string false "Earliest date (RFC3339)"
// @Param date_to query string false "Latest date (RFC3339)"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} helpers.APIResponse "data contains events and pagination"
// @Router /events [get]
func (c *EventController) SearchEvents(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := domain.EventSearchFilter{
		Name:       query.Get("name"),
		LocationID: query.Get("location_id"),
		OwnerID:    query.Get("owner_id"),
		Status:     domain.EventStatus(query.Get("status")),
	}
	if s := query.Get("date_from"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid date_from")
			return
		}
		filter.DateFrom = &t
	}
	if s := query.Get("date_to"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid date_to")
			return
		}
		filter.DateTo = &t
	}
	params := helpers.ParsePagination(r)
	events, total, err := c.Service.SearchEvents(r.Context(), filter, params)
	if err != nil {
		writeDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, EventListResponse{
		Events:     events,
		Pagination: helpers.NewPaginationMeta(params.Page, params.PageSize, total),
	})
}

// UpdateEvent godoc
// @Summary Update an event
// @Description Only the owner or an administrator may update. Capacity checks re-run when the event moves or grows.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param patch body UpdateEventRequest true "Fields to change"
// @Success 200 {object} helpers.APIResponse "data contains the updated event"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /events/{eventID} [patch]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var req UpdateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := actorID(w, r)
	if !ok {
		return
	}
	patch := domain.EventPatch{
		Name:            req.Name,
		MaxPlaces:       req.MaxPlaces,
		Date:            req.Date,
		Cost:            req.Cost,
		DurationMinutes: req.DurationMinutes,
		LocationID:      req.LocationID,
	}
	updated, err := c.Service.UpdateEvent(r.Context(), userID, r.PathValue("eventID"), patch)
	if err != nil {
		writeDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, updated)
}

// DeleteEvent godoc
// @Summary Delete (cancel) an event that has not started
// @Description The event row is kept and marked CANCELLED. Events past WAIT_START cannot be deleted.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 204 "no content"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /events/{eventID} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := actorID(w, r)
	if !ok {
		return
	}
	if err := c.Service.DeleteEvent(r.Context(), userID, r.PathValue("eventID")); err != nil {
		writeDomainError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CancelEvent godoc
// @Summary Cancel an event
// @Description Legal from WAIT_START or STARTED. Registrations are kept; further registration changes are rejected.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains the cancelled event"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already cancelled or finished)"
// @Router /events/{eventID}/cancel [post]
func (c *EventController) CancelEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := actorID(w, r)
	if !ok {
		return
	}
	cancelled, err := c.Service.CancelEvent(r.Context(), userID, r.PathValue("eventID"))
	if err != nil {
		writeDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, cancelled)
}
