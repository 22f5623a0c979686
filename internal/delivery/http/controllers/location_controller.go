package controllers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"eventmanager/internal/delivery/http/helpers"
	"eventmanager/internal/domain"
)

// CreateLocationRequest is the request body for POST /locations.
type CreateLocationRequest struct {
	Name        string `json:"name"`
	Address     string `json:"address"`
	Capacity    int    `json:"capacity"`
	Description string `json:"description"`
}

// Validate implements Validator.
func (c CreateLocationRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, "name is required")
	}
	if c.Capacity <= 0 {
		errs = append(errs, "capacity must be positive")
	}
	return errs
}

// UpdateLocationRequest is the request body for PATCH /locations/{locationID}.
// Omitted fields are left unchanged. Capacity may only grow.
type UpdateLocationRequest struct {
	Name        *string `json:"name"`
	Address     *string `json:"address"`
	Capacity    *int    `json:"capacity"`
	Description *string `json:"description"`
}

// Validate implements Validator.
func (u UpdateLocationRequest) Validate() []string {
	var errs []string
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		errs = append(errs, "name must not be empty")
	}
	if u.Capacity != nil && *u.Capacity <= 0 {
		errs = append(errs, "capacity must be positive")
	}
	return errs
}

// LocationListResponse is the paginated payload for GET /locations.
type LocationListResponse struct {
	Locations  []*domain.Location     `json:"locations"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

type LocationController struct {
	Logger  *slog.Logger
	Service domain.LocationService
}

func NewLocationController(logger *slog.Logger, svc domain.LocationService) *LocationController {
	return &LocationController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateLocation godoc
// @Summary Create a location
// @Tags locations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param location body CreateLocationRequest true "Location data"
// @Success 201 {object} helpers.APIResponse "data contains the created location"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /locations [post]
func (c *LocationController) CreateLocation(w http.ResponseWriter, r *http.Request) {
	var req CreateLocationRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	location := domain.NewLocation(req.Name, req.Address, req.Description, req.Capacity, time.Now())
	created, err := c.Service.CreateLocation(r.Context(), location)
	if err != nil {
		writeDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, created)
}

// GetLocation godoc
// @Summary Get a location by id
// @Tags locations
// @Produce json
// @Param locationID path string true "Location ID"
// @Success 200 {object} helpers.APIResponse "data contains the location"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /locations/{locationID} [get]
func (c *LocationController) GetLocation(w http.ResponseWriter, r *http.Request) {
	location, err := c.Service.GetLocationByID(r.Context(), r.PathValue("locationID"))
	if err != nil {
		writeDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, location)
}

// ListLocations godoc
// @Summary List locations
// @Tags locations
// @Produce json
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} helpers.APIResponse "data contains locations and pagination"
// @Router /locations [get]
func (c *LocationController) ListLocations(w http.ResponseWriter, r *http.Request) {
	params := helpers.ParsePagination(r)
	locations, total, err := c.Service.ListLocations(r.Context(), params)
	if err != nil {
		writeDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, LocationListResponse{
		Locations:  locations,
		Pagination: helpers.NewPaginationMeta(params.Page, params.PageSize, total),
	})
}

// UpdateLocation godoc
// @Summary Update a location
// @Description Capacity may only be raised, never lowered below its current value.
// @Tags locations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param locationID path string true "Location ID"
// @Param patch body UpdateLocationRequest true "Fields to change"
// @Success 200 {object} helpers.APIResponse "data contains the updated location"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (capacity lowered)"
// @Router /locations/{locationID} [patch]
func (c *LocationController) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	var req UpdateLocationRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	patch := domain.LocationPatch{
		Name:        req.Name,
		Address:     req.Address,
		Capacity:    req.Capacity,
		Description: req.Description,
	}
	updated, err := c.Service.UpdateLocation(r.Context(), r.PathValue("locationID"), patch)
	if err != nil {
		writeDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, updated)
}

// DeleteLocation godoc
// @Summary Delete a location
// @Tags locations
// @Produce json
// @Security BearerAuth
// @Param locationID path string true "Location ID"
// @Success 204 "no content"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /locations/{locationID} [delete]
func (c *LocationController) DeleteLocation(w http.ResponseWriter, r *http.Request) {
	if err := c.Service.DeleteLocation(r.Context(), r.PathValue("locationID")); err != nil {
		writeDomainError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
