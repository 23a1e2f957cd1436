package handlers

import (
	"net/http"

	"safesphere/middleware"
	"safesphere/services"
)

type LocationHandler struct {
	locationService *services.LocationService
}

type createLocationRequest struct {
	Name      *string  `json:"name" validate:"omitempty,max=100"`
	Latitude  *float64 `json:"latitude" validate:"omitempty,min=-90,max=90"`
	Longitude *float64 `json:"longitude" validate:"omitempty,min=-180,max=180"`
	Type      *string  `json:"type" validate:"omitempty,max=32"`
}

func NewLocationHandler(locationService *services.LocationService) *LocationHandler {
	return &LocationHandler{locationService: locationService}
}

func (h *LocationHandler) CreateLocation(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	var input createLocationRequest
	if err := decodeBody(r, &input); err != nil {
		middleware.WriteError(w, err)
		return
	}

	loc, err := h.locationService.CreateLocation(r.Context(), user, services.LocationInput{
		Name:      input.Name,
		Latitude:  input.Latitude,
		Longitude: input.Longitude,
		Type:      input.Type,
	})
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, loc)
}

func (h *LocationHandler) GetLocations(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	locs, err := h.locationService.ListLocations(r.Context(), user.ID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, locs)
}

func (h *LocationHandler) GetUserLocations(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	locs, err := h.locationService.ListLocations(r.Context(), userID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, locs)
}
