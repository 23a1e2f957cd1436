package handlers

import (
	"net/http"

	"safesphere/middleware"
	"safesphere/models"
	"safesphere/services"
)

type UserHandler struct {
	userService *services.UserService
}

type NearbyFriendsResponse struct {
	NearbyFriends []services.NearbyFriend `json:"nearby_friends"`
	Count         int                     `json:"count"`
	Lat           float64                 `json:"lat"`
	Lon           float64                 `json:"lon"`
	Radius        float64                 `json:"radius"`
}

type updateProfileRequest struct {
	Name      *string  `json:"name" validate:"omitempty,max=100"`
	Phone     *string  `json:"phone" validate:"omitempty,max=32"`
	Latitude  *float64 `json:"latitude" validate:"omitempty,min=-90,max=90"`
	Longitude *float64 `json:"longitude" validate:"omitempty,min=-180,max=180"`
}

type pingLocationRequest struct {
	Latitude  *float64 `json:"latitude" validate:"required,min=-90,max=90"`
	Longitude *float64 `json:"longitude" validate:"required,min=-180,max=180"`
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, user)
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	var input updateProfileRequest
	if err := decodeBody(r, &input); err != nil {
		middleware.WriteError(w, err)
		return
	}

	updated, err := h.userService.UpdateProfile(r.Context(), user, models.ProfileUpdate{
		Name:      input.Name,
		Phone:     input.Phone,
		Latitude:  input.Latitude,
		Longitude: input.Longitude,
	})
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, updated)
}

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.ListUsers(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, users)
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	user, err := h.userService.GetUser(r.Context(), userID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, user)
}

func (h *UserHandler) PingLocation(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	var input pingLocationRequest
	if err := decodeBody(r, &input); err != nil {
		middleware.WriteError(w, err)
		return
	}

	_, err = h.userService.PingLocation(r.Context(), user, models.GeoPoint{Latitude: *input.Latitude, Longitude: *input.Longitude})
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]any{"status": "success", "message": "Location updated", "user_id": user.ID})
}

func (h *UserHandler) GetNearbyFriends(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	// Parse GPS coordinates
	center, err := parseCoordinates(r.URL.Query().Get("lat"), r.URL.Query().Get("lon"))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	radius, err := queryRadius(r, services.DefaultNearbyRadiusMeters)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	friends, err := h.userService.NearbyFriends(r.Context(), user, center, radius)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, NearbyFriendsResponse{
		NearbyFriends: friends,
		Count:         len(friends),
		Lat:           center.Latitude,
		Lon:           center.Longitude,
		Radius:        radius,
	})
}
