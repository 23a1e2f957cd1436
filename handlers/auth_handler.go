package handlers

import (
	"net/http"

	"safesphere/middleware"
	"safesphere/services"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type registerRequest struct {
	Name      string   `json:"name" validate:"omitempty,max=100"`
	Email     string   `json:"email" validate:"required,email,max=254"`
	Password  string   `json:"password" validate:"required,max=72"`
	Phone     *string  `json:"phone" validate:"omitempty,max=32"`
	Latitude  *float64 `json:"latitude" validate:"omitempty,min=-90,max=90"`
	Longitude *float64 `json:"longitude" validate:"omitempty,min=-180,max=180"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var input registerRequest
	if err := decodeBody(r, &input); err != nil {
		middleware.WriteError(w, err)
		return
	}

	result, err := h.authService.Register(r.Context(), services.RegisterInput{
		Name:      input.Name,
		Email:     input.Email,
		Password:  input.Password,
		Phone:     input.Phone,
		Latitude:  input.Latitude,
		Longitude: input.Longitude,
	})
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, result)
}

func (h *AuthHandler) LoginUser(w http.ResponseWriter, r *http.Request) {
	var input loginRequest
	if err := decodeBody(r, &input); err != nil {
		middleware.WriteError(w, err)
		return
	}
	result, err := h.authService.Login(r.Context(), input.Email, input.Password)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, result)
}

func (h *AuthHandler) LogoutUser(w http.ResponseWriter, r *http.Request) {
	if token, ok := middleware.BearerToken(r); ok {
		if err := h.authService.Logout(r.Context(), token); err != nil {
			middleware.WriteError(w, err)
			return
		}
	}
	writeMessage(w, http.StatusOK, "Logged out successfully")
}
