package handlers

import (
	"net/http"

	"safesphere/middleware"
	"safesphere/services"
)

type WeatherHandler struct {
	weatherService *services.WeatherService
}

func NewWeatherHandler(weatherService *services.WeatherService) *WeatherHandler {
	return &WeatherHandler{weatherService: weatherService}
}

func (h *WeatherHandler) GetWeather(w http.ResponseWriter, r *http.Request) {
	lat, lon, err := pathCoordinates(r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, h.weatherService.GetWeather(r.Context(), lat, lon))
}

func (h *WeatherHandler) GetRadar(w http.ResponseWriter, r *http.Request) {
	lat, lon, err := pathCoordinates(r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, h.weatherService.GetRadar(lat, lon))
}

func (h *WeatherHandler) GetDisasters(w http.ResponseWriter, r *http.Request) {
	lat, lon, err := pathCoordinates(r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	radius, err := queryRadius(r, services.DefaultDisasterRadius)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, h.weatherService.GetDisasters(lat, lon, radius))
}
