package handlers

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"safesphere/middleware"
	"safesphere/models"
	"safesphere/utils/errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report json field names instead of Go field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeBody decodes a JSON body into dst and validates it
func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.ErrInvalidInput.WithDetails(err.Error())
	}
	if err := validate.Struct(dst); err != nil {
		return errors.ErrInvalidInput.WithDetails(describeValidation(err))
	}
	return nil
}

func describeValidation(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s failed on %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.ErrInvalidInput.WithDetails("invalid " + name)
	}
	return id, nil
}

// parseCoordinates rejects NaN, infinities and out of range values
func parseCoordinates(rawLat, rawLon string) (models.GeoPoint, error) {
	lat, err := strconv.ParseFloat(rawLat, 64)
	if err != nil {
		return models.GeoPoint{}, errors.ErrInvalidCoordinates
	}
	lon, err := strconv.ParseFloat(rawLon, 64)
	if err != nil {
		return models.GeoPoint{}, errors.ErrInvalidCoordinates
	}
	p := models.GeoPoint{Latitude: lat, Longitude: lon}
	if !p.Valid() {
		return models.GeoPoint{}, errors.ErrInvalidCoordinates
	}
	return p, nil
}

func pathCoordinates(r *http.Request) (float64, float64, error) {
	vars := mux.Vars(r)
	p, err := parseCoordinates(vars["lat"], vars["lon"])
	if err != nil {
		return 0, 0, err
	}
	return p.Latitude, p.Longitude, nil
}

// queryRadius reads an optional positive finite radius, falling back to def
func queryRadius(r *http.Request, def float64) (float64, error) {
	raw := r.URL.Query().Get("radius")
	if raw == "" {
		return def, nil
	}
	radius, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(radius) || math.IsInf(radius, 0) {
		return 0, errors.ErrInvalidInput.WithDetails("invalid radius")
	}
	if radius <= 0 {
		return def, nil
	}
	return radius, nil
}

func currentUser(r *http.Request) (models.User, error) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		return models.User{}, errors.ErrUnauthorized
	}
	return user, nil
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	middleware.WriteJSON(w, status, map[string]string{"message": message})
}
