package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/weatherbook/webapp/internal/services"
	"github.com/weatherbook/webapp/internal/store"
	"github.com/weatherbook/webapp/internal/weather"
	"go.uber.org/zap"
)

// WeatherHandler serves the tracked-city page and its add/refresh/remove
// actions. All routes here sit behind RequireAuth.
type WeatherHandler struct {
	cities   *services.CityService
	sessions *SessionManager
	logger   *zap.Logger
}

func NewWeatherHandler(cities *services.CityService, sessions *SessionManager, logger *zap.Logger) *WeatherHandler {
	return &WeatherHandler{cities: cities, sessions: sessions, logger: logger}
}

// WeatherRouter registers the city routes on the given router.
func WeatherRouter(r chi.Router, cities *services.CityService, sessions *SessionManager, logger *zap.Logger) {
	handler := NewWeatherHandler(cities, sessions, logger)

	r.Use(sessions.RequireAuth)
	r.Get("/weather/{username}", handler.Page)
	r.Post("/weather/{username}", handler.AddCity)
	r.Get("/update/{cityID}", handler.Update)
	r.Get("/remove/{cityID}", handler.Remove)
}

// Page lists the session user's tracked cities. The page is scoped to
// the owner: a path naming another user redirects to the viewer's own
// page instead of exposing someone else's list.
func (h *WeatherHandler) Page(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFromContext(r.Context())
	if err != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if chi.URLParam(r, "username") != identity.Username {
		http.Redirect(w, r, weatherPath(identity.Username), http.StatusSeeOther)
		return
	}

	cities, err := h.cities.List(r.Context(), identity.UserID)
	if err != nil {
		h.logger.Error("list cities failed", zap.Error(err))
		h.sessions.Flash(w, r, "Something went wrong. Please try again")
	}

	render(w, "weather.html", pageData{
		Username: identity.Username,
		Flashes:  h.sessions.Flashes(w, r),
		Cities:   cities,
	})
}

// AddCity fetches live weather for the submitted city name and adds it
// to the user's list.
func (h *WeatherHandler) AddCity(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFromContext(r.Context())
	if err != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	_, err = h.cities.Add(r.Context(), identity.UserID, r.FormValue("city"))
	switch {
	case err == nil:
	case errors.Is(err, store.ErrDuplicateCity):
		h.sessions.Flash(w, r, "Please enter another city")
	case errors.Is(err, weather.ErrCityNotFound), errors.Is(err, services.ErrMissingFields):
		h.sessions.Flash(w, r, "Please enter valid city")
	case errors.Is(err, weather.ErrUnreachable):
		h.sessions.Flash(w, r, "Please check the Internet connection")
	default:
		h.logger.Error("add city failed", zap.Error(err))
		h.sessions.Flash(w, r, "Something went wrong. Please try again")
	}

	http.Redirect(w, r, weatherPath(identity.Username), http.StatusSeeOther)
}

// Update refreshes one city's weather snapshot in place.
func (h *WeatherHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFromContext(r.Context())
	if err != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	cityID, err := parseIDParam(r, "cityID")
	if err == nil {
		err = h.cities.Refresh(r.Context(), identity.UserID, cityID)
	}
	switch {
	case err == nil:
	case errors.Is(err, services.ErrNotOwner), errors.Is(err, store.ErrNotFound):
		h.sessions.Flash(w, r, "You cannot update this city")
	case errors.Is(err, weather.ErrUnreachable):
		h.sessions.Flash(w, r, "Please check the Internet connection")
	default:
		h.logger.Error("refresh city failed", zap.Error(err))
		h.sessions.Flash(w, r, "Something went wrong. Please try again")
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Remove deletes one tracked city.
func (h *WeatherHandler) Remove(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFromContext(r.Context())
	if err != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	cityID, err := parseIDParam(r, "cityID")
	if err == nil {
		err = h.cities.Remove(r.Context(), identity.UserID, cityID)
	}
	switch {
	case err == nil:
	case errors.Is(err, services.ErrNotOwner), errors.Is(err, store.ErrNotFound):
		h.sessions.Flash(w, r, "You cannot remove this city")
	default:
		h.logger.Error("remove city failed", zap.Error(err))
		h.sessions.Flash(w, r, "Something went wrong. Please try again")
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}
