package server

import (
	"errors"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wellquest/questmap/internal/geo"
	"github.com/wellquest/questmap/internal/locator"
	"github.com/wellquest/questmap/internal/wellquest"
)

// handleNearbyLocations lists locations around lat/lon, nearest first. Without
// coordinates it lists the whole catalog.
func handleNearbyLocations(svc *locator.Service, defaultRadius float64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lat, hasLat, err := queryFloat(r, "lat")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		lon, hasLon, err := queryFloat(r, "lon")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if !hasLat && !hasLon {
			writeJSON(w, http.StatusOK, svc.AllLocations())
			return
		}
		if hasLat != hasLon {
			writeError(w, http.StatusBadRequest, "lat and lon must be given together")
			return
		}

		pos := geo.Point{Lat: lat, Lon: lon}
		if err := geo.Validate(pos); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		radius, ok, err := queryFloat(r, "radius")
		switch {
		case err != nil:
			writeError(w, http.StatusBadRequest, err.Error())
			return
		case !ok:
			radius = defaultRadius
		case radius < 0 || math.IsNaN(radius) || math.IsInf(radius, 0):
			writeError(w, http.StatusBadRequest, "radius must be a non-negative number")
			return
		}

		nearby := svc.NearbyLocations(pos, radius)
		if nearby == nil {
			nearby = []wellquest.NearbyLocation{}
		}
		writeJSON(w, http.StatusOK, nearby)
	}
}

func handleLocation(svc *locator.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		loc, err := svc.Location(chi.URLParam(r, "id"))
		if errors.Is(err, locator.ErrUnknownLocation) {
			writeError(w, http.StatusNotFound, "location not found")
			return
		}
		writeJSON(w, http.StatusOK, loc)
	}
}
