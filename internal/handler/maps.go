package handler

import (
	"net/http"

	"github.com/pkordes/tripshare/internal/domain"
)

type suggestionList struct {
	Data []domain.Suggestion `json:"data"`
}

// GetDirections handles GET /search-direction?origin=&destination=&vehicle=car|bike|foot.
func (s *Server) GetDirections(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode, err := domain.ParseVehicleMode(q.Get("vehicle"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	routes, err := s.trips.GetDirections(r.Context(), q.Get("origin"), q.Get("destination"), mode)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, routes)
}

// Autocomplete handles GET /autocomplete?input=.
func (s *Server) Autocomplete(w http.ResponseWriter, r *http.Request) {
	out, err := s.trips.Autocomplete(r.Context(), r.URL.Query().Get("input"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, suggestionList{Data: out})
}

// Geocode handles GET /geocode?address=.
func (s *Server) Geocode(w http.ResponseWriter, r *http.Request) {
	res, err := s.trips.Geocode(r.Context(), r.URL.Query().Get("address"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
