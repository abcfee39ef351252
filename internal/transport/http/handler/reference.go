package handler

import (
	"net/http"

	"github.com/greentech-platform/api/internal/application/reference"
)

// ReferenceHandler serves the location reference data.
type ReferenceHandler struct {
	svc reference.Service
}

func NewReferenceHandler(svc reference.Service) *ReferenceHandler {
	return &ReferenceHandler{svc: svc}
}

func (h *ReferenceHandler) Countries(w http.ResponseWriter, r *http.Request) {
	countries, err := h.svc.Countries(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, countries)
}

func (h *ReferenceHandler) Provinces(w http.ResponseWriter, r *http.Request) {
	countryCode := r.URL.Query().Get("country")
	if countryCode == "" {
		writeError(w, http.StatusBadRequest, "country is required")
		return
	}
	provinces, err := h.svc.Provinces(r.Context(), countryCode)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, provinces)
}

func (h *ReferenceHandler) EconomicZones(w http.ResponseWriter, r *http.Request) {
	provinceCode := r.URL.Query().Get("province")
	if provinceCode == "" {
		writeError(w, http.StatusBadRequest, "province is required")
		return
	}
	zones, err := h.svc.EconomicZones(r.Context(), provinceCode)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, zones)
}
