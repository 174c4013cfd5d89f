package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/gestaozabele/coleta/internal/bins"
	"github.com/gestaozabele/coleta/internal/geo"
	"github.com/gestaozabele/coleta/internal/query"
	"github.com/gestaozabele/coleta/internal/util"
)

func (h *Handler) ListBins(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	minLevel, err := query.ParseIntFilter(values, "fill_level_min")
	if err != nil {
		WriteAppError(w, err, h.dev())
		return
	}
	maxLevel, err := query.ParseIntFilter(values, "fill_level_max")
	if err != nil {
		WriteAppError(w, err, h.dev())
		return
	}

	filter := bins.Filter{
		BinType:      values.Get("bin_type"),
		FillLevelMin: minLevel,
		FillLevelMax: maxLevel,
		Location:     values.Get("location"),
	}

	res, err := h.bins.List(r.Context(), filter, query.ParsePage(values))
	if err != nil {
		WriteAppError(w, err, h.dev())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"bins": res.Items, "pagination": res.Pagination})
}

func (h *Handler) GetBin(w http.ResponseWriter, r *http.Request) {
	id, ok := util.ParseID(chi.URLParam(r, "id"))
	if !ok {
		WriteAppError(w, bins.ErrBinNotFound, h.dev())
		return
	}

	bin, err := h.bins.Get(r.Context(), id)
	if err != nil {
		WriteAppError(w, err, h.dev())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"bin": bin})
}

func (h *Handler) CreateBin(w http.ResponseWriter, r *http.Request) {
	var in bins.CreateParams
	if err := decodeJSON(r, &in); err != nil {
		WriteAppError(w, err, h.dev())
		return
	}

	bin, err := h.bins.Create(r.Context(), in)
	if err != nil {
		WriteAppError(w, err, h.dev())
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]any{"message": "Waste bin created successfully", "bin": bin})
}

func (h *Handler) UpdateBin(w http.ResponseWriter, r *http.Request) {
	id, ok := util.ParseID(chi.URLParam(r, "id"))
	if !ok {
		WriteAppError(w, bins.ErrBinNotFound, h.dev())
		return
	}

	var in bins.UpdateParams
	if err := decodeJSON(r, &in); err != nil {
		WriteAppError(w, err, h.dev())
		return
	}

	bin, err := h.bins.Update(r.Context(), id, in)
	if err != nil {
		WriteAppError(w, err, h.dev())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"message": "Waste bin updated successfully", "bin": bin})
}

// UpdateFillLevel recebe a leitura do sensor.
func (h *Handler) UpdateFillLevel(w http.ResponseWriter, r *http.Request) {
	id, ok := util.ParseID(chi.URLParam(r, "id"))
	if !ok {
		WriteAppError(w, bins.ErrBinNotFound, h.dev())
		return
	}

	var payload struct {
		CurrentFillLevel *int `json:"current_fill_level"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		WriteAppError(w, err, h.dev())
		return
	}

	bin, err := h.bins.SetFillLevel(r.Context(), id, payload.CurrentFillLevel)
	if err != nil {
		WriteAppError(w, err, h.dev())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"message": "Bin fill level updated successfully", "bin": bin})
}

func (h *Handler) MarkBinEmptied(w http.ResponseWriter, r *http.Request) {
	id, ok := util.ParseID(chi.URLParam(r, "id"))
	if !ok {
		WriteAppError(w, bins.ErrBinNotFound, h.dev())
		return
	}

	bin, err := h.bins.MarkEmptied(r.Context(), id)
	if err != nil {
		WriteAppError(w, err, h.dev())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"message": "Bin marked as emptied successfully", "bin": bin})
}

func (h *Handler) DeleteBin(w http.ResponseWriter, r *http.Request) {
	id, ok := util.ParseID(chi.URLParam(r, "id"))
	if !ok {
		WriteAppError(w, bins.ErrBinNotFound, h.dev())
		return
	}

	bin, err := h.bins.Delete(r.Context(), id)
	if err != nil {
		WriteAppError(w, err, h.dev())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"message": "Waste bin deleted successfully", "bin": bin})
}

// NearbyBins busca lixeiras ativas dentro do raio (km) em torno do ponto.
func (h *Handler) NearbyBins(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	if strings.TrimSpace(values.Get("latitude")) == "" || strings.TrimSpace(values.Get("longitude")) == "" {
		WriteError(w, http.StatusBadRequest, "Location required", "Latitude and longitude are required")
		return
	}

	lat, err := query.ParseFloatFilter(values, "latitude")
	if err != nil {
		WriteAppError(w, err, h.dev())
		return
	}
	lng, err := query.ParseFloatFilter(values, "longitude")
	if err != nil {
		WriteAppError(w, err, h.dev())
		return
	}
	radius, err := query.ParseFloatFilter(values, "radius")
	if err != nil {
		WriteAppError(w, err, h.dev())
		return
	}

	center := geo.Point{Lat: *lat, Lng: *lng}
	found, radiusKm, err := h.bins.Nearby(r.Context(), center, radius)
	if err != nil {
		WriteAppError(w, err, h.dev())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"bins":            found,
		"search_location": center,
		"radius_km":       radiusKm,
	})
}

func (h *Handler) BinStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.bins.Statistics(r.Context())
	if err != nil {
		WriteAppError(w, err, h.dev())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"statistics": stats})
}
