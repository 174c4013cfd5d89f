package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gestaozabele/coleta/internal/query"
	"github.com/gestaozabele/coleta/internal/trucks"
	"github.com/gestaozabele/coleta/internal/util"
)

func (h *Handler) ListTrucks(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	res, err := h.trucks.List(r.Context(), trucks.Filter{Status: values.Get("status")}, query.ParsePage(values))
	if err != nil {
		WriteAppError(w, err, h.dev())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"trucks": res.Items, "pagination": res.Pagination})
}

func (h *Handler) GetTruck(w http.ResponseWriter, r *http.Request) {
	id, ok := util.ParseID(chi.URLParam(r, "id"))
	if !ok {
		WriteAppError(w, trucks.ErrTruckNotFound, h.dev())
		return
	}

	truck, err := h.trucks.Get(r.Context(), id)
	if err != nil {
		WriteAppError(w, err, h.dev())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"truck": truck})
}

func (h *Handler) CreateTruck(w http.ResponseWriter, r *http.Request) {
	var in trucks.CreateParams
	if err := decodeJSON(r, &in); err != nil {
		WriteAppError(w, err, h.dev())
		return
	}

	truck, err := h.trucks.Create(r.Context(), in)
	if err != nil {
		WriteAppError(w, err, h.dev())
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]any{"message": "Collection truck created successfully", "truck": truck})
}

func (h *Handler) UpdateTruck(w http.ResponseWriter, r *http.Request) {
	id, ok := util.ParseID(chi.URLParam(r, "id"))
	if !ok {
		WriteAppError(w, trucks.ErrTruckNotFound, h.dev())
		return
	}

	var in trucks.UpdateParams
	if err := decodeJSON(r, &in); err != nil {
		WriteAppError(w, err, h.dev())
		return
	}

	truck, err := h.trucks.Update(r.Context(), id, in)
	if err != nil {
		WriteAppError(w, err, h.dev())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"message": "Collection truck updated successfully", "truck": truck})
}

// UpdateTruckLocation grava a posição reportada pelo veículo.
func (h *Handler) UpdateTruckLocation(w http.ResponseWriter, r *http.Request) {
	id, ok := util.ParseID(chi.URLParam(r, "id"))
	if !ok {
		WriteAppError(w, trucks.ErrTruckNotFound, h.dev())
		return
	}

	var in trucks.LocationParams
	if err := decodeJSON(r, &in); err != nil {
		WriteAppError(w, err, h.dev())
		return
	}

	truck, err := h.trucks.UpdateLocation(r.Context(), id, in)
	if err != nil {
		WriteAppError(w, err, h.dev())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"message": "Truck location updated successfully", "truck": truck})
}

func (h *Handler) DeleteTruck(w http.ResponseWriter, r *http.Request) {
	id, ok := util.ParseID(chi.URLParam(r, "id"))
	if !ok {
		WriteAppError(w, trucks.ErrTruckNotFound, h.dev())
		return
	}

	truck, err := h.trucks.Delete(r.Context(), id)
	if err != nil {
		WriteAppError(w, err, h.dev())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"message": "Collection truck deleted successfully", "truck": truck})
}
