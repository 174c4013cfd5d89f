package http

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// Version é exibida no índice da API.
const Version = "1.0.0"

var availableEndpoints = []string{
	"GET /",
	"GET /health",
	"GET /api/citizens",
	"GET /api/bins",
	"GET /api/trucks",
	"GET /api/routes",
	"GET /api/events",
	"GET /api/reports",
	"GET /api/notifications",
}

// Index lista os recursos da API.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{
		"message": "Smart City Waste Management System API",
		"version": Version,
		"endpoints": map[string]string{
			"health":        "/health",
			"citizens":      "/api/citizens",
			"bins":          "/api/bins",
			"trucks":        "/api/trucks",
			"routes":        "/api/routes",
			"events":        "/api/events",
			"reports":       "/api/reports",
			"notifications": "/api/notifications",
		},
	})
}

// Health confirma que a API responde e que o Postgres aceita conexões.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		log.Error().Err(err).Msg("health: banco indisponível")
		body := map[string]any{"status": "ERROR", "message": "Database connection failed"}
		if h.dev() {
			body["error"] = err.Error()
		}
		WriteJSON(w, http.StatusInternalServerError, body)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"status":    "OK",
		"message":   "Smart City Waste Management API is running",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"database":  "Connected",
	})
}

// Ready valida conexões com Postgres e, se configurado, Redis.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	dbErr := h.db.Ping(ctx)
	var redisErr error
	if h.redis != nil {
		redisErr = h.redis.Ping(ctx).Err()
	}

	if dbErr != nil || redisErr != nil {
		WriteJSON(w, http.StatusServiceUnavailable, map[string]any{
			"ready": false,
			"db":    errorString(dbErr),
			"redis": errorString(redisErr),
		})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"ready": true})
}

func errorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// NotFound responde rotas inexistentes com a lista de recursos.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusNotFound, map[string]any{
		"error":              "Endpoint not found",
		"message":            "The requested endpoint " + r.URL.RequestURI() + " does not exist",
		"availableEndpoints": availableEndpoints,
	})
}

func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	WriteError(w, http.StatusMethodNotAllowed, "Method not allowed", "Method "+r.Method+" is not supported for "+r.URL.Path)
}
