package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gestaozabele/coleta/internal/apperr"
	"github.com/gestaozabele/coleta/internal/http/middleware"
	"github.com/gestaozabele/coleta/internal/repo"
	"github.com/gestaozabele/coleta/internal/service"
)

// stubResource descreve um recurso ainda sem implementação e o papel exigido por verbo.
// Lista vazia de papéis significa qualquer cidadão autenticado.
type stubResource struct {
	path     string
	singular string
	plural   string
	read     []string
	create   []string
	update   []string
	remove   []string
}

var (
	staff     = service.StaffRoles
	adminOnly = []string{repo.RoleAdmin}
)

var stubResources = []stubResource{
	{path: "/events", singular: "collection event", plural: "Collection events", read: staff, create: staff, update: staff, remove: adminOnly},
	{path: "/routes", singular: "collection route", plural: "Collection routes", read: staff, create: staff, update: staff, remove: adminOnly},
	{path: "/reports", singular: "citizen report", plural: "Citizen reports", read: staff, create: nil, update: staff, remove: adminOnly},
	{path: "/notifications", singular: "notification", plural: "System notifications", read: nil, create: staff, update: staff, remove: adminOnly},
}

func notImplemented(message string, dev bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteAppError(w, apperr.NotImplemented(message), dev)
	}
}

// gate aplica RequireRoles apenas quando há papéis exigidos.
func gate(roles []string, next http.HandlerFunc) http.Handler {
	if len(roles) == 0 {
		return next
	}
	return middleware.RequireRoles(roles...)(next)
}

// mountStubs registra os recursos reservados; deve ficar atrás de Authenticate.
func (h *Handler) mountStubs(r chi.Router) {
	for _, res := range stubResources {
		res := res
		r.Route(res.path, func(sr chi.Router) {
			sr.Method(http.MethodGet, "/", gate(res.read, notImplemented(res.plural+" endpoint - to be implemented", h.dev())))
			sr.Method(http.MethodGet, "/{id}", gate(res.read, notImplemented("Get "+res.singular+" by ID - to be implemented", h.dev())))
			sr.Method(http.MethodPost, "/", gate(res.create, notImplemented("Create "+res.singular+" - to be implemented", h.dev())))
			sr.Method(http.MethodPut, "/{id}", gate(res.update, notImplemented("Update "+res.singular+" - to be implemented", h.dev())))
			sr.Method(http.MethodDelete, "/{id}", gate(res.remove, notImplemented("Delete "+res.singular+" - to be implemented", h.dev())))
		})
	}
}
