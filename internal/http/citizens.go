package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/gestaozabele/coleta/internal/apperr"
	"github.com/gestaozabele/coleta/internal/http/middleware"
	"github.com/gestaozabele/coleta/internal/query"
	"github.com/gestaozabele/coleta/internal/repo"
	"github.com/gestaozabele/coleta/internal/service"
	"github.com/gestaozabele/coleta/internal/util"
)

var (
	errLoginFailed  = apperr.Unauthenticated("Authentication failed", "Invalid email or password")
	errLoginBlocked = apperr.Unauthenticated("Account deactivated", "Your account has been deactivated")
)

// RegisterCitizen cria conta e devolve sessão.
func (h *Handler) RegisterCitizen(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterInput
	if err := decodeJSON(r, &in); err != nil {
		WriteAppError(w, err, h.dev())
		return
	}

	session, err := h.auth.Register(r.Context(), in)
	if err != nil {
		WriteAppError(w, err, h.dev())
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]any{
		"message":    "Citizen registered successfully",
		"citizen":    session.Citizen,
		"token":      session.Token,
		"expires_at": session.ExpiresAt,
	})
}

// LoginCitizen autentica por e-mail e senha.
func (h *Handler) LoginCitizen(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		WriteAppError(w, err, h.dev())
		return
	}

	if strings.TrimSpace(payload.Email) == "" || payload.Password == "" {
		WriteAppError(w, errLoginFailed, h.dev())
		return
	}

	session, err := h.auth.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			WriteAppError(w, errLoginFailed, h.dev())
		case errors.Is(err, service.ErrAccountDisabled):
			WriteAppError(w, errLoginBlocked, h.dev())
		default:
			WriteAppError(w, apperr.Internal("Failed to login", err), h.dev())
		}
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"message":    "Login successful",
		"citizen":    session.Citizen,
		"token":      session.Token,
		"expires_at": session.ExpiresAt,
	})
}

// Me devolve a identidade resolvida pelo middleware.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "Access denied", "Authentication required")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"citizen": identity})
}

func (h *Handler) ListCitizens(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	active, err := query.ParseBoolFilter(values, "is_active")
	if err != nil {
		WriteAppError(w, err, h.dev())
		return
	}

	filter := repo.CitizenFilter{Role: values.Get("role"), IsActive: active}
	res, err := h.citizens.List(r.Context(), filter, query.ParsePage(values))
	if err != nil {
		WriteAppError(w, err, h.dev())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"citizens": res.Items, "pagination": res.Pagination})
}

func (h *Handler) GetCitizen(w http.ResponseWriter, r *http.Request) {
	id, ok := util.ParseID(chi.URLParam(r, "id"))
	if !ok {
		WriteAppError(w, service.ErrCitizenNotFound, h.dev())
		return
	}

	citizen, err := h.citizens.Get(r.Context(), id)
	if err != nil {
		WriteAppError(w, err, h.dev())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"citizen": citizen})
}

// UpdateCitizen aplica merge patch no perfil; o próprio cidadão ou a equipe.
func (h *Handler) UpdateCitizen(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "Access denied", "Authentication required")
		return
	}

	id, ok := util.ParseID(chi.URLParam(r, "id"))
	if !ok {
		WriteAppError(w, service.ErrCitizenNotFound, h.dev())
		return
	}

	var in service.UpdateCitizenInput
	if err := decodeJSON(r, &in); err != nil {
		WriteAppError(w, err, h.dev())
		return
	}

	citizen, err := h.citizens.Update(r.Context(), actor, id, in)
	if err != nil {
		WriteAppError(w, err, h.dev())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"message": "Citizen updated successfully", "citizen": citizen})
}

func (h *Handler) DeactivateCitizen(w http.ResponseWriter, r *http.Request) {
	id, ok := util.ParseID(chi.URLParam(r, "id"))
	if !ok {
		WriteAppError(w, service.ErrCitizenNotFound, h.dev())
		return
	}

	citizen, err := h.citizens.Deactivate(r.Context(), id)
	if err != nil {
		WriteAppError(w, err, h.dev())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"message": "Citizen deactivated successfully", "citizen": citizen})
}
