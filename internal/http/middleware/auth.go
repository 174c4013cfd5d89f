package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gestaozabele/coleta/internal/auth"
	"github.com/gestaozabele/coleta/internal/repo"
)

type contextKey string

const ContextKeyIdentity contextKey = "identity"

// TokenVerifier valida o token de sessão.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// IdentityResolver relê o cidadão do banco; ausente deve devolver repo.ErrNotFound.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, id uuid.UUID) (auth.Identity, error)
}

type authFailure struct {
	status  int
	summary string
	message string
}

var (
	errNoToken      = &authFailure{http.StatusUnauthorized, "Access denied", "No token provided"}
	errInvalidToken = &authFailure{http.StatusForbidden, "Access denied", "Invalid token"}
	errUnknownUser  = &authFailure{http.StatusUnauthorized, "Access denied", "User not found"}
	errDeactivated  = &authFailure{http.StatusUnauthorized, "Access denied", "User account is deactivated"}
	errStore        = &authFailure{http.StatusInternalServerError, "Internal server error", "Failed to authenticate"}
)

// Authenticate exige token válido de cidadão ativo e injeta a identidade no contexto.
func Authenticate(verifier TokenVerifier, resolver IdentityResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, failure := authenticate(r, verifier, resolver)
			if failure != nil {
				writeError(w, failure.status, failure.summary, failure.message)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// OptionalAuth injeta a identidade quando possível; qualquer falha segue como anônimo.
func OptionalAuth(verifier TokenVerifier, resolver IdentityResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, failure := authenticate(r, verifier, resolver)
			if failure != nil {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

func authenticate(r *http.Request, verifier TokenVerifier, resolver IdentityResolver) (auth.Identity, *authFailure) {
	token := bearerToken(r)
	if token == "" {
		return auth.Identity{}, errNoToken
	}

	claims, err := verifier.Verify(token)
	if err != nil {
		return auth.Identity{}, errInvalidToken
	}
	id, err := claims.CitizenID()
	if err != nil {
		return auth.Identity{}, errInvalidToken
	}

	identity, err := resolver.ResolveIdentity(r.Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return auth.Identity{}, errUnknownUser
		}
		log.Error().Err(err).Str("citizen_id", id.String()).Msg("resolver identidade")
		return auth.Identity{}, errStore
	}
	if !identity.IsActive {
		return auth.Identity{}, errDeactivated
	}
	return identity, nil
}

func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// WithIdentity grava a identidade no contexto e no log de acesso, se houver.
func WithIdentity(ctx context.Context, identity auth.Identity) context.Context {
	recordIdentity(ctx, identity)
	return context.WithValue(ctx, ContextKeyIdentity, identity)
}

// IdentityFrom recupera a identidade do contexto.
func IdentityFrom(ctx context.Context) (auth.Identity, bool) {
	identity, ok := ctx.Value(ContextKeyIdentity).(auth.Identity)
	return identity, ok
}

// GetSubject devolve o id da identidade ou "" para anônimos.
func GetSubject(ctx context.Context) string {
	if identity, ok := IdentityFrom(ctx); ok {
		return identity.ID.String()
	}
	return ""
}

// RequireRoles deve vir depois de Authenticate.
func RequireRoles(roles ...string) func(http.Handler) http.Handler {
	denied := "Required role: " + strings.Join(roles, " or ")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFrom(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "Access denied", "Authentication required")
				return
			}
			if !identity.HasRole(roles...) {
				writeError(w, http.StatusForbidden, "Access denied", denied)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
