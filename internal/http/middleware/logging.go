package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gestaozabele/coleta/internal/auth"
)

type accessKey struct{}

// accessEntry acumula o que os handlers internos descobrem sobre a requisição.
type accessEntry struct {
	citizenID string
	role      string
}

func recordIdentity(ctx context.Context, identity auth.Identity) {
	if entry, ok := ctx.Value(accessKey{}).(*accessEntry); ok {
		entry.citizenID = identity.ID.String()
		entry.role = identity.Role
	}
}

// Logging registra uma linha por requisição, com o cidadão quando autenticado.
// Respostas 5xx saem em nível error e 4xx em warn.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		entry := &accessEntry{}
		start := time.Now()

		next.ServeHTTP(ww, r.WithContext(context.WithValue(r.Context(), accessKey{}, entry)))

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		event := log.WithLevel(levelFor(status)).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Str("ip", realIPFromRequest(r))

		if reqID := middleware.GetReqID(r.Context()); reqID != "" {
			event = event.Str("request_id", reqID)
		}
		if entry.citizenID != "" {
			event = event.Str("citizen_id", entry.citizenID).Str("role", entry.role)
		}
		if ua := r.UserAgent(); ua != "" {
			event = event.Str("user_agent", ua)
		}

		event.Msg("http_request")
	})
}

func levelFor(status int) zerolog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zerolog.ErrorLevel
	case status >= http.StatusBadRequest:
		return zerolog.WarnLevel
	default:
		return zerolog.InfoLevel
	}
}
