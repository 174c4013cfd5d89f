package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/gestaozabele/coleta/internal/apperr"
)

// ErrorBody é o formato de todas as respostas de erro.
type ErrorBody struct {
	Error   string   `json:"error"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

// WriteJSON escreve o corpo em JSON com o status informado.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteError escreve um erro sem detalhes.
func WriteError(w http.ResponseWriter, status int, summary, message string) {
	WriteJSON(w, status, ErrorBody{Error: summary, Message: message})
}

// WriteAppError converte err em resposta HTTP. Erros internos só expõem a causa em desenvolvimento.
func WriteAppError(w http.ResponseWriter, err error, dev bool) {
	appErr := apperr.As(err)
	body := ErrorBody{Error: appErr.Summary, Message: appErr.Message, Details: appErr.Details}

	if appErr.Kind == apperr.KindInternal {
		log.Error().Err(err).Str("message", appErr.Message).Msg("falha interna")
		if dev && appErr.Err != nil {
			body.Details = []string{appErr.Err.Error()}
		}
	}

	WriteJSON(w, appErr.Kind.Status(), body)
}

// decodeJSON lê o corpo da requisição; corpo vazio vale como objeto vazio.
func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return apperr.Invalid("Invalid JSON", "Request body must be valid JSON")
	}
	return nil
}
