// Package apperr descreve as falhas de domínio que chegam até a camada HTTP.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifica o erro e define o status HTTP correspondente.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindConflict
	KindNotImplemented
)

// Status devolve o status HTTP do tipo.
func (k Kind) Status() int {
	switch k {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindNotImplemented:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// Error carrega resumo estável, mensagem humana e detalhes de validação.
type Error struct {
	Kind    Kind
	Summary string
	Message string
	Details []string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Summary + ": " + e.Err.Error()
	}
	if e.Message != "" {
		return e.Summary + ": " + e.Message
	}
	return e.Summary
}

func (e *Error) Unwrap() error { return e.Err }

// Validation agrega mensagens por campo.
func Validation(details ...string) *Error {
	return &Error{Kind: KindValidation, Summary: "Validation failed", Message: "Invalid request data", Details: details}
}

// Invalid é um erro de validação com resumo próprio, sem lista de detalhes.
func Invalid(summary, message string) *Error {
	return &Error{Kind: KindValidation, Summary: summary, Message: message}
}

func Unauthenticated(summary, message string) *Error {
	return &Error{Kind: KindAuthentication, Summary: summary, Message: message}
}

func Forbidden(summary, message string) *Error {
	return &Error{Kind: KindAuthorization, Summary: summary, Message: message}
}

func NotFound(summary, message string) *Error {
	return &Error{Kind: KindNotFound, Summary: summary, Message: message}
}

func Conflict(summary, message string) *Error {
	return &Error{Kind: KindConflict, Summary: summary, Message: message}
}

func NotImplemented(message string) *Error {
	return &Error{Kind: KindNotImplemented, Summary: "Not implemented", Message: message}
}

// Internal embrulha falhas inesperadas; a causa só é exposta em desenvolvimento.
func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Summary: "Internal server error", Message: message, Err: err}
}

// As extrai *Error da cadeia; erros desconhecidos viram Internal.
func As(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("Something went wrong", err)
}
