package util

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/gestaozabele/coleta/internal/apperr"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+?[1-9]\d{0,15}$`)
)

// ValidateEmail retorna erro para e-mails inválidos.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return errors.New("email is required")
	}
	if !emailPattern.MatchString(email) {
		return errors.New("invalid email")
	}
	return nil
}

// ValidatePassword verifica requisitos mínimos de senha.
func ValidatePassword(password string) error {
	if len(password) < 6 {
		return errors.New("password must be at least 6 characters long")
	}
	return nil
}

// ValidatePhone aceita dígitos com "+" opcional, sem zero à esquerda.
func ValidatePhone(phone string) error {
	if !phonePattern.MatchString(phone) {
		return errors.New("invalid phone number format")
	}
	return nil
}

// MinLength compara o tamanho em caracteres após trim.
func MinLength(value string, n int) bool {
	return utf8.RuneCountInString(strings.TrimSpace(value)) >= n
}

// ValidCoordinates exige lat em [-90,90] e lng em [-180,180].
func ValidCoordinates(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// Checker acumula mensagens de validação campo a campo.
type Checker struct {
	details []string
}

// Check registra msg quando ok é falso.
func (c *Checker) Check(ok bool, msg string) {
	if !ok {
		c.details = append(c.details, msg)
	}
}

// Valid indica ausência de mensagens.
func (c *Checker) Valid() bool {
	return len(c.details) == 0
}

// Err devolve apperr.Validation com as mensagens, ou nil.
func (c *Checker) Err() error {
	if c.Valid() {
		return nil
	}
	return apperr.Validation(c.details...)
}
