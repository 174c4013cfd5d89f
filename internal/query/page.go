package query

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/gestaozabele/coleta/internal/apperr"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MinLimit     = 1
	MaxLimit     = 100
)

// Page descreve a janela solicitada. Page >= 1 e Limit em [MinLimit, MaxLimit].
type Page struct {
	Page  int
	Limit int
}

// Offset devolve (page-1)*limit.
func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

// NewPage normaliza page/limit.
func NewPage(page, limit int) Page {
	if page < 1 {
		page = DefaultPage
	}
	if limit < MinLimit {
		limit = MinLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Page{Page: page, Limit: limit}
}

// ParsePage lê page/limit da query string; ausentes ou não numéricos assumem 1 e 10.
func ParsePage(values url.Values) Page {
	page, err := strconv.Atoi(strings.TrimSpace(values.Get("page")))
	if err != nil {
		page = DefaultPage
	}
	limit, err := strconv.Atoi(strings.TrimSpace(values.Get("limit")))
	if err != nil {
		limit = DefaultLimit
	}
	return NewPage(page, limit)
}

// Pagination é o bloco devolvido junto com os itens.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

// NewPagination calcula pages = ceil(total/limit); zero quando total é zero.
func NewPagination(page Page, total int64) Pagination {
	var pages int64
	if total > 0 && page.Limit > 0 {
		limit := int64(page.Limit)
		pages = (total + limit - 1) / limit
	}
	return Pagination{Page: page.Page, Limit: page.Limit, Total: total, Pages: pages}
}

// Result agrupa a página de itens e sua paginação.
type Result[T any] struct {
	Items      []T
	Pagination Pagination
}

// ParseIntFilter lê um limite numérico opcional; valor malformado é erro de validação.
func ParseIntFilter(values url.Values, key string) (*int, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, apperr.Validation(key + " must be an integer")
	}
	return &n, nil
}

// ParseFloatFilter é a versão decimal de ParseIntFilter.
func ParseFloatFilter(values url.Values, key string) (*float64, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, apperr.Validation(key + " must be a number")
	}
	return &f, nil
}

// ParseBoolFilter aceita true/false; vazio significa ausente.
func ParseBoolFilter(values url.Values, key string) (*bool, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperr.Validation(key + " must be true or false")
	}
	return &b, nil
}
