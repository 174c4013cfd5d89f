// Package query monta consultas parametrizadas com filtros opcionais e paginação.
//
// Templates de predicado e ordenação são constantes do código; valores vindos
// da requisição entram sempre como parâmetros posicionais ($n).
package query

import (
	"fmt"
	"reflect"
	"strings"
)

// Builder acumula predicados AND sobre uma tabela.
type Builder struct {
	table   string
	clauses []string
	args    []any
}

// New cria o builder com o predicado base (ex.: "is_active = true" ou "1=1").
func New(table, base string) *Builder {
	b := &Builder{table: table}
	if strings.TrimSpace(base) == "" {
		base = "1=1"
	}
	b.clauses = append(b.clauses, base)
	return b
}

// Where adiciona "AND template" quando value está presente.
// O primeiro "?" do template vira o próximo placeholder posicional.
func (b *Builder) Where(template string, value any) *Builder {
	if isAbsent(value) {
		return b
	}
	b.args = append(b.args, deref(value))
	b.clauses = append(b.clauses, strings.Replace(template, "?", fmt.Sprintf("$%d", len(b.args)), 1))
	return b
}

// WhereLike envolve o valor em %...% para uso com ILIKE.
func (b *Builder) WhereLike(template, value string) *Builder {
	value = strings.TrimSpace(value)
	if value == "" {
		return b
	}
	return b.Where(template, "%"+escapeLike(value)+"%")
}

// Args devolve uma cópia dos parâmetros do predicado.
func (b *Builder) Args() []any {
	return append([]any(nil), b.args...)
}

func (b *Builder) predicate() string {
	return strings.Join(b.clauses, " AND ")
}

// CountSQL devolve o COUNT(*) com o mesmo predicado, sem ordenação nem paginação.
func (b *Builder) CountSQL() (string, []any) {
	return fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", b.table, b.predicate()), b.Args()
}

// SelectSQL devolve a consulta de dados; LIMIT e OFFSET são os dois últimos parâmetros.
func (b *Builder) SelectSQL(columns, orderBy string, page Page) (string, []any) {
	args := append(b.Args(), page.Limit, page.Offset())
	n := len(b.args)
	sql := fmt.Sprintf("SELECT %s FROM %s WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d",
		columns, b.table, b.predicate(), orderBy, n+1, n+2)
	return sql, args
}

func isAbsent(value any) bool {
	if value == nil {
		return true
	}
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v) == ""
	case *string:
		return v == nil || strings.TrimSpace(*v) == ""
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	case reflect.Slice, reflect.Map:
		return rv.Len() == 0
	}
	return false
}

func deref(value any) any {
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s)
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Pointer {
		return deref(rv.Elem().Interface())
	}
	return value
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(value string) string {
	return likeEscaper.Replace(value)
}
