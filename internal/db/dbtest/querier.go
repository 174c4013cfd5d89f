// Package dbtest oferece um db.Querier roteirizado para testes de repositório.
package dbtest

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Call registra uma consulta recebida.
type Call struct {
	SQL  string
	Args []any
}

// Response é a resposta roteirizada da próxima chamada.
type Response struct {
	Rows [][]any
	Tag  string
	Err  error
}

// Querier devolve as respostas na ordem em que foram enfileiradas.
type Querier struct {
	mu        sync.Mutex
	Calls     []Call
	responses []Response
}

// Push enfileira linhas para a próxima chamada.
func (q *Querier) Push(rows ...[]any) *Querier {
	return q.PushResponse(Response{Rows: rows})
}

// PushErr enfileira uma falha.
func (q *Querier) PushErr(err error) *Querier {
	return q.PushResponse(Response{Err: err})
}

// PushTag enfileira o resultado de um Exec (ex.: "UPDATE 1").
func (q *Querier) PushTag(tag string) *Querier {
	return q.PushResponse(Response{Tag: tag})
}

func (q *Querier) PushResponse(resp Response) *Querier {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.responses = append(q.responses, resp)
	return q
}

// Last devolve a última chamada registrada.
func (q *Querier) Last() Call {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.Calls) == 0 {
		return Call{}
	}
	return q.Calls[len(q.Calls)-1]
}

func (q *Querier) next(sql string, args []any) Response {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.Calls = append(q.Calls, Call{SQL: sql, Args: append([]any(nil), args...)})
	if len(q.responses) == 0 {
		return Response{Err: fmt.Errorf("dbtest: unexpected query %q", sql)}
	}
	resp := q.responses[0]
	q.responses = q.responses[1:]
	return resp
}

func (q *Querier) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	resp := q.next(sql, args)
	if resp.Err != nil {
		return nil, resp.Err
	}
	return &rows{data: resp.Rows, idx: -1}, nil
}

func (q *Querier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	resp := q.next(sql, args)
	return row{resp: resp}
}

func (q *Querier) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	resp := q.next(sql, args)
	if resp.Err != nil {
		return pgconn.CommandTag{}, resp.Err
	}
	return pgconn.NewCommandTag(resp.Tag), nil
}

type row struct {
	resp Response
}

func (r row) Scan(dest ...any) error {
	if r.resp.Err != nil {
		return r.resp.Err
	}
	if len(r.resp.Rows) == 0 {
		return pgx.ErrNoRows
	}
	return assign(r.resp.Rows[0], dest)
}

type rows struct {
	data [][]any
	idx  int
	err  error
}

func (r *rows) Close()                                       {}
func (r *rows) Err() error                                   { return r.err }
func (r *rows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT") }
func (r *rows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *rows) RawValues() [][]byte                          { return nil }
func (r *rows) Conn() *pgx.Conn                              { return nil }

func (r *rows) Next() bool {
	r.idx++
	return r.idx < len(r.data)
}

func (r *rows) Scan(dest ...any) error {
	if r.idx < 0 || r.idx >= len(r.data) {
		return fmt.Errorf("dbtest: scan outside result set")
	}
	return assign(r.data[r.idx], dest)
}

func (r *rows) Values() ([]any, error) {
	if r.idx < 0 || r.idx >= len(r.data) {
		return nil, fmt.Errorf("dbtest: values outside result set")
	}
	return r.data[r.idx], nil
}

// assign copia cada valor para o ponteiro de destino, alocando quando o destino é **T.
func assign(values []any, dest []any) error {
	if len(values) != len(dest) {
		return fmt.Errorf("dbtest: %d values for %d destinations", len(values), len(dest))
	}
	for i, value := range values {
		target := reflect.ValueOf(dest[i])
		if target.Kind() != reflect.Pointer || target.IsNil() {
			return fmt.Errorf("dbtest: destination %d is not a pointer", i)
		}
		elem := target.Elem()
		if value == nil {
			elem.Set(reflect.Zero(elem.Type()))
			continue
		}
		src := reflect.ValueOf(value)
		if elem.Kind() == reflect.Pointer && src.Kind() != reflect.Pointer {
			ptr := reflect.New(elem.Type().Elem())
			if err := set(ptr.Elem(), src, i); err != nil {
				return err
			}
			elem.Set(ptr)
			continue
		}
		if err := set(elem, src, i); err != nil {
			return err
		}
	}
	return nil
}

func set(dst, src reflect.Value, i int) error {
	switch {
	case src.Type().AssignableTo(dst.Type()):
		dst.Set(src)
	case src.Type().ConvertibleTo(dst.Type()):
		dst.Set(src.Convert(dst.Type()))
	default:
		return fmt.Errorf("dbtest: cannot assign %s to %s at %d", src.Type(), dst.Type(), i)
	}
	return nil
}
