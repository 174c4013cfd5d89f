package query

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/gestaozabele/coleta/internal/db"
)

// Run executa o COUNT e a consulta de dados com os mesmos filtros.
func Run[T any](ctx context.Context, q db.Querier, b *Builder, columns, orderBy string, page Page, scan func(pgx.Row) (T, error)) (Result[T], error) {
	countSQL, countArgs := b.CountSQL()

	var total int64
	if err := q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return Result[T]{}, fmt.Errorf("count: %w", err)
	}

	dataSQL, dataArgs := b.SelectSQL(columns, orderBy, page)
	rows, err := q.Query(ctx, dataSQL, dataArgs...)
	if err != nil {
		return Result[T]{}, fmt.Errorf("select: %w", err)
	}
	defer rows.Close()

	items := make([]T, 0, page.Limit)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return Result[T]{}, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return Result[T]{}, err
	}

	return Result[T]{Items: items, Pagination: NewPagination(page, total)}, nil
}
