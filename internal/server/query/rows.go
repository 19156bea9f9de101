package query

import (
	"context"
	"fmt"
	"iter"

	"github.com/dmitrijs2005/coursevault/internal/dbx"
)

// Scanner is the part of *sql.Row / *sql.Rows a scan function needs.
type Scanner interface {
	Scan(dest ...any) error
}

// Rows runs the query when iterated and yields one scanned value per row.
// No rows is an empty sequence. A failure is yielded once as the error
// and ends the sequence.
func Rows[T any](ctx context.Context, db dbx.DBTX, query string, args []any, scan func(Scanner) (T, error)) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T

		rows, err := db.QueryContext(ctx, query, args...)
		if err != nil {
			yield(zero, fmt.Errorf("db error: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			v, err := scan(rows)
			if err != nil {
				yield(zero, fmt.Errorf("db error: %w", err))
				return
			}
			if !yield(v, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(zero, fmt.Errorf("db error: %w", err))
		}
	}
}

// Collect drains seq into a slice, stopping at the first error.
func Collect[T any](seq iter.Seq2[T, error]) ([]T, error) {
	var out []T
	for v, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Error returns a sequence that yields only err.
func Error[T any](err error) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		yield(zero, err)
	}
}
