package query

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// ErrColumnNotAllowed is returned when a filter or order names a column the
// template does not expose.
var ErrColumnNotAllowed = errors.New("query: column not allowed")

// Dialect selects placeholder syntax and the case-insensitive match operator.
type Dialect int

const (
	Postgres Dialect = iota
	SQLite
)

func (d Dialect) placeholders() sq.PlaceholderFormat {
	if d == Postgres {
		return sq.Dollar
	}
	return sq.Question
}

func (d Dialect) likeOp() string {
	if d == Postgres {
		return "ILIKE"
	}
	// SQLite LIKE is case-insensitive for ASCII.
	return "LIKE"
}

// Order is one ORDER BY term.
type Order struct {
	Column Column
	Desc   bool
}

func Asc(c Column) Order  { return Order{Column: c} }
func Desc(c Column) Order { return Order{Column: c, Desc: true} }

// Filter is a WHERE criterion: Eq or Search.
type Filter interface {
	condition(t *Template, d Dialect) (sq.Sqlizer, error)
}

// Eq matches Column = Value. A zero Value (nil, "", 0) leaves the filter out.
type Eq struct {
	Column Column
	Value  any
}

func (f Eq) condition(t *Template, _ Dialect) (sq.Sqlizer, error) {
	if !t.permits(f.Column) {
		return nil, fmt.Errorf("%w: %q in %s", ErrColumnNotAllowed, f.Column.name, t.name)
	}
	if f.Value == nil || reflect.ValueOf(f.Value).IsZero() {
		return nil, nil
	}
	return sq.Eq{f.Column.name: f.Value}, nil
}

// Search matches Term as a case-insensitive substring of any searchable
// column of the template. An empty term leaves the filter out.
type Search struct {
	Term string
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (f Search) condition(t *Template, d Dialect) (sq.Sqlizer, error) {
	term := strings.TrimSpace(f.Term)
	if term == "" {
		return nil, nil
	}
	if len(t.searchable) == 0 {
		return nil, fmt.Errorf("%w: %s has no searchable columns", ErrColumnNotAllowed, t.name)
	}
	pattern := "%" + likeEscaper.Replace(term) + "%"
	or := make(sq.Or, 0, len(t.searchable))
	for _, c := range t.searchable {
		or = append(or, sq.Expr(c.name+" "+d.likeOp()+` ? ESCAPE '\'`, pattern))
	}
	return or, nil
}

// Spec is everything a caller may vary. Filters are ANDed; a zero Limit
// means no limit; an empty OrderBy uses the template default.
type Spec struct {
	Filters []Filter
	OrderBy []Order
	Limit   uint64
}

// Build renders t with s for dialect d.
func Build(d Dialect, t *Template, s Spec) (string, []any, error) {
	b := sq.Select(t.columns...).From(t.from).PlaceholderFormat(d.placeholders())
	for _, j := range t.joins {
		b = b.Join(j)
	}

	var where sq.And
	for _, f := range s.Filters {
		if f == nil {
			continue
		}
		cond, err := f.condition(t, d)
		if err != nil {
			return "", nil, err
		}
		if cond != nil {
			where = append(where, cond)
		}
	}
	if len(where) > 0 {
		b = b.Where(where)
	}

	orders := s.OrderBy
	if len(orders) == 0 {
		orders = t.defaultOrder
	}
	for _, o := range orders {
		if !t.permits(o.Column) {
			return "", nil, fmt.Errorf("%w: order by %q in %s", ErrColumnNotAllowed, o.Column.name, t.name)
		}
		dir := " ASC"
		if o.Desc {
			dir = " DESC"
		}
		b = b.OrderBy(o.Column.name + dir)
	}

	if s.Limit > 0 {
		b = b.Limit(s.Limit)
	}

	sql, args, err := b.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("query: build %s: %w", t.name, err)
	}
	return sql, args, nil
}
