package db

import (
	"context"
	"database/sql"
	"fmt"

	sqlbuilder "github.com/huandu/go-sqlbuilder"
)

type Reader struct {
	db *sql.DB
}

// PostsAggregatedByYear is the number of exported posts in one year
type PostsAggregatedByYear struct {
	Year  string
	Count int
}

// NewReader opens an existing export for queries
func NewReader(database string) (*Reader, error) {
	db, err := sql.Open("sqlite", fmt.Sprintf("%s?mode=ro&_pragma=foreign_keys(1)", database))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	return &Reader{db: db}, nil
}

func (reader *Reader) Close() error {
	return reader.db.Close()
}

// Count returns the number of rows in table, optionally limited to one kind
// of entity.
func (reader *Reader) Count(ctx context.Context, table string, kind string) (int, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select("count(*)").From(table)
	if kind != "" {
		sb.Where(sb.Equal("kind", kind))
	}

	query, args := sb.Build()
	var n int
	if err := reader.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("query error: %w", err)
	}
	return n, nil
}

// PostCountPerYear returns the number of posts per calendar year (UTC),
// oldest first.
func (reader *Reader) PostCountPerYear(ctx context.Context) ([]PostsAggregatedByYear, error) {
	const yearExpr = `STRFTIME('%Y', created_at, 'unixepoch')`

	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select(yearExpr, "count(*) as count").From("posts")
	sb.GroupBy(yearExpr)
	sb.OrderBy(yearExpr).Asc()

	query, args := sb.Build()
	rows, err := reader.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	var counts []PostsAggregatedByYear
	for rows.Next() {
		var c PostsAggregatedByYear
		if err := rows.Scan(&c.Year, &c.Count); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}
