package grading

import (
	"context"
	"database/sql"

	_ "modernc.org/sqlite" // driver: sqlite
)

// QueryResult is the materialized outcome of one statement execution.
type QueryResult struct {
	Columns []string
	Rows    [][]any
}

// openEphemeral opens a fresh in-memory SQLite instance. The caller owns
// the handle and must Close it. Every grading attempt gets its own
// instance so questions can never contaminate each other.
func openEphemeral(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open("sqlite", "file::memory:?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, err
	}
	// a second pooled connection would see a different :memory: database
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// execute runs one statement and scans its full result set. Byte blobs
// are normalized to strings so row comparison is value-based.
func execute(ctx context.Context, db *sql.DB, stmt string) (QueryResult, error) {
	rows, err := db.QueryContext(ctx, stmt)
	if err != nil {
		return QueryResult{}, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return QueryResult{}, err
	}
	res := QueryResult{Columns: cols}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return QueryResult{}, err
		}
		for i, v := range vals {
			if b, ok := v.([]byte); ok {
				vals[i] = string(b)
			}
		}
		res.Rows = append(res.Rows, vals)
	}
	if err := rows.Err(); err != nil {
		return QueryResult{}, err
	}
	return res, nil
}
