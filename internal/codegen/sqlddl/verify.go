package sqlddl

import (
	"context"
	"database/sql"
	"fmt"
	"slices"

	// Registers the pure-Go "sqlite" driver.
	_ "modernc.org/sqlite"
)

const userTablesQuery = `SELECT name FROM sqlite_schema WHERE type = 'table' AND name NOT LIKE 'sqlite_%'`

// Verify executes ddl against a fresh in-memory SQLite database and returns
// the sorted names of the tables it created.
func Verify(ctx context.Context, ddl string) ([]string, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	defer db.Close()
	// Every connection to :memory: is its own database.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return nil, fmt.Errorf("execute ddl: %w", err)
	}

	rows, err := db.QueryContext(ctx, userTablesQuery)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	slices.Sort(tables)
	return tables, nil
}
