package linecatalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const (
	DefaultTable  = "lignebus"
	DefaultColumn = "numero_ligne"
)

// Option is a selectable line, label and value are both the line number
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Catalog reads the published bus line numbers from a SQLite database
type Catalog struct {
	db *sql.DB

	Table  string
	Column string
}

func Open(path string) (*Catalog, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return New(db), nil
}

func New(db *sql.DB) *Catalog {
	return &Catalog{db: db, Table: DefaultTable, Column: DefaultColumn}
}

func (c *Catalog) Close() error {
	return c.db.Close()
}

func (c *Catalog) DB() *sql.DB {
	return c.db
}

// quoteIdentifier renders a table or column name as a SQLite quoted identifier
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// ListLines returns one option per row in table order. Rows without a line
// number are skipped.
func (c *Catalog) ListLines(ctx context.Context) ([]Option, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY rowid`, quoteIdentifier(c.Column), quoteIdentifier(c.Table))

	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", c.Table, err)
	}
	defer rows.Close()

	var options []Option
	for rows.Next() {
		var line sql.NullString
		if err := rows.Scan(&line); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", c.Column, err)
		}
		if !line.Valid || line.String == "" {
			continue
		}

		options = append(options, Option{Label: line.String, Value: line.String})
	}

	return options, rows.Err()
}
