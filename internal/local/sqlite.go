package local

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

const recordFields = 5

// SQLiteSink appends applications to a local SQLite database.
type SQLiteSink struct {
	db *sql.DB
}

func NewSQLiteSink(path string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}
	// one writer keeps appends ordered and avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	return &SQLiteSink{db: db}, nil
}

// AppendRecord stores the positional record fields as one row.
func (s *SQLiteSink) AppendRecord(ctx context.Context, row []string) error {
	if len(row) != recordFields {
		return fmt.Errorf("expected %d record fields, got %d", recordFields, len(row))
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO applications (submitted_at, full_name, phone, vacancy_title, handle) VALUES (?, ?, ?, ?, ?)`,
		row[0], row[1], row[2], row[3], row[4],
	)
	if err != nil {
		return fmt.Errorf("inserting application: %w", err)
	}

	return nil
}

// Count returns the number of stored applications.
func (s *SQLiteSink) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM applications`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting applications: %w", err)
	}
	return n, nil
}

func (s *SQLiteSink) Close() error {
	return s.db.Close()
}
