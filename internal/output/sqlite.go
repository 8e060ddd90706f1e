// internal/output/sqlite.go
package output

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/valpere/ProductScrapexter/internal/product"
	"go.mongodb.org/mongo-driver/bson"
)

var sqliteTableRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// documentColumns are the persisted columns in table order.
var documentColumns = append(append([]string{}, product.Columns...), FieldLastUpdated, FieldSource, FieldPriceNumeric)

// SQLiteOptions configures a local SQLite mirror of the document collections.
type SQLiteOptions struct {
	DatabasePath     string
	ConnectionParams string
}

// SQLiteDB is an open database shared by the per-table stores.
type SQLiteDB struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database file.
func OpenSQLite(options SQLiteOptions) (*SQLiteDB, error) {
	if options.DatabasePath == "" {
		return nil, fmt.Errorf("SQLite database path is required")
	}
	if dir := filepath.Dir(options.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	params := options.ConnectionParams
	if params == "" {
		params = "?_busy_timeout=5000&_journal_mode=WAL"
	}
	db, err := sql.Open("sqlite3", options.DatabasePath+params)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SQLite: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	return &SQLiteDB{db: db}, nil
}

// Table creates table if needed and returns a store over it.
func (s *SQLiteDB) Table(ctx context.Context, table string) (*SQLiteStore, error) {
	if !sqliteTableRe.MatchString(table) {
		return nil, fmt.Errorf("invalid SQLite table name %q", table)
	}
	defs := make([]string, len(documentColumns))
	for i, col := range documentColumns {
		typ := "TEXT"
		switch col {
		case FieldLastUpdated:
			typ = "DATETIME"
		case FieldPriceNumeric:
			typ = "REAL"
		}
		defs[i] = quoteIdent(col) + " " + typ
	}
	stmt := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quoteIdent(table), strings.Join(defs, ", "))
	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return nil, fmt.Errorf("failed to create table %s: %w", table, err)
	}
	return &SQLiteStore{db: s.db, table: table}, nil
}

// Close closes the SQLite connection.
func (s *SQLiteDB) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// SQLiteStore implements DocumentStore over one table.
type SQLiteStore struct {
	db    *sql.DB
	table string
}

func (s *SQLiteStore) Name() string { return s.table }

// Upsert replaces every column of the row matching field = value, or inserts one.
func (s *SQLiteStore) Upsert(ctx context.Context, field string, value interface{}, doc bson.M) (bool, error) {
	if !isDocumentColumn(field) {
		return false, fmt.Errorf("unknown identifier column %q", field)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	table, key := quoteIdent(s.table), quoteIdent(field)
	var n int
	if err := tx.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s = ?", table, key), value).Scan(&n); err != nil {
		return false, err
	}

	args := make([]interface{}, len(documentColumns))
	for i, col := range documentColumns {
		args[i] = doc[col]
	}

	if n > 0 {
		sets := make([]string, len(documentColumns))
		for i, col := range documentColumns {
			sets[i] = quoteIdent(col) + " = ?"
		}
		stmt := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?", table, strings.Join(sets, ", "), key)
		if _, err := tx.ExecContext(ctx, stmt, append(args, value)...); err != nil {
			return false, err
		}
	} else {
		cols := make([]string, len(documentColumns))
		for i, col := range documentColumns {
			cols[i] = quoteIdent(col)
		}
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
		stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(cols, ", "), placeholders)
		if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
			return false, err
		}
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit upsert: %w", err)
	}
	return n == 0, nil
}

// EnsureIndexes creates one index per field.
func (s *SQLiteStore) EnsureIndexes(ctx context.Context, fields ...string) error {
	for _, f := range fields {
		if !isDocumentColumn(f) {
			return fmt.Errorf("unknown index column %q", f)
		}
		stmt := fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s)",
			quoteIdent(indexName(s.table, f)), quoteIdent(s.table), quoteIdent(f))
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Count returns the number of rows.
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteIdent(s.table))).Scan(&n)
	return n, err
}

func isDocumentColumn(name string) bool {
	for _, col := range documentColumns {
		if col == name {
			return true
		}
	}
	return false
}

// quoteIdent double-quotes an identifier; column names contain spaces and parentheses.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
