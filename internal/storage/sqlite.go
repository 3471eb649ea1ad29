package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/matsen/jats/internal/csl"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS items (
			id TEXT PRIMARY KEY,
			type TEXT NOT NULL,
			title TEXT,
			container_title TEXT,
			issued_year INTEGER,
			doi TEXT,
			item_json TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_items_doi ON items(doi) WHERE doi IS NOT NULL AND doi != '';

		-- Full-text search over titles and author names
		CREATE VIRTUAL TABLE IF NOT EXISTS items_fts USING fts5(
			id,
			title,
			authors_text
		);
	`

	_, err := db.Exec(schema)
	return err
}

// RebuildFromJSONL clears the database and rebuilds it from a JSONL file.
func (d *DB) RebuildFromJSONL(jsonlPath string) (int, error) {
	items, err := ReadAll(jsonlPath)
	if err != nil {
		return 0, fmt.Errorf("reading JSONL: %w", err)
	}

	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("starting rebuild: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM items"); err != nil {
		return 0, fmt.Errorf("clearing items table: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM items_fts"); err != nil {
		return 0, fmt.Errorf("clearing items_fts table: %w", err)
	}

	itemStmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO items (id, type, title, container_title, issued_year, doi, item_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing items insert: %w", err)
	}
	defer itemStmt.Close()

	ftsStmt, err := tx.Prepare(`INSERT INTO items_fts (id, title, authors_text) VALUES (?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing fts insert: %w", err)
	}
	defer ftsStmt.Close()

	for _, item := range items {
		data, err := json.Marshal(item)
		if err != nil {
			return 0, fmt.Errorf("marshaling item %s: %w", item.ID, err)
		}

		var year sql.NullInt64
		if y := item.Issued.Year(); y != 0 {
			year = sql.NullInt64{Int64: int64(y), Valid: true}
		}

		_, err = itemStmt.Exec(
			item.ID, string(item.Type), nullableStringValue(item.Title),
			nullableStringValue(item.ContainerTitle), year,
			nullableStringValue(item.DOI), string(data),
		)
		if err != nil {
			return 0, fmt.Errorf("inserting item %s: %w", item.ID, err)
		}

		if _, err := ftsStmt.Exec(item.ID, item.Title, formatAuthorsText(item.Author)); err != nil {
			return 0, fmt.Errorf("inserting fts for %s: %w", item.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing rebuild: %w", err)
	}
	return len(items), nil
}

// formatAuthorsText creates a searchable text representation of authors.
func formatAuthorsText(names []csl.Name) string {
	var out []string
	for _, n := range names {
		switch {
		case n.IsLiteral():
			out = append(out, n.Literal)
		case n.Given != "":
			out = append(out, n.Given+" "+n.FamilyWithParticle())
		default:
			out = append(out, n.FamilyWithParticle())
		}
	}
	return strings.Join(out, ", ")
}

// GetByID retrieves an item by its ID. A missing item returns nil, nil.
func (d *DB) GetByID(id string) (*csl.Item, error) {
	row := d.db.QueryRow(`SELECT item_json FROM items WHERE id = ?`, id)
	return scanItem(row)
}

// GetByDOI retrieves an item by DOI. A missing item returns nil, nil.
func (d *DB) GetByDOI(doi string) (*csl.Item, error) {
	row := d.db.QueryRow(`SELECT item_json FROM items WHERE doi = ? LIMIT 1`, doi)
	return scanItem(row)
}

// Search performs a full-text search over titles and author names. A limit
// of zero or less returns every match.
func (d *DB) Search(query string, limit int) ([]csl.Item, error) {
	if limit <= 0 {
		limit = -1 // SQLite: negative LIMIT means no limit
	}
	rows, err := d.db.Query(`
		SELECT item_json
		FROM items
		WHERE id IN (SELECT id FROM items_fts WHERE items_fts MATCH ?)
		ORDER BY id
		LIMIT ?`, prepareFTSQuery(query), limit)
	if err != nil {
		return nil, fmt.Errorf("searching: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// ListAll returns all items ordered by id, optionally limited.
func (d *DB) ListAll(limit int) ([]csl.Item, error) {
	query := `SELECT item_json FROM items ORDER BY id`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// Count returns the total number of items.
func (d *DB) Count() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM items").Scan(&count)
	return count, err
}

// scanner interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanItem(s scanner) (*csl.Item, error) {
	var data string
	if err := s.Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	var item csl.Item
	if err := json.Unmarshal([]byte(data), &item); err != nil {
		return nil, fmt.Errorf("parsing item JSON: %w", err)
	}
	return &item, nil
}

func scanItems(rows *sql.Rows) ([]csl.Item, error) {
	var items []csl.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		if item != nil {
			items = append(items, *item)
		}
	}
	return items, rows.Err()
}

// nullableStringValue converts a string to sql.NullString, treating empty as NULL.
func nullableStringValue(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// prepareFTSQuery escapes special characters for FTS5 queries.
func prepareFTSQuery(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	// FTS5 uses double quotes for phrase matching
	if strings.ContainsAny(query, "\"*+-:(){}[]^~") {
		query = strings.ReplaceAll(query, "\"", "\"\"")
		return "\"" + query + "\""
	}

	return query
}
