// Package docstore is a small document database on top of SQLite. Records
// live in named collections as JSON objects and are addressed by an opaque,
// store-assigned id.
package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("docstore: document not found")

var fieldNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Store wraps a SQLite database holding all collections.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Counter names one numeric field of one document.
type Counter struct {
	Collection string
	ID         string
	Field      string
}

// ListOption modifies how List orders its results.
type ListOption func(*listOptions)

type listOptions struct {
	orderField string
	desc       bool
}

// OrderBy orders results by a top-level field. Documents missing the field
// sort first in ascending order. Ties keep insertion order.
func OrderBy(field string, desc bool) ListOption {
	return func(o *listOptions) {
		o.orderField = field
		o.desc = desc
	}
}

// Open opens (or creates) the database at path, ensures the data directory
// exists, and creates the schema.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	// Pragmas go in the DSN so every pooled connection gets them. Immediate
	// transactions take the write lock up front, which RunOnce relies on.
	dsn := "file:" + path +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=busy_timeout(5000)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_txlock=immediate"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db, now: time.Now}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("docstore: ensure schema: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS documents (
    collection TEXT NOT NULL,
    id TEXT NOT NULL,
    seq INTEGER NOT NULL,
    data TEXT NOT NULL,
    PRIMARY KEY (collection, id)
);
CREATE INDEX IF NOT EXISTS idx_documents_seq ON documents(collection, seq);

CREATE TABLE IF NOT EXISTS markers (
    key TEXT PRIMARY KEY,
    created_at TEXT NOT NULL
);
`)
	return err
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// List returns every document of a collection, in insertion order unless an
// OrderBy option is given.
func (s *Store) List(ctx context.Context, collection string, opts ...ListOption) ([]Doc, error) {
	var o listOptions
	for _, opt := range opts {
		opt(&o)
	}
	q := `SELECT id, data FROM documents WHERE collection = ? ORDER BY seq`
	args := []any{collection}
	if o.orderField != "" {
		path, err := fieldPath(o.orderField)
		if err != nil {
			return nil, err
		}
		dir := "ASC"
		if o.desc {
			dir = "DESC"
		}
		q = `SELECT id, data FROM documents WHERE collection = ? ORDER BY json_extract(data, ?) ` + dir + `, seq`
		args = append(args, path)
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []Doc
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, err
		}
		fields, err := decode(data)
		if err != nil {
			return nil, fmt.Errorf("docstore: decode %s/%s: %w", collection, id, err)
		}
		docs = append(docs, Doc{ID: id, Fields: fields})
	}
	return docs, rows.Err()
}

// Get returns a single document.
func (s *Store) Get(ctx context.Context, collection, id string) (Doc, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM documents WHERE collection = ? AND id = ?`, collection, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return Doc{}, ErrNotFound
	}
	if err != nil {
		return Doc{}, err
	}
	fields, err := decode(data)
	if err != nil {
		return Doc{}, fmt.Errorf("docstore: decode %s/%s: %w", collection, id, err)
	}
	return Doc{ID: id, Fields: fields}, nil
}

// Count returns the number of documents in a collection.
func (s *Store) Count(ctx context.Context, collection string) (int, error) {
	return count(ctx, s.db, collection)
}

// Insert adds a document and returns its newly assigned id.
func (s *Store) Insert(ctx context.Context, collection string, fields Fields) (string, error) {
	return insert(ctx, s.db, collection, fields)
}

// Set writes a document under a caller-chosen id, replacing any existing body.
func (s *Store) Set(ctx context.Context, collection, id string, fields Fields) error {
	data, err := encode(fields)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO documents (collection, id, seq, data)
VALUES (?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM documents), ?)
ON CONFLICT(collection, id) DO UPDATE SET data = excluded.data`, collection, id, data)
	return err
}

// Ensure creates the document with defaults unless it already exists.
func (s *Store) Ensure(ctx context.Context, collection, id string, defaults Fields) error {
	data, err := encode(defaults)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO documents (collection, id, seq, data)
VALUES (?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM documents), ?)
ON CONFLICT(collection, id) DO NOTHING`, collection, id, data)
	return err
}

// Update merges fields into an existing document. Keys not present in fields
// are left untouched; a nil value removes the key.
func (s *Store) Update(ctx context.Context, collection, id string, fields Fields) error {
	data, err := encode(fields)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE documents SET data = json_patch(data, ?) WHERE collection = ? AND id = ?`, data, collection, id)
	if err != nil {
		return err
	}
	return mustAffect(res)
}

// Delete removes a document. Deleting a missing document is not an error.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE collection = ? AND id = ?`, collection, id)
	return err
}

// Increment atomically adds one to a numeric field. A missing field counts
// as zero; a missing document is ErrNotFound.
func (s *Store) Increment(ctx context.Context, collection, id, field string) error {
	return increment(ctx, s.db, Counter{Collection: collection, ID: id, Field: field})
}

// IncrementAll adds one to every counter inside a single transaction. Either
// all counters move or none do.
func (s *Store) IncrementAll(ctx context.Context, counters ...Counter) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, c := range counters {
		if err := increment(ctx, tx, c); err != nil {
			return fmt.Errorf("docstore: increment %s/%s.%s: %w", c.Collection, c.ID, c.Field, err)
		}
	}
	return tx.Commit()
}

// Tx is the view of the store handed to RunOnce callbacks.
type Tx struct {
	tx *sql.Tx
}

// Count returns the number of documents in a collection.
func (t *Tx) Count(ctx context.Context, collection string) (int, error) {
	return count(ctx, t.tx, collection)
}

// Insert adds a document inside the transaction.
func (t *Tx) Insert(ctx context.Context, collection string, fields Fields) (string, error) {
	return insert(ctx, t.tx, collection, fields)
}

// RunOnce runs fn inside a write transaction unless key has been marked
// before, and marks key in the same transaction. It reports whether fn ran
// and committed. Concurrent callers with the same key serialize on the
// write lock; exactly one of them runs fn.
func (s *Store) RunOnce(ctx context.Context, key string, fn func(ctx context.Context, tx *Tx) error) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `INSERT INTO markers (key, created_at) VALUES (?, ?) ON CONFLICT(key) DO NOTHING`,
		key, s.now().UTC().Format(time.RFC3339))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}
	if err := fn(ctx, &Tx{tx: tx}); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

// Marked reports whether RunOnce has completed for key.
func (s *Store) Marked(ctx context.Context, key string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM markers WHERE key = ?`, key).Scan(&n)
	return n > 0, err
}

func count(ctx context.Context, q querier, collection string) (int, error) {
	var n int
	err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents WHERE collection = ?`, collection).Scan(&n)
	return n, err
}

func insert(ctx context.Context, q querier, collection string, fields Fields) (string, error) {
	data, err := encode(fields)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	_, err = q.ExecContext(ctx, `
INSERT INTO documents (collection, id, seq, data)
VALUES (?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM documents), ?)`, collection, id, data)
	if err != nil {
		return "", err
	}
	return id, nil
}

func increment(ctx context.Context, q querier, c Counter) error {
	path, err := fieldPath(c.Field)
	if err != nil {
		return err
	}
	res, err := q.ExecContext(ctx, `
UPDATE documents
SET data = json_set(data, ?, COALESCE(json_extract(data, ?), 0) + 1)
WHERE collection = ? AND id = ?`, path, path, c.Collection, c.ID)
	if err != nil {
		return err
	}
	return mustAffect(res)
}

func mustAffect(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func fieldPath(field string) (string, error) {
	if !fieldNameRe.MatchString(field) {
		return "", fmt.Errorf("docstore: invalid field name %q", field)
	}
	return "$." + field, nil
}

func encode(fields Fields) (string, error) {
	if fields == nil {
		fields = Fields{}
	}
	b, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("docstore: encode: %w", err)
	}
	return string(b), nil
}

func decode(data string) (Fields, error) {
	var f Fields
	if err := json.Unmarshal([]byte(data), &f); err != nil {
		return nil, err
	}
	if f == nil {
		f = Fields{}
	}
	return f, nil
}
