// Package store is a tree-structured JSON document store on SQLite.
//
// Documents are addressed by slash-separated paths such as
// "bibles/MAT/chapters/5/verses/3". A document's parent is the path without
// its last segment; parents do not have to exist for a child to be stored.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/FocuswithJustin/synopsis/core/errors"
	"github.com/FocuswithJustin/synopsis/internal/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	path       TEXT PRIMARY KEY,
	parent     TEXT NOT NULL,
	id         TEXT NOT NULL,
	data       TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS documents_parent ON documents(parent);
CREATE TABLE IF NOT EXISTS sources (
	hash        TEXT PRIMARY KEY,
	run_id      TEXT NOT NULL,
	kind        TEXT NOT NULL,
	name        TEXT NOT NULL,
	size        INTEGER NOT NULL,
	documents   INTEGER NOT NULL,
	ingested_at TEXT NOT NULL
);
`

const upsertDocument = `
INSERT INTO documents (path, parent, id, data, updated_at) VALUES (?, ?, ?, ?, ?)
ON CONFLICT(path) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`

// deleteTree removes a path and its subtree. "0" sorts directly after "/",
// bounding the subtree.
const deleteTree = `DELETE FROM documents WHERE path = ? OR (path >= ? AND path < ?)`

// Store is a document store backed by one SQLite database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the database at path and ensures the
// schema exists. ":memory:" gives a private in-memory store.
func Open(path string) (*Store, error) {
	db, err := sqlite.Open(path)
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}
	s, err := New(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an open database and ensures the schema exists.
func New(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, errors.Wrap(err, "create schema")
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Split validates a document path and returns its parent and id.
func Split(path string) (parent, id string, err error) {
	if path == "" || strings.HasPrefix(path, "/") || strings.HasSuffix(path, "/") {
		return "", "", errors.NewValidation("path", fmt.Sprintf("invalid document path %q", path))
	}
	segments := strings.Split(path, "/")
	for _, seg := range segments {
		if seg == "" || seg == "." || seg == ".." {
			return "", "", errors.NewValidation("path", fmt.Sprintf("invalid document path %q", path))
		}
	}
	return strings.Join(segments[:len(segments)-1], "/"), segments[len(segments)-1], nil
}

// Join builds a document path from segments.
func Join(segments ...string) string {
	return strings.Join(segments, "/")
}

// Get returns the raw JSON stored at path. A missing document yields a
// NotFoundError.
func (s *Store) Get(ctx context.Context, path string) (json.RawMessage, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM documents WHERE path = ?`, path).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("document", path)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get %s", path)
	}
	return json.RawMessage(data), nil
}

// GetJSON decodes the document at path into v.
func (s *Store) GetJSON(ctx context.Context, path string, v any) error {
	raw, err := s.Get(ctx, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return errors.NewParse("json", path, err.Error())
	}
	return nil
}

// Set stores v, encoded as JSON, at path, replacing any previous document.
func (s *Store) Set(ctx context.Context, path string, v any) error {
	parent, id, err := Split(path)
	if err != nil {
		return err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "encode %s", path)
	}
	_, err = s.db.ExecContext(ctx, upsertDocument, path, parent, id, string(data), s.timestamp())
	return errors.Wrapf(err, "set %s", path)
}

// Exists reports whether a document is stored at path.
func (s *Store) Exists(ctx context.Context, path string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM documents WHERE path = ?`, path).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "exists %s", path)
	}
	return true, nil
}

// List returns the ids of the documents directly under parent in the order
// they were first written.
func (s *Store) List(ctx context.Context, parent string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM documents WHERE parent = ? ORDER BY rowid`, parent)
	if err != nil {
		return nil, errors.Wrapf(err, "list %s", parent)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrapf(err, "list %s", parent)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Document is one stored document with its id.
type Document struct {
	ID   string          `json:"id"`
	Data json.RawMessage `json:"data"`
}

// Children returns the documents directly under parent in the order they
// were first written.
func (s *Store) Children(ctx context.Context, parent string) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, data FROM documents WHERE parent = ? ORDER BY rowid`, parent)
	if err != nil {
		return nil, errors.Wrapf(err, "children %s", parent)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		var data string
		if err := rows.Scan(&d.ID, &data); err != nil {
			return nil, errors.Wrapf(err, "children %s", parent)
		}
		d.Data = json.RawMessage(data)
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// Delete removes the document at path and every document below it. It
// returns the number of documents removed.
func (s *Store) Delete(ctx context.Context, path string) (int64, error) {
	if _, _, err := Split(path); err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx, deleteTree, path, path+"/", path+"0")
	if err != nil {
		return 0, errors.Wrapf(err, "delete %s", path)
	}
	return res.RowsAffected()
}

// Count returns the number of documents at or below path. An empty path
// counts every document.
func (s *Store) Count(ctx context.Context, path string) (int64, error) {
	var n int64
	var err error
	if path == "" {
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&n)
	} else {
		err = s.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM documents WHERE path = ? OR (path >= ? AND path < ?)`,
			path, path+"/", path+"0").Scan(&n)
	}
	return n, errors.Wrapf(err, "count %s", path)
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}
