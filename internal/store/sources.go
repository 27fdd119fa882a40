package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/FocuswithJustin/synopsis/core/errors"
)

// Source records one ingested input file, keyed by the BLAKE3 hash of its
// contents.
type Source struct {
	Hash       string    `json:"hash"`
	RunID      string    `json:"run_id"`
	Kind       string    `json:"kind"`
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	Documents  int       `json:"documents"`
	IngestedAt time.Time `json:"ingested_at"`
}

// RegisterSource records src, replacing an earlier record with the same
// hash. A zero IngestedAt is set to now.
func (s *Store) RegisterSource(ctx context.Context, src Source) error {
	if src.Hash == "" {
		return errors.NewValidation("hash", "source hash is required")
	}
	if src.IngestedAt.IsZero() {
		src.IngestedAt = s.now()
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO sources (hash, run_id, kind, name, size, documents, ingested_at) VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(hash) DO UPDATE SET
	run_id = excluded.run_id, kind = excluded.kind, name = excluded.name,
	size = excluded.size, documents = excluded.documents, ingested_at = excluded.ingested_at`,
		src.Hash, src.RunID, src.Kind, src.Name, src.Size, src.Documents,
		src.IngestedAt.UTC().Format(time.RFC3339Nano))
	return errors.Wrapf(err, "register source %s", src.Name)
}

// Source returns the record for hash.
func (s *Store) Source(ctx context.Context, hash string) (Source, bool, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT hash, run_id, kind, name, size, documents, ingested_at FROM sources WHERE hash = ?`, hash)
	src, err := scanSource(row)
	if err == sql.ErrNoRows {
		return Source{}, false, nil
	}
	if err != nil {
		return Source{}, false, errors.Wrapf(err, "source %s", hash)
	}
	return src, true, nil
}

// Sources returns every recorded source, oldest first.
func (s *Store) Sources(ctx context.Context) ([]Source, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT hash, run_id, kind, name, size, documents, ingested_at FROM sources ORDER BY ingested_at, name`)
	if err != nil {
		return nil, errors.Wrap(err, "list sources")
	}
	defer rows.Close()

	var out []Source
	for rows.Next() {
		src, err := scanSource(rows)
		if err != nil {
			return nil, errors.Wrap(err, "list sources")
		}
		out = append(out, src)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSource(row scanner) (Source, error) {
	var src Source
	var ts string
	if err := row.Scan(&src.Hash, &src.RunID, &src.Kind, &src.Name, &src.Size, &src.Documents, &ts); err != nil {
		return Source{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return Source{}, err
	}
	src.IngestedAt = t
	return src, nil
}
