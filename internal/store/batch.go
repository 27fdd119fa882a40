package store

import (
	"context"
	"encoding/json"

	"github.com/FocuswithJustin/synopsis/core/errors"
)

// DefaultBatchSize is the number of writes committed per transaction.
const DefaultBatchSize = 500

type pending struct {
	path, parent, id, data string
	// del removes path and its subtree instead of writing it.
	del bool
}

// Batch buffers document writes and commits them in transactions of at most
// Size documents. Queued deletes run inside the transaction of the chunk they
// were queued in and do not count towards its size. A Batch is not safe for
// concurrent use.
type Batch struct {
	store     *Store
	size      int
	ops       []pending
	writes    int
	committed int
	removed   int64
	onCommit  func(committed int)
}

// NewBatch creates a batch that commits every size writes. A non-positive
// size uses DefaultBatchSize.
func (s *Store) NewBatch(size int) *Batch {
	if size <= 0 {
		size = DefaultBatchSize
	}
	return &Batch{store: s, size: size}
}

// OnCommit registers fn to be called after every committed chunk with the
// running total of committed documents.
func (b *Batch) OnCommit(fn func(committed int)) {
	b.onCommit = fn
}

// Set queues v for path and flushes when the batch is full.
func (b *Batch) Set(ctx context.Context, path string, v any) error {
	parent, id, err := Split(path)
	if err != nil {
		return err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "encode %s", path)
	}
	b.ops = append(b.ops, pending{path: path, parent: parent, id: id, data: string(data)})
	b.writes++
	if b.writes >= b.size {
		return b.Commit(ctx)
	}
	return nil
}

// Delete queues the removal of path and every document below it. Writes
// queued after it in the same chunk survive.
func (b *Batch) Delete(path string) error {
	if _, _, err := Split(path); err != nil {
		return err
	}
	b.ops = append(b.ops, pending{path: path, del: true})
	return nil
}

// Pending returns the number of queued, uncommitted writes.
func (b *Batch) Pending() int {
	return b.writes
}

// Removed returns the number of documents removed by committed deletes.
func (b *Batch) Removed() int64 {
	return b.removed
}

// Committed returns the number of documents committed so far.
func (b *Batch) Committed() int {
	return b.committed
}

// Commit writes all queued documents in one transaction. On error nothing
// from the chunk is written and the queue is kept.
func (b *Batch) Commit(ctx context.Context) error {
	if len(b.ops) == 0 {
		return nil
	}

	tx, err := b.store.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin batch")
	}
	stmt, err := tx.PrepareContext(ctx, upsertDocument)
	if err != nil {
		tx.Rollback()
		return errors.Wrap(err, "prepare batch")
	}
	defer stmt.Close()

	ts := b.store.timestamp()
	var removed int64
	for _, op := range b.ops {
		if op.del {
			res, err := tx.ExecContext(ctx, deleteTree, op.path, op.path+"/", op.path+"0")
			if err != nil {
				tx.Rollback()
				return errors.Wrapf(err, "batch delete %s", op.path)
			}
			n, _ := res.RowsAffected()
			removed += n
			continue
		}
		if _, err := stmt.ExecContext(ctx, op.path, op.parent, op.id, op.data, ts); err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "batch set %s", op.path)
		}
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "commit batch")
	}

	b.committed += b.writes
	b.removed += removed
	b.ops = b.ops[:0]
	b.writes = 0
	if b.onCommit != nil {
		b.onCommit(b.committed)
	}
	return nil
}
