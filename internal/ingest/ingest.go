// Package ingest loads USFM books and topic sheets into the document store.
//
// Every run parses its whole input first, replaces the target subtree and
// then writes through a store.Batch so progress can be reported per
// committed chunk. Inputs are registered by content hash and the target
// record carries the hash it was written from; feeding the bytes the target
// already holds is a no-op unless the ingester is forced.
package ingest

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/FocuswithJustin/synopsis/core/errors"
	"github.com/FocuswithJustin/synopsis/internal/logging"
	"github.com/FocuswithJustin/synopsis/internal/store"
)

// Ingestion kinds recorded in the source registry.
const (
	KindBible      = "bible"
	KindTopics     = "topics"
	KindTopicsJSON = "topics-json"
)

// Store roots.
const (
	BiblesRoot     = "bibles"
	ReferencesRoot = "references"
)

// Result describes one ingestion run.
type Result struct {
	RunID     string        `json:"run_id"`
	Kind      string        `json:"kind"`
	Source    string        `json:"source"`
	Target    string        `json:"target"`
	Hash      string        `json:"hash"`
	Documents int           `json:"documents"`
	Skipped   int           `json:"skipped"`
	Unchanged bool          `json:"unchanged,omitempty"`
	Duration  time.Duration `json:"duration"`
}

// Option configures an Ingester.
type Option func(*Ingester)

// WithBatchSize sets the number of documents per transaction.
func WithBatchSize(n int) Option {
	return func(in *Ingester) {
		in.batchSize = n
	}
}

// WithProgress sets the progress reporter.
func WithProgress(p Progress) Option {
	return func(in *Ingester) {
		if p != nil {
			in.progress = p
		}
	}
}

// WithForce re-ingests sources whose hash is already registered.
func WithForce(force bool) Option {
	return func(in *Ingester) {
		in.force = force
	}
}

// Ingester writes parsed sources into a store.
type Ingester struct {
	store     *store.Store
	batchSize int
	progress  Progress
	force     bool
}

// New creates an Ingester over st.
func New(st *store.Store, opts ...Option) *Ingester {
	in := &Ingester{store: st, batchSize: store.DefaultBatchSize, progress: Nop}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

type document struct {
	path  string
	value any
}

// targetHash is the part of a book or collection record that names the
// source it was written from.
type targetHash struct {
	Hash string `json:"hash"`
}

// unchanged reports whether target was last written from src by a
// completed run of kind, returning that run's registration.
func (in *Ingester) unchanged(ctx context.Context, kind string, src *Source, target string) (store.Source, bool, error) {
	prev, ok, err := in.store.Source(ctx, src.Hash)
	if err != nil || !ok || prev.Kind != kind {
		return store.Source{}, false, err
	}
	var cur targetHash
	if err := in.store.GetJSON(ctx, target, &cur); err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return store.Source{}, false, nil
		}
		return store.Source{}, false, err
	}
	return prev, cur.Hash == src.Hash, nil
}

// run replaces target with docs and registers src. The subtree delete
// commits with the first chunk and the target record itself is written
// last, so a run that fails part way leaves no target record behind and
// the next run starts over.
func (in *Ingester) run(ctx context.Context, kind string, src *Source, target string, docs []document, skipped int) (*Result, error) {
	start := time.Now()
	res := &Result{Kind: kind, Source: src.Name, Target: target, Hash: src.Hash, Skipped: skipped}

	if !in.force {
		prev, same, err := in.unchanged(ctx, kind, src, target)
		if err != nil {
			return nil, err
		}
		if same {
			res.RunID = prev.RunID
			res.Unchanged = true
			res.Documents = prev.Documents
			logging.InfoContext(logging.WithRunID(ctx, prev.RunID), "ingest_unchanged",
				"kind", kind,
				"source", src.Name,
				"hash", src.Hash,
			)
			return res, nil
		}
	}

	res.RunID = uuid.NewString()
	ctx = logging.WithRunID(ctx, res.RunID)
	logging.IngestStarted(ctx, kind, src.Name, "target", target, "documents", len(docs), "hash", src.Hash)

	ordered := make([]document, 0, len(docs))
	var roots []document
	for _, d := range docs {
		if d.path == target {
			roots = append(roots, d)
			continue
		}
		ordered = append(ordered, d)
	}
	ordered = append(ordered, roots...)

	total := len(ordered)
	in.progress.Start(total, kind+" "+src.Name)
	defer in.progress.Finish()

	batch := in.store.NewBatch(in.batchSize)
	batch.OnCommit(func(committed int) {
		in.progress.Set(committed)
		logging.IngestProgress(ctx, kind, committed, total)
	})
	if err := batch.Delete(target); err != nil {
		return nil, err
	}
	for _, d := range ordered {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := batch.Set(ctx, d.path, d.value); err != nil {
			return nil, errors.Wrapf(err, "ingest %s", src.Name)
		}
	}
	if err := batch.Commit(ctx); err != nil {
		return nil, errors.Wrapf(err, "ingest %s", src.Name)
	}
	res.Documents = batch.Committed()
	if removed := batch.Removed(); removed > 0 {
		logging.DebugContext(ctx, "ingest_replaced", "target", target, "removed", removed)
	}

	if err := in.store.RegisterSource(ctx, store.Source{
		Hash:      src.Hash,
		RunID:     res.RunID,
		Kind:      kind,
		Name:      src.Name,
		Size:      src.Size(),
		Documents: res.Documents,
	}); err != nil {
		return nil, err
	}

	res.Duration = time.Since(start)
	logging.IngestFinished(ctx, kind, src.Name, res.Documents, res.Skipped, res.Duration, "target", target)
	return res, nil
}
