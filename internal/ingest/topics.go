package ingest

import (
	"context"
	"strings"

	"github.com/FocuswithJustin/synopsis/core/errors"
	"github.com/FocuswithJustin/synopsis/core/topics"
	"github.com/FocuswithJustin/synopsis/internal/logging"
	"github.com/FocuswithJustin/synopsis/internal/store"
)

// CollectionRecord is the persisted summary of a topic collection.
type CollectionRecord struct {
	Language string `json:"language"`
	Version  string `json:"version"`
	Topics   int    `json:"topics"`
	Source   string `json:"source"`
	Hash     string `json:"hash"`
}

// CollectionPath returns the store path of a topic collection.
func CollectionPath(collection string) string {
	return store.Join(ReferencesRoot, collection)
}

// TopicsPath returns the parent path of a collection's topics.
func TopicsPath(collection string) string {
	return store.Join(ReferencesRoot, collection, "topics")
}

// TopicPath returns the store path of one topic.
func TopicPath(collection, id string) string {
	return store.Join(ReferencesRoot, collection, "topics", id)
}

// TopicsOptions selects the collection a topic source is written to. Empty
// fields are derived from the source name ("arabic_van-dyck.csv").
type TopicsOptions struct {
	Language string
	Version  string
	// Books names the citation columns after the label column. Nil uses
	// topics.GospelBooks.
	Books []string
}

func (o TopicsOptions) collection(name string) (language, version string) {
	language, version = strings.TrimSpace(o.Language), strings.TrimSpace(o.Version)
	if language == "" || version == "" {
		l, v := topics.ParseSourceName(name)
		if language == "" {
			language = l
		}
		if version == "" {
			version = v
		}
	}
	return language, version
}

// Topics reads src as a CSV, XLSX or ODS cross-reference sheet and replaces
// the collection it names.
func (in *Ingester) Topics(ctx context.Context, src *Source, opts TopicsOptions) (*Result, error) {
	rows, err := topics.ReadSheet(src.Name, src.Reader())
	if err != nil {
		return nil, err
	}
	ts, stats, err := topics.FromRows(rows, opts.Books)
	if err != nil {
		return nil, errors.Wrapf(err, "topics %s", src.Name)
	}
	for _, skip := range stats.SkippedRows {
		logging.EntrySkipped(ctx, src.Name+" "+skip.Source, skip.Reason)
	}
	language, version := opts.collection(src.Name)
	return in.writeTopics(ctx, KindTopics, src, language, version, ts, len(stats.SkippedRows))
}

// TopicsJSON reads src as a JSON topic list and replaces the collection
// named by opts or the source name.
func (in *Ingester) TopicsJSON(ctx context.Context, src *Source, opts TopicsOptions) (*Result, error) {
	ts, stats, err := topics.FromJSON(src.Reader())
	if err != nil {
		return nil, errors.Wrapf(err, "topics %s", src.Name)
	}
	for _, skip := range stats.Skipped {
		logging.EntrySkipped(ctx, src.Name+" "+skip.Source, skip.Reason)
	}
	if stats.Duplicates > 0 {
		logging.DebugContext(ctx, "duplicate_references_dropped", "source", src.Name, "count", stats.Duplicates)
	}
	language, version := opts.collection(src.Name)
	return in.writeTopics(ctx, KindTopicsJSON, src, language, version, ts, len(stats.Skipped))
}

func (in *Ingester) writeTopics(ctx context.Context, kind string, src *Source, language, version string, ts []topics.Topic, skipped int) (*Result, error) {
	collection := topics.CollectionID(language, version)
	if collection == "_" {
		return nil, errors.NewValidation("collection", "language and version are required")
	}
	topics.Sort(ts)

	docs := make([]document, 0, 1+len(ts))
	docs = append(docs, document{CollectionPath(collection), CollectionRecord{
		Language: language,
		Version:  version,
		Topics:   len(ts),
		Source:   src.Name,
		Hash:     src.Hash,
	}})
	for _, t := range ts {
		docs = append(docs, document{TopicPath(collection, t.ID), t.Record()})
	}
	return in.run(ctx, kind, src, CollectionPath(collection), docs, skipped)
}
