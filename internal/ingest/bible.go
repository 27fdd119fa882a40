package ingest

import (
	"context"

	"github.com/FocuswithJustin/synopsis/core/errors"
	"github.com/FocuswithJustin/synopsis/core/usfm"
	"github.com/FocuswithJustin/synopsis/internal/store"
)

// BookRecord is the persisted summary of an ingested book.
type BookRecord struct {
	BookID   string `json:"book_id"`
	Name     string `json:"name,omitempty"`
	Chapters int    `json:"chapters"`
	Verses   int    `json:"verses"`
	Source   string `json:"source"`
	Hash     string `json:"hash"`
}

// ChapterRecord is the persisted chapter document. It carries no fields;
// its verses are its children.
type ChapterRecord struct{}

// BookPath returns the store path of a book.
func BookPath(bookID string) string {
	return store.Join(BiblesRoot, bookID)
}

// ChapterPath returns the store path of a chapter.
func ChapterPath(bookID, chapter string) string {
	return store.Join(BiblesRoot, bookID, "chapters", chapter)
}

// VersePath returns the store path of a verse.
func VersePath(bookID, chapter, verse string) string {
	return store.Join(BiblesRoot, bookID, "chapters", chapter, "verses", verse)
}

// Bible parses src as USFM and replaces the book it identifies.
func (in *Ingester) Bible(ctx context.Context, src *Source) (*Result, error) {
	doc, err := usfm.ParseReader(src.Reader())
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", src.Name)
	}
	return in.Document(ctx, src, doc)
}

// Document writes an already parsed USFM document for src.
func (in *Ingester) Document(ctx context.Context, src *Source, doc *usfm.Document) (*Result, error) {
	if doc.BookID == "" {
		return nil, errors.NewValidation("book_id", "document has no \\id marker: "+src.Name)
	}
	name, _ := usfm.BookName(doc.BookID)

	docs := make([]document, 0, 1+len(doc.Chapters)+doc.VerseCount())
	docs = append(docs, document{BookPath(doc.BookID), BookRecord{
		BookID:   doc.BookID,
		Name:     name,
		Chapters: len(doc.Chapters),
		Verses:   doc.VerseCount(),
		Source:   src.Name,
		Hash:     src.Hash,
	}})
	for _, c := range doc.Chapters {
		docs = append(docs, document{ChapterPath(doc.BookID, c.ID), ChapterRecord{}})
		for _, v := range c.Verses {
			docs = append(docs, document{VersePath(doc.BookID, c.ID, v.ID), v.Record()})
		}
	}
	return in.run(ctx, KindBible, src, BookPath(doc.BookID), docs, 0)
}
