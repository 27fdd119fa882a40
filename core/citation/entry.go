// Package citation turns loosely shaped scripture references into canonical
// {book, chapter, verses} entries.
//
// References arrive as spreadsheet cells ("1:6–8;15–28"), free text
// ("1 Samuel 3:4-10", "متى ٥:٣") or structured records whose keys vary by
// source. Everything is funnelled into Entry and deduplicated through Set.
package citation

import (
	"strings"

	"github.com/FocuswithJustin/synopsis/core/textnorm"
)

// Entry is a canonical citation. Book is always non-empty.
type Entry struct {
	Book    string `json:"book"`
	Chapter string `json:"chapter,omitempty"`
	Verses  string `json:"verses,omitempty"`
	Title   string `json:"title,omitempty"`
	Note    string `json:"note,omitempty"`
}

// String renders the entry as "Book chapter:verses".
func (e Entry) String() string {
	var sb strings.Builder
	sb.WriteString(e.Book)
	if e.Chapter != "" {
		sb.WriteString(" ")
		sb.WriteString(e.Chapter)
		if e.Verses != "" {
			sb.WriteString(":")
			sb.WriteString(e.Verses)
		}
	}
	return sb.String()
}

// key is the deduplication identity of an entry.
type key struct {
	book, chapter, verses, title, note string
}

func (e Entry) key() key {
	return key{
		book:    textnorm.Normalize(e.Book),
		chapter: e.Chapter,
		verses:  e.Verses,
		title:   e.Title,
		note:    e.Note,
	}
}

// Set keeps entries in first-seen order and drops later duplicates.
type Set struct {
	seen    map[key]struct{}
	entries []Entry
}

// NewSet creates an empty Set.
func NewSet() *Set {
	return &Set{seen: make(map[key]struct{})}
}

// Add inserts e unless an identical entry is already present. It reports
// whether e was added.
func (s *Set) Add(e Entry) bool {
	if s.seen == nil {
		s.seen = make(map[key]struct{})
	}
	k := e.key()
	if _, dup := s.seen[k]; dup {
		return false
	}
	s.seen[k] = struct{}{}
	s.entries = append(s.entries, e)
	return true
}

// Entries returns the entries in insertion order.
func (s *Set) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of distinct entries.
func (s *Set) Len() int {
	return len(s.entries)
}

// Dedupe returns entries with later duplicates removed.
func Dedupe(entries []Entry) []Entry {
	s := NewSet()
	for _, e := range entries {
		s.Add(e)
	}
	return s.Entries()
}
