package citation

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/FocuswithJustin/synopsis/core/errors"
	"github.com/FocuswithJustin/synopsis/core/textnorm"
	"github.com/FocuswithJustin/synopsis/core/usfm"
)

// Accepted key spellings, in priority order. The first key present with a
// non-empty value wins.
var (
	bookKeys       = []string{"book", "Book", "BOOK", "book_name", "bookName", "b"}
	chapterKeys    = []string{"chapter", "Chapter", "chap", "ch", "c"}
	verseStartKeys = []string{"verses", "Verses", "verse", "Verse", "verse_start", "verseStart", "start", "from", "v"}
	verseEndKeys   = []string{"verse_end", "verseEnd", "end", "to"}
	titleKeys      = []string{"title", "Title", "label", "heading"}
	noteKeys       = []string{"note", "Note", "notes", "comment"}
	refKeys        = []string{"ref", "reference", "citation", "text"}
	groupKeys      = []string{"entries", "references", "refs", "items"}
)

// Stats counts what happened to the raw inputs of one Normalize call.
type Stats struct {
	Seen       int
	Kept       int
	Duplicates int
	Skipped    []*errors.SkipError
}

// NormalizeEntry converts a single raw citation (a string or a record) into
// an entry. It reports false when no non-empty book can be determined.
func NormalizeEntry(raw any, defaultBook string) (Entry, bool) {
	switch v := raw.(type) {
	case string:
		return ParseText(v, defaultBook)
	case map[string]any:
		return recordEntry(v, defaultBook)
	case Entry:
		if strings.TrimSpace(v.Book) == "" {
			v.Book = strings.TrimSpace(defaultBook)
		}
		return v, v.Book != ""
	default:
		return Entry{}, false
	}
}

// Normalize flattens raw into deduplicated entries in first-seen order.
//
// raw may be a single citation, a list of citations, a per-book mapping
// ({"Matthew": [...], "Mark": [...]}), or a list of {book, entries} groups.
// A group's book is the default for inner citations that omit one. Inputs
// that cannot produce an entry are recorded in Stats.Skipped and never fail
// the call.
func Normalize(raw any, defaultBook string) ([]Entry, Stats) {
	w := &walker{set: NewSet()}
	w.walk(raw, defaultBook, "$")
	return w.set.Entries(), w.stats
}

type walker struct {
	set   *Set
	stats Stats
}

func (w *walker) walk(raw any, defaultBook, path string) {
	switch v := raw.(type) {
	case nil:
		return
	case []any:
		for i, item := range v {
			w.walk(item, defaultBook, fmt.Sprintf("%s[%d]", path, i))
		}
	case []string:
		for i, item := range v {
			w.walk(item, defaultBook, fmt.Sprintf("%s[%d]", path, i))
		}
	case []Entry:
		for i, item := range v {
			w.walk(item, defaultBook, fmt.Sprintf("%s[%d]", path, i))
		}
	case []map[string]any:
		for i, item := range v {
			w.walk(item, defaultBook, fmt.Sprintf("%s[%d]", path, i))
		}
	case map[string]any:
		if group, ok := firstValue(v, groupKeys); ok {
			book := defaultBook
			if b := stringValue(v, bookKeys); b != "" {
				book = b
			}
			w.walk(group, book, path+"."+groupKey(v))
			return
		}
		if isRecord(v) {
			w.add(v, defaultBook, path)
			return
		}
		for _, book := range bookOrder(v) {
			w.walk(v[book], book, path+"."+book)
		}
	default:
		w.add(v, defaultBook, path)
	}
}

func (w *walker) add(raw any, defaultBook, path string) {
	w.stats.Seen++
	e, ok := NormalizeEntry(raw, defaultBook)
	if !ok {
		w.stats.Skipped = append(w.stats.Skipped, errors.NewSkip(path, "no resolvable book"))
		return
	}
	if !w.set.Add(e) {
		w.stats.Duplicates++
		return
	}
	w.stats.Kept++
}

func recordEntry(m map[string]any, defaultBook string) (Entry, bool) {
	var e Entry
	if ref := stringValue(m, refKeys); ref != "" {
		book := defaultBook
		if b := stringValue(m, bookKeys); b != "" {
			book = b
		}
		parsed, ok := ParseText(ref, book)
		if ok {
			e = parsed
		}
	}

	if b := stringValue(m, bookKeys); b != "" && e.Book == "" {
		e.Book = b
	}
	if e.Book == "" {
		e.Book = strings.TrimSpace(defaultBook)
	}
	if c := stringValue(m, chapterKeys); c != "" {
		e.Chapter = textnorm.FoldDigits(c)
	}
	start := stringValue(m, verseStartKeys)
	end := stringValue(m, verseEndKeys)
	// A start value that is already a range wins over a separate end.
	if strings.Contains(UnifyDashes(start), "-") {
		end = ""
	}
	if start != "" || end != "" {
		e.Verses = normalizeVerses(verseRange(start, end))
	}
	e.Title = stringValue(m, titleKeys)
	e.Note = stringValue(m, noteKeys)

	if e.Book == "" {
		return Entry{}, false
	}
	return e, true
}

// isRecord reports whether m looks like a single citation record rather
// than a per-book mapping.
func isRecord(m map[string]any) bool {
	for _, keys := range [][]string{bookKeys, chapterKeys, verseStartKeys, verseEndKeys, refKeys, titleKeys, noteKeys} {
		for _, k := range keys {
			if _, ok := m[k]; ok {
				return true
			}
		}
	}
	return false
}

func firstValue(m map[string]any, keys []string) (any, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func groupKey(m map[string]any) string {
	for _, k := range groupKeys {
		if _, ok := m[k]; ok {
			return k
		}
	}
	return ""
}

// stringValue returns the first non-empty value among keys rendered as a
// string.
func stringValue(m map[string]any, keys []string) string {
	for _, k := range keys {
		v, ok := m[k]
		if !ok {
			continue
		}
		if s := toString(v); s != "" {
			return s
		}
	}
	return ""
}

func toString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}

// bookOrder returns the keys of a per-book mapping in canonical book order,
// unknown keys last in lexical order. Map iteration order is random, so a
// fixed order keeps output deterministic.
func bookOrder(m map[string]any) []string {
	rank := func(name string) int {
		n := textnorm.Normalize(name)
		for _, b := range usfm.Books {
			if textnorm.Normalize(b.Name) == n || strings.EqualFold(b.Code, name) {
				return b.Order
			}
		}
		return len(usfm.Books) + 1
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.SliceStable(keys, func(i, j int) bool {
		ri, rj := rank(keys[i]), rank(keys[j])
		if ri != rj {
			return ri < rj
		}
		return keys[i] < keys[j]
	})
	return keys
}
