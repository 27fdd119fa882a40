package citation

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestParseCell(t *testing.T) {
	tests := []struct {
		name string
		cell string
		want []CellRef
	}{
		{"range continues chapter", "1:6-8;15-28", []CellRef{{1, "6-8"}, {1, "15-28"}}},
		{"single", "2:39", []CellRef{{2, "39"}}},
		{"en dash", "1:6–8", []CellRef{{1, "6-8"}}},
		{"em dash", "1:6—8", []CellRef{{1, "6-8"}}},
		{"non-digit chapter", "a:1", nil},
		{"empty", "", nil},
		{"comma separated", "3:1-12, 4:1", []CellRef{{3, "1-12"}, {4, "1"}}},
		{"duplicates kept", "5:3;5:3", []CellRef{{5, "3"}, {5, "3"}}},
		{"arabic digits and separator", "٥:٣-١٢؛ ٦:١", []CellRef{{5, "3-12"}, {6, "1"}}},
		{"no previous chapter", "15-28;2:1", []CellRef{{2, "1"}}},
		{"whitespace", "  7 : 1 - 5 ", []CellRef{{7, "1 - 5"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseCell(tt.cell)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseCell(%q) = %v, want %v", tt.cell, got, tt.want)
			}
		})
	}
}

func TestParseCell_DashVariantsNormalizeIdentically(t *testing.T) {
	hyphen := ParseCell("1:6-8")
	for _, cell := range []string{"1:6–8", "1:6—8", "1:6−8", "1:6‐8"} {
		if got := ParseCell(cell); !reflect.DeepEqual(got, hyphen) {
			t.Errorf("ParseCell(%q) = %v, want %v", cell, got, hyphen)
		}
	}
}

func TestParseText(t *testing.T) {
	tests := []struct {
		input       string
		defaultBook string
		want        Entry
		ok          bool
	}{
		{"Matthew 5:3-12", "", Entry{Book: "Matthew", Chapter: "5", Verses: "3-12"}, true},
		{"1 Samuel 3:4", "", Entry{Book: "1 Samuel", Chapter: "3", Verses: "4"}, true},
		{"Song of Solomon 2", "", Entry{Book: "Song of Solomon", Chapter: "2"}, true},
		{"Matt. 5.3", "", Entry{Book: "Matt.", Chapter: "5", Verses: "3"}, true},
		{"John 3:16-16", "", Entry{Book: "John", Chapter: "3", Verses: "16"}, true},
		{"6:3–5", "Mark", Entry{Book: "Mark", Chapter: "6", Verses: "3-5"}, true},
		{"12", "Luke", Entry{Book: "Luke", Chapter: "12"}, true},
		{"متى ٥:٣", "", Entry{Book: "متى", Chapter: "5", Verses: "3"}, true},
		{"Revelation", "", Entry{Book: "Revelation"}, true},
		{"6:3", "", Entry{}, false},
		{"", "Mark", Entry{}, false},
		{"5 3", "Mark", Entry{}, false},
		{"Mark 5 3", "", Entry{}, false},
		{"Mark :3", "", Entry{}, false},
		{"#$%", "Mark", Entry{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseText(tt.input, tt.defaultBook)
			if ok != tt.ok {
				t.Fatalf("ParseText(%q) ok = %v, want %v (got %+v)", tt.input, ok, tt.ok, got)
			}
			if got != tt.want {
				t.Errorf("ParseText(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeEntry_Records(t *testing.T) {
	tests := []struct {
		name        string
		raw         map[string]any
		defaultBook string
		want        Entry
		ok          bool
	}{
		{
			name: "canonical keys",
			raw:  map[string]any{"book": "Luke", "chapter": float64(2), "verses": "1-7"},
			want: Entry{Book: "Luke", Chapter: "2", Verses: "1-7"},
			ok:   true,
		},
		{
			name: "alternate spellings with start and end",
			raw:  map[string]any{"Book": "John", "chap": "3", "verse_start": 16, "verse_end": 18, "Title": "God so loved"},
			want: Entry{Book: "John", Chapter: "3", Verses: "16-18", Title: "God so loved"},
			ok:   true,
		},
		{
			name: "equal start and end collapse",
			raw:  map[string]any{"book": "Mark", "chapter": "1", "start": "9", "end": "9"},
			want: Entry{Book: "Mark", Chapter: "1", Verses: "9"},
			ok:   true,
		},
		{
			name: "range start ignores end",
			raw:  map[string]any{"book": "Luke", "chapter": "1", "verse": "6–8", "verse_end": "10"},
			want: Entry{Book: "Luke", Chapter: "1", Verses: "6-8"},
			ok:   true,
		},
		{
			name: "first matching key wins",
			raw:  map[string]any{"book": "Matthew", "book_name": "Mark", "chapter": "1"},
			want: Entry{Book: "Matthew", Chapter: "1"},
			ok:   true,
		},
		{
			name:        "default book",
			raw:         map[string]any{"chapter": "4", "verse": "1", "note": "temptation"},
			defaultBook: "Matthew",
			want:        Entry{Book: "Matthew", Chapter: "4", Verses: "1", Note: "temptation"},
			ok:          true,
		},
		{
			name: "free-text ref field",
			raw:  map[string]any{"ref": "Luke 15:11–32", "title": "Prodigal son"},
			want: Entry{Book: "Luke", Chapter: "15", Verses: "11-32", Title: "Prodigal son"},
			ok:   true,
		},
		{
			name: "no book",
			raw:  map[string]any{"chapter": "4"},
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeEntry(tt.raw, tt.defaultBook)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v (got %+v)", ok, tt.ok, got)
			}
			if got != tt.want {
				t.Errorf("NormalizeEntry() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestNormalize_DedupAcrossShapes(t *testing.T) {
	raw := []any{
		"Matthew 5:3-12",
		map[string]any{"book": "MATTHEW", "chapter": 5, "verse_start": 3, "verse_end": 12},
		map[string]any{"Book": "matthew", "ch": "5", "verses": "3–12"},
		"Mark 1:1",
	}
	entries, stats := Normalize(raw, "")
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2: %+v", len(entries), entries)
	}
	if entries[0] != (Entry{Book: "Matthew", Chapter: "5", Verses: "3-12"}) {
		t.Errorf("first entry = %+v, want first-seen spelling", entries[0])
	}
	if stats.Seen != 4 || stats.Kept != 2 || stats.Duplicates != 2 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestNormalize_TitleAndNoteAreIdentity(t *testing.T) {
	raw := []any{
		map[string]any{"book": "John", "chapter": "1", "verses": "1", "title": "Word"},
		map[string]any{"book": "John", "chapter": "1", "verses": "1"},
	}
	entries, _ := Normalize(raw, "")
	if len(entries) != 2 {
		t.Errorf("got %d entries, want 2", len(entries))
	}
}

func TestNormalize_NestedGroups(t *testing.T) {
	var raw any
	err := json.Unmarshal([]byte(`{
		"Mark": ["1:9-11", {"chapter": 1, "verses": "12-13"}],
		"Matthew": [{"chapter": "3", "verses": "13-17"}, "Luke 3:21-22"]
	}`), &raw)
	if err != nil {
		t.Fatal(err)
	}
	entries, stats := Normalize(raw, "")
	want := []Entry{
		{Book: "Matthew", Chapter: "3", Verses: "13-17"},
		{Book: "Luke", Chapter: "3", Verses: "21-22"},
		{Book: "Mark", Chapter: "1", Verses: "9-11"},
		{Book: "Mark", Chapter: "1", Verses: "12-13"},
	}
	if !reflect.DeepEqual(entries, want) {
		t.Errorf("Normalize() = %+v, want %+v", entries, want)
	}
	if len(stats.Skipped) != 0 {
		t.Errorf("unexpected skips: %v", stats.Skipped)
	}
}

func TestNormalize_GroupList(t *testing.T) {
	var raw any
	err := json.Unmarshal([]byte(`[
		{"book": "John", "entries": ["2:1-11", {"chapter": 4, "verses": "46-54"}]},
		{"entries": ["5:1-9"]},
		{"book": "Luke", "references": [{"book": "Acts", "chapter": 1}]}
	]`), &raw)
	if err != nil {
		t.Fatal(err)
	}
	entries, stats := Normalize(raw, "")
	want := []Entry{
		{Book: "John", Chapter: "2", Verses: "1-11"},
		{Book: "John", Chapter: "4", Verses: "46-54"},
		{Book: "Acts", Chapter: "1"},
	}
	if !reflect.DeepEqual(entries, want) {
		t.Errorf("Normalize() = %+v, want %+v", entries, want)
	}
	if len(stats.Skipped) != 1 {
		t.Fatalf("Skipped = %v, want 1 entry", stats.Skipped)
	}
	if stats.Skipped[0].Source != "$[1].entries[0]" {
		t.Errorf("skip source = %q", stats.Skipped[0].Source)
	}
}

func TestNormalize_MalformedDoesNotAbort(t *testing.T) {
	raw := []any{42.0, true, nil, "Luke 1:1", map[string]any{}, "???"}
	entries, stats := Normalize(raw, "")
	if len(entries) != 1 {
		t.Errorf("got %d entries, want 1", len(entries))
	}
	if len(stats.Skipped) == 0 {
		t.Error("expected skipped inputs")
	}
}

func TestSet(t *testing.T) {
	var s Set
	if !s.Add(Entry{Book: "1 Samuel", Chapter: "3"}) {
		t.Error("first Add should succeed")
	}
	if s.Add(Entry{Book: "1 samuel", Chapter: "3"}) {
		t.Error("Add with book differing only in case should be a duplicate")
	}
	if !s.Add(Entry{Book: "1 Samuel", Chapter: "4"}) {
		t.Error("different chapter should be added")
	}
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
	if got := Dedupe([]Entry{{Book: "A"}, {Book: "a"}, {Book: "B"}}); len(got) != 2 {
		t.Errorf("Dedupe() = %v", got)
	}
}

func TestEntryString(t *testing.T) {
	tests := []struct {
		e    Entry
		want string
	}{
		{Entry{Book: "John", Chapter: "3", Verses: "16"}, "John 3:16"},
		{Entry{Book: "John", Chapter: "3"}, "John 3"},
		{Entry{Book: "John"}, "John"},
	}
	for _, tt := range tests {
		if got := tt.e.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
