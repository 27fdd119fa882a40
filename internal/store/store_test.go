package store

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/FocuswithJustin/synopsis/core/errors"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "store.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

type verse struct {
	Text string `json:"text"`
}

func TestSplit(t *testing.T) {
	tests := []struct {
		path, parent, id string
		wantErr          bool
	}{
		{"bibles", "", "bibles", false},
		{"bibles/MAT/chapters/5", "bibles/MAT/chapters", "5", false},
		{"", "", "", true},
		{"/bibles", "", "", true},
		{"bibles/", "", "", true},
		{"bibles//MAT", "", "", true},
		{"bibles/../x", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			parent, id, err := Split(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Split(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
			if parent != tt.parent || id != tt.id {
				t.Errorf("Split(%q) = (%q, %q), want (%q, %q)", tt.path, parent, id, tt.parent, tt.id)
			}
		})
	}
}

func TestSetGetExists(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	path := Join("bibles", "MAT", "chapters", "5", "verses", "3")

	if ok, err := s.Exists(ctx, path); err != nil || ok {
		t.Fatalf("Exists() before Set = %v, %v", ok, err)
	}
	if err := s.Set(ctx, path, verse{Text: "Blessed are the poor in spirit"}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if ok, err := s.Exists(ctx, path); err != nil || !ok {
		t.Fatalf("Exists() after Set = %v, %v", ok, err)
	}

	var got verse
	if err := s.GetJSON(ctx, path, &got); err != nil {
		t.Fatalf("GetJSON() error = %v", err)
	}
	if got.Text != "Blessed are the poor in spirit" {
		t.Errorf("GetJSON() = %+v", got)
	}

	if err := s.Set(ctx, path, verse{Text: "replaced"}); err != nil {
		t.Fatal(err)
	}
	if err := s.GetJSON(ctx, path, &got); err != nil || got.Text != "replaced" {
		t.Errorf("GetJSON() after overwrite = %+v, %v", got, err)
	}
}

func TestGetMissing(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Get(context.Background(), "bibles/NOPE")
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestListKeepsFirstWriteOrder(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	for _, c := range []string{"1", "2", "10", "3"} {
		if err := s.Set(ctx, Join("bibles", "MAT", "chapters", c), map[string]any{}); err != nil {
			t.Fatal(err)
		}
	}
	// Overwriting must not move a document to the end.
	if err := s.Set(ctx, "bibles/MAT/chapters/1", map[string]any{"x": 1}); err != nil {
		t.Fatal(err)
	}
	if err := s.Set(ctx, "bibles/MAT/chapters/1/verses/1", verse{}); err != nil {
		t.Fatal(err)
	}

	ids, err := s.List(ctx, "bibles/MAT/chapters")
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"1", "2", "10", "3"}; !reflect.DeepEqual(ids, want) {
		t.Errorf("List() = %v, want %v", ids, want)
	}

	ids, err = s.List(ctx, "bibles")
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 0 {
		t.Errorf("List(bibles) = %v, want no documents", ids)
	}
}

func TestChildren(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	if err := s.Set(ctx, "references/english_kjv/topics/2", map[string]string{"name": "b"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Set(ctx, "references/english_kjv/topics/1", map[string]string{"name": "a"}); err != nil {
		t.Fatal(err)
	}

	docs, err := s.Children(ctx, "references/english_kjv/topics")
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 2 || docs[0].ID != "2" || string(docs[1].Data) != `{"name":"a"}` {
		t.Errorf("Children() = %+v", docs)
	}
}

func TestDeleteSubtree(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	for _, p := range []string{
		"references/english_kjv",
		"references/english_kjv/topics/1",
		"references/english_kjv/topics/2",
		"references/english_kjv2",
		"references/english_kjv-old/topics/1",
	} {
		if err := s.Set(ctx, p, map[string]any{}); err != nil {
			t.Fatal(err)
		}
	}

	n, err := s.Delete(ctx, "references/english_kjv")
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("Delete() removed %d, want 3", n)
	}
	total, err := s.Count(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 {
		t.Errorf("Count() = %d, want 2", total)
	}
}

func TestBatch(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	b := s.NewBatch(3)

	var commits []int
	b.OnCommit(func(n int) { commits = append(commits, n) })

	for i := 1; i <= 7; i++ {
		if err := b.Set(ctx, Join("bibles", "JHN", "chapters", "1", "verses", string(rune('0'+i))), verse{Text: "v"}); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
	}
	if b.Pending() != 1 || b.Committed() != 6 {
		t.Errorf("Pending() = %d, Committed() = %d", b.Pending(), b.Committed())
	}
	if err := b.Commit(ctx); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(commits, []int{3, 6, 7}) {
		t.Errorf("commits = %v", commits)
	}

	n, err := s.Count(ctx, "bibles/JHN")
	if err != nil {
		t.Fatal(err)
	}
	if n != 7 {
		t.Errorf("Count() = %d, want 7", n)
	}
}

func TestBatch_DeleteReplacesSubtree(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	for _, p := range []string{"bibles/GEN", "bibles/GEN/chapters/1", "bibles/GEN/chapters/1/verses/9", "bibles/GENX"} {
		if err := s.Set(ctx, p, verse{Text: "old"}); err != nil {
			t.Fatal(err)
		}
	}

	b := s.NewBatch(2)
	if err := b.Delete("bibles/GEN"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := b.Set(ctx, "bibles/GEN/chapters/1", verse{}); err != nil {
		t.Fatal(err)
	}
	if b.Pending() != 1 {
		t.Errorf("Pending() = %d, want 1", b.Pending())
	}
	if err := b.Set(ctx, "bibles/GEN/chapters/1/verses/1", verse{Text: "new"}); err != nil {
		t.Fatal(err)
	}
	if b.Committed() != 2 || b.Removed() != 3 {
		t.Errorf("Committed() = %d, Removed() = %d; want 2, 3", b.Committed(), b.Removed())
	}

	for path, want := range map[string]bool{
		"bibles/GEN":                     false,
		"bibles/GEN/chapters/1":          true,
		"bibles/GEN/chapters/1/verses/9": false,
		"bibles/GEN/chapters/1/verses/1": true,
		"bibles/GENX":                    true,
	} {
		got, err := s.Exists(ctx, path)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("Exists(%q) = %v, want %v", path, got, want)
		}
	}

	if err := b.Delete("../x"); err == nil {
		t.Error("Delete() with invalid path should fail")
	}
}

func TestBatch_InvalidPath(t *testing.T) {
	s := openTestStore(t)
	b := s.NewBatch(0)
	if err := b.Set(context.Background(), "/bad", verse{}); err == nil {
		t.Error("expected validation error")
	}
	if b.Pending() != 0 {
		t.Error("invalid write must not be queued")
	}
}

func TestSources(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	when := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	src := Source{Hash: "abc", RunID: "run-1", Kind: "bible", Name: "MAT.usfm", Size: 42, Documents: 10, IngestedAt: when}
	if err := s.RegisterSource(ctx, src); err != nil {
		t.Fatal(err)
	}
	src.Documents = 11
	src.RunID = "run-2"
	if err := s.RegisterSource(ctx, src); err != nil {
		t.Fatal(err)
	}

	got, ok, err := s.Source(ctx, "abc")
	if err != nil || !ok {
		t.Fatalf("Source() = %v, %v", ok, err)
	}
	if got.RunID != "run-2" || got.Documents != 11 || !got.IngestedAt.Equal(when) {
		t.Errorf("Source() = %+v", got)
	}

	all, err := s.Sources(ctx)
	if err != nil || len(all) != 1 {
		t.Errorf("Sources() = %v, %v", all, err)
	}

	if _, ok, _ := s.Source(ctx, "missing"); ok {
		t.Error("Source(missing) should not be found")
	}
	if err := s.RegisterSource(ctx, Source{}); err == nil {
		t.Error("expected error for empty hash")
	}
}
