package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/FocuswithJustin/synopsis/core/citation"
	"github.com/FocuswithJustin/synopsis/core/errors"
	"github.com/FocuswithJustin/synopsis/core/resolve"
	"github.com/FocuswithJustin/synopsis/core/textnorm"
	"github.com/FocuswithJustin/synopsis/core/topics"
	"github.com/FocuswithJustin/synopsis/core/usfm"
	"github.com/FocuswithJustin/synopsis/internal/ingest"
	"github.com/FocuswithJustin/synopsis/internal/logging"
)

// APIResponse is the standard API response wrapper.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *APIMeta    `json:"meta,omitempty"`
}

// APIError represents an API error.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIMeta contains response metadata.
type APIMeta struct {
	Total int `json:"total,omitempty"`
	// Resolved is the stored identifier a free-form path segment matched.
	Resolved  string `json:"resolved,omitempty"`
	Strategy  string `json:"strategy,omitempty"`
	Timestamp string `json:"timestamp"`
}

// VerseView is one verse in a chapter or passage response.
type VerseView struct {
	ID           string       `json:"id"`
	Text         string       `json:"text"`
	BlocksBefore []usfm.Block `json:"blocks_before"`
}

// ChapterView is the body of a chapter read.
type ChapterView struct {
	Book    string      `json:"book"`
	Chapter string      `json:"chapter"`
	Verses  []VerseView `json:"verses"`
}

// PassageView is the body of a verse or verse-range read.
type PassageView struct {
	Book    string      `json:"book"`
	Chapter string      `json:"chapter"`
	Range   string      `json:"range"`
	Text    string      `json:"text"`
	Verses  []VerseView `json:"verses"`
}

// ResolutionView describes how a name resolved.
type ResolutionView struct {
	Requested  string     `json:"requested"`
	ID         string     `json:"id"`
	Strategy   string     `json:"strategy"`
	Candidates [][]string `json:"candidates,omitempty"`
	Directory  int        `json:"directory"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	n, err := s.store.Count(r.Context(), "")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"documents": n,
	})
}

func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	sources, err := s.store.Sources(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondMeta(w, http.StatusOK, sources, &APIMeta{Total: len(sources)})
}

func (s *Server) handleBooks(w http.ResponseWriter, r *http.Request) {
	ids, err := s.listing(r, ingest.BiblesRoot)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondMeta(w, http.StatusOK, nonNil(ids), &APIMeta{Total: len(ids)})
}

func (s *Server) handleChapters(w http.ResponseWriter, r *http.Request) {
	book, ok := s.resolveBook(w, r)
	if !ok {
		return
	}
	ids, err := s.listing(r, chaptersParent(book.ID))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondMeta(w, http.StatusOK, nonNil(ids), resolvedMeta(book, len(ids)))
}

func (s *Server) handleChapter(w http.ResponseWriter, r *http.Request) {
	book, ok := s.resolveBook(w, r)
	if !ok {
		return
	}
	chapter := textnorm.FoldDigits(strings.TrimSpace(pathParam(r, "chapter")))
	verses, ok := s.chapterVerses(w, r, book.ID, chapter)
	if !ok {
		return
	}
	respondMeta(w, http.StatusOK, ChapterView{Book: book.ID, Chapter: chapter, Verses: verses},
		resolvedMeta(book, len(verses)))
}

func (s *Server) handleVerses(w http.ResponseWriter, r *http.Request) {
	book, ok := s.resolveBook(w, r)
	if !ok {
		return
	}
	lo, hi, ok := parseVerseRange(pathParam(r, "verses"))
	if !ok {
		respondError(w, http.StatusBadRequest, "INVALID_RANGE", "verses must be a number or a range such as 6-8")
		return
	}
	chapter := textnorm.FoldDigits(strings.TrimSpace(pathParam(r, "chapter")))
	all, ok := s.chapterVerses(w, r, book.ID, chapter)
	if !ok {
		return
	}

	var picked []VerseView
	var text []string
	for _, v := range all {
		n, ok := verseNumber(v.ID)
		if !ok || n < lo || n > hi {
			continue
		}
		picked = append(picked, v)
		if v.Text != "" {
			text = append(text, v.Text)
		}
	}
	rng := formatRange(lo, hi)
	if len(picked) == 0 {
		respondError(w, http.StatusNotFound, "NOT_FOUND",
			errors.NewNotFound("verses", book.ID+" "+chapter+":"+rng).Error())
		return
	}
	respondMeta(w, http.StatusOK, PassageView{
		Book:    book.ID,
		Chapter: chapter,
		Range:   rng,
		Text:    strings.Join(text, " "),
		Verses:  picked,
	}, resolvedMeta(book, len(picked)))
}

func (s *Server) handleTopics(w http.ResponseWriter, r *http.Request) {
	coll, ok := s.resolveCollection(w, r)
	if !ok {
		return
	}
	docs, err := s.store.Children(r.Context(), ingest.TopicsPath(coll.ID))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ts := make([]topics.Topic, 0, len(docs))
	for _, d := range docs {
		var rec topics.Record
		if err := json.Unmarshal(d.Data, &rec); err != nil {
			s.fail(w, r, errors.NewParse("json", ingest.TopicPath(coll.ID, d.ID), err.Error()))
			return
		}
		ts = append(ts, topics.FromRecord(d.ID, rec))
	}
	topics.Sort(ts)

	var data any = nonNil(topics.Names(ts))
	if v, _ := strconv.ParseBool(r.URL.Query().Get("expand")); v {
		data = ts
	}
	respondMeta(w, http.StatusOK, data, resolvedMeta(coll, len(ts)))
}

func (s *Server) handleTopic(w http.ResponseWriter, r *http.Request) {
	coll, ok := s.resolveCollection(w, r)
	if !ok {
		return
	}
	id := textnorm.FoldDigits(strings.TrimSpace(pathParam(r, "id")))
	var rec topics.Record
	if err := s.store.GetJSON(r.Context(), ingest.TopicPath(coll.ID, id), &rec); err != nil {
		s.fail(w, r, err)
		return
	}
	respondMeta(w, http.StatusOK, topics.FromRecord(id, rec), resolvedMeta(coll, 0))
}

func (s *Server) handleResolveBook(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "name is required")
		return
	}
	ids, err := s.listing(r, ingest.BiblesRoot)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	view := ResolutionView{Requested: name, Candidates: s.resolver.Candidates(name), Directory: len(ids)}
	m, ok := s.resolver.Book(name, resolve.Static(ids))
	if !ok {
		s.unresolved(w, r, "book", name, len(ids))
		return
	}
	view.ID, view.Strategy = m.ID, m.Strategy.String()
	respond(w, http.StatusOK, view)
}

func (s *Server) handleResolveCollection(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	language, version := strings.TrimSpace(q.Get("language")), strings.TrimSpace(q.Get("version"))
	if language == "" && version == "" {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "language or version is required")
		return
	}
	ids, err := s.listing(r, ingest.ReferencesRoot)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	m, ok := s.resolver.Collection(language, version, resolve.Static(ids))
	if !ok {
		s.unresolved(w, r, "collection", language+"/"+version, len(ids))
		return
	}
	respond(w, http.StatusOK, ResolutionView{
		Requested: language + "/" + version,
		ID:        m.ID,
		Strategy:  m.Strategy.String(),
		Directory: len(ids),
	})
}

// listing returns the ids under parent, cached for the configured TTL.
func (s *Server) listing(r *http.Request, parent string) ([]string, error) {
	return s.listings.GetOrLoad(r.Context(), parent, func(ctx context.Context) ([]string, error) {
		return s.store.List(ctx, parent)
	})
}

func (s *Server) resolveBook(w http.ResponseWriter, r *http.Request) (resolve.Match, bool) {
	name := pathParam(r, "book")
	ids, err := s.listing(r, ingest.BiblesRoot)
	if err != nil {
		s.fail(w, r, err)
		return resolve.Match{}, false
	}
	m, ok := s.resolver.Book(name, resolve.Static(ids))
	if !ok {
		s.unresolved(w, r, "book", name, len(ids))
		return resolve.Match{}, false
	}
	return m, true
}

func (s *Server) resolveCollection(w http.ResponseWriter, r *http.Request) (resolve.Match, bool) {
	language, version := pathParam(r, "language"), pathParam(r, "version")
	ids, err := s.listing(r, ingest.ReferencesRoot)
	if err != nil {
		s.fail(w, r, err)
		return resolve.Match{}, false
	}
	m, ok := s.resolver.Collection(language, version, resolve.Static(ids))
	if !ok {
		s.unresolved(w, r, "collection", language+"/"+version, len(ids))
		return resolve.Match{}, false
	}
	return m, true
}

// chapterVerses loads a chapter's verses in numeric order.
func (s *Server) chapterVerses(w http.ResponseWriter, r *http.Request, book, chapter string) ([]VerseView, bool) {
	chapters, err := s.listing(r, chaptersParent(book))
	if err != nil {
		s.fail(w, r, err)
		return nil, false
	}
	if !resolve.Static(chapters).Exists(chapter) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", errors.NewNotFound("chapter", book+" "+chapter).Error())
		return nil, false
	}
	docs, err := s.store.Children(r.Context(), ingest.ChapterPath(book, chapter)+"/verses")
	if err != nil {
		s.fail(w, r, err)
		return nil, false
	}
	verses := make([]VerseView, 0, len(docs))
	for _, d := range docs {
		var rec usfm.VerseRecord
		if err := json.Unmarshal(d.Data, &rec); err != nil {
			s.fail(w, r, errors.NewParse("json", ingest.VersePath(book, chapter, d.ID), err.Error()))
			return nil, false
		}
		verses = append(verses, VerseView{ID: d.ID, Text: rec.Text, BlocksBefore: rec.BlocksBefore})
	}
	sort.SliceStable(verses, func(i, j int) bool {
		a, aok := verseNumber(verses[i].ID)
		b, bok := verseNumber(verses[j].ID)
		if aok != bok {
			return aok
		}
		return a < b
	})
	return verses, true
}

func (s *Server) unresolved(w http.ResponseWriter, r *http.Request, kind, requested string, directory int) {
	logging.ResolutionMiss(r.Context(), kind, requested, directory)
	respondError(w, http.StatusNotFound, "UNRESOLVED", errors.NewUnresolved(kind, requested).Error())
}

// fail maps err onto a status code.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	var verr *errors.ValidationError
	switch {
	case errors.Is(err, errors.ErrNotFound):
		respondError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.As(err, &verr):
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
	default:
		logging.ErrorContext(r.Context(), "request_failed", "path", r.URL.Path, "error", err)
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal error")
	}
}

func chaptersParent(book string) string {
	return ingest.BookPath(book) + "/chapters"
}

// pathParam returns a decoded URL parameter.
func pathParam(r *http.Request, key string) string {
	v := chi.URLParam(r, key)
	if u, err := url.PathUnescape(v); err == nil {
		return u
	}
	return v
}

// parseVerseRange accepts "6" or "6-8" in any digit script and dash glyph.
func parseVerseRange(s string) (lo, hi int, ok bool) {
	s = strings.TrimSpace(textnorm.FoldDigits(citation.UnifyDashes(s)))
	start, end, isRange := strings.Cut(s, "-")
	lo, err := strconv.Atoi(strings.TrimSpace(start))
	if err != nil || lo < 1 {
		return 0, 0, false
	}
	if !isRange {
		return lo, lo, true
	}
	hi, err = strconv.Atoi(strings.TrimSpace(end))
	if err != nil || hi < lo {
		return 0, 0, false
	}
	return lo, hi, true
}

func formatRange(lo, hi int) string {
	if lo == hi {
		return strconv.Itoa(lo)
	}
	return strconv.Itoa(lo) + "-" + strconv.Itoa(hi)
}

// verseNumber returns the leading number of a verse id ("12", "12a").
func verseNumber(id string) (int, bool) {
	id = textnorm.FoldDigits(id)
	end := 0
	for end < len(id) && id[end] >= '0' && id[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(id[:end])
	return n, err == nil
}

func resolvedMeta(m resolve.Match, total int) *APIMeta {
	return &APIMeta{Total: total, Resolved: m.ID, Strategy: m.Strategy.String()}
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

func respond(w http.ResponseWriter, status int, data interface{}) {
	respondMeta(w, status, data, nil)
}

func respondMeta(w http.ResponseWriter, status int, data interface{}, meta *APIMeta) {
	if meta == nil {
		meta = &APIMeta{}
	}
	meta.Timestamp = time.Now().UTC().Format(time.RFC3339)
	writeJSON(w, status, APIResponse{Success: true, Data: data, Meta: meta})
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
		},
		Meta: &APIMeta{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
