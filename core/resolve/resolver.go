// Package resolve maps user-supplied book names and language/version pairs
// to the identifiers actually present in a directory.
//
// Strategies are tried strictly in order and the first hit wins: exact
// identifier, curated override, normalized candidate equality, first-word
// prefix, then token containment. Containment is the weakest strategy and is
// only reached when everything stronger has failed.
package resolve

import (
	"strings"

	"github.com/FocuswithJustin/synopsis/core/textnorm"
	"github.com/FocuswithJustin/synopsis/core/topics"
)

// Strategy names the rule that produced a match.
type Strategy int

const (
	StrategyNone Strategy = iota
	StrategyExact
	StrategyOverride
	StrategyCandidate
	StrategyPrefix
	StrategyContainment
)

func (s Strategy) String() string {
	switch s {
	case StrategyExact:
		return "exact"
	case StrategyOverride:
		return "override"
	case StrategyCandidate:
		return "candidate"
	case StrategyPrefix:
		return "prefix"
	case StrategyContainment:
		return "containment"
	default:
		return "none"
	}
}

// Match is a resolved identifier.
type Match struct {
	ID       string   `json:"id"`
	Strategy Strategy `json:"-"`
}

// Directory is the set of identifiers available in one scope.
type Directory interface {
	Exists(id string) bool
	List() []string
}

// Static is a pre-fetched directory listing.
type Static []string

// Exists reports whether id is listed.
func (s Static) Exists(id string) bool {
	for _, v := range s {
		if v == id {
			return true
		}
	}
	return false
}

// List returns the listed identifiers in order.
func (s Static) List() []string {
	return append([]string(nil), s...)
}

type prefixWord struct {
	word  string
	digit string
}

// Ordinal words and Roman numerals that may lead a numbered book name.
// Roman numerals are listed longest first so the strongest twin comes first
// in its tier.
var (
	ordinals = []prefixWord{{"first", "1"}, {"second", "2"}, {"third", "3"}, {"fourth", "4"}}
	numerals = []prefixWord{
		{"viii", "8"}, {"vii", "7"}, {"vi", "6"}, {"iv", "4"},
		{"v", "5"}, {"iii", "3"}, {"ii", "2"}, {"i", "1"},
	}
	prefixes = append(append([]prefixWord(nil), ordinals...), numerals...)
)

// Option configures a Resolver.
type Option func(*Resolver)

// WithMinContainment skips containment matches on tokens shorter than n
// runes. Zero disables the gate.
func WithMinContainment(n int) Option {
	return func(r *Resolver) {
		r.minContainment = n
	}
}

// Resolver resolves names against directories. It holds no mutable state
// and is safe for concurrent use.
type Resolver struct {
	tables         *Tables
	minContainment int
}

// New creates a Resolver over tables. A nil tables uses NewTables.
func New(tables *Tables, opts ...Option) *Resolver {
	if tables == nil {
		tables = NewTables()
	}
	r := &Resolver{tables: tables}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Tables returns the lookup tables the resolver uses.
func (r *Resolver) Tables() *Tables {
	return r.tables
}

// Candidates returns the candidate tokens generated for a request, strongest
// tier first. The first tier holds the normalized request, its
// ordinal/numeral digit twins and their synonyms. The second holds forms
// with the leading number stripped and their synonyms.
func (r *Resolver) Candidates(requested string) [][]string {
	n := textnorm.Normalize(requested)
	if n == "" {
		return nil
	}

	direct := []string{n}
	var stripped []string
	if s := textnorm.TrimLeadingDigits(n); s != n {
		stripped = append(stripped, s)
	}
	for _, p := range prefixes {
		if rest, ok := strings.CutPrefix(n, p.word); ok && rest != "" {
			direct = append(direct, p.digit+rest)
			stripped = append(stripped, rest)
		}
	}

	g := r.tables.Synonyms
	first := g.Expand(direct)
	seen := make(map[string]bool, len(first))
	for _, t := range first {
		seen[t] = true
	}
	var second []string
	for _, t := range g.Expand(stripped) {
		if !seen[t] {
			second = append(second, t)
		}
	}
	if len(second) == 0 {
		return [][]string{first}
	}
	return [][]string{first, second}
}

// Book resolves a requested book name against dir.
func (r *Resolver) Book(requested string, dir Directory) (Match, bool) {
	if strings.TrimSpace(requested) == "" || dir == nil {
		return Match{}, false
	}
	if dir.Exists(requested) {
		return Match{ID: requested, Strategy: StrategyExact}, true
	}
	if id, ok := r.tables.Override(textnorm.Normalize(requested)); ok && dir.Exists(id) {
		return Match{ID: id, Strategy: StrategyOverride}, true
	}

	tiers := r.Candidates(requested)
	if len(tiers) == 0 {
		return Match{}, false
	}
	ids := r.listing(dir.List(), r.bookTokens)

	for _, tier := range tiers {
		set := tokenSet(tier)
		for _, e := range ids {
			if set[e.norm] {
				return Match{ID: e.id, Strategy: StrategyCandidate}, true
			}
		}
	}
	for _, tier := range tiers {
		set := tokenSet(tier)
		for _, e := range ids {
			if set[e.first] {
				return Match{ID: e.id, Strategy: StrategyPrefix}, true
			}
		}
	}
	for _, tier := range tiers {
		if id, ok := r.contains(tier, ids); ok {
			return Match{ID: id, Strategy: StrategyContainment}, true
		}
	}
	return Match{}, false
}

// Collection resolves a language/version pair to a topic collection id in
// dir.
func (r *Resolver) Collection(language, version string, dir Directory) (Match, bool) {
	if dir == nil || (strings.TrimSpace(language) == "" && strings.TrimSpace(version) == "") {
		return Match{}, false
	}
	if id := topics.CollectionID(language, version); dir.Exists(id) {
		return Match{ID: id, Strategy: StrategyExact}, true
	}

	lang := textnorm.Normalize(language)
	ver := textnorm.Normalize(version)
	joined := lang + ver
	ids := r.listing(dir.List(), r.collectionTokens)
	for _, e := range ids {
		if e.norm == joined {
			return Match{ID: e.id, Strategy: StrategyCandidate}, true
		}
	}

	g := r.tables.Synonyms
	tiers := [][]string{
		g.Expand([]string{joined}),
		g.Expand([]string{stripDigits(joined)}),
		g.Expand([]string{lang}),
		g.Expand([]string{ver}),
	}
	for _, tier := range tiers {
		if id, ok := r.contains(tier, ids); ok {
			return Match{ID: id, Strategy: StrategyContainment}, true
		}
	}
	return Match{}, false
}

type listed struct {
	id     string
	norm   string
	first  string
	tokens []string
}

func (r *Resolver) listing(ids []string, tokens func(string) []string) []listed {
	out := make([]listed, 0, len(ids))
	for _, id := range ids {
		out = append(out, listed{
			id:     id,
			norm:   textnorm.Normalize(id),
			first:  textnorm.Normalize(textnorm.FirstWord(id)),
			tokens: tokens(id),
		})
	}
	return out
}

// contains runs an equality pass and then a substring pass of candidates
// against each listed id's tokens, returning the first listed id that hits.
func (r *Resolver) contains(candidates []string, ids []listed) (string, bool) {
	set := tokenSet(candidates)
	for _, e := range ids {
		for _, tok := range e.tokens {
			if set[tok] {
				return e.id, true
			}
		}
	}
	for _, e := range ids {
		for _, tok := range e.tokens {
			if !r.longEnough(tok) {
				continue
			}
			for _, c := range candidates {
				if !r.longEnough(c) {
					continue
				}
				if strings.Contains(tok, c) || strings.Contains(c, tok) {
					return e.id, true
				}
			}
		}
	}
	return "", false
}

func (r *Resolver) longEnough(tok string) bool {
	if tok == "" {
		return false
	}
	return r.minContainment <= 0 || len([]rune(tok)) >= r.minContainment
}

// bookTokens returns the whole id, its first word, its last word and, for
// multi-word ids, everything after the first word, all normalized and
// expanded through the synonym graph.
func (r *Resolver) bookTokens(id string) []string {
	words := textnorm.Words(id)
	toks := []string{textnorm.Normalize(id)}
	if len(words) > 0 {
		toks = append(toks, textnorm.Normalize(words[0]), textnorm.Normalize(words[len(words)-1]))
	}
	if len(words) > 1 {
		toks = append(toks, textnorm.Normalize(strings.Join(words[1:], " ")))
	}
	return r.tables.Synonyms.Expand(toks)
}

// collectionTokens returns the normalized id plus every pairing of a
// synonym of its language part with a synonym of its version part.
func (r *Resolver) collectionTokens(id string) []string {
	g := r.tables.Synonyms
	whole := textnorm.Normalize(id)
	lang, ver, ok := strings.Cut(id, "_")
	if !ok {
		return g.Expand([]string{whole})
	}
	toks := []string{whole}
	langs := g.Expand([]string{textnorm.Normalize(lang)})
	vers := g.Expand([]string{textnorm.Normalize(strings.ReplaceAll(ver, "-", " "))})
	for _, l := range langs {
		for _, v := range vers {
			toks = append(toks, l+v)
		}
	}
	return g.Expand(toks)
}

func tokenSet(tokens []string) map[string]bool {
	set := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		set[t] = true
	}
	return set
}

func stripDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return -1
		}
		return r
	}, s)
}
