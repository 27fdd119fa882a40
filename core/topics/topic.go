// Package topics builds topical reference lists from cross-reference
// spreadsheets and heterogeneous JSON, and orders them for display.
package topics

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/FocuswithJustin/synopsis/core/citation"
	"github.com/FocuswithJustin/synopsis/core/textnorm"
)

// Topic is a named list of citations.
type Topic struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	References []citation.Entry `json:"entries"`
	Order      *float64         `json:"order,omitempty"`
	Meta       map[string]any   `json:"meta,omitempty"`
}

// Record is the persisted shape of a topic.
type Record struct {
	Name    string           `json:"name"`
	Entries []citation.Entry `json:"entries"`
	Order   *float64         `json:"order,omitempty"`
	Meta    map[string]any   `json:"meta,omitempty"`
}

// Record returns the persisted shape of the topic.
func (t Topic) Record() Record {
	entries := t.References
	if entries == nil {
		entries = []citation.Entry{}
	}
	return Record{Name: t.Name, Entries: entries, Order: t.Order, Meta: t.Meta}
}

// FromRecord rebuilds a topic from its stored id and record.
func FromRecord(id string, r Record) Topic {
	return Topic{ID: id, Name: r.Name, References: r.Entries, Order: r.Order, Meta: r.Meta}
}

// SortKey returns the value topics are ordered by: the explicit order if
// present, else the id read as a number, else +Inf.
func (t Topic) SortKey() float64 {
	if t.Order != nil && !math.IsNaN(*t.Order) {
		return *t.Order
	}
	if n, err := strconv.ParseFloat(strings.TrimSpace(textnorm.FoldDigits(t.ID)), 64); err == nil && !math.IsNaN(n) && !math.IsInf(n, 0) {
		return n
	}
	return math.Inf(1)
}

// Sort orders topics by SortKey. Ties keep their original order.
func Sort(ts []Topic) {
	sort.SliceStable(ts, func(i, j int) bool {
		return ts[i].SortKey() < ts[j].SortKey()
	})
}

// Names returns the topic names in slice order.
func Names(ts []Topic) []string {
	names := make([]string, len(ts))
	for i, t := range ts {
		names[i] = t.Name
	}
	return names
}
