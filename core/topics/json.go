package topics

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/FocuswithJustin/synopsis/core/citation"
	"github.com/FocuswithJustin/synopsis/core/errors"
)

var (
	idKeys         = []string{"id", "ID", "number", "n"}
	nameKeys       = []string{"name", "Name", "title", "topic", "label"}
	orderKeys      = []string{"order", "position", "sort", "index"}
	referenceKeys  = []string{"references", "entries", "refs", "citations"}
	collectionKeys = []string{"topics", "items", "data"}
)

// JSONStats summarises a JSON topic import.
type JSONStats struct {
	Topics     int
	References int
	Duplicates int
	Skipped    []*errors.SkipError
}

// FromJSON reads topics from a JSON document. The document is either a list
// of topic objects or an object holding such a list under "topics". Each
// topic's references may use any citation shape citation.Normalize accepts.
// Keys that are not recognised are kept in Topic.Meta. Topics without a name
// are skipped; topics without an id get their 1-based position.
func FromJSON(r io.Reader) ([]Topic, JSONStats, error) {
	var stats JSONStats

	dec := json.NewDecoder(r)
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, stats, errors.NewParse("json", "", err.Error())
	}

	list, ok := topicList(raw)
	if !ok {
		return nil, stats, errors.NewValidation("topics", "expected a list of topics")
	}

	var out []Topic
	for i, item := range list {
		source := fmt.Sprintf("$[%d]", i)
		obj, ok := item.(map[string]any)
		if !ok {
			stats.Skipped = append(stats.Skipped, errors.NewSkip(source, "topic is not an object"))
			continue
		}

		t := Topic{
			ID:   lookup(obj, idKeys),
			Name: lookup(obj, nameKeys),
		}
		if t.Name == "" {
			stats.Skipped = append(stats.Skipped, errors.NewSkip(source, "topic has no name"))
			continue
		}
		if t.ID == "" {
			t.ID = strconv.Itoa(i + 1)
		}
		if s := lookup(obj, orderKeys); s != "" {
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				t.Order = &f
			}
		}

		for _, k := range referenceKeys {
			refs, ok := obj[k]
			if !ok {
				continue
			}
			entries, rs := citation.Normalize(refs, "")
			t.References = entries
			stats.Duplicates += rs.Duplicates
			for _, s := range rs.Skipped {
				stats.Skipped = append(stats.Skipped, errors.NewSkip(source+"."+k+strings.TrimPrefix(s.Source, "$"), s.Reason))
			}
			break
		}
		if t.References == nil {
			t.References = []citation.Entry{}
		}

		t.Meta = meta(obj)
		stats.References += len(t.References)
		out = append(out, t)
	}

	stats.Topics = len(out)
	return out, stats, nil
}

func topicList(raw any) ([]any, bool) {
	switch v := raw.(type) {
	case []any:
		return v, true
	case map[string]any:
		for _, k := range collectionKeys {
			if list, ok := v[k].([]any); ok {
				return list, true
			}
		}
	}
	return nil, false
}

func lookup(obj map[string]any, keys []string) string {
	for _, k := range keys {
		switch v := obj[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case json.Number:
			return v.String()
		}
	}
	return ""
}

func meta(obj map[string]any) map[string]any {
	known := make(map[string]bool)
	for _, keys := range [][]string{idKeys, nameKeys, orderKeys, referenceKeys} {
		for _, k := range keys {
			known[k] = true
		}
	}
	var m map[string]any
	for k, v := range obj {
		if known[k] {
			continue
		}
		if m == nil {
			m = make(map[string]any)
		}
		m[k] = v
	}
	return m
}
