package topics

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/FocuswithJustin/synopsis/core/citation"
	"github.com/FocuswithJustin/synopsis/core/errors"
)

// GospelBooks is the fixed column order of the four-gospel harmony sheets.
var GospelBooks = []string{"Matthew", "Mark", "Luke", "John"}

// Stats summarises a table conversion.
type Stats struct {
	Rows        int
	Topics      int
	References  int
	SkippedRows []*errors.SkipError
}

// FromRows converts a header row plus data rows into topics. Column 0 is the
// topic label; columns 1..len(books) hold citation cells for books in
// order. When books is nil GospelBooks is used.
//
// Rows with an empty label or without a single parsable reference are
// skipped and counted. Topic ids are 1-based sequence numbers over the kept
// rows.
func FromRows(rows [][]string, books []string) ([]Topic, Stats, error) {
	var stats Stats
	if len(rows) < 2 {
		return nil, stats, errors.NewValidation("rows", "need a header row and at least one data row")
	}
	if books == nil {
		books = GospelBooks
	}

	var out []Topic
	for i, row := range rows[1:] {
		stats.Rows++
		rowLabel := fmt.Sprintf("row %d", i+2)
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			stats.SkippedRows = append(stats.SkippedRows, errors.NewSkip(rowLabel, "empty topic label"))
			continue
		}
		name := strings.TrimSpace(row[0])

		set := citation.NewSet()
		for idx, book := range books {
			col := idx + 1
			if col >= len(row) {
				break
			}
			for _, ref := range citation.ParseCell(row[col]) {
				set.Add(ref.Entry(book))
			}
		}
		if set.Len() == 0 {
			stats.SkippedRows = append(stats.SkippedRows, errors.NewSkip(rowLabel, "no references"))
			continue
		}

		out = append(out, Topic{
			ID:         strconv.Itoa(len(out) + 1),
			Name:       name,
			References: set.Entries(),
		})
		stats.References += set.Len()
	}
	stats.Topics = len(out)
	return out, stats, nil
}

// ParseSourceName derives the language and version of a sheet from its file
// name: "arabic_van-dyck.csv" → ("arabic", "van dyck"). Names that do not
// have exactly two '_'-separated parts yield ("unknown", "unknown").
func ParseSourceName(path string) (language, version string) {
	base := filepath.Base(path)
	for {
		ext := filepath.Ext(base)
		if ext == "" || ext == base {
			break
		}
		base = strings.TrimSuffix(base, ext)
	}
	parts := strings.Split(base, "_")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "unknown", "unknown"
	}
	return strings.ReplaceAll(parts[0], "-", " "), strings.ReplaceAll(parts[1], "-", " ")
}

// CollectionID is the store key of the topic collection for a language and
// version: CollectionID("arabic", "van dyck") == "arabic_van-dyck".
func CollectionID(language, version string) string {
	dash := func(s string) string { return strings.Join(strings.Fields(s), "-") }
	return dash(language) + "_" + dash(version)
}
