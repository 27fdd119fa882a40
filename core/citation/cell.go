package citation

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/FocuswithJustin/synopsis/core/textnorm"
)

// CellRef is one chapter/verses pair taken from a spreadsheet cell.
type CellRef struct {
	Chapter int    `json:"chapter"`
	Verses  string `json:"verses"`
}

// dashReplacer unifies the dash glyphs seen in source sheets to '-'.
var dashReplacer = strings.NewReplacer(
	"\u2010", "-", // hyphen
	"\u2011", "-", // non-breaking hyphen
	"\u2012", "-", // figure dash
	"\u2013", "-", // en dash
	"\u2014", "-", // em dash
	"\u2015", "-", // horizontal bar
	"\u2212", "-", // minus sign
	"\uFE63", "-",
	"\uFF0D", "-",
)

// UnifyDashes replaces every dash variant with a plain hyphen.
func UnifyDashes(s string) string {
	return dashReplacer.Replace(s)
}

// ParseCell splits a cell such as "1:6–8;15–28" into chapter/verses pairs.
//
// Pieces are separated by ';' or ',' (Arabic separators included). A piece
// without ':' continues the chapter of the previous piece, so "1:6-8;15-28"
// yields (1, "6-8") and (1, "15-28"); with no previous chapter it is
// discarded. A piece whose chapter part is not purely digits is discarded.
// Order follows the input and duplicates are kept.
func ParseCell(cell string) []CellRef {
	var out []CellRef
	last := -1
	pieces := strings.FieldsFunc(cell, func(r rune) bool { return r == ';' || r == ',' || r == '؛' || r == '،' })
	for _, piece := range pieces {
		p := strings.TrimSpace(UnifyDashes(piece))
		if p == "" {
			continue
		}
		chapter, verses, ok := strings.Cut(p, ":")
		if !ok {
			if last < 0 || !startsWithDigit(p) {
				continue
			}
			out = append(out, CellRef{Chapter: last, Verses: textnorm.FoldDigits(p)})
			continue
		}
		chapter = strings.TrimSpace(chapter)
		if !textnorm.IsDigits(chapter) {
			continue
		}
		n, err := strconv.Atoi(textnorm.FoldDigits(chapter))
		if err != nil {
			continue
		}
		last = n
		out = append(out, CellRef{Chapter: n, Verses: textnorm.FoldDigits(strings.TrimSpace(verses))})
	}
	return out
}

func startsWithDigit(s string) bool {
	if s == "" {
		return false
	}
	r, _ := utf8.DecodeRuneInString(s)
	_, ok := textnorm.DigitValue(r)
	return ok
}

// Entry converts the pair into an entry for book.
func (c CellRef) Entry(book string) Entry {
	return Entry{
		Book:    book,
		Chapter: strconv.Itoa(c.Chapter),
		Verses:  c.Verses,
	}
}
