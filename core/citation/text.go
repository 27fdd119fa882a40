package citation

import (
	"strings"
	"unicode"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/FocuswithJustin/synopsis/core/textnorm"
)

// textGrammar is the participle grammar for free-text citations.
// Examples: "Matthew 5:3-12", "1 Samuel 3", "متى 5:3", "6:3", "12"
//
// The grammar is deliberately flat; which number is the book prefix and
// which is the chapter is decided after parsing.
//
//nolint:govet // participle grammar tags are not standard struct tags
type textGrammar struct {
	Lead    *string  `@Int?`
	Words   []string `@Word*`
	Chapter *string  `@Int?`
	Sep     *string  `@( ":" | "." )?`
	Start   *string  `@Int?`
	End     *string  `( "-" @Int )?`
}

// textLexer defines the lexer for free-text citations. Words may be in any
// script and may carry an abbreviation dot ("Matt.").
var textLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Word", Pattern: `\p{L}[\p{L}\p{M}'’.]*`},
	{Name: "Punct", Pattern: `[:.\-]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var textParser = participle.MustBuild[textGrammar](
	participle.Lexer(textLexer),
	participle.Elide("Whitespace"),
)

// ParseText parses a free-text citation. The accepted shapes are
// "<book> <chapter>:<verses>", "<book> <chapter>", "<chapter>:<verses>" and a
// bare chapter number; shapes without a book take defaultBook. It reports
// false when the text does not parse or no book can be determined.
func ParseText(s, defaultBook string) (Entry, bool) {
	s = strings.TrimSpace(UnifyDashes(textnorm.FoldDigits(stripFormat(s))))
	if s == "" {
		return Entry{}, false
	}

	parsed, err := textParser.ParseString("", s)
	if err != nil {
		return Entry{}, false
	}

	var e Entry
	switch {
	case len(parsed.Words) == 0:
		// "6:3-5" or "12": the leading number is the chapter.
		if parsed.Lead == nil || parsed.Chapter != nil {
			return Entry{}, false
		}
		e.Book = strings.TrimSpace(defaultBook)
		e.Chapter = *parsed.Lead
	default:
		words := parsed.Words
		if parsed.Lead != nil {
			words = append([]string{*parsed.Lead}, words...)
		}
		e.Book = strings.Join(words, " ")
		if parsed.Chapter != nil {
			e.Chapter = *parsed.Chapter
		}
	}

	if (parsed.Sep == nil) != (parsed.Start == nil) {
		return Entry{}, false
	}
	if parsed.Start != nil {
		if e.Chapter == "" {
			return Entry{}, false
		}
		end := ""
		if parsed.End != nil {
			end = *parsed.End
		}
		e.Verses = verseRange(*parsed.Start, end)
	}

	if e.Book == "" {
		return Entry{}, false
	}
	return e, true
}

// stripFormat drops invisible format characters such as bidi marks.
func stripFormat(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.Is(unicode.Cf, r) {
			return -1
		}
		return r
	}, s)
}

// verseRange renders start/end as a verse token, collapsing equal ends.
func verseRange(start, end string) string {
	start = strings.TrimSpace(start)
	end = strings.TrimSpace(end)
	if end == "" || end == start {
		return start
	}
	if start == "" {
		return end
	}
	return start + "-" + end
}

// normalizeVerses unifies dashes and digits in a textual verse range and
// collapses "6-6" to "6".
func normalizeVerses(s string) string {
	s = strings.Join(strings.Fields(UnifyDashes(textnorm.FoldDigits(s))), "")
	if start, end, ok := strings.Cut(s, "-"); ok {
		return verseRange(start, end)
	}
	return s
}
