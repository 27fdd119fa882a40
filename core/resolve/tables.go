package resolve

import (
	"github.com/FocuswithJustin/synopsis/core/textnorm"
	"github.com/FocuswithJustin/synopsis/core/usfm"
)

// Tables holds the curated lookup data used by a Resolver.
type Tables struct {
	Synonyms  *Graph
	overrides map[string]string
}

// englishSynonyms pairs alternative English spellings and common
// abbreviations with the canonical book names.
var englishSynonyms = [][2]string{
	{"Psalm", "Psalms"},
	{"Ps", "Psalms"},
	{"Song", "Song of Solomon"},
	{"Song of Songs", "Song of Solomon"},
	{"Canticles", "Song of Solomon"},
	{"Canticle of Canticles", "Song of Solomon"},
	{"Revelations", "Revelation"},
	{"Apocalypse", "Revelation"},
	{"Revelation of John", "Revelation"},
	{"Qoheleth", "Ecclesiastes"},
	{"Eccl", "Ecclesiastes"},
	{"Acts of the Apostles", "Acts"},
	{"Gen", "Genesis"},
	{"Ex", "Exodus"},
	{"Exod", "Exodus"},
	{"Lev", "Leviticus"},
	{"Deut", "Deuteronomy"},
	{"Josh", "Joshua"},
	{"Judg", "Judges"},
	{"Prov", "Proverbs"},
	{"Isa", "Isaiah"},
	{"Jer", "Jeremiah"},
	{"Ezek", "Ezekiel"},
	{"Matt", "Matthew"},
	{"Mt", "Matthew"},
	{"Mk", "Mark"},
	{"Lk", "Luke"},
	{"Jn", "John"},
	{"Rom", "Romans"},
	{"Gal", "Galatians"},
	{"Eph", "Ephesians"},
	{"Phil", "Philippians"},
	{"Col", "Colossians"},
	{"Philem", "Philemon"},
	{"Heb", "Hebrews"},
	{"Jas", "James"},
	{"Rev", "Revelation"},
}

// arabicBooks pairs Van Dyck book names with the canonical English names.
var arabicBooks = [][2]string{
	{"تكوين", "Genesis"}, {"سفر التكوين", "Genesis"},
	{"خروج", "Exodus"}, {"لاويين", "Leviticus"}, {"عدد", "Numbers"},
	{"تثنية", "Deuteronomy"}, {"يشوع", "Joshua"}, {"قضاة", "Judges"},
	{"راعوث", "Ruth"},
	{"صموئيل الأول", "1 Samuel"}, {"صموئيل الثاني", "2 Samuel"},
	{"ملوك الأول", "1 Kings"}, {"ملوك الثاني", "2 Kings"},
	{"أخبار الأيام الأول", "1 Chronicles"}, {"أخبار الأيام الثاني", "2 Chronicles"},
	{"عزرا", "Ezra"}, {"نحميا", "Nehemiah"}, {"أستير", "Esther"},
	{"أيوب", "Job"},
	{"مزامير", "Psalms"}, {"مزمور", "Psalms"},
	{"أمثال", "Proverbs"}, {"الجامعة", "Ecclesiastes"},
	{"نشيد الأنشاد", "Song of Solomon"},
	{"إشعياء", "Isaiah"}, {"إرميا", "Jeremiah"}, {"مراثي إرميا", "Lamentations"},
	{"حزقيال", "Ezekiel"}, {"دانيال", "Daniel"}, {"هوشع", "Hosea"},
	{"يوئيل", "Joel"}, {"عاموس", "Amos"}, {"عوبديا", "Obadiah"},
	{"يونان", "Jonah"}, {"ميخا", "Micah"}, {"ناحوم", "Nahum"},
	{"حبقوق", "Habakkuk"}, {"صفنيا", "Zephaniah"}, {"حجي", "Haggai"},
	{"زكريا", "Zechariah"}, {"ملاخي", "Malachi"},
	{"متى", "Matthew"}, {"مرقس", "Mark"}, {"لوقا", "Luke"}, {"يوحنا", "John"},
	{"أعمال الرسل", "Acts"}, {"أعمال", "Acts"},
	{"رومية", "Romans"},
	{"كورنثوس الأولى", "1 Corinthians"}, {"كورنثوس الثانية", "2 Corinthians"},
	{"غلاطية", "Galatians"}, {"أفسس", "Ephesians"}, {"فيلبي", "Philippians"},
	{"كولوسي", "Colossians"},
	{"تسالونيكي الأولى", "1 Thessalonians"}, {"تسالونيكي الثانية", "2 Thessalonians"},
	{"تيموثاوس الأولى", "1 Timothy"}, {"تيموثاوس الثانية", "2 Timothy"},
	{"تيطس", "Titus"}, {"فليمون", "Philemon"}, {"العبرانيين", "Hebrews"},
	{"يعقوب", "James"},
	{"بطرس الأولى", "1 Peter"}, {"بطرس الثانية", "2 Peter"},
	{"يوحنا الأولى", "1 John"}, {"يوحنا الثانية", "2 John"}, {"يوحنا الثالثة", "3 John"},
	{"يهوذا", "Jude"},
	{"رؤيا يوحنا", "Revelation"}, {"رؤيا", "Revelation"},
}

// languageNames pairs language names as they appear in collection ids.
var languageNames = [][2]string{
	{"العربية", "arabic"}, {"عربي", "arabic"},
	{"الإنجليزية", "english"}, {"إنجليزي", "english"},
	{"van dyck", "vandyke"}, {"van dyck", "svd"},
	{"king james", "kjv"}, {"king james version", "kjv"},
}

// NewTables builds the curated synonym graph and override table: English
// spellings and abbreviations, USFM codes, Arabic book names and language
// names. Every token reachable from a canonical book name overrides to that
// book's USFM code.
func NewTables() *Tables {
	var pairs [][2]string
	pairs = append(pairs, englishSynonyms...)
	pairs = append(pairs, arabicBooks...)
	pairs = append(pairs, languageNames...)
	for _, b := range usfm.Books {
		pairs = append(pairs, [2]string{b.Code, b.Name})
	}
	g := NewGraph(pairs)

	overrides := make(map[string]string)
	for _, b := range usfm.Books {
		for _, tok := range g.Expand([]string{textnorm.Normalize(b.Name), textnorm.Normalize(b.Code)}) {
			if _, taken := overrides[tok]; !taken {
				overrides[tok] = b.Code
			}
		}
	}
	return &Tables{Synonyms: g, overrides: overrides}
}

// NewCustomTables builds tables from caller-supplied synonym pairs and
// overrides. Override keys are normalized.
func NewCustomTables(pairs [][2]string, overrides map[string]string) *Tables {
	t := &Tables{Synonyms: NewGraph(pairs), overrides: make(map[string]string, len(overrides))}
	for k, v := range overrides {
		if n := textnorm.Normalize(k); n != "" {
			t.overrides[n] = v
		}
	}
	return t
}

// Override returns the canonical id a normalized token is pinned to.
func (t *Tables) Override(token string) (string, bool) {
	if t == nil {
		return "", false
	}
	id, ok := t.overrides[token]
	return id, ok
}
