package textnorm

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"punctuation only", " -- ,.; ", ""},
		{"english book", "1 Samuel", "1samuel"},
		{"case and spaces", "  Song of Songs ", "songofsongs"},
		{"hyphen", "van-dyck", "vandyck"},
		{"arabic-indic digits", "١ صموئيل", "1صموئيل"},
		{"extended arabic-indic digits", "۲ ملوک", "2ملوک"},
		{"devanagari digits", "१२३", "123"},
		{"fullwidth", "ＪＯＨＮ３", "john3"},
		{"arabic diacritics dropped", "يُوحَنَّا", "يوحنا"},
		{"mixed script", "Psalm ٢٣:١", "psalm231"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"First Samuel",
		"III John",
		"إنجيل متى ٥",
		"ＡＢＣ１２",
		"Straße",
		"Ἰωάννης",
		"sOnG oF sOlOmOn!!",
		"",
	}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize(Normalize(%q)) = %q, want %q", in, twice, once)
		}
	}
}

func TestFoldDigits(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1:6-8", "1:6-8"},
		{"٥:٣–١٢", "5:3–12"},
		{"۱۲:۴", "12:4"},
		{"no digits", "no digits"},
	}
	for _, tt := range tests {
		if got := FoldDigits(tt.input); got != tt.want {
			t.Errorf("FoldDigits(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestIsDigits(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"", false},
		{"12", true},
		{"١٢", true},
		{"1a", false},
		{" 1", false},
	}
	for _, tt := range tests {
		if got := IsDigits(tt.input); got != tt.want {
			t.Errorf("IsDigits(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestWordHelpers(t *testing.T) {
	if got := FirstWord("  1 Samuel  "); got != "1" {
		t.Errorf("FirstWord = %q, want 1", got)
	}
	if got := LastWord("Song of Solomon"); got != "Solomon" {
		t.Errorf("LastWord = %q, want Solomon", got)
	}
	if got := FirstWord(""); got != "" {
		t.Errorf("FirstWord(\"\") = %q, want empty", got)
	}
	if got := TrimLeadingDigits("12samuel"); got != "samuel" {
		t.Errorf("TrimLeadingDigits = %q, want samuel", got)
	}
}
