package usfm

// Book is one entry of the canonical book table.
type Book struct {
	Code  string // USFM book code (e.g., "1SA")
	Name  string // English name (e.g., "1 Samuel")
	Order int
}

// Books lists the 66 protestant-canon books in canonical order.
var Books = []Book{
	{"GEN", "Genesis", 1}, {"EXO", "Exodus", 2}, {"LEV", "Leviticus", 3},
	{"NUM", "Numbers", 4}, {"DEU", "Deuteronomy", 5}, {"JOS", "Joshua", 6},
	{"JDG", "Judges", 7}, {"RUT", "Ruth", 8}, {"1SA", "1 Samuel", 9},
	{"2SA", "2 Samuel", 10}, {"1KI", "1 Kings", 11}, {"2KI", "2 Kings", 12},
	{"1CH", "1 Chronicles", 13}, {"2CH", "2 Chronicles", 14}, {"EZR", "Ezra", 15},
	{"NEH", "Nehemiah", 16}, {"EST", "Esther", 17}, {"JOB", "Job", 18},
	{"PSA", "Psalms", 19}, {"PRO", "Proverbs", 20}, {"ECC", "Ecclesiastes", 21},
	{"SNG", "Song of Solomon", 22}, {"ISA", "Isaiah", 23}, {"JER", "Jeremiah", 24},
	{"LAM", "Lamentations", 25}, {"EZK", "Ezekiel", 26}, {"DAN", "Daniel", 27},
	{"HOS", "Hosea", 28}, {"JOL", "Joel", 29}, {"AMO", "Amos", 30},
	{"OBA", "Obadiah", 31}, {"JON", "Jonah", 32}, {"MIC", "Micah", 33},
	{"NAM", "Nahum", 34}, {"HAB", "Habakkuk", 35}, {"ZEP", "Zephaniah", 36},
	{"HAG", "Haggai", 37}, {"ZEC", "Zechariah", 38}, {"MAL", "Malachi", 39},
	{"MAT", "Matthew", 40}, {"MRK", "Mark", 41}, {"LUK", "Luke", 42},
	{"JHN", "John", 43}, {"ACT", "Acts", 44}, {"ROM", "Romans", 45},
	{"1CO", "1 Corinthians", 46}, {"2CO", "2 Corinthians", 47}, {"GAL", "Galatians", 48},
	{"EPH", "Ephesians", 49}, {"PHP", "Philippians", 50}, {"COL", "Colossians", 51},
	{"1TH", "1 Thessalonians", 52}, {"2TH", "2 Thessalonians", 53}, {"1TI", "1 Timothy", 54},
	{"2TI", "2 Timothy", 55}, {"TIT", "Titus", 56}, {"PHM", "Philemon", 57},
	{"HEB", "Hebrews", 58}, {"JAS", "James", 59}, {"1PE", "1 Peter", 60},
	{"2PE", "2 Peter", 61}, {"1JN", "1 John", 62}, {"2JN", "2 John", 63},
	{"3JN", "3 John", 64}, {"JUD", "Jude", 65}, {"REV", "Revelation", 66},
}

// BookName returns the English name for a USFM book code.
func BookName(code string) (string, bool) {
	for _, b := range Books {
		if b.Code == code {
			return b.Name, true
		}
	}
	return "", false
}
