package usfm

// Document is the result of one full parse of one USFM document.
type Document struct {
	BookID   string     `json:"book_id"`
	Chapters []*Chapter `json:"chapters"`
}

// Chapter holds the verses of one chapter in document order.
type Chapter struct {
	ID     string   `json:"id"`
	Verses []*Verse `json:"verses"`
}

// Verse is a verse's running text plus the blocks that appeared between the
// previous verse and this one.
type Verse struct {
	ID           string  `json:"id"`
	Text         string  `json:"text"`
	BlocksBefore []Block `json:"blocks_before"`
}

// Block is a heading, paragraph break or poetry line. Marker is the USFM
// tag without its backslash (e.g., "s1", "q2", "p").
type Block struct {
	Marker string `json:"marker"`
	Text   string `json:"text,omitempty"`
}

// HasText reports whether the block carries text.
func (b Block) HasText() bool {
	return b.Text != ""
}

// VerseRecord is the persisted shape of a verse.
type VerseRecord struct {
	Text         string  `json:"text"`
	BlocksBefore []Block `json:"blocks_before"`
}

// Record returns the persisted shape of the verse.
func (v *Verse) Record() VerseRecord {
	blocks := v.BlocksBefore
	if blocks == nil {
		blocks = []Block{}
	}
	return VerseRecord{Text: v.Text, BlocksBefore: blocks}
}

// Chapter returns the chapter with the given label.
func (d *Document) Chapter(id string) *Chapter {
	for _, c := range d.Chapters {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// VerseCount returns the number of verses across all chapters.
func (d *Document) VerseCount() int {
	n := 0
	for _, c := range d.Chapters {
		n += len(c.Verses)
	}
	return n
}

// Verse returns the verse with the given number.
func (c *Chapter) Verse(id string) *Verse {
	for _, v := range c.Verses {
		if v.ID == id {
			return v
		}
	}
	return nil
}

// startChapter begins a chapter. A repeated label resets the existing
// chapter in place.
func (d *Document) startChapter(id string) *Chapter {
	if c := d.Chapter(id); c != nil {
		c.Verses = []*Verse{}
		return c
	}
	c := &Chapter{ID: id, Verses: []*Verse{}}
	d.Chapters = append(d.Chapters, c)
	return c
}

// putVerse appends a verse, or overwrites in place a verse with the same
// number.
func (c *Chapter) putVerse(v *Verse) {
	for i, existing := range c.Verses {
		if existing.ID == v.ID {
			c.Verses[i] = v
			return
		}
	}
	c.Verses = append(c.Verses, v)
}
