package ingest

import (
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
)

// Progress receives the committed document count of a running ingestion.
type Progress interface {
	Start(total int, description string)
	Set(committed int)
	Finish()
}

type nopProgress struct{}

func (nopProgress) Start(int, string) {}
func (nopProgress) Set(int)           {}
func (nopProgress) Finish()           {}

// Nop is a Progress that reports nothing.
var Nop Progress = nopProgress{}

// Bar renders ingestion progress as a terminal progress bar.
type Bar struct {
	w   io.Writer
	bar *progressbar.ProgressBar
}

// NewBar creates a progress bar writing to w. A nil w writes to stderr.
func NewBar(w io.Writer) *Bar {
	if w == nil {
		w = os.Stderr
	}
	return &Bar{w: w}
}

// Start begins a bar over total documents.
func (b *Bar) Start(total int, description string) {
	b.bar = progressbar.NewOptions64(
		int64(total),
		progressbar.OptionSetWidth(50),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionSetWriter(b.w),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("docs"),
		progressbar.OptionOnCompletion(func() {
			_, _ = io.WriteString(b.w, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// Set moves the bar to committed documents.
func (b *Bar) Set(committed int) {
	if b.bar != nil {
		_ = b.bar.Set64(int64(committed))
	}
}

// Finish completes the bar.
func (b *Bar) Finish() {
	if b.bar != nil {
		_ = b.bar.Finish()
		b.bar = nil
	}
}
