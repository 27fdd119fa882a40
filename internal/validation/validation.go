// Package validation checks ingestion inputs before they are parsed: file
// names, size limits and whether the content matches what the extension
// claims.
package validation

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/FocuswithJustin/synopsis/core/errors"
)

// Limits on ingestion inputs.
const (
	// MaxSourceSize is the largest accepted source after decompression (256 MB).
	MaxSourceSize = 256 << 20
	// MaxFilenameLength is the maximum allowed filename length.
	MaxFilenameLength = 255
)

// FileType is a content family recognised by its leading bytes.
type FileType string

const (
	FileTypeXZ      FileType = "xz"
	FileTypeZip     FileType = "zip"
	FileTypeText    FileType = "text"
	FileTypeUnknown FileType = "unknown"
)

var magicBytes = []struct {
	fileType FileType
	magic    []byte
}{
	{FileTypeXZ, []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}},
	{FileTypeZip, []byte{0x50, 0x4b, 0x03, 0x04}},
}

// ValidateFilename rejects empty, reserved and over-long names and names
// carrying path separators or control characters.
func ValidateFilename(filename string) error {
	switch {
	case filename == "":
		return errors.NewValidation("filename", "cannot be empty")
	case len(filename) > MaxFilenameLength:
		return errors.NewValidation("filename", fmt.Sprintf("longer than %d bytes", MaxFilenameLength))
	case filename == "." || filename == "..":
		return errors.NewValidation("filename", "reserved name")
	case strings.ContainsAny(filename, "/\\"):
		return errors.NewValidation("filename", "path separator not allowed")
	}
	for _, r := range filename {
		if unicode.IsControl(r) {
			return errors.NewValidation("filename", "control character not allowed")
		}
	}
	return nil
}

// Detect returns the content family of a buffer's leading bytes.
func Detect(buf []byte) FileType {
	for _, sig := range magicBytes {
		if bytes.HasPrefix(buf, sig.magic) {
			return sig.fileType
		}
	}
	if isLikelyText(buf) {
		return FileTypeText
	}
	return FileTypeUnknown
}

// expected maps a source extension to the content family it must have.
func expected(filename string) FileType {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xz":
		return FileTypeXZ
	case ".xlsx", ".ods":
		return FileTypeZip
	case ".usfm", ".sfm", ".csv", ".json", ".txt":
		return FileTypeText
	default:
		return FileTypeUnknown
	}
}

// CheckContent verifies that data matches the type implied by filename's
// extension. Unknown extensions pass.
func CheckContent(filename string, data []byte) error {
	want := expected(filename)
	if want == FileTypeUnknown {
		return nil
	}
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	got := Detect(head)
	if want == FileTypeText && len(data) == 0 {
		return nil
	}
	if got != want {
		return errors.NewValidation("content", fmt.Sprintf("%s: extension suggests %s but content is %s", filename, want, got))
	}
	return nil
}

// isLikelyText reports whether buf looks like UTF-8 text: no NUL bytes and
// at most 5% ASCII control characters.
func isLikelyText(buf []byte) bool {
	if len(buf) == 0 || bytes.IndexByte(buf, 0) != -1 {
		return false
	}
	printable, control := 0, 0
	for _, b := range buf {
		switch {
		case b == '\t' || b == '\n' || b == '\r':
			printable++
		case b < 0x20 || b == 0x7f:
			control++
		default:
			printable++
		}
	}
	return float64(printable)/float64(printable+control) > 0.95
}
