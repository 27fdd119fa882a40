package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestMalformedDocumentError(t *testing.T) {
	tests := []struct {
		name    string
		err     *MalformedDocumentError
		wantMsg string
	}{
		{
			name:    "with line",
			err:     NewMalformed(4, "v", "verse before any chapter"),
			wantMsg: `malformed document at line 4: \v: verse before any chapter`,
		},
		{
			name:    "without line",
			err:     &MalformedDocumentError{Message: "empty"},
			wantMsg: "malformed document: empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
			if !errors.Is(tt.err, ErrMalformedDocument) {
				t.Errorf("errors.Is(%v, ErrMalformedDocument) = false", tt.err)
			}
		})
	}
}

func TestUnresolvedError(t *testing.T) {
	err := NewUnresolved("book", "Hezekiah")
	if got, want := err.Error(), "book not found: Hezekiah"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !Is(err, ErrUnresolved) {
		t.Error("Is(err, ErrUnresolved) = false")
	}
	if Is(err, ErrNotFound) {
		t.Error("unresolved entity should not match ErrNotFound")
	}
}

func TestSkipError(t *testing.T) {
	tests := []struct {
		err     *SkipError
		wantMsg string
	}{
		{NewSkip("row 3", "no references"), "skipped row 3: no references"},
		{NewSkip("", "empty book"), "skipped: empty book"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.wantMsg {
			t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
		}
		if !errors.Is(tt.err, ErrSkipped) {
			t.Errorf("errors.Is(%v, ErrSkipped) = false", tt.err)
		}
	}
}

func TestNotFoundError(t *testing.T) {
	tests := []struct {
		name     string
		err      *NotFoundError
		wantMsg  string
		wantBase error
	}{
		{
			name:     "with ID",
			err:      &NotFoundError{Resource: "topic", ID: "references/arabic_van-dyck/topics/7"},
			wantMsg:  "topic not found: references/arabic_van-dyck/topics/7",
			wantBase: ErrNotFound,
		},
		{
			name:     "without ID",
			err:      &NotFoundError{Resource: "chapter"},
			wantMsg:  "chapter not found",
			wantBase: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
			if got := tt.err.Unwrap(); !errors.Is(got, tt.wantBase) {
				t.Errorf("Unwrap() = %v, want %v", got, tt.wantBase)
			}
		})
	}

	t.Run("with underlying error", func(t *testing.T) {
		underlyingErr := fmt.Errorf("disk error")
		err := &NotFoundError{Resource: "verse", ID: "1", Err: underlyingErr}
		if got := err.Unwrap(); got != underlyingErr {
			t.Errorf("Unwrap() = %v, want %v", got, underlyingErr)
		}
	})
}

func TestValidationAndParseErrors(t *testing.T) {
	v := NewValidation("rows", "need a header row and one data row")
	if got, want := v.Error(), "validation failed for rows: need a header row and one data row"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !Is(v, ErrInvalidInput) {
		t.Error("ValidationError should unwrap to ErrInvalidInput")
	}

	p := NewParse("ODS", "topics.ods", "missing content.xml")
	if got, want := p.Error(), "failed to parse ODS at topics.ods: missing content.xml"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !Is(p, ErrInvalidInput) {
		t.Error("ParseError should unwrap to ErrInvalidInput")
	}
}

func TestIOError(t *testing.T) {
	base := fmt.Errorf("unexpected EOF")
	err := NewIO("decompress", "JHN.usfm.xz", base)
	if got, want := err.Error(), "failed to decompress JHN.usfm.xz: unexpected EOF"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, base) {
		t.Error("IOError should unwrap to the underlying error")
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil, "context") != nil {
		t.Error("Wrap(nil) should return nil")
	}
	if Wrapf(nil, "context %d", 1) != nil {
		t.Error("Wrapf(nil) should return nil")
	}

	err := Wrapf(NewMalformed(2, "v", "x"), "parse %s", "JHN")
	if !Is(err, ErrMalformedDocument) {
		t.Error("wrapped error lost its sentinel")
	}
	var target *MalformedDocumentError
	if !As(err, &target) {
		t.Fatal("As() = false, want true")
	}
	if target.Line != 2 {
		t.Errorf("Line = %d, want 2", target.Line)
	}
}
