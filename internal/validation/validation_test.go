package validation

import (
	"strings"
	"testing"

	"github.com/FocuswithJustin/synopsis/core/errors"
)

func TestValidateFilename(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		wantErr bool
	}{
		{"plain", "arabic_van-dyck.csv", false},
		{"unicode", "العربية_فاندايك.csv", false},
		{"empty", "", true},
		{"dot", ".", true},
		{"dotdot", "..", true},
		{"slash", "a/b.csv", true},
		{"backslash", `a\b.csv`, true},
		{"control", "a\x01.csv", true},
		{"too long", strings.Repeat("a", MaxFilenameLength+1), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFilename(tt.file)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFilename(%q) error = %v, wantErr %v", tt.file, err, tt.wantErr)
			}
		})
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
		want FileType
	}{
		{"xz", []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00, 0x00}, FileTypeXZ},
		{"zip", []byte("PK\x03\x04rest"), FileTypeZip},
		{"usfm", []byte("\\id GEN\n\\c 1\n"), FileTypeText},
		{"arabic", []byte("موضوع,متى\n"), FileTypeText},
		{"binary", []byte{0x00, 0x01, 0x02}, FileTypeUnknown},
		{"empty", nil, FileTypeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Detect(tt.buf); got != tt.want {
				t.Errorf("Detect() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCheckContent(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		data    []byte
		wantErr bool
	}{
		{"csv text", "a_b.csv", []byte("Topic,Matthew\n"), false},
		{"empty csv", "a_b.csv", nil, false},
		{"xlsx zip", "a_b.xlsx", []byte("PK\x03\x04...."), false},
		{"xlsx text", "a_b.xlsx", []byte("Topic,Matthew\n"), true},
		{"usfm binary", "GEN.usfm", []byte{0x00, 0xff, 0x00}, true},
		{"unknown extension", "GEN.bin", []byte{0x00}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckContent(tt.file, tt.data)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CheckContent() error = %v, wantErr %v", err, tt.wantErr)
			}
			var verr *errors.ValidationError
			if err != nil && !errors.As(err, &verr) {
				t.Errorf("CheckContent() error = %T, want *ValidationError", err)
			}
		})
	}
}
