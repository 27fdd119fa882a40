package ingest

import (
	"bytes"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"
	"github.com/zeebo/blake3"

	"github.com/FocuswithJustin/synopsis/core/errors"
	"github.com/FocuswithJustin/synopsis/internal/validation"
)

// Source is one input file read fully into memory.
type Source struct {
	// Name is the base file name with any .xz suffix removed.
	Name string
	Data []byte
	// Hash is the hex BLAKE3-256 digest of Data.
	Hash string
}

// Size returns the decompressed size in bytes.
func (s *Source) Size() int64 {
	return int64(len(s.Data))
}

// Reader returns a fresh reader over the source bytes.
func (s *Source) Reader() io.Reader {
	return bytes.NewReader(s.Data)
}

// ReadFile reads path, decompressing it when the name ends in .xz.
func ReadFile(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}
	defer f.Close()
	return ReadSource(filepath.Base(path), f)
}

// ReadSource reads r under name. Content is decompressed when name ends in
// .xz or starts with the xz magic, and must match what name's extension
// claims.
func ReadSource(name string, r io.Reader) (*Source, error) {
	if err := validation.ValidateFilename(name); err != nil {
		return nil, err
	}
	data, err := readLimited(name, r)
	if err != nil {
		return nil, err
	}

	base, suffixed := cutSuffixFold(name, ".xz")
	if suffixed || validation.Detect(head(data)) == validation.FileTypeXZ {
		xr, err := xz.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, errors.NewIO("decompress", name, err)
		}
		if data, err = readLimited(name, xr); err != nil {
			return nil, err
		}
		name = base
	}

	if err := validation.CheckContent(name, data); err != nil {
		return nil, err
	}
	return &Source{Name: name, Data: data, Hash: Hash(data)}, nil
}

func readLimited(name string, r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, validation.MaxSourceSize+1))
	if err != nil {
		return nil, errors.NewIO("read", name, err)
	}
	if len(data) > validation.MaxSourceSize {
		return nil, errors.NewValidation("size", name+" exceeds the source size limit")
	}
	return data, nil
}

func head(data []byte) []byte {
	if len(data) > 512 {
		return data[:512]
	}
	return data
}

// Hash returns the hex BLAKE3-256 digest of data.
func Hash(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func cutSuffixFold(s, suffix string) (string, bool) {
	if len(s) < len(suffix) || !strings.EqualFold(s[len(s)-len(suffix):], suffix) {
		return s, false
	}
	return s[:len(s)-len(suffix)], true
}
