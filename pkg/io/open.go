package io

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/gi-bielefeld/scj-carp/pkg/errors"
)

// Format names an input file format.
type Format string

const (
	FormatAuto   Format = ""
	FormatGFA    Format = "gfa"
	FormatUniMoG Format = "unimog"
)

// ParseFormat converts a user-supplied format name. The empty string and
// "auto" select detection by file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return FormatAuto, nil
	case "gfa", "gfa1":
		return FormatGFA, nil
	case "unimog", "ug":
		return FormatUniMoG, nil
	}
	return "", errors.New(errors.ErrCodeInvalidOption, "unknown input format %q (want gfa or unimog)", s)
}

// DetectFormat guesses the format of path from its extension, ignoring a
// trailing compression suffix. Anything that is not UniMoG is read as GFA.
func DetectFormat(path string) Format {
	name := strings.ToLower(filepath.Base(path))
	for _, ext := range []string{".gz", ".zst", ".zstd"} {
		name = strings.TrimSuffix(name, ext)
	}
	switch filepath.Ext(name) {
	case ".unimog", ".ug", ".umg":
		return FormatUniMoG
	}
	return FormatGFA
}

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

type multiReadCloser struct {
	io.Reader
	closers []io.Closer
}

func (m *multiReadCloser) Close() error {
	var err error
	for _, c := range m.closers {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

type zstdCloser struct{ d *zstd.Decoder }

func (z zstdCloser) Close() error {
	z.d.Close()
	return nil
}

// Open opens path for reading, decompressing gzip and zstd content. The path
// "-" reads standard input.
func Open(path string) (io.ReadCloser, error) {
	var f *os.File
	if path == "-" {
		f = os.Stdin
	} else {
		var err error
		f, err = os.Open(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
			}
			return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", path)
		}
	}

	rc, err := Decompress(f)
	if err != nil {
		f.Close()
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decompress %s", path)
	}
	return &multiReadCloser{Reader: rc, closers: []io.Closer{rc, f}}, nil
}

// Decompress wraps r in a gzip or zstd decoder when the stream starts with
// the corresponding magic bytes, and passes it through unchanged otherwise.
// Closing the result does not close r.
func Decompress(r io.Reader) (io.ReadCloser, error) {
	br := bufio.NewReaderSize(r, 64*1024)
	head, _ := br.Peek(len(zstdMagic))

	switch {
	case bytes.HasPrefix(head, gzipMagic):
		gr, err := gzip.NewReader(br)
		if err != nil {
			return nil, err
		}
		return gr, nil
	case bytes.HasPrefix(head, zstdMagic):
		d, err := zstd.NewReader(br)
		if err != nil {
			return nil, err
		}
		return &multiReadCloser{Reader: d, closers: []io.Closer{zstdCloser{d}}}, nil
	}
	return io.NopCloser(br), nil
}
