package storage

import (
	"bytes"
	"compress/gzip"
	"compress/lzw"
	"fmt"
	"io"
	"strings"
)

// Compression selects how file content is compressed before encryption.
type Compression int32

const (
	CompressNone Compression = iota
	CompressLZW
	CompressGZIP
)

// MaxDecompressedSize bounds decompressed output (256 MB).
const MaxDecompressedSize = 256 << 20

// String returns the config name of the scheme.
func (c Compression) String() string {
	switch c {
	case CompressNone:
		return "none"
	case CompressLZW:
		return "lzw"
	case CompressGZIP:
		return "gzip"
	default:
		return fmt.Sprintf("compression(%d)", int32(c))
	}
}

// ParseCompression maps a config name to its scheme. An empty name is
// CompressNone.
func ParseCompression(name string) (Compression, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return CompressNone, nil
	case "lzw":
		return CompressLZW, nil
	case "gzip":
		return CompressGZIP, nil
	default:
		return CompressNone, fmt.Errorf("%w: %q", ErrUnsupportedCompression, name)
	}
}

// Compress compresses data using the specified scheme.
func Compress(data []byte, scheme Compression) ([]byte, error) {
	switch scheme {
	case CompressNone:
		return data, nil
	case CompressLZW:
		return compressLZW(data)
	case CompressGZIP:
		return compressGZIP(data)
	default:
		return nil, ErrUnsupportedCompression
	}
}

// Decompress decompresses data using the specified scheme.
func Decompress(data []byte, scheme Compression) ([]byte, error) {
	switch scheme {
	case CompressNone:
		return data, nil
	case CompressLZW:
		return decompressLZW(data)
	case CompressGZIP:
		return decompressGZIP(data)
	default:
		return nil, ErrUnsupportedCompression
	}
}

func compressLZW(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := lzw.NewWriter(&buf, lzw.LSB, 8)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decompressLZW(data []byte) ([]byte, error) {
	r := lzw.NewReader(bytes.NewReader(data), lzw.LSB, 8)
	defer r.Close()
	return readLimited(r)
}

func compressGZIP(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decompressGZIP(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return readLimited(r)
}

func readLimited(r io.Reader) ([]byte, error) {
	out, err := io.ReadAll(io.LimitReader(r, MaxDecompressedSize+1))
	if err != nil {
		return nil, err
	}
	if len(out) > MaxDecompressedSize {
		return nil, ErrDecompressedTooLarge
	}
	return out, nil
}
