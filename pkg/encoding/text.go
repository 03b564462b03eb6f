// Package encoding normalizes structure files to UTF-8 before parsing.
// Hand-edited XYZ and CML files turn up with byte order marks, UTF-16
// from Windows editors, or legacy single-byte code pages.
package encoding

import (
	"bytes"
	"fmt"
	"regexp"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ToUTF8 returns data as UTF-8 without a byte order mark.
// A BOM selects UTF-8, UTF-16LE or UTF-16BE. Input without one is kept
// when it is valid UTF-8 and read as Windows-1252 otherwise.
func ToUTF8(data []byte) ([]byte, error) {
	out, _, err := transform.Bytes(unicode.BOMOverride(transform.Nop), data)
	if err != nil {
		return nil, fmt.Errorf("decoding byte order mark: %w", err)
	}
	if utf8.Valid(out) {
		return out, nil
	}
	out, _, err = transform.Bytes(charmap.Windows1252.NewDecoder(), data)
	if err != nil {
		return nil, fmt.Errorf("decoding windows-1252: %w", err)
	}
	return out, nil
}

// FromCharset decodes data labelled with an HTTP or XML charset name such
// as "utf-16" or "iso-8859-1". An empty label falls back to ToUTF8.
func FromCharset(data []byte, charset string) ([]byte, error) {
	if charset == "" {
		return ToUTF8(data)
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, fmt.Errorf("unknown charset %q: %w", charset, err)
	}
	// A BOM in the body wins over the label.
	out, _, err := transform.Bytes(unicode.BOMOverride(enc.NewDecoder()), data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", charset, err)
	}
	return out, nil
}

var xmlDeclEncoding = regexp.MustCompile(`^(\s*<\?xml\b[^>]*?\bencoding\s*=\s*)(["'])[^"']*["']`)

// RelabelXML rewrites the encoding named in an XML declaration to UTF-8.
// Call it on documents already decoded by ToUTF8 or FromCharset, so that
// an XML parser does not decode them a second time.
func RelabelXML(data []byte) []byte {
	return xmlDeclEncoding.ReplaceAll(data, []byte("${1}${2}UTF-8${2}"))
}

// TrimNullBytes removes trailing null bytes, which some exporters pad
// fixed-size records with.
func TrimNullBytes(data []byte) []byte {
	return bytes.TrimRight(data, "\x00")
}
