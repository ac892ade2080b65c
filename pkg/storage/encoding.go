package storage

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Supported source encodings
const (
	EncodingLatin1      = "iso-8859-1"
	EncodingWindows1252 = "windows-1252"
	EncodingUTF8        = "utf-8"
)

// LookupEncoding returns the text encoding for a configured name.
// Every byte is valid in the single-byte encodings, so decoding never fails for them.
func LookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", EncodingLatin1, "latin1", "latin-1", "iso8859-1":
		return charmap.ISO8859_1, nil
	case EncodingWindows1252, "cp1252":
		return charmap.Windows1252, nil
	case EncodingUTF8, "utf8":
		// Strips a leading byte order mark if present
		return unicode.UTF8BOM, nil
	default:
		return nil, fmt.Errorf("unsupported source encoding %q", name)
	}
}
