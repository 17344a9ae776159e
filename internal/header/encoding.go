package header

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

// ErrUnknownEncoding is returned for an encoding code with no known codec.
var ErrUnknownEncoding = errors.New("unknown encoding code")

// encodingLabels maps the 1-byte encoding code at header offset 70 to the SAS
// encoding name and the IANA label used to resolve a codec.
var encodingLabels = map[byte]struct{ sas, iana string }{
	20: {"utf-8", "UTF-8"},
	29: {"latin1", "ISO-8859-1"},
	33: {"cyrillic", "ISO-8859-5"},
	60: {"wlatin2", "windows-1250"},
	61: {"wcyrillic", "windows-1251"},
	62: {"wlatin1", "windows-1252"},
	90: {"ebcdic", "IBM037"},
}

// Encoding is the text codec declared by a file. Structural parsing never
// depends on it; embedded strings (dataset name now, column names in row
// decoding) are converted through it.
type Encoding struct {
	// Code is the raw byte from the header.
	Code byte

	// Name is the SAS name of the encoding.
	Name string

	decoder *encoding.Decoder
}

// EncodingFromCode resolves the header encoding byte to a codec. An unmapped
// code is a hard error; a mapped code whose label cannot be resolved to a
// codec falls back to Latin-1 instead of failing.
func EncodingFromCode(code byte) (*Encoding, error) {
	labels, ok := encodingLabels[code]
	if !ok {
		return nil, fmt.Errorf("code %d: %w", code, ErrUnknownEncoding)
	}
	return &Encoding{
		Code:    code,
		Name:    labels.sas,
		decoder: decoderFor(labels.iana),
	}, nil
}

func decoderFor(label string) *encoding.Decoder {
	if label == "UTF-8" {
		return unicode.UTF8.NewDecoder()
	}
	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil || enc == nil {
		return charmap.ISO8859_1.NewDecoder()
	}
	return enc.NewDecoder()
}

// Decode converts raw header bytes to text, trimming the space and NUL
// padding SAS uses for fixed-width string fields.
func (e *Encoding) Decode(raw []byte) (string, error) {
	out, err := e.decoder.Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("decoding %s text: %w", e.Name, err)
	}
	return strings.Trim(string(out), " \x00"), nil
}
