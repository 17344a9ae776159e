// Package page handles decoding of SAS7BDAT pages.
//
// A page is a fixed-length block. Its first bytes (after an alignment-
// dependent shift) carry a type code; metadata-bearing pages follow it with a
// table of pointers into the page, each locating one sub-header. Sub-headers
// identify themselves by leading byte-pattern signatures, not by any field of
// their pointer.
package page

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/robert-malhotra/go-sas7bdat/internal/binary"
)

// Errors
var (
	ErrInvalidPageType    = errors.New("invalid page type")
	ErrInvalidCompression = errors.New("invalid compression code")
	ErrUnknownSignature   = errors.New("unrecognized sub-header signature")
	ErrSubHeaderSize      = errors.New("invalid sub-header size")
)

// Type classifies a page by its 16-bit type code.
type Type int

const (
	Meta Type = iota
	AMD
	Mix
	Data
)

// TypeFromCode maps a raw page-type code to a Type. Codes 512 and 640 are
// both mix pages.
func TypeFromCode(code uint16) (Type, error) {
	switch code {
	case 0:
		return Meta, nil
	case 1024:
		return AMD, nil
	case 512, 640:
		return Mix, nil
	case 256:
		return Data, nil
	default:
		return 0, fmt.Errorf("code %d: %w", code, ErrInvalidPageType)
	}
}

func (t Type) String() string {
	switch t {
	case Meta:
		return "meta"
	case AMD:
		return "amd"
	case Mix:
		return "mix"
	case Data:
		return "data"
	default:
		return fmt.Sprintf("type(%d)", int(t))
	}
}

// Compression is the per-sub-header compression state.
type Compression uint8

const (
	Uncompressed Compression = 0
	Truncated    Compression = 1
	RLE          Compression = 4
)

// CompressionFromCode maps a raw compression byte to a Compression.
func CompressionFromCode(code byte) (Compression, error) {
	switch c := Compression(code); c {
	case Uncompressed, Truncated, RLE:
		return c, nil
	default:
		return 0, fmt.Errorf("code %d: %w", code, ErrInvalidCompression)
	}
}

func (c Compression) String() string {
	switch c {
	case Uncompressed:
		return "uncompressed"
	case Truncated:
		return "truncated"
	case RLE:
		return "rle"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

// Pointer is one entry of a page's sub-header pointer table. Offset and
// Length are relative to the start of the page buffer.
type Pointer struct {
	Offset      uint64
	Length      uint64
	Compression Compression

	// TypeByte is captured for diagnostics but never consulted: sub-header
	// identity comes from the payload signature.
	TypeByte byte
}

// live reports whether the pointer references decodable content. Zero-length
// and truncated sub-headers are how the format represents "nothing here".
func (p Pointer) live() bool {
	return p.Length > 0 && p.Compression != Truncated
}

// Decoder decodes pages of one file. It carries the file's word reader and
// alignment flag and is reused across pages.
type Decoder struct {
	words     *binary.Reader
	pageStart int
	sugar     *zap.SugaredLogger
}

// NewDecoder creates a page decoder for a file with the given word reader and
// header alignment flag.
func NewDecoder(words *binary.Reader, alignment int, logger *zap.Logger) *Decoder {
	start := 16
	if alignment == 4 {
		start = 32
	}
	return &Decoder{
		words:     words,
		pageStart: start,
		sugar:     logger.Sugar(),
	}
}

// pointerSize returns the byte size of one pointer-table slot: the offset and
// length words, the compression and type bytes, and trailing padding.
func (d *Decoder) pointerSize() int {
	return 3 * d.words.Width()
}

// Decode classifies one page and extracts the structural metadata carried by
// its sub-headers. buf must hold exactly one page.
func (d *Decoder) Decode(buf []byte) (*Metadata, error) {
	if len(buf) < d.pageStart+8 {
		return nil, fmt.Errorf("%d-byte page, header needs %d: %w", len(buf), d.pageStart+8, binary.ErrTruncated)
	}

	code, err := d.words.Uint16(buf[d.pageStart:])
	if err != nil {
		return nil, fmt.Errorf("reading page type: %w", err)
	}
	typ, err := TypeFromCode(code)
	if err != nil {
		return nil, err
	}

	blockCount, err := d.words.Uint16(buf[d.pageStart+2:])
	if err != nil {
		return nil, fmt.Errorf("reading block count: %w", err)
	}

	md := &Metadata{
		Type:       typ,
		BlockCount: int(blockCount),
		SubHeaders: make(map[Kind]int),
	}

	// Data pages carry rows only; no pointer table to walk.
	if typ == Data {
		return md, nil
	}

	count, err := d.words.Uint16(buf[d.pageStart+4:])
	if err != nil {
		return nil, fmt.Errorf("reading sub-header count: %w", err)
	}
	md.SubHeaderCount = int(count)

	table := d.pageStart + 8
	slot := d.pointerSize()
	for i := 0; i < int(count); i++ {
		ptr, err := d.readPointer(buf, table+i*slot)
		if err != nil {
			return nil, fmt.Errorf("sub-header pointer %d: %w", i, err)
		}
		if !ptr.live() {
			continue
		}
		// Offset+Length can wrap in uint64; compare against the remaining
		// space instead of the sum.
		if ptr.Offset > uint64(len(buf)) || ptr.Length > uint64(len(buf))-ptr.Offset {
			return nil, fmt.Errorf("sub-header %d spans [%d,+%d) beyond %d-byte page: %w",
				i, ptr.Offset, ptr.Length, len(buf), binary.ErrTruncated)
		}
		if err := d.dispatch(buf[ptr.Offset:ptr.Offset+ptr.Length], md); err != nil {
			return nil, fmt.Errorf("sub-header %d: %w", i, err)
		}
	}

	d.sugar.Debugw("decoded page",
		"type", typ.String(),
		"subheaders", md.SubHeaderCount,
		"rowcount", md.RowCount,
	)
	return md, nil
}

// readPointer reads one pointer-table slot starting at base.
func (d *Decoder) readPointer(buf []byte, base int) (Pointer, error) {
	w := d.words.Width()
	if base+d.pointerSize() > len(buf) {
		return Pointer{}, fmt.Errorf("slot at %d: %w", base, binary.ErrTruncated)
	}

	offset, err := d.words.Uint(buf[base:])
	if err != nil {
		return Pointer{}, err
	}
	length, err := d.words.Uint(buf[base+w:])
	if err != nil {
		return Pointer{}, err
	}
	comp, err := CompressionFromCode(buf[base+2*w])
	if err != nil {
		return Pointer{}, err
	}
	return Pointer{
		Offset:      offset,
		Length:      length,
		Compression: comp,
		TypeByte:    buf[base+2*w+1],
	}, nil
}
