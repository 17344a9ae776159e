// Package header handles parsing of the SAS7BDAT file header.
//
// The header is the entry point for any SAS7BDAT file. Its first 32 bytes are
// a fixed magic number; the bytes after it carry the structural flags (word
// width, byte order, alignment) that parameterize every later read, followed
// by the page geometry at flag-dependent offsets.
package header

import (
	"bytes"
	stdbin "encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/robert-malhotra/go-sas7bdat/internal/binary"
)

// Magic is the 32-byte signature at the start of every SAS7BDAT file.
var Magic = []byte{
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0xc2, 0xea, 0x81, 0x60,
	0xb3, 0x14, 0x11, 0xcf, 0xbd, 0x92, 0x08, 0x00,
	0x09, 0xc7, 0x31, 0x8c, 0x18, 0x1f, 0x10, 0x11,
}

// secondaryMagic sits at byte 84 of every valid file.
var secondaryMagic = []byte("SAS FILE")

// Flag byte positions within the first header block.
const (
	wordWidthFlagOffset = 32 // 0x33 selects 8-byte words
	alignmentFlagOffset = 35 // 0x33 selects the extra 4-byte field shift
	byteOrderFlagOffset = 37
	osTypeOffset        = 39
	encodingCodeOffset  = 70
	secondaryMagicStart = 84
	datasetNameStart    = 92
	datasetNameEnd      = 156
	fileTypeStart       = 156
	fileTypeEnd         = 164
	headerLengthOffset  = 196 // plus alignment
	pageLengthOffset    = 200 // plus alignment
	pageCountOffset     = 204 // plus alignment
)

// firstBlockLen is the size of the smaller header variant; the larger variant
// is headerLenLarge and its tail carries nothing structural.
const (
	firstBlockLen  = 1024
	headerLenLarge = 8192
)

// Errors
var (
	ErrInvalidMagic          = errors.New("invalid magic number")
	ErrInvalidSecondaryMagic = errors.New("missing SAS FILE marker")
	ErrInvalidHeaderLength   = errors.New("invalid header length")
	ErrInvalidPageLength     = errors.New("invalid page length")
	ErrInvalidPageCount      = errors.New("invalid page count")
	ErrInvalidOSType         = errors.New("unrecognized OS type")
)

// OSType identifies the platform that wrote the file.
type OSType uint8

const (
	OSUnix OSType = 0x01
	OSWin  OSType = 0x02
)

func (t OSType) String() string {
	switch t {
	case OSUnix:
		return "unix"
	case OSWin:
		return "windows"
	default:
		return fmt.Sprintf("os(0x%02x)", uint8(t))
	}
}

// Header contains the structural metadata extracted from the file header.
// It is created once per file and immutable afterwards.
type Header struct {
	// WordWidth is the byte size (4 or 8) of native integer fields.
	WordWidth int

	// ByteOrder applies to every multi-byte field in the file.
	ByteOrder stdbin.ByteOrder

	// Alignment is the extra shift (0 or 4) applied to a subset of header
	// field offsets, independent of WordWidth.
	Alignment int

	// OSType is the writing platform, recorded for diagnostics.
	OSType OSType

	// Encoding is the text codec declared by the file.
	Encoding *Encoding

	// DatasetName and FileType are best-effort decoded; either may be empty
	// when the declared codec cannot decode the stored bytes.
	DatasetName string
	FileType    string

	// HeaderLength is 1024 or 8192.
	HeaderLength int

	// PageLength is the fixed size of every page that follows the header.
	PageLength int

	// PageCount is the number of pages in the file.
	PageCount int

	words *binary.Reader
}

// WordReader returns the integer reader configured for this file's byte order
// and word width.
func (h *Header) WordReader() *binary.Reader {
	return h.words
}

// Parse reads the complete header from r, leaving the stream positioned at
// the start of page 0. Exactly HeaderLength bytes are consumed.
func Parse(r io.Reader) (*Header, error) {
	buf := make([]byte, firstBlockLen)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("reading header block: %w", err)
	}

	if !bytes.Equal(buf[:len(Magic)], Magic) {
		return nil, ErrInvalidMagic
	}

	h := &Header{
		WordWidth: 4,
		Alignment: 0,
	}
	if buf[wordWidthFlagOffset] == 0x33 {
		h.WordWidth = 8
	}
	if buf[alignmentFlagOffset] == 0x33 {
		h.Alignment = 4
	}
	h.ByteOrder = byteOrderOf(buf[byteOrderFlagOffset])

	switch t := OSType(buf[osTypeOffset]); t {
	case OSUnix, OSWin:
		h.OSType = t
	default:
		return nil, fmt.Errorf("byte 0x%02x at offset %d: %w", buf[osTypeOffset], osTypeOffset, ErrInvalidOSType)
	}

	if !bytes.Equal(buf[secondaryMagicStart:secondaryMagicStart+len(secondaryMagic)], secondaryMagic) {
		return nil, ErrInvalidSecondaryMagic
	}

	enc, err := EncodingFromCode(buf[encodingCodeOffset])
	if err != nil {
		return nil, err
	}
	h.Encoding = enc

	// Diagnostic only; a codec failure here leaves the field empty.
	h.DatasetName, _ = enc.Decode(buf[datasetNameStart:datasetNameEnd])
	h.FileType, _ = enc.Decode(buf[fileTypeStart:fileTypeEnd])

	words, err := binary.New(h.ByteOrder, h.WordWidth)
	if err != nil {
		return nil, err
	}
	h.words = words

	headerLen, err := words.Int32(buf[headerLengthOffset+h.Alignment:])
	if err != nil {
		return nil, fmt.Errorf("reading header length: %w", err)
	}
	switch headerLen {
	case firstBlockLen:
	case headerLenLarge:
		// The tail of the large header carries nothing structural.
		if _, err := io.CopyN(io.Discard, r, headerLenLarge-firstBlockLen); err != nil {
			return nil, fmt.Errorf("discarding header padding: %w", err)
		}
	default:
		return nil, fmt.Errorf("%d: %w", headerLen, ErrInvalidHeaderLength)
	}
	h.HeaderLength = int(headerLen)

	pageLen, err := words.Int32(buf[pageLengthOffset+h.Alignment:])
	if err != nil {
		return nil, fmt.Errorf("reading page length: %w", err)
	}
	if pageLen <= 0 {
		return nil, fmt.Errorf("%d: %w", pageLen, ErrInvalidPageLength)
	}
	h.PageLength = int(pageLen)

	pageCount, err := words.Int(buf[pageCountOffset+h.Alignment:])
	if err != nil {
		return nil, fmt.Errorf("reading page count: %w", err)
	}
	if pageCount < 0 {
		return nil, fmt.Errorf("%d: %w", pageCount, ErrInvalidPageCount)
	}
	h.PageCount = int(pageCount)

	return h, nil
}

// byteOrderOf maps the flag byte at offset 37 to a byte order. 0x01 meaning
// little-endian is the polarity of the most recent format notes; it still
// needs validation against a corpus of real files.
func byteOrderOf(flag byte) stdbin.ByteOrder {
	if flag == 0x01 {
		return stdbin.LittleEndian
	}
	return stdbin.BigEndian
}
