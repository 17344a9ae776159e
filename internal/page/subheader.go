package page

import (
	"bytes"
	"fmt"
)

// Kind classifies a sub-header by its payload signature.
type Kind int

const (
	KindRowSize Kind = iota
	KindColumnSize
	KindCounts
	KindColumnText
	KindColumnName
	KindColumnAttributes
	KindFormatAndLabel
	KindColumnList
)

func (k Kind) String() string {
	switch k {
	case KindRowSize:
		return "row-size"
	case KindColumnSize:
		return "column-size"
	case KindCounts:
		return "counts"
	case KindColumnText:
		return "column-text"
	case KindColumnName:
		return "column-name"
	case KindColumnAttributes:
		return "column-attributes"
	case KindFormatAndLabel:
		return "format-and-label"
	case KindColumnList:
		return "column-list"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// signature pairs one observed byte pattern with the kind it identifies.
type signature struct {
	pattern []byte
	kind    Kind
}

// signatures is the ordered match table. Each kind has short (one-word) and
// long (two-word) observed forms; long patterns come first so that a
// first-match scan sees the more specific form before a short prefix of it.
var signatures = []signature{
	// Long forms (8 bytes).
	{[]byte{0x00, 0x00, 0x00, 0x00, 0xF7, 0xF7, 0xF7, 0xF7}, KindRowSize},
	{[]byte{0xF7, 0xF7, 0xF7, 0xF7, 0x00, 0x00, 0x00, 0x00}, KindRowSize},
	{[]byte{0xF7, 0xF7, 0xF7, 0xF7, 0xFF, 0xFF, 0xFF, 0xFF}, KindRowSize},
	{[]byte{0x00, 0x00, 0x00, 0x00, 0xF6, 0xF6, 0xF6, 0xF6}, KindColumnSize},
	{[]byte{0xF6, 0xF6, 0xF6, 0xF6, 0x00, 0x00, 0x00, 0x00}, KindColumnSize},
	{[]byte{0xF6, 0xF6, 0xF6, 0xF6, 0xFF, 0xFF, 0xFF, 0xFF}, KindColumnSize},
	{[]byte{0x00, 0xFC, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}, KindCounts},
	{[]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFC, 0x00}, KindCounts},
	{[]byte{0xFD, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}, KindColumnText},
	{[]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFD}, KindColumnText},
	{[]byte{0xFC, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}, KindColumnAttributes},
	{[]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFC}, KindColumnAttributes},
	{[]byte{0xFE, 0xFB, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}, KindFormatAndLabel},
	{[]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFB, 0xFE}, KindFormatAndLabel},
	{[]byte{0xFE, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}, KindColumnList},
	{[]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFE}, KindColumnList},
	{[]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}, KindColumnName},
	// Short forms (4 bytes).
	{[]byte{0xF7, 0xF7, 0xF7, 0xF7}, KindRowSize},
	{[]byte{0xF6, 0xF6, 0xF6, 0xF6}, KindColumnSize},
	{[]byte{0x00, 0xFC, 0xFF, 0xFF}, KindCounts},
	{[]byte{0xFF, 0xFF, 0xFC, 0x00}, KindCounts},
	{[]byte{0xFD, 0xFF, 0xFF, 0xFF}, KindColumnText},
	{[]byte{0xFF, 0xFF, 0xFF, 0xFD}, KindColumnText},
	{[]byte{0xFC, 0xFF, 0xFF, 0xFF}, KindColumnAttributes},
	{[]byte{0xFF, 0xFF, 0xFF, 0xFC}, KindColumnAttributes},
	{[]byte{0xFE, 0xFB, 0xFF, 0xFF}, KindFormatAndLabel},
	{[]byte{0xFF, 0xFF, 0xFB, 0xFE}, KindFormatAndLabel},
	{[]byte{0xFE, 0xFF, 0xFF, 0xFF}, KindColumnList},
	{[]byte{0xFF, 0xFF, 0xFF, 0xFE}, KindColumnList},
	{[]byte{0xFF, 0xFF, 0xFF, 0xFF}, KindColumnName},
}

// matchSignature classifies a sub-header payload by its leading bytes. Only
// patterns of one or two word widths are eligible for a given file.
func matchSignature(payload []byte, width int) (Kind, error) {
	for _, sig := range signatures {
		n := len(sig.pattern)
		if n != width && n != 2*width {
			continue
		}
		if bytes.HasPrefix(payload, sig.pattern) {
			return sig.kind, nil
		}
	}
	n := 2 * width
	if n > len(payload) {
		n = len(payload)
	}
	return 0, fmt.Errorf("leading bytes % x: %w", payload[:n], ErrUnknownSignature)
}

// Fixed sub-header payload sizes. RowSize and ColumnSize share one total size
// per word width.
const (
	sizeSubHeader32 = 480
	sizeSubHeader64 = 808
)

// lcs/lcp sit at fixed byte offsets that do not reduce to a word multiple.
const (
	lcsOffset32 = 354
	lcsOffset64 = 682
	lcpOffset32 = 378
	lcpOffset64 = 706
)

// dispatch classifies one live sub-header payload and routes it to its field
// extractor. Five of the eight kinds are classification-only here; their
// extraction belongs to column-metadata decoding.
func (d *Decoder) dispatch(payload []byte, md *Metadata) error {
	kind, err := matchSignature(payload, d.words.Width())
	if err != nil {
		return err
	}
	md.SubHeaders[kind]++

	switch kind {
	case KindRowSize:
		return d.parseRowSize(payload, md)
	case KindColumnSize:
		return d.parseColumnSize(payload, md)
	default:
		// Counts is recognized but carries nothing structural; the column
		// sub-headers are decoded by the column-metadata layer.
		return nil
	}
}

// checkSubHeaderSize enforces the shared RowSize/ColumnSize total size.
func (d *Decoder) checkSubHeaderSize(payload []byte, kind Kind) error {
	want := sizeSubHeader32
	if d.words.Width() == 8 {
		want = sizeSubHeader64
	}
	if len(payload) != want {
		return fmt.Errorf("%s: %d bytes, want %d: %w", kind, len(payload), want, ErrSubHeaderSize)
	}
	return nil
}

// parseRowSize extracts the row geometry fields at their fixed word-indexed
// offsets, plus the lcs/lcp lengths at their fixed byte offsets.
func (d *Decoder) parseRowSize(payload []byte, md *Metadata) error {
	if err := d.checkSubHeaderSize(payload, KindRowSize); err != nil {
		return err
	}
	w := d.words.Width()

	fields := []struct {
		word int
		dst  *int64
	}{
		{5, &md.RowLength},
		{6, &md.RowCount},
		{9, &md.ColumnCountP1},
		{10, &md.ColumnCountP2},
		{15, &md.MixPageRowCount},
	}
	for _, f := range fields {
		v, err := d.words.Int(payload[f.word*w:])
		if err != nil {
			return err
		}
		*f.dst = v
	}

	lcs, lcp := lcsOffset32, lcpOffset32
	if w == 8 {
		lcs, lcp = lcsOffset64, lcpOffset64
	}
	v, err := d.words.Uint16(payload[lcs:])
	if err != nil {
		return err
	}
	md.LCS = v
	v, err = d.words.Uint16(payload[lcp:])
	if err != nil {
		return err
	}
	md.LCP = v

	md.hasRowSize = true
	return nil
}

// parseColumnSize extracts the declared total column count and cross-checks
// it against the two partial counts from the row-size sub-header. A mismatch
// is recorded and logged, never an error.
func (d *Decoder) parseColumnSize(payload []byte, md *Metadata) error {
	if err := d.checkSubHeaderSize(payload, KindColumnSize); err != nil {
		return err
	}
	v, err := d.words.Int(payload[d.words.Width():])
	if err != nil {
		return err
	}
	md.ColumnCount = v

	if md.hasRowSize && md.ColumnCountP1+md.ColumnCountP2 != v {
		md.ColumnCountMismatch = true
		d.sugar.Warnw("column count mismatch",
			"declared", v,
			"partial1", md.ColumnCountP1,
			"partial2", md.ColumnCountP2,
		)
	}
	return nil
}
