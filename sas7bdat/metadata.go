package sas7bdat

import (
	"encoding/binary"

	"github.com/robert-malhotra/go-sas7bdat/internal/header"
	"github.com/robert-malhotra/go-sas7bdat/internal/page"
)

// PageType classifies a decoded page.
type PageType int

const (
	PageMeta PageType = iota
	PageAMD
	PageMix
	PageData
)

func (t PageType) String() string {
	switch t {
	case PageMeta:
		return "meta"
	case PageAMD:
		return "amd"
	case PageMix:
		return "mix"
	case PageData:
		return "data"
	default:
		return "unknown"
	}
}

// Header is the structural metadata read once from the start of the file.
type Header struct {
	// WordWidth is the byte size (4 or 8) of native integer fields.
	WordWidth int

	// ByteOrder applies to every multi-byte field in the file.
	ByteOrder binary.ByteOrder

	// Alignment is the extra header-field shift (0 or 4).
	Alignment int

	// OS names the writing platform.
	OS string

	// Encoding is the SAS name of the declared text codec.
	Encoding string

	// DatasetName and FileType are best-effort decoded diagnostics.
	DatasetName string
	FileType    string

	HeaderLength int
	PageLength   int
	PageCount    int
}

func headerInfo(h *header.Header) Header {
	return Header{
		WordWidth:    h.WordWidth,
		ByteOrder:    h.ByteOrder,
		Alignment:    h.Alignment,
		OS:           h.OSType.String(),
		Encoding:     h.Encoding.Name,
		DatasetName:  h.DatasetName,
		FileType:     h.FileType,
		HeaderLength: h.HeaderLength,
		PageLength:   h.PageLength,
		PageCount:    h.PageCount,
	}
}

// PageInfo is the decoded view of one page.
type PageInfo struct {
	Type PageType

	// BlockCount and SubHeaderCount are the page's declared counts;
	// SubHeaders tallies only the live, dispatched sub-headers by kind name.
	BlockCount     int
	SubHeaderCount int
	SubHeaders     map[string]int

	// Row geometry, populated when the page carries a row-size sub-header.
	RowLength       int64
	RowCount        int64
	MixPageRowCount int64

	ColumnCountP1       int64
	ColumnCountP2       int64
	ColumnCount         int64
	ColumnCountMismatch bool

	LCS uint16
	LCP uint16
}

func pageInfo(md *page.Metadata) *PageInfo {
	info := &PageInfo{
		Type:                pageTypeOf(md.Type),
		BlockCount:          md.BlockCount,
		SubHeaderCount:      md.SubHeaderCount,
		SubHeaders:          make(map[string]int, len(md.SubHeaders)),
		RowLength:           md.RowLength,
		RowCount:            md.RowCount,
		MixPageRowCount:     md.MixPageRowCount,
		ColumnCountP1:       md.ColumnCountP1,
		ColumnCountP2:       md.ColumnCountP2,
		ColumnCount:         md.ColumnCount,
		ColumnCountMismatch: md.ColumnCountMismatch,
		LCS:                 md.LCS,
		LCP:                 md.LCP,
	}
	for kind, n := range md.SubHeaders {
		info.SubHeaders[kind.String()] = n
	}
	return info
}

func pageTypeOf(t page.Type) PageType {
	switch t {
	case page.Meta:
		return PageMeta
	case page.AMD:
		return PageAMD
	case page.Mix:
		return PageMix
	default:
		return PageData
	}
}

// Metadata is the file-level merge of everything decoded so far. Scalar
// fields take the latest non-zero value; tallies accumulate.
type Metadata struct {
	Pages       int
	PagesByType map[PageType]int
	SubHeaders  map[string]int

	RowLength       int64
	RowCount        int64
	MixPageRowCount int64
	ColumnCount     int64

	LCS uint16
	LCP uint16

	ColumnCountMismatch bool
}

func (m *Metadata) merge(info *PageInfo) {
	if m.PagesByType == nil {
		m.PagesByType = make(map[PageType]int)
	}
	if m.SubHeaders == nil {
		m.SubHeaders = make(map[string]int)
	}
	m.Pages++
	m.PagesByType[info.Type]++
	for kind, n := range info.SubHeaders {
		m.SubHeaders[kind] += n
	}

	if info.RowLength != 0 {
		m.RowLength = info.RowLength
	}
	if info.RowCount != 0 {
		m.RowCount = info.RowCount
	}
	if info.MixPageRowCount != 0 {
		m.MixPageRowCount = info.MixPageRowCount
	}
	if info.ColumnCount != 0 {
		m.ColumnCount = info.ColumnCount
	}
	if info.LCS != 0 {
		m.LCS = info.LCS
	}
	if info.LCP != 0 {
		m.LCP = info.LCP
	}
	if info.ColumnCountMismatch {
		m.ColumnCountMismatch = true
	}
}
