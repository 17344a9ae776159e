package sas7bdat

import (
	"bytes"
	stdbin "encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/robert-malhotra/go-sas7bdat/internal/header"
)

const (
	testPageLen  = 1024
	rowSizeLen32 = 480
	lcsOffset32  = 354
	lcpOffset32  = 378
)

// fileBuilder assembles a complete synthetic little-endian 32-bit file.
type fileBuilder struct {
	header []byte
	pages  [][]byte
}

func newFileBuilder(pageCount int) *fileBuilder {
	h := make([]byte, 1024)
	copy(h, header.Magic)
	h[37] = 0x01 // little-endian
	h[39] = 0x01 // unix
	h[70] = 20   // utf-8
	copy(h[84:], []byte("SAS FILE"))
	copy(h[92:], []byte("TRIAL"))
	copy(h[156:], []byte("DATA"))
	stdbin.LittleEndian.PutUint32(h[196:], 1024)
	stdbin.LittleEndian.PutUint32(h[200:], testPageLen)
	stdbin.LittleEndian.PutUint32(h[204:], uint32(pageCount))
	return &fileBuilder{header: h}
}

// addPage appends one empty page of the given type code and returns its
// buffer for further population.
func (b *fileBuilder) addPage(typeCode uint16) []byte {
	p := make([]byte, testPageLen)
	stdbin.LittleEndian.PutUint16(p[16:], typeCode)
	stdbin.LittleEndian.PutUint16(p[18:], 1)
	b.pages = append(b.pages, p)
	return p
}

// addSubHeader places payload at the end of page p and appends a live
// pointer-table entry for it.
func addSubHeader(p []byte, payload []byte) {
	count := stdbin.LittleEndian.Uint16(p[20:])
	offset := len(p)
	for i := 0; i < int(count); i++ {
		prev := stdbin.LittleEndian.Uint32(p[24+i*12:])
		if int(prev) < offset {
			offset = int(prev)
		}
	}
	offset -= len(payload)
	copy(p[offset:], payload)

	slot := 24 + int(count)*12
	stdbin.LittleEndian.PutUint32(p[slot:], uint32(offset))
	stdbin.LittleEndian.PutUint32(p[slot+4:], uint32(len(payload)))
	stdbin.LittleEndian.PutUint16(p[20:], count+1)
}

func rowSizePayload(rowLength, rowCount, colP1, colP2 uint32) []byte {
	p := make([]byte, rowSizeLen32)
	copy(p, []byte{0xF7, 0xF7, 0xF7, 0xF7})
	stdbin.LittleEndian.PutUint32(p[20:], rowLength)
	stdbin.LittleEndian.PutUint32(p[24:], rowCount)
	stdbin.LittleEndian.PutUint32(p[36:], colP1)
	stdbin.LittleEndian.PutUint32(p[40:], colP2)
	stdbin.LittleEndian.PutUint16(p[lcsOffset32:], 4)
	stdbin.LittleEndian.PutUint16(p[lcpOffset32:], 12)
	return p
}

func columnSizePayload(total uint32) []byte {
	p := make([]byte, rowSizeLen32)
	copy(p, []byte{0xF6, 0xF6, 0xF6, 0xF6})
	stdbin.LittleEndian.PutUint32(p[4:], total)
	return p
}

func (b *fileBuilder) stream() io.Reader {
	var buf bytes.Buffer
	buf.Write(b.header)
	for _, p := range b.pages {
		buf.Write(p)
	}
	return &buf
}

func TestReaderSingleDataPage(t *testing.T) {
	b := newFileBuilder(1)
	b.addPage(256)

	r, err := FromReader(b.stream())
	require.NoError(t, err)

	h := r.Header()
	assert.Equal(t, 4, h.WordWidth)
	assert.Equal(t, "utf-8", h.Encoding)
	assert.Equal(t, "TRIAL", h.DatasetName)
	assert.Equal(t, testPageLen, h.PageLength)
	assert.Equal(t, 1, h.PageCount)

	info, err := r.NextPage()
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, PageData, info.Type)
	assert.Empty(t, info.SubHeaders, "data pages carry no sub-headers")

	// Exhaustion is not an error, and it is sticky.
	for i := 0; i < 3; i++ {
		info, err = r.NextPage()
		require.NoError(t, err)
		assert.Nil(t, info)
	}

	md := r.Metadata()
	assert.Equal(t, 1, md.Pages)
	assert.Equal(t, 1, md.PagesByType[PageData])
}

func TestReaderMetaThenData(t *testing.T) {
	b := newFileBuilder(2)
	meta := b.addPage(0)
	addSubHeader(meta, rowSizePayload(96, 2500, 3, 4))
	addSubHeader(meta, columnSizePayload(7))
	b.addPage(256)

	r, err := FromReader(b.stream())
	require.NoError(t, err)

	info, err := r.NextPage()
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, PageMeta, info.Type)
	assert.Equal(t, int64(96), info.RowLength)
	assert.Equal(t, int64(2500), info.RowCount)
	assert.Equal(t, int64(7), info.ColumnCount)
	assert.False(t, info.ColumnCountMismatch)
	assert.Equal(t, uint16(4), info.LCS)
	assert.Equal(t, uint16(12), info.LCP)

	info, err = r.NextPage()
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, PageData, info.Type)

	md := r.Metadata()
	assert.Equal(t, 2, md.Pages)
	assert.Equal(t, int64(96), md.RowLength)
	assert.Equal(t, int64(2500), md.RowCount)
	assert.Equal(t, int64(7), md.ColumnCount)
	assert.Equal(t, 1, md.SubHeaders["row-size"])
	assert.Equal(t, 1, md.SubHeaders["column-size"])
}

func TestReaderColumnCountMismatchWarns(t *testing.T) {
	b := newFileBuilder(1)
	meta := b.addPage(0)
	addSubHeader(meta, rowSizePayload(64, 100, 2, 3))
	addSubHeader(meta, columnSizePayload(6)) // 2+3 != 6

	core, logs := observer.New(zap.WarnLevel)
	r, err := FromReader(b.stream(), WithLogger(zap.New(core)))
	require.NoError(t, err)

	info, err := r.NextPage()
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.True(t, info.ColumnCountMismatch)
	assert.Equal(t, 1, logs.FilterMessage("column count mismatch").Len())
}

func TestReaderShortPageIsIOError(t *testing.T) {
	b := newFileBuilder(1)
	b.addPage(256)

	var buf bytes.Buffer
	buf.Write(b.header)
	buf.Write(b.pages[0][:100]) // page cut short

	r, err := FromReader(&buf)
	require.NoError(t, err)

	_, err = r.NextPage()
	require.Error(t, err)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestReaderPropagatesFormatErrors(t *testing.T) {
	b := newFileBuilder(1)
	b.addPage(999) // invalid page type code

	r, err := FromReader(b.stream())
	require.NoError(t, err)

	_, err = r.NextPage()
	assert.ErrorIs(t, err, ErrInvalidPageType)
}

func TestReaderRejectsNegativePageLength(t *testing.T) {
	// A header declaring a negative page length must fail at parse time,
	// before any page buffer is sized from it.
	b := newFileBuilder(1)
	stdbin.LittleEndian.PutUint32(b.header[200:], 0xFFFFFFFF)

	_, err := FromReader(b.stream())
	assert.ErrorIs(t, err, ErrInvalidPageLength)
}

func TestReaderHeaderErrorSurfaces(t *testing.T) {
	b := newFileBuilder(1)
	b.header[5] = 0xFF // corrupt magic

	_, err := FromReader(b.stream())
	assert.ErrorIs(t, err, ErrInvalidMagic)
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open("testdata/does-not-exist.sas7bdat")
	require.Error(t, err)
}
