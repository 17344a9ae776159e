package sas7bdat

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/robert-malhotra/go-sas7bdat/internal/header"
	"github.com/robert-malhotra/go-sas7bdat/internal/page"
)

// Reader decodes one SAS7BDAT stream sequentially: header first, then pages
// in file order. It never seeks; sub-header offsets are page-relative, so
// page order is structurally significant.
type Reader struct {
	r       io.Reader
	file    *os.File // non-nil when the Reader owns the handle
	hdr     *header.Header
	decoder *page.Decoder

	pagesRead int
	merged    Metadata
}

// Open opens a SAS7BDAT file for reading and parses its header. The returned
// Reader owns the file handle; Close releases it.
func Open(path string, opts ...Option) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}

	r, err := FromReader(f, opts...)
	if err != nil {
		f.Close()
		return nil, err
	}
	r.file = f
	return r, nil
}

// FromReader parses the header from an already-open stream positioned at the
// start of the file. The stream is left positioned at page 0.
func FromReader(src io.Reader, opts ...Option) (*Reader, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	hdr, err := header.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	options.logger.Debug("parsed header",
		zap.Int("word_width", hdr.WordWidth),
		zap.Int("page_length", hdr.PageLength),
		zap.Int("page_count", hdr.PageCount),
		zap.String("encoding", hdr.Encoding.Name),
	)

	return &Reader{
		r:       src,
		hdr:     hdr,
		decoder: page.NewDecoder(hdr.WordReader(), hdr.Alignment, options.logger),
	}, nil
}

// Close releases the underlying file when the Reader owns one.
func (r *Reader) Close() error {
	if r.file == nil {
		return nil
	}
	f := r.file
	r.file = nil
	return f.Close()
}

// Header returns the parsed file header.
func (r *Reader) Header() Header {
	return headerInfo(r.hdr)
}

// NextPage reads and decodes the next page. It returns (nil, nil) once all
// pages declared by the header have been read; further calls keep returning
// (nil, nil). A short read is an I/O error, not a format error.
func (r *Reader) NextPage() (*PageInfo, error) {
	if r.pagesRead >= r.hdr.PageCount {
		return nil, nil
	}

	buf := make([]byte, r.hdr.PageLength)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		return nil, fmt.Errorf("reading page %d: %w", r.pagesRead, err)
	}

	md, err := r.decoder.Decode(buf)
	if err != nil {
		return nil, fmt.Errorf("decoding page %d: %w", r.pagesRead, err)
	}
	r.pagesRead++

	info := pageInfo(md)
	r.merged.merge(info)
	return info, nil
}

// Metadata returns the merge of every page decoded so far. Pages read before
// an error surfaced remain reflected here; nothing is rolled back.
func (r *Reader) Metadata() Metadata {
	return r.merged
}
