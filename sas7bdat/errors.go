// Package sas7bdat provides a pure Go reader for the structural layer of
// SAS7BDAT statistical-data files: the header, the page stream, and the
// metadata sub-headers that describe row and column geometry.
package sas7bdat

import (
	"github.com/robert-malhotra/go-sas7bdat/internal/binary"
	"github.com/robert-malhotra/go-sas7bdat/internal/header"
	"github.com/robert-malhotra/go-sas7bdat/internal/page"
)

// Common errors. Every structural violation aborts the current parse call;
// none of these are retried or recovered locally. Use errors.Is against the
// wrapped errors returned by Open, FromReader, and NextPage.
var (
	ErrInvalidMagic          = header.ErrInvalidMagic
	ErrInvalidSecondaryMagic = header.ErrInvalidSecondaryMagic
	ErrInvalidHeaderLength   = header.ErrInvalidHeaderLength
	ErrInvalidPageLength     = header.ErrInvalidPageLength
	ErrInvalidPageCount      = header.ErrInvalidPageCount
	ErrInvalidOSType         = header.ErrInvalidOSType
	ErrUnknownEncoding       = header.ErrUnknownEncoding
	ErrInvalidPageType       = page.ErrInvalidPageType
	ErrInvalidCompression    = page.ErrInvalidCompression
	ErrUnknownSignature      = page.ErrUnknownSignature
	ErrSubHeaderSize         = page.ErrSubHeaderSize
	ErrTruncated             = binary.ErrTruncated
)
