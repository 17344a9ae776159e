package page

// Metadata accumulates the structural facts extracted from one page. A fresh
// value is built per Decode call; merging across pages belongs to the caller.
type Metadata struct {
	Type Type

	// BlockCount is the raw block count field, retained for diagnostics.
	BlockCount int

	// SubHeaderCount is the number of pointer-table entries the page
	// declares, including empty and truncated ones.
	SubHeaderCount int

	// SubHeaders tallies dispatched sub-headers by kind. Only live pointers
	// (non-zero length, not truncated) are counted.
	SubHeaders map[Kind]int

	// Row geometry from the row-size sub-header.
	RowLength       int64
	RowCount        int64
	MixPageRowCount int64

	// ColumnCountP1 and ColumnCountP2 are the two partial column counts from
	// the row-size sub-header; ColumnCount is the total the column-size
	// sub-header declares.
	ColumnCountP1 int64
	ColumnCountP2 int64
	ColumnCount   int64

	// ColumnCountMismatch records a cross-check failure between the partial
	// counts and the declared total. Non-fatal.
	ColumnCountMismatch bool

	// LCS and LCP are creator-software string lengths from the row-size
	// sub-header, needed later for compression detection.
	LCS uint16
	LCP uint16

	hasRowSize bool
}
