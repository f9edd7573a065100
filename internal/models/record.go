package models

// Record is one row of the tabular source. Its position in the slice
// returned by the reader is its only link to pages and zones.
type Record struct {
	ID        string
	Recipient string
	// Extra holds any additional columns, keyed by header name.
	Extra map[string]string
}

// PageDocument is a single-page PDF extracted from the primary source.
// It lives in the pipeline's temp workdir and is removed with it.
type PageDocument struct {
	Index int
	Path  string
}
