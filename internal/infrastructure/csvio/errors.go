// Package csvio loads creditor/MAX datasets from CSV or XLSX files, plain or
// zipped, and exports reconciliation output in the fixed external layouts.
package csvio

import "errors"

// Loader error codes, reported alongside the sentinel errors below.
const (
	ErrCodeInvalidFile     = "ERR_LOAD_INVALID_FILE"
	ErrCodeEmptyFile       = "ERR_LOAD_EMPTY_FILE"
	ErrCodeInvalidEncoding = "ERR_LOAD_INVALID_ENCODING"
	ErrCodeMissingHeader   = "ERR_LOAD_MISSING_HEADER"
	ErrCodeNoCandidate     = "ERR_LOAD_NO_CANDIDATE"
	ErrCodeManyCandidates  = "ERR_LOAD_MANY_CANDIDATES"
	ErrCodeArchiveEntries  = "ERR_LOAD_ARCHIVE_ENTRIES"
	ErrCodeDecryption      = "ERR_LOAD_DECRYPTION"
)

// Common loader errors
var (
	// ErrEmptyFile is returned when the input file has no content
	ErrEmptyFile = errors.New("input file is empty")

	// ErrInvalidEncoding is returned when the file is not valid in the configured encoding
	ErrInvalidEncoding = errors.New("invalid file encoding")

	// ErrMissingHeader is returned when the file has no header row
	ErrMissingHeader = errors.New("input file missing header row")

	// ErrNoDataRows is returned when the file has headers but no data rows
	ErrNoDataRows = errors.New("input file contains no data rows")
)
