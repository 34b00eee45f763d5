package models

import "errors"

// Error categories. Wrap with fmt.Errorf("...: %w", ErrX) and classify with errors.Is.
//
// ErrDecode never reaches callers of the settings store or the download pass:
// unreadable settings become DefaultSettings and malformed remote documents are
// skipped. It is still returned by the lower-level codecs so they can be tested.
var (
	// ErrStorage is a local read/write failure
	ErrStorage = errors.New("storage error")
	// ErrDecode is a malformed persisted value or remote document
	ErrDecode = errors.New("decode error")
	// ErrNetwork is a failed upload, download, fetch or batch commit
	ErrNetwork = errors.New("network error")
	// ErrNotFound is an unknown id or path
	ErrNotFound = errors.New("not found")
	// ErrDuplicateID is an add whose id is already stored
	ErrDuplicateID = errors.New("duplicate location id")
)
