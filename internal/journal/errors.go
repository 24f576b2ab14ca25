package journal

import "errors"

// Sentinel errors used to classify task failures. Callers wrap them with
// context via fmt.Errorf("...: %w", ...) and tasks match with errors.Is.
var (
	// ErrSchema reports an expected column missing from a sheet or import.
	ErrSchema = errors.New("required column missing")
	// ErrValue reports a field that could not be parsed.
	ErrValue = errors.New("value cannot be parsed")
	// ErrNotFound reports a referenced sheet or reference-table entry
	// that does not exist.
	ErrNotFound = errors.New("sheet or column not found")
	// ErrConfig reports a non-writable output location.
	ErrConfig = errors.New("output location not writable")
	// ErrBusy reports a workbook held open by another process.
	ErrBusy = errors.New("workbook is in use by another process")
)
