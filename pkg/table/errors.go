package table

import "errors"

// Error kinds shared by the profiler and the selectors. Callers match them with errors.Is;
// returned errors wrap them with the offending column or option.
var (
	// ErrInvalidArgument indicates a bad parameter such as a missing or non-numeric target.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInsufficientData indicates too few rows or values for the requested computation.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrUnsupportedType indicates a column dtype outside the known set.
	ErrUnsupportedType = errors.New("unsupported column type")
	// ErrUnknownFormat indicates no loader accepts the given file.
	ErrUnknownFormat = errors.New("unsupported table format")
)
