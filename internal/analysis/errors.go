package analysis

import "errors"

// ErrNoData distinguishes the "no data" user condition (zero images in
// range, or an empty table after dropping null rows) from remote or
// auth failure, which is surfaced verbatim.
var ErrNoData = errors.New("no snow cover data found for the selected period")

// ErrInvalidInput marks request validation failures.
var ErrInvalidInput = errors.New("invalid analysis request")
