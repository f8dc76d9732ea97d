package anomaly

import (
	"errors"
	"fmt"
)

// ErrMalformedSeries is matched by every MalformedSeriesError
var ErrMalformedSeries = errors.New("malformed series")

// ErrInvalidOptions is returned for a non-positive window or threshold
var ErrInvalidOptions = errors.New("invalid detection options")

// MalformedSeriesError reports a series that breaks the ordering or value invariants
type MalformedSeriesError struct {
	Series string
	Index  int
	Reason string
}

func (e *MalformedSeriesError) Error() string {
	return fmt.Sprintf("%s series malformed at index %d: %s", e.Series, e.Index, e.Reason)
}

func (e *MalformedSeriesError) Is(target error) bool {
	return target == ErrMalformedSeries
}
