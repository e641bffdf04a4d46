package analytics

import (
	"errors"
	"fmt"
	"strings"
)

// Validation failures surfaced to the caller. These indicate a bad parameter,
// never a transient condition; empty results are not errors.
var (
	ErrNoData          = errors.New("no data loaded")
	ErrMissingCategory = errors.New("category is required")
	ErrNoPreviousMonth = errors.New("no previous month available to compute deltas")
)

// InvalidMonthError is returned when a requested month is not present in the
// dataset. Available holds at most the last 6 months as guidance.
type InvalidMonthError struct {
	Requested string
	Available []string
}

func (e *InvalidMonthError) Error() string {
	return fmt.Sprintf("month must be one of: [%s] (showing last %d)",
		strings.Join(e.Available, " "), len(e.Available))
}
