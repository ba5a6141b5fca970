package pipeline

import (
	"errors"
	"fmt"
)

// RowLimit caps the number of records a run accepts.
//
// A limit of zero or less means unlimited. Check is called once per
// candidate record, before it is accepted; the first candidate past the
// limit gets a *LimitReachedError and the run stops there.
type RowLimit struct {
	max     int
	current int
}

// NewRowLimit creates a limit of max records.
func NewRowLimit(max int) *RowLimit {
	return &RowLimit{max: max}
}

// Check counts one candidate and reports whether it is over the limit.
func (l *RowLimit) Check() error {
	if l.max <= 0 {
		l.current++
		return nil
	}
	if l.current >= l.max {
		return &LimitReachedError{Limit: l.max}
	}
	l.current++
	return nil
}

// Current returns the number of candidates admitted so far.
func (l *RowLimit) Current() int {
	return l.current
}

// Max returns the configured limit (zero or less when unlimited).
func (l *RowLimit) Max() int {
	return l.max
}

// LimitReachedError stops a run once the row limit is used up.
type LimitReachedError struct {
	Limit int
}

// Error implements the error interface.
func (e *LimitReachedError) Error() string {
	return fmt.Sprintf("row limit of %d reached", e.Limit)
}

// IsLimitReached reports whether err is a *LimitReachedError.
func IsLimitReached(err error) bool {
	var le *LimitReachedError
	return errors.As(err, &le)
}
