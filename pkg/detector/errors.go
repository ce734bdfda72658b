package detector

import (
	"context"
	"errors"
	"fmt"
)

// CancelledError reports that a run was cancelled or timed out. No partial
// clone groups are ever returned alongside it.
type CancelledError struct {
	Err error
}

func (e *CancelledError) Error() string {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return "detection timed out; narrow the analyzed paths or raise the timeout"
	}
	return "detection cancelled; re-issue with a narrower scope to finish within the deadline"
}

func (e *CancelledError) Unwrap() error {
	return e.Err
}

// InternalError reports an unexpected failure during clustering or ranking,
// caught at the request boundary. The run produces no result: a missing
// result is preferred over possibly inconsistent partial groups.
type InternalError struct {
	Stage string
	Err   error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal failure during %s: %v; retry, and report if it persists", e.Stage, e.Err)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}
