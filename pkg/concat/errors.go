package concat

import "fmt"

// ClosedError is returned by Add once the concatenator has been
// closed. The closed state is permanent; callers must construct a new
// instance instead of retrying.
type ClosedError struct{}

func (e *ClosedError) Error() string {
	return "concat: already closed"
}

// InvalidSourceError is returned by Add when a candidate does not
// satisfy the flow.Source capability set. When a batch is supplied it
// is reported per item, without aborting the other items.
type InvalidSourceError struct {
	Value any
}

func (e *InvalidSourceError) Error() string {
	return fmt.Sprintf("concat: not a valid source: %T", e.Value)
}

// DrainedError is returned by Add after the output has ended because
// the active set ran empty. An ended stream cannot reopen, so a
// drained concatenator accepts no further sources.
type DrainedError struct{}

func (e *DrainedError) Error() string {
	return "concat: output already drained"
}
