package mutate

import (
	"fmt"
	"strings"

	"taskdeck/internal/remote"
)

// Failure is one rejected id inside a bulk operation.
type Failure struct {
	ID  string
	Err error
}

// BulkError is returned by bulk operations after the whole batch was rolled back.
type BulkError struct {
	Op       string
	Total    int
	Failures []Failure
}

func (e *BulkError) Error() string {
	if len(e.Failures) == 0 {
		return e.Op + " failed"
	}
	return fmt.Sprintf("%s: %d of %d failed: %s", e.Op, len(e.Failures), e.Total, remote.Message(e.Failures[0].Err, "unknown error"))
}

func (e *BulkError) Unwrap() []error {
	out := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		out = append(out, f.Err)
	}
	return out
}

// FailedIDs lists the rejected ids in the order they were requested.
func (e *BulkError) FailedIDs() []string {
	out := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		out = append(out, f.ID)
	}
	return out
}

// Message is the text shown to the user for the batch.
func (e *BulkError) Message() string {
	if len(e.Failures) == 0 {
		return e.Error()
	}
	msg := remote.Message(e.Failures[0].Err, e.Op+" failed")
	if len(e.Failures) > 1 {
		return fmt.Sprintf("%s (%d tasks failed)", strings.TrimSuffix(msg, "."), len(e.Failures))
	}
	return msg
}
