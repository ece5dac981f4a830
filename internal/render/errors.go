package render

import "fmt"

// NotReadyError signals that a leaf cannot render a frame yet because a
// resource (usually an asset still decoding) is not available. The scheduler
// retries the frame after a short delay instead of failing it.
type NotReadyError struct {
	Resource string
}

func (e *NotReadyError) Error() string {
	return fmt.Sprintf("resource %q is not ready", e.Resource)
}

// FatalError aborts a whole render job. It carries the first failing frame
// and enough context to reproduce the failure deterministically; because a
// frame is a pure function of (tree, props, index), re-running the same
// request fails the same way.
type FatalError struct {
	JobID         string
	CompositionID string
	Frame         int
	Attempts      int
	Err           error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("render job %s: composition %q: frame %d failed after %d attempts: %v",
		e.JobID, e.CompositionID, e.Frame, e.Attempts, e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }
