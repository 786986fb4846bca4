package streamer

import "fmt"

// FatalError marks a pipeline construction or rewiring failure after which
// the graph can no longer be trusted. Callers decide whether to abort or to
// log and carry on with the branches that still work.
type FatalError struct {
	Op  string
	Err error
}

func (e *FatalError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

func fatalf(op string, format string, args ...interface{}) *FatalError {
	return &FatalError{Op: op, Err: fmt.Errorf(format, args...)}
}
