package callhook

import "fmt"

// PanicError is the error form of a panic raised by an intercepted call.
// After listeners see it as the exception; the caller still receives the
// original panic.
type PanicError struct {
	Value any
}

// Error implements error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap returns the panic value when it is itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
