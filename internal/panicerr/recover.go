// Package panicerr converts abnormal goroutine exits into errors.
package panicerr

import (
	"errors"
	"fmt"
	"runtime/debug"
)

// Recover runs f in a new goroutine, returning its error, or an *Error if f
// panics or calls runtime.Goexit.
func Recover(name string, f func() error) error {
	errch := make(chan error, 1)
	go func() {
		defer close(errch)
		defer recoverGoexit(name, errch)
		defer recoverPanic(name, errch)
		errch <- f()
	}()
	return <-errch
}

func recoverPanic(name string, errch chan<- error) {
	if val := recover(); val != nil {
		select {
		case errch <- &Error{Name: name, Value: val, Stack: debug.Stack()}:
		default:
		}
	}
}

func recoverGoexit(name string, errch chan<- error) {
	select {
	case errch <- &Error{Name: name, Goexit: true}:
	default:
		// a normal return or a recovered panic has already sent
	}
}

// Error records a recovered panic or goroutine exit.
type Error struct {
	Name   string
	Goexit bool
	Value  interface{}
	Stack  []byte
}

func (pe *Error) Error() string { return fmt.Sprint(pe) }

// Format prints the panic stack under the %+v verb.
func (pe *Error) Format(f fmt.State, c rune) {
	if pe.Name != "" {
		fmt.Fprintf(f, "%v ", pe.Name)
	}
	if pe.Goexit {
		fmt.Fprint(f, "called runtime.Goexit")
		return
	}
	fmt.Fprintf(f, "panicked: %v", pe.Value)
	if c == 'v' && f.Flag('+') && len(pe.Stack) > 0 {
		fmt.Fprintf(f, "\nPanic stack: %s", pe.Stack)
	}
}

// Unwrap returns the panic value if it was an error.
func (pe *Error) Unwrap() error {
	err, _ := pe.Value.(error)
	return err
}

// IsPanic returns true if err indicates a recovered goroutine panic.
func IsPanic(err error) bool {
	var pe *Error
	return errors.As(err, &pe) && !pe.Goexit
}

// IsExit returns true if err indicates a recovered goroutine exit.
func IsExit(err error) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.Goexit
}

// PanicStack returns the stack trace captured with a recovered panic, if any.
func PanicStack(err error) string {
	var pe *Error
	if errors.As(err, &pe) {
		return string(pe.Stack)
	}
	return ""
}
