package console

import "fmt"

// Result is the uniform outcome of a command handler: nothing (success, no
// message), a status line for the user, or an error to render. Handlers
// convert collaborator failures into a Result at their own boundary; the
// dispatch loop never sees a raised error.
type Result struct {
	Status string
	Err    error
}

func Ok() Result { return Result{} }

func Statusf(format string, args ...any) Result {
	return Result{Status: fmt.Sprintf(format, args...)}
}

func Failf(format string, args ...any) Result {
	return Result{Err: fmt.Errorf(format, args...)}
}

func Fail(err error) Result { return Result{Err: err} }
