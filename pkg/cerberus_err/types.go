// pkg/cerberus_err/types.go

package cerberus_err

// UserError marks an error as expected: caused by the environment or the
// operator rather than a bug, handled with softer UX (warning, exit 0/1
// instead of a stack trace).
type UserError struct {
	cause error
}

func (e *UserError) Error() string {
	if e.cause == nil {
		return "user error"
	}
	return e.cause.Error()
}

func (e *UserError) Unwrap() error { return e.cause }
