package errors

// ErrUserVisible separates the single human-readable message shown to the
// user from the internal diagnostic detail, which is logged only.
type ErrUserVisible struct {
	Message string
	Err     error
}

func (e *ErrUserVisible) Error() string {
	return e.Message
}

func (e *ErrUserVisible) Unwrap() error {
	return e.Err
}
