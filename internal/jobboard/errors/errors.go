package errors

import (
	"fmt"
)

var (
	ErrNotFound       = fmt.Errorf("not found")
	ErrInvalidInput   = fmt.Errorf("invalid input")
	ErrAlreadyApplied = fmt.Errorf("already applied")
	ErrDuplicateEmail = fmt.Errorf("duplicate email")

	// ErrNotFoundOrUnauthorized is returned when an ownership-scoped write
	// matches no row. Missing and foreign rows are reported the same way.
	ErrNotFoundOrUnauthorized = fmt.Errorf("not found or unauthorized")

	ErrUnauthenticated = fmt.Errorf("unauthenticated")
	ErrForbidden       = fmt.Errorf("forbidden")
)
