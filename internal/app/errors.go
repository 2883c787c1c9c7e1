package app

import "fmt"

// Custom application-level errors
var (
	ErrAdminNotAuthorized = fmt.Errorf("performing user is not authorized as an admin")
	ErrInvalidArgument    = fmt.Errorf("invalid argument")
	ErrNoReport           = fmt.Errorf("no reminder pass has completed yet")
)
