package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Account errors
	ErrDuplicateUser      = fmt.Errorf("user already exists")
	ErrInvalidCredentials = fmt.Errorf("incorrect username or password")
	ErrNotAuthenticated   = fmt.Errorf("not authenticated")
	ErrUserNotFound       = fmt.Errorf("user not found")

	// Collection errors
	ErrConflict   = fmt.Errorf("collection version conflict")
	ErrContention = fmt.Errorf("too much contention, retries exhausted")
	ErrIOFailure  = fmt.Errorf("storage failure")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Input validation errors
	ErrInvalidPayload  = fmt.Errorf("invalid payload")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
