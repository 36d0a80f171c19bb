package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Service errors
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrInternal           = fmt.Errorf("internal failure")

	// Library and file errors
	ErrUnsupportedFormat = fmt.Errorf("unsupported audio format")
	ErrNoMetadata        = fmt.Errorf("no usable metadata")
	ErrCorruptFile       = fmt.Errorf("corrupt audio file")
	ErrTrackNotFound     = fmt.Errorf("track not found")
	ErrRunNotFound       = fmt.Errorf("tag run not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
