package lastfm

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrRequestFailed wraps transport failures: the request never produced a usable reply.
	ErrRequestFailed = errors.New("lastfm request failed")
	// ErrAPIFailed is matched by every [APIError].
	ErrAPIFailed = errors.New("lastfm api error")
)

// Last.fm error codes worth telling apart.
const (
	CodeInvalidParameters = 6
	CodeInvalidAPIKey     = 10
	CodeRateLimited       = 29
)

// APIError is a reply with status="failed".
type APIError struct {
	Code    int
	Message string
	// URL is the request URL with the api_key value redacted.
	URL string
}

func newAPIError(e *errorElement, url string) *APIError {
	apiErr := &APIError{URL: url}
	if e != nil {
		apiErr.Code, _ = strconv.Atoi(strings.TrimSpace(e.Code))
		apiErr.Message = strings.TrimSpace(e.Message)
	}
	return apiErr
}

func (e *APIError) Error() string {
	return fmt.Sprintf("lastfm api error %d: %s", e.Code, e.Message)
}

func (e *APIError) Unwrap() error { return ErrAPIFailed }
