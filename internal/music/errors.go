package music

import "fmt"

// Failure tags carried by every client error. Handlers branch on the tag to
// pick a remediation message instead of parsing error text.
const (
	TagMissingCredentials = "MissingCredentials"
	TagNoRefreshToken     = "NoRefreshToken"
	TagFetchError         = "FetchError"
)

// HTTPTag builds the tag for an upstream error status, e.g. "HTTPError:401".
func HTTPTag(status int) string {
	return fmt.Sprintf("HTTPError:%d", status)
}

// Error is a tagged music API failure.
type Error struct {
	Tag     string // one of the Tag constants or HTTPTag output
	Status  int    // upstream HTTP status, when the tag is an HTTPError
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Tag, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Tag, e.Err)
	}
	return e.Tag
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same tag.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && e.Tag == t.Tag
}

// Sentinels for the non-HTTP tags.
var (
	ErrMissingCredentials = &Error{Tag: TagMissingCredentials, Message: "music client credentials are not configured"}
	ErrNoRefreshToken     = &Error{Tag: TagNoRefreshToken, Message: "no refresh token is configured"}
)

func fetchError(err error) *Error {
	return &Error{Tag: TagFetchError, Err: err}
}

func httpError(status int, message string) *Error {
	return &Error{Tag: HTTPTag(status), Status: status, Message: message}
}
