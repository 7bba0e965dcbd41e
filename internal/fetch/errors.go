package fetch

import (
	"errors"
	"fmt"
)

// Kind classifies a fetch failure so callers can decide per-kind recovery.
// Page-level failures (network, not-found, parse) are recoverable: the
// crawler substitutes a placeholder page and continues. Proxy failures get
// their own kind because they usually indicate a misconfiguration rather
// than a transient fault, and operators need to tell the two apart.
type Kind int

const (
	// KindNetwork covers DNS, connection, timeout, and non-2xx responses.
	KindNetwork Kind = iota

	// KindNotFound is a 404 response from the target site.
	KindNotFound

	// KindProxy is a failure to reach or traverse the configured forward
	// proxy.
	KindProxy

	// KindParse is a malformed or empty response body.
	KindParse

	// KindRobotsDenied means robots.txt disallows fetching the URL.
	KindRobotsDenied
)

// String returns a human-readable name for the failure kind.
func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network error"
	case KindNotFound:
		return "not found"
	case KindProxy:
		return "proxy error"
	case KindParse:
		return "parse failure"
	case KindRobotsDenied:
		return "denied by robots.txt"
	default:
		return "unknown error"
	}
}

// Error is a typed fetch failure carrying the failing URL and its kind.
type Error struct {
	// Kind classifies the failure.
	Kind Kind

	// URL is the absolute URL whose fetch failed.
	URL string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
	}
	return fmt.Sprintf("fetch %s: %s", e.URL, e.Kind)
}

// Unwrap returns the underlying cause for errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a fetch Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var fe *Error
	return errors.As(err, &fe) && fe.Kind == kind
}
